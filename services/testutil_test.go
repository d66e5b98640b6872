package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"quizhub/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory database per test and migrates the
// full model set.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Quiz{},
		&models.Question{},
		&models.Choice{},
		&models.Response{},
		&models.UserQuizHistory{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()

	user := models.User{
		Name:         name,
		Email:        fmt.Sprintf("%s@example.com", strings.ToLower(name)),
		PasswordHash: "x",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return &user
}

func createTestCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()

	category := models.Category{Name: name}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return &category
}

func createTestQuiz(t *testing.T, svc *QuizService, creatorID uint, categoryID uint) *models.Quiz {
	t.Helper()

	endTime := time.Now().Add(time.Hour)
	quiz, err := svc.CreateQuiz(creatorID, &CreateQuizRequest{
		Title:           "Algebra Basics",
		CategoryID:      categoryID,
		EndTime:         &endTime,
		DurationMinutes: 30,
		MaxScore:        100,
		NrOfQuestions:   5,
	})
	if err != nil {
		t.Fatalf("failed to create test quiz: %v", err)
	}
	return quiz
}
