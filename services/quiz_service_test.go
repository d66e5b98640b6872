package services

import (
	"errors"
	"testing"
	"time"

	"quizhub/models"

	"gorm.io/gorm"
)

func TestCreateQuiz_SetsCreatorAndDefaults(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(db)
	user := createTestUser(t, db, "Alice")
	category := createTestCategory(t, db, "Math")

	endTime := time.Now().Add(time.Hour)
	quiz, err := svc.CreateQuiz(user.ID, &CreateQuizRequest{
		Title:      "Algebra Basics",
		CategoryID: category.ID,
		EndTime:    &endTime,
	})
	if err != nil {
		t.Fatalf("CreateQuiz failed: %v", err)
	}

	if quiz.CreatorID == nil || *quiz.CreatorID != user.ID {
		t.Fatalf("expected creator %d, got %v", user.ID, quiz.CreatorID)
	}
	if !quiz.Active {
		t.Fatalf("expected new quiz to be active")
	}
	if !quiz.CreatedAt.Equal(quiz.UpdatedAt) {
		t.Fatalf("expected created_at == updated_at at creation, got %v / %v", quiz.CreatedAt, quiz.UpdatedAt)
	}
	if quiz.StartTime.IsZero() {
		t.Fatalf("expected start_time to default to creation instant")
	}
	if quiz.DurationMinutes != 30 {
		t.Fatalf("expected default duration 30, got %d", quiz.DurationMinutes)
	}
	if quiz.NrOfQuestions != 1 {
		t.Fatalf("expected default nr_of_questions 1, got %d", quiz.NrOfQuestions)
	}
}

func TestCreateQuiz_RequiresEndTime(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(db)
	user := createTestUser(t, db, "Alice")
	category := createTestCategory(t, db, "Math")

	_, err := svc.CreateQuiz(user.ID, &CreateQuizRequest{
		Title:      "No deadline",
		CategoryID: category.ID,
	})
	if !errors.Is(err, ErrEndTimeRequired) {
		t.Fatalf("expected ErrEndTimeRequired, got %v", err)
	}

	var count int64
	db.Model(&models.Quiz{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no quiz rows, got %d", count)
	}
}

func TestCreateQuiz_RejectsUnknownCategory(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(db)
	user := createTestUser(t, db, "Alice")

	endTime := time.Now().Add(time.Hour)
	_, err := svc.CreateQuiz(user.ID, &CreateQuizRequest{
		Title:      "Orphan",
		CategoryID: 9999,
		EndTime:    &endTime,
	})
	if !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestUpdateQuiz_PreservesCreatorAndCreatedAt(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(db)
	user := createTestUser(t, db, "Alice")
	category := createTestCategory(t, db, "Math")
	quiz := createTestQuiz(t, svc, user.ID, category.ID)

	time.Sleep(20 * time.Millisecond)

	updated, err := svc.UpdateQuiz(quiz.ID, user.ID, &UpdateQuizRequest{Title: "Algebra Advanced"})
	if err != nil {
		t.Fatalf("UpdateQuiz failed: %v", err)
	}

	if updated.Title != "Algebra Advanced" {
		t.Fatalf("expected updated title, got %q", updated.Title)
	}
	if updated.CreatorID == nil || *updated.CreatorID != user.ID {
		t.Fatalf("creator changed on update: %v", updated.CreatorID)
	}
	if !updated.CreatedAt.Equal(quiz.CreatedAt) {
		t.Fatalf("created_at changed on update: %v -> %v", quiz.CreatedAt, updated.CreatedAt)
	}
	if !updated.UpdatedAt.After(quiz.UpdatedAt) {
		t.Fatalf("expected updated_at to advance, got %v -> %v", quiz.UpdatedAt, updated.UpdatedAt)
	}
}

func TestUpdateQuiz_NotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(db)
	user := createTestUser(t, db, "Alice")

	_, err := svc.UpdateQuiz(42, user.ID, &UpdateQuizRequest{Title: "Nope"})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestAddQuestion_PersistsQuestionWithChoices(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(db)
	user := createTestUser(t, db, "Alice")
	category := createTestCategory(t, db, "Math")
	quiz := createTestQuiz(t, svc, user.ID, category.ID)

	question, err := svc.AddQuestion(quiz.ID, user.ID, &AddQuestionRequest{
		Text: "2+2=?",
		Choices: []ChoiceEntryRequest{
			{Text: "3", IsCorrect: false},
			{Text: "4", IsCorrect: true},
		},
	})
	if err != nil {
		t.Fatalf("AddQuestion failed: %v", err)
	}

	if question.QuizID != quiz.ID {
		t.Fatalf("expected quiz_id %d, got %d", quiz.ID, question.QuizID)
	}
	if len(question.Choices) != 2 {
		t.Fatalf("expected 2 choices, got %d", len(question.Choices))
	}
	correct := 0
	for _, choice := range question.Choices {
		if choice.QuestionID != question.ID {
			t.Fatalf("choice %d bound to question %d, want %d", choice.ID, choice.QuestionID, question.ID)
		}
		if choice.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		t.Fatalf("expected exactly 1 correct choice in this set, got %d", correct)
	}
}

func TestAddQuestion_EmptyChoiceSetWritesNothing(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(db)
	user := createTestUser(t, db, "Alice")
	category := createTestCategory(t, db, "Math")
	quiz := createTestQuiz(t, svc, user.ID, category.ID)

	_, err := svc.AddQuestion(quiz.ID, user.ID, &AddQuestionRequest{
		Text:    "Unanswerable",
		Choices: []ChoiceEntryRequest{},
	})
	if !errors.Is(err, ErrEmptyChoiceSet) {
		t.Fatalf("expected ErrEmptyChoiceSet, got %v", err)
	}

	var count int64
	db.Model(&models.Question{}).Count(&count)
	if count != 0 {
		t.Fatalf("question persisted despite invalid choice set: %d rows", count)
	}
}

func TestAddQuestion_NoCorrectChoiceWritesNothing(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(db)
	user := createTestUser(t, db, "Alice")
	category := createTestCategory(t, db, "Math")
	quiz := createTestQuiz(t, svc, user.ID, category.ID)

	_, err := svc.AddQuestion(quiz.ID, user.ID, &AddQuestionRequest{
		Text: "Pick one",
		Choices: []ChoiceEntryRequest{
			{Text: "A"},
			{Text: "B"},
		},
	})
	if !errors.Is(err, ErrNoCorrectChoice) {
		t.Fatalf("expected ErrNoCorrectChoice, got %v", err)
	}

	var questions, choices int64
	db.Model(&models.Question{}).Count(&questions)
	db.Model(&models.Choice{}).Count(&choices)
	if questions != 0 || choices != 0 {
		t.Fatalf("expected no writes, got %d questions / %d choices", questions, choices)
	}
}

func TestAddQuestion_QuizNotOwnedByCaller(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(db)
	owner := createTestUser(t, db, "Alice")
	intruder := createTestUser(t, db, "Bob")
	category := createTestCategory(t, db, "Math")
	quiz := createTestQuiz(t, svc, owner.ID, category.ID)

	_, err := svc.AddQuestion(quiz.ID, intruder.ID, &AddQuestionRequest{
		Text:    "2+2=?",
		Choices: []ChoiceEntryRequest{{Text: "4", IsCorrect: true}},
	})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound for foreign quiz, got %v", err)
	}
}

func TestUpdateQuestion_ReplacesChoiceSet(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(db)
	user := createTestUser(t, db, "Alice")
	category := createTestCategory(t, db, "Math")
	quiz := createTestQuiz(t, svc, user.ID, category.ID)

	question, err := svc.AddQuestion(quiz.ID, user.ID, &AddQuestionRequest{
		Text: "2+2=?",
		Choices: []ChoiceEntryRequest{
			{Text: "3"},
			{Text: "4", IsCorrect: true},
		},
	})
	if err != nil {
		t.Fatalf("AddQuestion failed: %v", err)
	}

	updated, err := svc.UpdateQuestion(question.ID, user.ID, &UpdateQuestionRequest{
		Text: "What is 2+2?",
		Choices: []ChoiceEntryRequest{
			{Text: "4", IsCorrect: true},
			{Text: "5"},
			{Text: "22"},
		},
	})
	if err != nil {
		t.Fatalf("UpdateQuestion failed: %v", err)
	}

	if updated.Text != "What is 2+2?" {
		t.Fatalf("expected updated text, got %q", updated.Text)
	}
	if len(updated.Choices) != 3 {
		t.Fatalf("expected replaced choice set of 3, got %d", len(updated.Choices))
	}

	var count int64
	db.Model(&models.Choice{}).Where("question_id = ?", question.ID).Count(&count)
	if count != 3 {
		t.Fatalf("expected 3 live choice rows, got %d", count)
	}
}

func TestUpdateQuestion_RejectsChoiceSetWithoutCorrect(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(db)
	user := createTestUser(t, db, "Alice")
	category := createTestCategory(t, db, "Math")
	quiz := createTestQuiz(t, svc, user.ID, category.ID)

	question, err := svc.AddQuestion(quiz.ID, user.ID, &AddQuestionRequest{
		Text:    "2+2=?",
		Choices: []ChoiceEntryRequest{{Text: "4", IsCorrect: true}},
	})
	if err != nil {
		t.Fatalf("AddQuestion failed: %v", err)
	}

	_, err = svc.UpdateQuestion(question.ID, user.ID, &UpdateQuestionRequest{
		Choices: []ChoiceEntryRequest{{Text: "5"}},
	})
	if !errors.Is(err, ErrNoCorrectChoice) {
		t.Fatalf("expected ErrNoCorrectChoice, got %v", err)
	}

	// Original choice set must survive the rejected update.
	kept, err := svc.GetQuestionByID(question.ID)
	if err != nil {
		t.Fatalf("GetQuestionByID failed: %v", err)
	}
	if len(kept.Choices) != 1 || !kept.Choices[0].IsCorrect {
		t.Fatalf("original choice set was mutated: %+v", kept.Choices)
	}
}

func TestDeleteQuiz_CascadesToAllDependents(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(db)
	user := createTestUser(t, db, "Alice")
	taker := createTestUser(t, db, "Bob")
	category := createTestCategory(t, db, "Math")
	quiz := createTestQuiz(t, svc, user.ID, category.ID)

	question, err := svc.AddQuestion(quiz.ID, user.ID, &AddQuestionRequest{
		Text: "2+2=?",
		Choices: []ChoiceEntryRequest{
			{Text: "3"},
			{Text: "4", IsCorrect: true},
		},
	})
	if err != nil {
		t.Fatalf("AddQuestion failed: %v", err)
	}

	response := models.Response{
		UserID:           taker.ID,
		QuizID:           quiz.ID,
		QuestionID:       question.ID,
		SelectedChoiceID: question.Choices[1].ID,
		Score:            20,
	}
	if err := db.Create(&response).Error; err != nil {
		t.Fatalf("failed to seed response: %v", err)
	}
	history := models.UserQuizHistory{UserID: taker.ID, QuizID: quiz.ID, Score: 20}
	if err := db.Create(&history).Error; err != nil {
		t.Fatalf("failed to seed history: %v", err)
	}

	if err := svc.DeleteQuiz(quiz.ID, user.ID); err != nil {
		t.Fatalf("DeleteQuiz failed: %v", err)
	}

	var questions, choices, responses, historyRows int64
	db.Model(&models.Question{}).Where("quiz_id = ?", quiz.ID).Count(&questions)
	db.Model(&models.Choice{}).Where("question_id = ?", question.ID).Count(&choices)
	db.Model(&models.Response{}).Where("quiz_id = ?", quiz.ID).Count(&responses)
	db.Model(&models.UserQuizHistory{}).Where("quiz_id = ?", quiz.ID).Count(&historyRows)
	if questions != 0 || choices != 0 || responses != 0 || historyRows != 0 {
		t.Fatalf("cascade delete left rows behind: %d questions, %d choices, %d responses, %d history",
			questions, choices, responses, historyRows)
	}

	if _, err := svc.GetQuizByID(quiz.ID, user.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected quiz gone, got %v", err)
	}
}
