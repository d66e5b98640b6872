package models

import (
	"time"

	"gorm.io/gorm"
)

type Quiz struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	Title           string         `json:"title" gorm:"not null"`
	CategoryID      uint           `json:"category_id" gorm:"not null"`
	CreatorID       *uint          `json:"creator_id"`
	Active          bool           `json:"active" gorm:"not null;default:true"`
	StartTime       time.Time      `json:"start_time" gorm:"not null"`
	EndTime         time.Time      `json:"end_time" gorm:"not null"`
	DurationMinutes int            `json:"duration_minutes" gorm:"not null;default:30"` // minutes
	MaxScore        int            `json:"max_score" gorm:"not null;default:0"`
	NrOfQuestions   int            `json:"nr_of_questions" gorm:"not null;default:1"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Category  Category   `json:"category,omitempty"`
	Creator   *User      `json:"creator,omitempty" gorm:"foreignKey:CreatorID"`
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
}
