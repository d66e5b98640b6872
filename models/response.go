package models

import "time"

// Response is immutable once written; there is no update path and no soft
// delete, rows are removed only when their quiz is deleted.
type Response struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	UserID           uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_responses_user_quiz_question"`
	QuizID           uint      `json:"quiz_id" gorm:"not null;uniqueIndex:idx_responses_user_quiz_question"`
	QuestionID       uint      `json:"question_id" gorm:"not null;uniqueIndex:idx_responses_user_quiz_question"`
	SelectedChoiceID uint      `json:"selected_choice_id" gorm:"not null"`
	Score            int       `json:"score" gorm:"not null;default:0"`
	CreatedAt        time.Time `json:"created_at"`

	// Relationships
	User           User     `json:"user,omitempty"`
	Quiz           Quiz     `json:"quiz,omitempty"`
	Question       Question `json:"question,omitempty"`
	SelectedChoice Choice   `json:"selected_choice,omitempty" gorm:"foreignKey:SelectedChoiceID"`
}
