package services

import (
	"errors"
	"strings"
	"time"

	"quizhub/models"

	"gorm.io/gorm"
)

type QuizService struct {
	db *gorm.DB
}

func NewQuizService(db *gorm.DB) *QuizService {
	return &QuizService{db: db}
}

var (
	ErrEndTimeRequired   = errors.New("end_time is required")
	ErrInvalidCategory   = errors.New("category does not exist")
	ErrInvalidDuration   = errors.New("duration_minutes must be positive")
	ErrInvalidQuestionNr = errors.New("nr_of_questions must be at least 1")
	ErrEmptyQuestionText = errors.New("question text must not be empty")
	ErrEmptyChoiceSet    = errors.New("at least one choice is required")
	ErrEmptyChoiceText   = errors.New("choice text must not be empty")
	ErrNoCorrectChoice   = errors.New("at least one choice must be marked correct")
)

type CreateQuizRequest struct {
	Title           string     `json:"title" binding:"required"`
	CategoryID      uint       `json:"category_id" binding:"required"`
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time" binding:"required"`
	DurationMinutes int        `json:"duration_minutes" binding:"omitempty,min=1"`
	MaxScore        int        `json:"max_score" binding:"omitempty,min=0"`
	NrOfQuestions   int        `json:"nr_of_questions" binding:"omitempty,min=1"`
}

type UpdateQuizRequest struct {
	Title           string     `json:"title"`
	CategoryID      uint       `json:"category_id"`
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	DurationMinutes int        `json:"duration_minutes" binding:"omitempty,min=1"`
	MaxScore        int        `json:"max_score" binding:"omitempty,min=0"`
	NrOfQuestions   int        `json:"nr_of_questions" binding:"omitempty,min=1"`
	Active          *bool      `json:"active"`
}

type AddQuestionRequest struct {
	Text    string               `json:"text" binding:"required"`
	Choices []ChoiceEntryRequest `json:"choices" binding:"required,min=1,dive"`
}

type ChoiceEntryRequest struct {
	Text      string `json:"text" binding:"required"`
	IsCorrect bool   `json:"is_correct"`
}

type UpdateQuestionRequest struct {
	Text    string               `json:"text"`
	Choices []ChoiceEntryRequest `json:"choices" binding:"omitempty,min=1,dive"`
}

// CreateQuiz stamps the authenticated caller as creator; the creator never
// comes from the request body.
func (s *QuizService) CreateQuiz(creatorID uint, req *CreateQuizRequest) (*models.Quiz, error) {
	if req.EndTime == nil || req.EndTime.IsZero() {
		return nil, ErrEndTimeRequired
	}

	var count int64
	if err := s.db.Model(&models.Category{}).Where("id = ?", req.CategoryID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrInvalidCategory
	}

	startTime := time.Now()
	if req.StartTime != nil && !req.StartTime.IsZero() {
		startTime = *req.StartTime
	}
	durationMinutes := req.DurationMinutes
	if durationMinutes == 0 {
		durationMinutes = 30
	}
	if durationMinutes < 0 {
		return nil, ErrInvalidDuration
	}
	nrOfQuestions := req.NrOfQuestions
	if nrOfQuestions == 0 {
		nrOfQuestions = 1
	}
	if nrOfQuestions < 1 {
		return nil, ErrInvalidQuestionNr
	}

	quiz := models.Quiz{
		Title:           req.Title,
		CategoryID:      req.CategoryID,
		CreatorID:       &creatorID,
		Active:          true,
		StartTime:       startTime,
		EndTime:         *req.EndTime,
		DurationMinutes: durationMinutes,
		MaxScore:        req.MaxScore,
		NrOfQuestions:   nrOfQuestions,
	}

	if err := s.db.Create(&quiz).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (s *QuizService) GetUserQuizzes(userID uint) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := s.db.Where("creator_id = ?", userID).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.id")
		}).
		Preload("Questions.Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("choices.id")
		}).
		Order("created_at DESC").
		Find(&quizzes).Error
	return quizzes, err
}

// GetQuizByID returns the quiz with its question set loaded, for display
// alongside the edit form.
func (s *QuizService) GetQuizByID(quizID uint, userID uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := s.db.Where("id = ? AND creator_id = ?", quizID, userID).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.id")
		}).
		Preload("Questions.Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("choices.id")
		}).
		First(&quiz).Error
	return &quiz, err
}

// UpdateQuiz edits the fields that mirror creation. Creator and created_at
// are never touched; updated_at is refreshed on every save.
func (s *QuizService) UpdateQuiz(quizID uint, userID uint, req *UpdateQuizRequest) (*models.Quiz, error) {
	quiz, err := s.GetQuizByID(quizID, userID)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		quiz.Title = req.Title
	}
	if req.CategoryID != 0 {
		var count int64
		if err := s.db.Model(&models.Category{}).Where("id = ?", req.CategoryID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, ErrInvalidCategory
		}
		quiz.CategoryID = req.CategoryID
	}
	if req.StartTime != nil && !req.StartTime.IsZero() {
		quiz.StartTime = *req.StartTime
	}
	if req.EndTime != nil && !req.EndTime.IsZero() {
		quiz.EndTime = *req.EndTime
	}
	if req.DurationMinutes != 0 {
		if req.DurationMinutes < 0 {
			return nil, ErrInvalidDuration
		}
		quiz.DurationMinutes = req.DurationMinutes
	}
	if req.MaxScore != 0 {
		quiz.MaxScore = req.MaxScore
	}
	if req.NrOfQuestions != 0 {
		if req.NrOfQuestions < 1 {
			return nil, ErrInvalidQuestionNr
		}
		quiz.NrOfQuestions = req.NrOfQuestions
	}
	if req.Active != nil {
		quiz.Active = *req.Active
	}

	if err := s.db.Save(quiz).Error; err != nil {
		return nil, err
	}
	return s.GetQuizByID(quiz.ID, userID)
}

// AddQuestion persists a question and its choice set as one unit: either the
// question and every choice exist afterwards, or nothing does.
func (s *QuizService) AddQuestion(quizID uint, userID uint, req *AddQuestionRequest) (*models.Question, error) {
	if _, err := s.GetQuizByID(quizID, userID); err != nil {
		return nil, err
	}
	if err := validateQuestion(req.Text, req.Choices); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	question := models.Question{
		QuizID: quizID,
		Text:   strings.TrimSpace(req.Text),
	}
	if err := tx.Create(&question).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	for _, entry := range req.Choices {
		choice := models.Choice{
			QuestionID: question.ID,
			Text:       strings.TrimSpace(entry.Text),
			IsCorrect:  entry.IsCorrect,
		}
		if err := tx.Create(&choice).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return s.GetQuestionByID(question.ID)
}

// GetQuestionByID returns the question with its current choice set, for
// display alongside the edit form.
func (s *QuizService) GetQuestionByID(questionID uint) (*models.Question, error) {
	var question models.Question
	err := s.db.
		Preload("Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("choices.id")
		}).
		First(&question, questionID).Error
	return &question, err
}

// UpdateQuestion edits the prompt text and, when a choice set is supplied,
// replaces the existing choices with it under the same validation and
// atomicity rules as AddQuestion.
func (s *QuizService) UpdateQuestion(questionID uint, userID uint, req *UpdateQuestionRequest) (*models.Question, error) {
	question, err := s.GetQuestionByID(questionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetQuizByID(question.QuizID, userID); err != nil {
		return nil, err
	}

	text := question.Text
	if req.Text != "" {
		text = req.Text
	}
	if err := validateQuestion(text, choicesOrExisting(req.Choices, question.Choices)); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	question.Text = strings.TrimSpace(text)
	if err := tx.Save(question).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if req.Choices != nil {
		if err := tx.Where("question_id = ?", questionID).Delete(&models.Choice{}).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		for _, entry := range req.Choices {
			choice := models.Choice{
				QuestionID: question.ID,
				Text:       strings.TrimSpace(entry.Text),
				IsCorrect:  entry.IsCorrect,
			}
			if err := tx.Create(&choice).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return s.GetQuestionByID(question.ID)
}

// DeleteQuiz removes the quiz and everything hanging off it in one
// transaction, ordered leaves first: responses and history, then choices,
// then questions, then the quiz row.
func (s *QuizService) DeleteQuiz(quizID uint, userID uint) error {
	if _, err := s.GetQuizByID(quizID, userID); err != nil {
		return err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Where("quiz_id = ?", quizID).Delete(&models.Response{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Where("quiz_id = ?", quizID).Delete(&models.UserQuizHistory{}).Error; err != nil {
		tx.Rollback()
		return err
	}

	var questionIDs []uint
	if err := tx.Model(&models.Question{}).Where("quiz_id = ?", quizID).Pluck("id", &questionIDs).Error; err != nil {
		tx.Rollback()
		return err
	}
	if len(questionIDs) > 0 {
		if err := tx.Where("question_id IN ?", questionIDs).Delete(&models.Choice{}).Error; err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Where("quiz_id = ?", quizID).Delete(&models.Question{}).Error; err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Delete(&models.Quiz{}, quizID).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

func validateQuestion(text string, choices []ChoiceEntryRequest) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyQuestionText
	}
	if len(choices) == 0 {
		return ErrEmptyChoiceSet
	}
	correctCount := 0
	for _, entry := range choices {
		if strings.TrimSpace(entry.Text) == "" {
			return ErrEmptyChoiceText
		}
		if entry.IsCorrect {
			correctCount++
		}
	}
	if correctCount == 0 {
		return ErrNoCorrectChoice
	}
	return nil
}

func choicesOrExisting(submitted []ChoiceEntryRequest, existing []models.Choice) []ChoiceEntryRequest {
	if submitted != nil {
		return submitted
	}
	entries := make([]ChoiceEntryRequest, 0, len(existing))
	for _, c := range existing {
		entries = append(entries, ChoiceEntryRequest{Text: c.Text, IsCorrect: c.IsCorrect})
	}
	return entries
}
