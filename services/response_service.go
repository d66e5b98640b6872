package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"quizhub/logger"
	"quizhub/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ResponseService records answer selections and maintains the per-(user,
// quiz) history aggregate. A nil redis client disables the leaderboard
// cache; reads then come straight from the database.
type ResponseService struct {
	db    *gorm.DB
	redis *redis.Client
	log   *logger.Logger
}

func NewResponseService(db *gorm.DB, redisClient *redis.Client, log *logger.Logger) *ResponseService {
	return &ResponseService{db: db, redis: redisClient, log: log.With("service", "response")}
}

var (
	ErrQuizInactive      = errors.New("quiz is not active")
	ErrQuestionNotInQuiz = errors.New("question does not belong to quiz")
	ErrChoiceNotInQuest  = errors.New("choice does not belong to question")
	ErrDuplicateResponse = errors.New("question already answered")
)

type RecordResponseRequest struct {
	QuestionID uint `json:"question_id" binding:"required"`
	ChoiceID   uint `json:"choice_id" binding:"required"`
}

type LeaderboardEntry struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
}

// RecordResponse writes one immutable response row. The score is awarded at
// recording time: max_score split evenly across nr_of_questions for a
// correct selection, zero otherwise.
func (s *ResponseService) RecordResponse(userID uint, quizID uint, req *RecordResponseRequest) (*models.Response, error) {
	var quiz models.Quiz
	if err := s.db.First(&quiz, quizID).Error; err != nil {
		return nil, err
	}
	if !quiz.Active {
		return nil, ErrQuizInactive
	}

	var question models.Question
	if err := s.db.First(&question, req.QuestionID).Error; err != nil {
		return nil, err
	}
	if question.QuizID != quizID {
		return nil, ErrQuestionNotInQuiz
	}

	var choice models.Choice
	if err := s.db.First(&choice, req.ChoiceID).Error; err != nil {
		return nil, err
	}
	if choice.QuestionID != question.ID {
		return nil, ErrChoiceNotInQuest
	}

	var count int64
	if err := s.db.Model(&models.Response{}).
		Where("user_id = ? AND quiz_id = ? AND question_id = ?", userID, quizID, question.ID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateResponse
	}

	response := models.Response{
		UserID:           userID,
		QuizID:           quizID,
		QuestionID:       question.ID,
		SelectedChoiceID: choice.ID,
		Score:            s.scoreFor(&quiz, choice.IsCorrect),
	}
	if err := s.db.Create(&response).Error; err != nil {
		return nil, err
	}
	return &response, nil
}

// CompleteQuiz is the aggregation step: it sums the caller's response scores
// for the quiz into a UserQuizHistory row, one per (user, quiz), and mirrors
// the total into the redis leaderboard.
func (s *ResponseService) CompleteQuiz(ctx context.Context, userID uint, quizID uint) (*models.UserQuizHistory, error) {
	var quiz models.Quiz
	if err := s.db.First(&quiz, quizID).Error; err != nil {
		return nil, err
	}

	var total int64
	if err := s.db.Model(&models.Response{}).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Select("COALESCE(SUM(score), 0)").
		Scan(&total).Error; err != nil {
		return nil, err
	}

	var history models.UserQuizHistory
	err := s.db.Where("user_id = ? AND quiz_id = ?", userID, quizID).First(&history).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		history = models.UserQuizHistory{UserID: userID, QuizID: quizID, Score: int(total)}
		if err := s.db.Create(&history).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		history.Score = int(total)
		if err := s.db.Save(&history).Error; err != nil {
			return nil, err
		}
	}

	s.cacheLeaderboardScore(ctx, quizID, userID, int(total))
	return &history, nil
}

// GetLeaderboard returns the top history scores for a quiz, highest first.
// The redis sorted set is preferred when populated; the database is the
// source of truth either way.
func (s *ResponseService) GetLeaderboard(ctx context.Context, quizID uint, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	if s.redis != nil {
		entries, err := s.leaderboardFromRedis(ctx, quizID, limit)
		if err == nil && len(entries) > 0 {
			return entries, nil
		}
		if err != nil {
			s.log.Warn("redis leaderboard read failed, falling back to db", "quiz_id", quizID, "error", err)
		}
	}

	return s.leaderboardFromDB(quizID, limit)
}

func (s *ResponseService) scoreFor(quiz *models.Quiz, isCorrect bool) int {
	if !isCorrect || quiz.NrOfQuestions < 1 {
		return 0
	}
	return quiz.MaxScore / quiz.NrOfQuestions
}

func leaderboardKey(quizID uint) string {
	return fmt.Sprintf("quiz:%d:leaderboard", quizID)
}

func (s *ResponseService) cacheLeaderboardScore(ctx context.Context, quizID, userID uint, score int) {
	if s.redis == nil {
		return
	}
	err := s.redis.ZAdd(ctx, leaderboardKey(quizID), redis.Z{
		Score:  float64(score),
		Member: strconv.FormatUint(uint64(userID), 10),
	}).Err()
	if err != nil {
		s.log.Warn("failed to cache leaderboard score", "quiz_id", quizID, "user_id", userID, "error", err)
	}
}

func (s *ResponseService) leaderboardFromRedis(ctx context.Context, quizID uint, limit int) ([]LeaderboardEntry, error) {
	results, err := s.redis.ZRevRangeWithScores(ctx, leaderboardKey(quizID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(results))
	for _, z := range results {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		id, err := strconv.ParseUint(member, 10, 32)
		if err != nil {
			continue
		}
		entry := LeaderboardEntry{UserID: uint(id), Score: int(z.Score)}
		var user models.User
		if err := s.db.First(&user, entry.UserID).Error; err == nil {
			entry.Name = user.Name
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *ResponseService) leaderboardFromDB(quizID uint, limit int) ([]LeaderboardEntry, error) {
	var rows []models.UserQuizHistory
	if err := s.db.Where("quiz_id = ?", quizID).
		Preload("User").
		Order("score DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, LeaderboardEntry{
			UserID: row.UserID,
			Name:   row.User.Name,
			Score:  row.Score,
		})
	}
	return entries, nil
}
