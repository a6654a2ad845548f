package service

import (
	"aerocrew_training_backend/internal/model"
	"aerocrew_training_backend/internal/repository"
	"aerocrew_training_backend/internal/util"
	"aerocrew_training_backend/pkg/logger"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const quizCacheKeyPrefix = "quiz:detail:"

// QuizService manages quiz authoring and the published-quiz read path.
// Published quiz details are cached in redis; the attempt screen hits
// them on every open.
type QuizService struct {
	Repo     *repository.QuizRepository
	Redis    *redis.Client
	CacheTTL time.Duration
}

func NewQuizService(repo *repository.QuizRepository, rdb *redis.Client, cacheTTL time.Duration) *QuizService {
	return &QuizService{Repo: repo, Redis: rdb, CacheTTL: cacheTTL}
}

type QuizOptionReq struct {
	Text      string `json:"text" binding:"required"`
	IsCorrect bool   `json:"isCorrect"`
	Order     int    `json:"order"`
}

type QuizQuestionReq struct {
	Text          string             `json:"text" binding:"required"`
	QuestionType  model.QuestionType `json:"questionType" binding:"required"`
	Points        int                `json:"points" binding:"min=0"`
	CorrectAnswer string             `json:"correctAnswer"`
	Order         int                `json:"order"`
	Options       []QuizOptionReq    `json:"options"`
}

type QuizReq struct {
	Title         *string              `json:"title"`
	Description   *string              `json:"description"`
	TimeLimit     *int                 `json:"timeLimit"`
	Attempts      *int                 `json:"attempts"`
	GradingMethod *model.GradingMethod `json:"gradingMethod"`
	Questions     *[]QuizQuestionReq   `json:"questions"`
}

func buildQuestions(reqs []QuizQuestionReq) []model.QuizQuestion {
	questions := make([]model.QuizQuestion, 0, len(reqs))
	for _, qReq := range reqs {
		q := model.QuizQuestion{
			Text:          qReq.Text,
			QuestionType:  qReq.QuestionType,
			Points:        qReq.Points,
			CorrectAnswer: qReq.CorrectAnswer,
			Order:         qReq.Order,
		}
		for _, oReq := range qReq.Options {
			q.Options = append(q.Options, model.QuizOption{
				Text:      oReq.Text,
				IsCorrect: oReq.IsCorrect,
				Order:     oReq.Order,
			})
		}
		questions = append(questions, q)
	}
	return questions
}

func (s *QuizService) CreateQuiz(creatorID uint, req QuizReq) (*model.Quiz, error) {
	if req.Title == nil || *req.Title == "" {
		return nil, errors.New("title is required")
	}

	quiz := &model.Quiz{
		Title:     *req.Title,
		Status:    model.QuizDraft,
		CreatedBy: creatorID,
		Attempts:  1,
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}
	if req.TimeLimit != nil {
		quiz.TimeLimit = *req.TimeLimit
	}
	if req.Attempts != nil {
		quiz.Attempts = *req.Attempts
	}
	if req.GradingMethod != nil {
		quiz.GradingMethod = *req.GradingMethod
	}
	if req.Questions != nil {
		quiz.Questions = buildQuestions(*req.Questions)
	}

	if err := s.Repo.Create(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *QuizService) UpdateQuiz(quizID string, req QuizReq) (*model.Quiz, error) {
	quiz, err := s.Repo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}

	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}
	if req.TimeLimit != nil {
		quiz.TimeLimit = *req.TimeLimit
	}
	if req.Attempts != nil {
		quiz.Attempts = *req.Attempts
	}
	if req.GradingMethod != nil {
		quiz.GradingMethod = *req.GradingMethod
	}
	if err := s.Repo.Update(quiz); err != nil {
		return nil, err
	}

	if req.Questions != nil {
		if err := s.Repo.ReplaceQuestions(quizID, buildQuestions(*req.Questions)); err != nil {
			return nil, err
		}
	}

	s.invalidateCache(quizID)
	return s.Repo.FindByID(quizID)
}

// SetStatus moves a quiz through draft -> published -> archived.
func (s *QuizService) SetStatus(quizID string, status model.QuizStatus) (*model.Quiz, error) {
	quiz, err := s.Repo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	quiz.Status = status
	if status == model.QuizPublished && quiz.PublishedAt == nil {
		now := time.Now()
		quiz.PublishedAt = &now
	}
	if err := s.Repo.Update(quiz); err != nil {
		return nil, err
	}
	s.invalidateCache(quizID)
	return quiz, nil
}

func (s *QuizService) GetQuiz(quizID string) (*model.Quiz, error) {
	if s.Redis != nil {
		ctx := context.Background()
		if val, err := s.Redis.Get(ctx, quizCacheKeyPrefix+quizID).Result(); err == nil {
			var quiz model.Quiz
			if err := json.Unmarshal([]byte(val), &quiz); err == nil {
				return &quiz, nil
			}
		}
	}

	quiz, err := s.Repo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}

	if s.Redis != nil && quiz.Status == model.QuizPublished {
		if data, err := json.Marshal(quiz); err == nil {
			if err := s.Redis.Set(context.Background(), quizCacheKeyPrefix+quizID, data, s.CacheTTL).Err(); err != nil {
				logger.Log.Warn("failed to cache quiz detail", zap.String("quizId", quizID), zap.Error(err))
			}
		}
	}
	return quiz, nil
}

// FindByID satisfies the QuizStore interface consumed by the engine
// services, going through the cache.
func (s *QuizService) FindByID(id string) (*model.Quiz, error) {
	quiz, err := s.GetQuiz(id)
	if errors.Is(err, util.ErrQuizNotFound) {
		return nil, gorm.ErrRecordNotFound
	}
	return quiz, err
}

func (s *QuizService) ListQuizzes(page, limit int, status model.QuizStatus) ([]model.Quiz, int64, error) {
	return s.Repo.List(page, limit, status)
}

func (s *QuizService) DeleteQuiz(quizID string) error {
	if err := s.Repo.Delete(quizID); err != nil {
		return err
	}
	s.invalidateCache(quizID)
	return nil
}

func (s *QuizService) invalidateCache(quizID string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(context.Background(), quizCacheKeyPrefix+quizID).Err(); err != nil {
		logger.Log.Warn("failed to invalidate quiz cache", zap.String("quizId", quizID), zap.Error(err))
	}
}
