package service

import (
	"aerocrew_training_backend/internal/model"
	"aerocrew_training_backend/internal/repository"
	"time"
)

// The engine services talk to persistence through these narrow store
// interfaces; the gorm repositories satisfy them, and the service tests
// substitute in-memory fakes.

type QuizStore interface {
	FindByID(id string) (*model.Quiz, error)
}

type TokenStore interface {
	Create(token *model.TestToken) error
	FindByID(id string) (*model.TestToken, error)
	FindByToken(tokenString string) (*model.TestToken, error)
	Update(token *model.TestToken) error
	MarkUsed(id string, usedAt time.Time) error
	ListByTrainer(trainerID uint, page, limit int) ([]model.TestToken, int64, error)
}

type AttemptStore interface {
	Create(attempt *model.QuizAttempt) error
	FindByID(id string) (*model.QuizAttempt, error)
	FindInProgress(studentID uint, quizID string) (*model.QuizAttempt, error)
	CountFinished(studentID uint, quizID string) (int64, error)
	UpsertAnswer(answer *model.QuizAnswer) error
	CompleteIfInProgress(id string, score int, endTime time.Time) (bool, error)
	SaveGradedAnswers(answers []model.QuizAnswer) error
	ListByStudent(studentID uint, quizID string) ([]model.QuizAttempt, error)
	ListCompleted(studentID uint, quizID string) ([]model.QuizAttempt, error)
	ListOpenTimed() ([]repository.OpenTimedAttempt, error)
	ListPendingReview(reviewerID uint, page, limit int) ([]model.QuizAttempt, int64, error)
	UpdateScore(id string, score int) error
}

type ExamRequestStore interface {
	Create(req *model.ExamRequest) error
	FindByID(id string) (*model.ExamRequest, error)
	ListPending() ([]model.ExamRequest, error)
	List(status model.RequestStatus, staffID uint, page, limit int) ([]model.ExamRequest, int64, error)
	Update(req *model.ExamRequest) error
	AssignIfPending(id string, staffID uint, staffName string) (bool, error)
}

type TrainingRequestStore interface {
	Create(req *model.TrainingRequest) error
	FindByID(id string) (*model.TrainingRequest, error)
	ListPending() ([]model.TrainingRequest, error)
	List(status model.RequestStatus, staffID uint, page, limit int) ([]model.TrainingRequest, int64, error)
	Update(req *model.TrainingRequest) error
	AssignIfPending(id string, staffID uint, staffName string) (bool, error)
}

type StaffStore interface {
	FindByID(id uint) (*model.Staff, error)
	FindByUserID(userID uint) (*model.Staff, error)
	ListByRole(role model.StaffRole) ([]model.Staff, error)
	Update(staff *model.Staff) error
	IncrementAssignments(id uint, delta int) error
}

// Notifier delivers a short message to a staff member's user account.
// Implementations are fire-and-forget; delivery failure never blocks
// the engine.
type Notifier interface {
	Notify(userID uint, message string)
}
