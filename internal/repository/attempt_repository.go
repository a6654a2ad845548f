package repository

import (
	"aerocrew_training_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(attempt *model.QuizAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *AttemptRepository) FindByID(id string) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	err := r.DB.Preload("Answers", func(db *gorm.DB) *gorm.DB {
		return db.Order("quiz_answers.created_at asc")
	}).First(&attempt, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *AttemptRepository) FindInProgress(studentID uint, quizID string) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	err := r.DB.Preload("Answers").
		Where("student_id = ? AND quiz_id = ? AND status = ?", studentID, quizID, model.AttemptInProgress).
		First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// CountFinished counts completed and abandoned attempts; in_progress
// attempts do not burn a slot until they terminate.
func (r *AttemptRepository) CountFinished(studentID uint, quizID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.QuizAttempt{}).
		Where("student_id = ? AND quiz_id = ? AND status IN ?", studentID, quizID,
			[]model.AttemptStatus{model.AttemptCompleted, model.AttemptAbandoned}).
		Count(&count).Error
	return count, err
}

// UpsertAnswer replaces the stored answer for (attempt, question) or
// inserts it, and refreshes the attempt's lastSaved stamp.
func (r *AttemptRepository) UpsertAnswer(answer *model.QuizAnswer) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var existing model.QuizAnswer
		err := tx.Where("attempt_id = ? AND question_id = ?", answer.AttemptID, answer.QuestionID).
			First(&existing).Error
		if err != nil && err != gorm.ErrRecordNotFound {
			return err
		}
		if existing.ID == "" {
			if err := tx.Create(answer).Error; err != nil {
				return err
			}
		} else {
			existing.AnswerText = answer.AnswerText
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			*answer = existing
		}
		return tx.Model(&model.QuizAttempt{}).
			Where("id = ?", answer.AttemptID).
			Update("last_saved", time.Now()).Error
	})
}

// CompleteIfInProgress is the submit-race guard: only the caller that
// wins the in_progress -> completed transition gets rowsAffected = 1.
func (r *AttemptRepository) CompleteIfInProgress(id string, score int, endTime time.Time) (bool, error) {
	result := r.DB.Model(&model.QuizAttempt{}).
		Where("id = ? AND status = ?", id, model.AttemptInProgress).
		Updates(map[string]interface{}{
			"status":   model.AttemptCompleted,
			"score":    score,
			"end_time": endTime,
		})
	return result.RowsAffected > 0, result.Error
}

// SaveGradedAnswers writes per-answer grading results.
func (r *AttemptRepository) SaveGradedAnswers(answers []model.QuizAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	return r.DB.Transaction(func(tx *gorm.DB) error {
		for i := range answers {
			if err := tx.Model(&model.QuizAnswer{}).
				Where("id = ?", answers[i].ID).
				Updates(map[string]interface{}{
					"is_correct": answers[i].IsCorrect,
					"points":     answers[i].Points,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *AttemptRepository) ListByStudent(studentID uint, quizID string) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	query := r.DB.Where("student_id = ?", studentID)
	if quizID != "" {
		query = query.Where("quiz_id = ?", quizID)
	}
	err := query.Order("created_at asc").Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) ListCompleted(studentID uint, quizID string) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.Where("student_id = ? AND quiz_id = ? AND status = ?", studentID, quizID, model.AttemptCompleted).
		Order("created_at asc").Find(&attempts).Error
	return attempts, err
}

// ListPendingReview returns completed attempts on the reviewer's quizzes
// that still hold at least one ungraded answer.
func (r *AttemptRepository) ListPendingReview(reviewerID uint, page, limit int) ([]model.QuizAttempt, int64, error) {
	query := r.DB.Model(&model.QuizAttempt{}).
		Joins("JOIN quizzes ON quizzes.id = quiz_attempts.quiz_id").
		Where("quizzes.created_by = ?", reviewerID).
		Where("quiz_attempts.status = ?", model.AttemptCompleted).
		Where("EXISTS (SELECT 1 FROM quiz_answers WHERE quiz_answers.attempt_id = quiz_attempts.id AND quiz_answers.is_correct IS NULL)")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var attempts []model.QuizAttempt
	offset := (page - 1) * limit
	err := query.Preload("Answers").
		Order("quiz_attempts.end_time asc").
		Offset(offset).Limit(limit).
		Find(&attempts).Error
	return attempts, total, err
}

func (r *AttemptRepository) UpdateScore(id string, score int) error {
	return r.DB.Model(&model.QuizAttempt{}).
		Where("id = ?", id).
		Update("score", score).Error
}

// OpenTimedAttempt pairs an in_progress attempt with its quiz's time limit.
type OpenTimedAttempt struct {
	model.QuizAttempt
	TimeLimit int `gorm:"column:time_limit"`
}

// ListOpenTimed returns in_progress attempts on timed quizzes, for the
// expiry sweep. Deadline filtering happens in the service.
func (r *AttemptRepository) ListOpenTimed() ([]OpenTimedAttempt, error) {
	var rows []OpenTimedAttempt
	err := r.DB.Table("quiz_attempts").
		Select("quiz_attempts.*, quizzes.time_limit").
		Joins("JOIN quizzes ON quizzes.id = quiz_attempts.quiz_id").
		Where("quiz_attempts.status = ?", model.AttemptInProgress).
		Where("quizzes.time_limit > 0").
		Where("quiz_attempts.deleted_at IS NULL").
		Scan(&rows).Error
	return rows, err
}
