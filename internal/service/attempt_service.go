package service

import (
	"aerocrew_training_backend/internal/model"
	"aerocrew_training_backend/internal/util"
	"aerocrew_training_backend/pkg/logger"
	"aerocrew_training_backend/pkg/monitoring"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AttemptService drives the lifecycle of one student's run through a
// quiz: eager creation, answer autosave, explicit or timer-driven
// submission, and grading.
type AttemptService struct {
	Attempts AttemptStore
	Quizzes  QuizStore
	Tokens   *TokenService
	Notifier Notifier

	// SweepGrace pads the server-side deadline so a client submit that
	// fires exactly at the limit wins over the sweep.
	SweepGrace time.Duration
}

func NewAttemptService(attempts AttemptStore, quizzes QuizStore, tokens *TokenService, notifier Notifier, sweepGrace time.Duration) *AttemptService {
	return &AttemptService{
		Attempts:   attempts,
		Quizzes:    quizzes,
		Tokens:     tokens,
		Notifier:   notifier,
		SweepGrace: sweepGrace,
	}
}

// Start opens an attempt. A student holds at most one in_progress
// attempt per quiz; re-entering the quiz returns the open one. The
// attempts cap counts only terminated (completed/abandoned) attempts.
func (s *AttemptService) Start(studentID uint, studentName, quizID, tokenID string) (*model.QuizAttempt, error) {
	quiz, err := s.Quizzes.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if quiz.Status != model.QuizPublished {
		return nil, util.ErrQuizNotPublished
	}

	if existing, err := s.Attempts.FindInProgress(studentID, quizID); err == nil {
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if quiz.Attempts > 0 {
		taken, err := s.Attempts.CountFinished(studentID, quizID)
		if err != nil {
			return nil, err
		}
		if taken >= int64(quiz.Attempts) {
			return nil, util.ErrAttemptLimitExceeded
		}
	}

	attempt := &model.QuizAttempt{
		QuizID:      quizID,
		StudentID:   studentID,
		StudentName: studentName,
		TokenID:     tokenID,
		StartTime:   time.Now(),
		Status:      model.AttemptInProgress,
		MaxScore:    quiz.MaxScore(),
	}
	if err := s.Attempts.Create(attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

// SaveAnswer upserts one answer by question id and stamps lastSaved.
// Autosave is advisory: no grading happens here.
func (s *AttemptService) SaveAnswer(studentID uint, attemptID, questionID, answerText string) (*model.QuizAnswer, error) {
	attempt, err := s.Attempts.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	if attempt.StudentID != studentID {
		return nil, util.ErrAttemptForbidden
	}
	if attempt.Status != model.AttemptInProgress {
		return nil, util.ErrAttemptAlreadySubmitted
	}

	answer := &model.QuizAnswer{
		AttemptID:  attemptID,
		QuestionID: questionID,
		AnswerText: answerText,
	}
	if err := s.Attempts.UpsertAnswer(answer); err != nil {
		return nil, err
	}
	return answer, nil
}

// Submit grades the attempt and completes it. Idempotent under racing
// triggers (explicit finish vs. timer expiry): the loser of the
// in_progress -> completed transition observes the completed attempt
// and skips re-grading and token consumption.
func (s *AttemptService) Submit(studentID uint, attemptID string) (*model.QuizAttempt, error) {
	attempt, err := s.Attempts.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	if attempt.StudentID != studentID {
		return nil, util.ErrAttemptForbidden
	}
	if attempt.Status == model.AttemptCompleted {
		return attempt, nil
	}
	if attempt.Status != model.AttemptInProgress {
		return nil, util.ErrAttemptAlreadySubmitted
	}
	return s.finalize(attempt, "manual")
}

// finalize grades and persists a completion. trigger labels the metrics
// series: "manual" for a client submit, "sweep" for server expiry.
func (s *AttemptService) finalize(attempt *model.QuizAttempt, trigger string) (*model.QuizAttempt, error) {
	quiz, err := s.Quizzes.FindByID(attempt.QuizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}

	questions := make(map[string]*model.QuizQuestion, len(quiz.Questions))
	for i := range quiz.Questions {
		questions[quiz.Questions[i].ID] = &quiz.Questions[i]
	}

	score := 0
	needsReview := false
	graded := make([]model.QuizAnswer, 0, len(attempt.Answers))
	for i := range attempt.Answers {
		answer := attempt.Answers[i]
		question, ok := questions[answer.QuestionID]
		if !ok {
			continue
		}
		result := GradeAnswer(question, answer.AnswerText)
		if !result.Graded {
			needsReview = true
			continue
		}
		correct := result.IsCorrect
		points := result.Points
		answer.IsCorrect = &correct
		answer.Points = &points
		score += points
		graded = append(graded, answer)
	}
	if score > attempt.MaxScore {
		score = attempt.MaxScore
	}

	now := time.Now()
	won, err := s.Attempts.CompleteIfInProgress(attempt.ID, score, now)
	if err != nil {
		return nil, err
	}
	if !won {
		// Lost the race against the other trigger; hand back whatever
		// the winner wrote.
		return s.Attempts.FindByID(attempt.ID)
	}

	if err := s.Attempts.SaveGradedAnswers(graded); err != nil {
		logger.Log.Error("failed to persist graded answers",
			zap.String("attemptId", attempt.ID), zap.Error(err))
	}

	if attempt.TokenID != "" {
		if err := s.Tokens.MarkUsed(attempt.TokenID); err != nil {
			logger.Log.Error("failed to mark token used",
				zap.String("tokenId", attempt.TokenID), zap.Error(err))
		}
	}

	if needsReview && s.Notifier != nil {
		s.Notifier.Notify(quiz.CreatedBy, fmt.Sprintf(
			"Submission from %s on quiz %q is awaiting manual review", attempt.StudentName, quiz.Title))
	}

	monitoring.AttemptsCompleted.WithLabelValues(trigger).Inc()

	attempt.Status = model.AttemptCompleted
	attempt.Score = score
	attempt.EndTime = &now
	return attempt, nil
}

// AttemptDetail feeds the attempt screen, including the countdown.
// RemainingSeconds is -1 for untimed quizzes.
type AttemptDetail struct {
	*model.QuizAttempt
	RemainingSeconds int  `json:"remainingSeconds"`
	Percentage       int  `json:"percentage"`
	Passed           bool `json:"passed"`
}

func (s *AttemptService) Get(studentID uint, attemptID string) (*AttemptDetail, error) {
	attempt, err := s.Attempts.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	if attempt.StudentID != studentID {
		return nil, util.ErrAttemptForbidden
	}

	quiz, err := s.Quizzes.FindByID(attempt.QuizID)
	if err != nil {
		return nil, err
	}

	detail := &AttemptDetail{
		QuizAttempt:      attempt,
		RemainingSeconds: -1,
		Percentage:       Percentage(attempt.Score, attempt.MaxScore),
		Passed:           Passed(attempt.Score, attempt.MaxScore),
	}
	if quiz.TimeLimit > 0 && attempt.Status == model.AttemptInProgress {
		remaining := int(time.Until(attempt.StartTime.Add(time.Duration(quiz.TimeLimit) * time.Minute)).Seconds())
		if remaining < 0 {
			remaining = 0
		}
		detail.RemainingSeconds = remaining
	}
	return detail, nil
}

func (s *AttemptService) ListByStudent(studentID uint, quizID string) ([]model.QuizAttempt, error) {
	return s.Attempts.ListByStudent(studentID, quizID)
}

// QuizResult reports a student's effective grade on a quiz after
// folding attempts by the quiz's grading method.
type QuizResult struct {
	QuizID     string `json:"quizId"`
	Attempts   int    `json:"attempts"`
	Score      int    `json:"score"`
	MaxScore   int    `json:"maxScore"`
	Percentage int    `json:"percentage"`
	Passed     bool   `json:"passed"`
}

func (s *AttemptService) Result(studentID uint, quizID string) (*QuizResult, error) {
	quiz, err := s.Quizzes.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	attempts, err := s.Attempts.ListCompleted(studentID, quizID)
	if err != nil {
		return nil, err
	}
	score, ok := EffectiveScore(quiz.GradingMethod, attempts)
	if !ok {
		return nil, util.ErrAttemptNotFound
	}
	maxScore := quiz.MaxScore()
	return &QuizResult{
		QuizID:     quizID,
		Attempts:   len(attempts),
		Score:      score,
		MaxScore:   maxScore,
		Percentage: Percentage(score, maxScore),
		Passed:     Passed(score, maxScore),
	}, nil
}

// ListPendingReview pages through completed attempts on the reviewer's
// quizzes that still hold ungraded short_answer/essay answers.
func (s *AttemptService) ListPendingReview(reviewerID uint, page, limit int) ([]model.QuizAttempt, int64, error) {
	return s.Attempts.ListPendingReview(reviewerID, page, limit)
}

// AmendAnswer lets the quiz owner grade or re-grade one answer on a
// completed attempt. Points are clamped to the question's value and the
// attempt score is re-derived from all graded answers, capped at
// maxScore.
func (s *AttemptService) AmendAnswer(reviewerID uint, attemptID, answerID string, isCorrect bool, points int) (*model.QuizAttempt, error) {
	attempt, err := s.Attempts.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	if attempt.Status != model.AttemptCompleted {
		return nil, util.ErrAttemptNotCompleted
	}

	quiz, err := s.Quizzes.FindByID(attempt.QuizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if quiz.CreatedBy != reviewerID {
		return nil, util.ErrPermissionDenied
	}

	var target *model.QuizAnswer
	for i := range attempt.Answers {
		if attempt.Answers[i].ID == answerID {
			target = &attempt.Answers[i]
			break
		}
	}
	if target == nil {
		return nil, util.ErrAnswerNotFound
	}

	if points < 0 {
		points = 0
	}
	for i := range quiz.Questions {
		if quiz.Questions[i].ID == target.QuestionID && points > quiz.Questions[i].Points {
			points = quiz.Questions[i].Points
		}
	}

	correct := isCorrect
	target.IsCorrect = &correct
	target.Points = &points
	if err := s.Attempts.SaveGradedAnswers([]model.QuizAnswer{*target}); err != nil {
		return nil, err
	}

	score := 0
	for i := range attempt.Answers {
		if attempt.Answers[i].Points != nil {
			score += *attempt.Answers[i].Points
		}
	}
	if score > attempt.MaxScore {
		score = attempt.MaxScore
	}
	if err := s.Attempts.UpdateScore(attempt.ID, score); err != nil {
		return nil, err
	}
	attempt.Score = score
	return attempt, nil
}

// SweepExpired auto-submits in_progress attempts whose time limit has
// elapsed, with whatever answers were last saved. This is the
// server-owned backstop for clients that disconnect before their
// countdown fires.
func (s *AttemptService) SweepExpired() (int, error) {
	rows, err := s.Attempts.ListOpenTimed()
	if err != nil {
		return 0, err
	}

	now := time.Now()
	swept := 0
	for _, row := range rows {
		deadline := row.StartTime.Add(time.Duration(row.TimeLimit)*time.Minute + s.SweepGrace)
		if now.Before(deadline) {
			continue
		}
		attempt, err := s.Attempts.FindByID(row.ID)
		if err != nil {
			continue
		}
		if attempt.Status != model.AttemptInProgress {
			continue
		}
		if _, err := s.finalize(attempt, "sweep"); err != nil {
			logger.Log.Error("expiry sweep failed to finalize attempt",
				zap.String("attemptId", attempt.ID), zap.Error(err))
			continue
		}
		swept++
	}
	return swept, nil
}
