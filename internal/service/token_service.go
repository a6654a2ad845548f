package service

import (
	"aerocrew_training_backend/internal/model"
	"aerocrew_training_backend/internal/util"
	"aerocrew_training_backend/pkg/monitoring"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"gorm.io/gorm"
)

// TokenService issues, validates and retires the single-use test
// tokens that gate quiz access.
type TokenService struct {
	Tokens  TokenStore
	Quizzes QuizStore
}

func NewTokenService(tokens TokenStore, quizzes QuizStore) *TokenService {
	return &TokenService{Tokens: tokens, Quizzes: quizzes}
}

const tokenCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const tokenLength = 8

// GenerateTokenString draws 8 characters from a 36-symbol alphabet;
// collisions in a 36^8 space are accepted as negligible.
func GenerateTokenString() (string, error) {
	buf := make([]byte, tokenLength)
	max := big.NewInt(int64(len(tokenCharset)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = tokenCharset[n.Int64()]
	}
	return string(buf), nil
}

type IssueTokenRequest struct {
	QuizID              string `json:"quizId" binding:"required"`
	ExpirationHours     int    `json:"expirationHours" binding:"required,min=1"`
	Instructions        string `json:"instructions"`
	AssignedStudentID   *uint  `json:"assignedStudentId"`
	AssignedStudentName string `json:"assignedStudentName"`
}

// Issue creates a token bound to a published quiz. Binding a student at
// issue time starts the token in the assigned state.
func (s *TokenService) Issue(trainerID uint, trainerName string, req IssueTokenRequest) (*model.TestToken, error) {
	quiz, err := s.Quizzes.FindByID(req.QuizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if quiz.Status != model.QuizPublished {
		return nil, util.ErrQuizNotPublished
	}

	tokenString, err := GenerateTokenString()
	if err != nil {
		return nil, err
	}

	token := &model.TestToken{
		Token:        tokenString,
		QuizID:       quiz.ID,
		TrainerID:    trainerID,
		TrainerName:  trainerName,
		Instructions: req.Instructions,
		Status:       model.TokenActive,
		ExpiresAt:    time.Now().Add(time.Duration(req.ExpirationHours) * time.Hour),
	}
	if req.AssignedStudentName != "" {
		token.AssignedStudentID = req.AssignedStudentID
		token.AssignedStudentName = req.AssignedStudentName
		token.Status = model.TokenAssigned
	}

	if err := s.Tokens.Create(token); err != nil {
		return nil, err
	}
	monitoring.TokensIssued.Inc()
	return token, nil
}

// Assign binds an active token to one student.
func (s *TokenService) Assign(tokenID string, studentID uint, studentName string) (*model.TestToken, error) {
	token, err := s.Tokens.FindByID(tokenID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTokenNotFound
		}
		return nil, err
	}
	if token.Status != model.TokenActive {
		return nil, util.ErrInvalidTokenState
	}

	token.AssignedStudentID = &studentID
	token.AssignedStudentName = studentName
	token.Status = model.TokenAssigned
	if err := s.Tokens.Update(token); err != nil {
		return nil, err
	}
	return token, nil
}

// RedeemResult bundles the validated token with its quiz, questions
// included, ready for the attempt UI.
type RedeemResult struct {
	Token *model.TestToken `json:"token"`
	Quiz  *model.Quiz      `json:"quiz"`
}

// Redeem validates a token string for a student. Redeeming does not
// consume the token; consumption is finalized at attempt submission so
// an abandoned session leaves the token redeemable.
func (s *TokenService) Redeem(tokenString string, studentID uint, studentName string) (*RedeemResult, error) {
	token, err := s.Tokens.FindByToken(tokenString)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTokenNotFound
		}
		return nil, err
	}

	// Used/cancelled wins over expiry: a consumed token is never
	// redeemable again regardless of its clock state.
	if token.IsConsumed() {
		return nil, util.ErrTokenAlreadyUsed
	}
	if token.IsExpired(time.Now()) {
		return nil, util.ErrTokenExpired
	}
	if token.AssignedStudentName != "" && token.AssignedStudentName != studentName {
		return nil, util.ErrTokenForbidden
	}
	if token.AssignedStudentID != nil && *token.AssignedStudentID != studentID {
		return nil, util.ErrTokenForbidden
	}

	quiz, err := s.Quizzes.FindByID(token.QuizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if quiz.Status != model.QuizPublished {
		return nil, util.ErrQuizNotPublished
	}

	return &RedeemResult{Token: token, Quiz: quiz}, nil
}

// MarkUsed finalizes consumption. Safe to call twice; the second call
// is a no-op.
func (s *TokenService) MarkUsed(tokenID string) error {
	return s.Tokens.MarkUsed(tokenID, time.Now())
}

// Cancel retires a token that has not been consumed yet.
func (s *TokenService) Cancel(tokenID string) (*model.TestToken, error) {
	token, err := s.Tokens.FindByID(tokenID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTokenNotFound
		}
		return nil, err
	}
	if token.Status == model.TokenUsed {
		return nil, util.ErrInvalidTokenState
	}
	token.Status = model.TokenCancelled
	if err := s.Tokens.Update(token); err != nil {
		return nil, err
	}
	return token, nil
}

func (s *TokenService) ListByTrainer(trainerID uint, page, limit int) ([]model.TestToken, int64, error) {
	return s.Tokens.ListByTrainer(trainerID, page, limit)
}
