package model

import "time"

type TokenStatus string

const (
	TokenActive    TokenStatus = "active"
	TokenAssigned  TokenStatus = "assigned"
	TokenUsed      TokenStatus = "used"
	TokenExpired   TokenStatus = "expired"
	TokenCancelled TokenStatus = "cancelled"
)

// TestToken is a single-use credential gating access to one quiz.
// Expiry is a computed predicate (IsExpired), not a swept status: the
// stored status only moves through active/assigned -> used/cancelled.
//
// swagger:model TestToken
type TestToken struct {
	UUIDBase
	Token               string      `gorm:"size:8;uniqueIndex;not null" json:"token"`
	QuizID              string      `gorm:"index;type:varchar(36);not null" json:"quizId"`
	TrainerID           uint        `gorm:"index;type:bigint unsigned" json:"trainerId"`
	TrainerName         string      `gorm:"size:100" json:"trainerName"`
	AssignedStudentID   *uint       `gorm:"type:bigint unsigned" json:"assignedStudentId,omitempty"`
	AssignedStudentName string      `gorm:"size:100" json:"assignedStudentName,omitempty"`
	Instructions        string      `gorm:"type:text" json:"instructions,omitempty"`
	Status              TokenStatus `gorm:"size:20;default:'active';index" json:"status"`
	ExpiresAt           time.Time   `json:"expiresAt"`
	UsedAt              *time.Time  `json:"usedAt,omitempty"`
}

func (TestToken) TableName() string {
	return "test_tokens"
}

func (t *TestToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Redeemable statuses; used and cancelled tokens are never redeemable
// again regardless of expiry.
func (t *TestToken) IsConsumed() bool {
	return t.Status == TokenUsed || t.Status == TokenCancelled
}
