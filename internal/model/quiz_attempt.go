package model

import "time"

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCompleted  AttemptStatus = "completed"
	AttemptAbandoned  AttemptStatus = "abandoned"
)

// swagger:model QuizAttempt
type QuizAttempt struct {
	UUIDBase
	QuizID      string        `gorm:"index;type:varchar(36);not null" json:"quizId"`
	StudentID   uint          `gorm:"index;type:bigint unsigned" json:"studentId"`
	StudentName string        `gorm:"size:100" json:"studentName"`
	TokenID     string        `gorm:"type:varchar(36)" json:"tokenId,omitempty"`
	StartTime   time.Time     `json:"startTime"`
	EndTime     *time.Time    `json:"endTime,omitempty"`
	Status      AttemptStatus `gorm:"size:20;default:'in_progress';index" json:"status"`
	Score       int           `gorm:"default:0" json:"score"`
	MaxScore    int           `gorm:"default:0" json:"maxScore"`
	LastSaved   *time.Time    `json:"lastSaved,omitempty"`

	Answers []QuizAnswer `gorm:"foreignKey:AttemptID;references:ID" json:"answers,omitempty"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// swagger:model QuizAnswer
type QuizAnswer struct {
	UUIDBase
	AttemptID  string `gorm:"uniqueIndex:idx_attempt_question;type:varchar(36);not null" json:"attemptId"`
	QuestionID string `gorm:"uniqueIndex:idx_attempt_question;type:varchar(36);not null" json:"questionId"`
	AnswerText string `gorm:"type:text" json:"answerText"`
	// Populated only after grading. Nil means not auto-gradable (or not
	// yet graded by a reviewer).
	IsCorrect *bool `json:"isCorrect,omitempty"`
	Points    *int  `json:"points,omitempty"`
}

func (QuizAnswer) TableName() string {
	return "quiz_answers"
}
