package model

import "time"

type QuizStatus string

const (
	QuizDraft     QuizStatus = "draft"
	QuizPublished QuizStatus = "published"
	QuizArchived  QuizStatus = "archived"
)

type GradingMethod string

const (
	GradeHighest GradingMethod = "highest"
	GradeAverage GradingMethod = "average"
	GradeFirst   GradingMethod = "first"
	GradeLast    GradingMethod = "last"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	ShortAnswer    QuestionType = "short_answer"
	Essay          QuestionType = "essay"
)

// swagger:model Quiz
type Quiz struct {
	UUIDBase
	Title         string        `gorm:"size:255;not null" json:"title"`
	Description   string        `gorm:"type:text" json:"description"`
	TimeLimit     int           `gorm:"default:0" json:"timeLimit"` // Minutes, 0 = untimed
	Attempts      int           `gorm:"default:1" json:"attempts"`  // Max attempts per student
	GradingMethod GradingMethod `gorm:"size:20;default:'highest'" json:"gradingMethod"`
	Status        QuizStatus    `gorm:"size:20;default:'draft';index" json:"status"`
	CreatedBy     uint          `gorm:"index;type:bigint unsigned" json:"createdBy"`
	PublishedAt   *time.Time    `json:"publishedAt,omitempty"`

	Questions []QuizQuestion `gorm:"foreignKey:QuizID;references:ID" json:"questions,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// swagger:model QuizQuestion
type QuizQuestion struct {
	UUIDBase
	QuizID        string       `gorm:"index;type:varchar(36)" json:"quizId"`
	Text          string       `gorm:"type:text;not null" json:"text"`
	QuestionType  QuestionType `gorm:"size:50;not null" json:"questionType"`
	Points        int          `gorm:"default:0" json:"points"`
	CorrectAnswer string       `gorm:"type:text" json:"correctAnswer,omitempty"` // true_false / short_answer
	Order         int          `gorm:"default:0" json:"order"`

	Options []QuizOption `gorm:"foreignKey:QuestionID;references:ID" json:"options,omitempty"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// swagger:model QuizOption
type QuizOption struct {
	UUIDBase
	QuestionID string `gorm:"index;type:varchar(36)" json:"questionId"`
	Text       string `gorm:"type:text;not null" json:"text"`
	IsCorrect  bool   `gorm:"default:false" json:"isCorrect"`
	Order      int    `gorm:"default:0" json:"order"`
}

func (QuizOption) TableName() string {
	return "quiz_options"
}

// MaxScore is the sum of question points, fixed into an attempt at creation.
func (q *Quiz) MaxScore() int {
	total := 0
	for _, question := range q.Questions {
		total += question.Points
	}
	return total
}
