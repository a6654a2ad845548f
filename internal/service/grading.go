package service

import (
	"aerocrew_training_backend/internal/model"
	"math"
	"strings"
)

// GradedAnswer is the outcome of auto-grading one answer. Graded is
// false for question types that require a human reviewer; their
// correctness and points stay unset.
type GradedAnswer struct {
	Graded    bool
	IsCorrect bool
	Points    int
}

// GradeAnswer scores one answer against its question. multiple_choice
// answers hold the chosen option id, true_false answers the literal
// "true"/"false" string. short_answer and essay are never auto-graded.
func GradeAnswer(question *model.QuizQuestion, answerText string) GradedAnswer {
	switch question.QuestionType {
	case model.MultipleChoice:
		for _, option := range question.Options {
			if option.IsCorrect {
				if answerText == option.ID {
					return GradedAnswer{Graded: true, IsCorrect: true, Points: question.Points}
				}
				return GradedAnswer{Graded: true, IsCorrect: false, Points: 0}
			}
		}
		// No option flagged correct: authored wrong, nothing to award.
		return GradedAnswer{Graded: true, IsCorrect: false, Points: 0}
	case model.TrueFalse:
		correct := strings.EqualFold(strings.TrimSpace(answerText), strings.TrimSpace(question.CorrectAnswer))
		points := 0
		if correct {
			points = question.Points
		}
		return GradedAnswer{Graded: true, IsCorrect: correct, Points: points}
	default:
		return GradedAnswer{Graded: false}
	}
}

// Percentage rounds score/maxScore to a whole percent, 0 when maxScore is 0.
func Percentage(score, maxScore int) int {
	if maxScore <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(maxScore) * 100))
}

// PassThreshold is the reporting cutoff; passing is score >= 70% of max.
const PassThreshold = 0.7

func Passed(score, maxScore int) bool {
	return float64(score) >= PassThreshold*float64(maxScore)
}

// EffectiveScore folds a student's completed attempt scores into one
// grade according to the quiz's grading method. Attempts must be in
// creation order. Returns false when there is nothing to grade.
func EffectiveScore(method model.GradingMethod, attempts []model.QuizAttempt) (int, bool) {
	if len(attempts) == 0 {
		return 0, false
	}
	switch method {
	case model.GradeFirst:
		return attempts[0].Score, true
	case model.GradeLast:
		return attempts[len(attempts)-1].Score, true
	case model.GradeAverage:
		sum := 0
		for _, a := range attempts {
			sum += a.Score
		}
		return int(math.Round(float64(sum) / float64(len(attempts)))), true
	default: // highest
		best := attempts[0].Score
		for _, a := range attempts[1:] {
			if a.Score > best {
				best = a.Score
			}
		}
		return best, true
	}
}
