package service

import (
	"aerocrew_training_backend/internal/model"
	"aerocrew_training_backend/internal/util"
	"aerocrew_training_backend/pkg/logger"
	"errors"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

// gradedQuiz has a 10-point multiple choice question (opt-a correct)
// and a 5-point true/false question (correct answer "true").
func gradedQuiz(id string, timeLimit int) *model.Quiz {
	quiz := &model.Quiz{
		Title:     "Cold Weather Ops",
		Status:    model.QuizPublished,
		TimeLimit: timeLimit,
		Attempts:  2,
		CreatedBy: 9,
	}
	quiz.ID = id

	mc := model.QuizQuestion{
		QuizID:       id,
		QuestionType: model.MultipleChoice,
		Points:       10,
	}
	mc.ID = "q-mc"
	mc.Options = []model.QuizOption{
		{UUIDBase: model.UUIDBase{ID: "opt-a"}, IsCorrect: true},
		{UUIDBase: model.UUIDBase{ID: "opt-b"}},
	}

	tf := model.QuizQuestion{
		QuizID:        id,
		QuestionType:  model.TrueFalse,
		Points:        5,
		CorrectAnswer: "true",
	}
	tf.ID = "q-tf"

	quiz.Questions = []model.QuizQuestion{mc, tf}
	return quiz
}

func newAttemptFixture(quiz *model.Quiz) (*AttemptService, *fakeAttemptStore, *fakeTokenStore) {
	quizzes := newFakeQuizStore(quiz)
	attempts := newFakeAttemptStore(quizzes)
	tokens := newFakeTokenStore()
	tokenSvc := NewTokenService(tokens, quizzes)
	svc := NewAttemptService(attempts, quizzes, tokenSvc, &recordingNotifier{}, 0)
	return svc, attempts, tokens
}

func TestStartReturnsExistingInProgress(t *testing.T) {
	svc, _, _ := newAttemptFixture(gradedQuiz("quiz-1", 0))

	first, err := svc.Start(42, "FO Tanaka", "quiz-1", "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	second, err := svc.Start(42, "FO Tanaka", "quiz-1", "")
	if err != nil {
		t.Fatalf("re-entrant Start: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("re-entering the quiz opened attempt %q, want existing %q", second.ID, first.ID)
	}
}

func TestStartEnforcesAttemptCap(t *testing.T) {
	svc, _, _ := newAttemptFixture(gradedQuiz("quiz-1", 0))

	for i := 0; i < 2; i++ {
		attempt, err := svc.Start(42, "FO Tanaka", "quiz-1", "")
		if err != nil {
			t.Fatalf("Start %d: %v", i, err)
		}
		if _, err := svc.Submit(42, attempt.ID); err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
	}

	if _, err := svc.Start(42, "FO Tanaka", "quiz-1", ""); !errors.Is(err, util.ErrAttemptLimitExceeded) {
		t.Fatalf("got %v, want ErrAttemptLimitExceeded", err)
	}
}

func TestStartRejectsUnpublishedQuiz(t *testing.T) {
	quiz := gradedQuiz("quiz-1", 0)
	quiz.Status = model.QuizArchived
	svc, _, _ := newAttemptFixture(quiz)

	if _, err := svc.Start(42, "FO Tanaka", "quiz-1", ""); !errors.Is(err, util.ErrQuizNotPublished) {
		t.Fatalf("got %v, want ErrQuizNotPublished", err)
	}
}

func TestSubmitGradesAndConsumesToken(t *testing.T) {
	quiz := gradedQuiz("quiz-1", 0)
	svc, _, tokens := newAttemptFixture(quiz)

	token, err := svc.Tokens.Issue(1, "Capt. Reyes", IssueTokenRequest{QuizID: "quiz-1", ExpirationHours: 24})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	attempt, err := svc.Start(42, "FO Tanaka", "quiz-1", token.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Right on the multiple choice, wrong on true/false: 10 of 15.
	if _, err := svc.SaveAnswer(42, attempt.ID, "q-mc", "opt-a"); err != nil {
		t.Fatalf("SaveAnswer mc: %v", err)
	}
	if _, err := svc.SaveAnswer(42, attempt.ID, "q-tf", "false"); err != nil {
		t.Fatalf("SaveAnswer tf: %v", err)
	}

	submitted, err := svc.Submit(42, attempt.ID)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if submitted.Score != 10 || submitted.MaxScore != 15 {
		t.Errorf("score %d/%d, want 10/15", submitted.Score, submitted.MaxScore)
	}

	detail, err := svc.Get(42, attempt.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if detail.Percentage != 67 {
		t.Errorf("percentage = %d, want 67", detail.Percentage)
	}
	if detail.Passed {
		t.Error("67%% should not pass the 70%% line")
	}

	stored, _ := tokens.FindByID(token.ID)
	if stored.Status != model.TokenUsed {
		t.Errorf("token status = %q, want used after submission", stored.Status)
	}
}

func TestSubmitIdempotent(t *testing.T) {
	svc, _, _ := newAttemptFixture(gradedQuiz("quiz-1", 0))

	attempt, err := svc.Start(42, "FO Tanaka", "quiz-1", "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.SaveAnswer(42, attempt.ID, "q-tf", "true"); err != nil {
		t.Fatalf("SaveAnswer: %v", err)
	}

	first, err := svc.Submit(42, attempt.ID)
	if err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	second, err := svc.Submit(42, attempt.ID)
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	if second.Score != first.Score || second.Status != model.AttemptCompleted {
		t.Errorf("second submit changed the outcome: %d/%s vs %d", second.Score, second.Status, first.Score)
	}
	if !second.EndTime.Equal(*first.EndTime) {
		t.Error("second submit moved the end time")
	}
}

func TestSaveAnswerAfterSubmissionRejected(t *testing.T) {
	svc, _, _ := newAttemptFixture(gradedQuiz("quiz-1", 0))

	attempt, _ := svc.Start(42, "FO Tanaka", "quiz-1", "")
	if _, err := svc.Submit(42, attempt.ID); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if _, err := svc.SaveAnswer(42, attempt.ID, "q-mc", "opt-a"); !errors.Is(err, util.ErrAttemptAlreadySubmitted) {
		t.Fatalf("got %v, want ErrAttemptAlreadySubmitted", err)
	}
}

func TestSaveAnswerOwnershipEnforced(t *testing.T) {
	svc, _, _ := newAttemptFixture(gradedQuiz("quiz-1", 0))

	attempt, _ := svc.Start(42, "FO Tanaka", "quiz-1", "")
	if _, err := svc.SaveAnswer(7, attempt.ID, "q-mc", "opt-a"); !errors.Is(err, util.ErrAttemptForbidden) {
		t.Fatalf("got %v, want ErrAttemptForbidden", err)
	}
}

func TestSweepExpiredAutoSubmits(t *testing.T) {
	quiz := gradedQuiz("quiz-1", 30)
	svc, attempts, _ := newAttemptFixture(quiz)

	overdue, _ := svc.Start(42, "FO Tanaka", "quiz-1", "")
	if _, err := svc.SaveAnswer(42, overdue.ID, "q-mc", "opt-a"); err != nil {
		t.Fatalf("SaveAnswer: %v", err)
	}
	fresh, _ := svc.Start(7, "FO Okafor", "quiz-1", "")

	// Backdate only the first attempt past its 30 minute limit.
	attempts.mu.Lock()
	attempts.find(overdue.ID).StartTime = time.Now().Add(-31 * time.Minute)
	attempts.mu.Unlock()

	swept, err := svc.SweepExpired()
	if err != nil {
		t.Fatalf("SweepExpired: %v", err)
	}
	if swept != 1 {
		t.Fatalf("swept %d attempts, want 1", swept)
	}

	sweptAttempt, _ := attempts.FindByID(overdue.ID)
	if sweptAttempt.Status != model.AttemptCompleted {
		t.Errorf("overdue attempt status = %q, want completed", sweptAttempt.Status)
	}
	if sweptAttempt.Score != 10 {
		t.Errorf("sweep graded score %d, want 10 from the saved answers", sweptAttempt.Score)
	}

	freshAttempt, _ := attempts.FindByID(fresh.ID)
	if freshAttempt.Status != model.AttemptInProgress {
		t.Errorf("fresh attempt was swept; status = %q", freshAttempt.Status)
	}
}

// reviewQuiz mixes an auto-graded 10-point multiple choice question with
// a 5-point essay that needs a human verdict. Created by trainer 9.
func reviewQuiz(id string) *model.Quiz {
	quiz := &model.Quiz{
		Title:     "CRM Scenario Review",
		Status:    model.QuizPublished,
		Attempts:  2,
		CreatedBy: 9,
	}
	quiz.ID = id

	mc := model.QuizQuestion{
		QuizID:       id,
		QuestionType: model.MultipleChoice,
		Points:       10,
	}
	mc.ID = "q-mc"
	mc.Options = []model.QuizOption{
		{UUIDBase: model.UUIDBase{ID: "opt-a"}, IsCorrect: true},
		{UUIDBase: model.UUIDBase{ID: "opt-b"}},
	}

	essay := model.QuizQuestion{
		QuizID:       id,
		QuestionType: model.Essay,
		Points:       5,
	}
	essay.ID = "q-essay"

	quiz.Questions = []model.QuizQuestion{mc, essay}
	return quiz
}

func submitReviewAttempt(t *testing.T, svc *AttemptService) *model.QuizAttempt {
	t.Helper()
	attempt, err := svc.Start(42, "FO Tanaka", "quiz-1", "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.SaveAnswer(42, attempt.ID, "q-mc", "opt-a"); err != nil {
		t.Fatalf("SaveAnswer mc: %v", err)
	}
	if _, err := svc.SaveAnswer(42, attempt.ID, "q-essay", "Divide attention, verbalize, delegate."); err != nil {
		t.Fatalf("SaveAnswer essay: %v", err)
	}
	submitted, err := svc.Submit(42, attempt.ID)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	return submitted
}

func TestSubmitQueuesManualReview(t *testing.T) {
	svc, _, _ := newAttemptFixture(reviewQuiz("quiz-1"))

	submitted := submitReviewAttempt(t, svc)
	if submitted.Score != 10 {
		t.Errorf("auto-graded score %d, want 10 with the essay ungraded", submitted.Score)
	}

	pending, total, err := svc.ListPendingReview(9, 1, 20)
	if err != nil {
		t.Fatalf("ListPendingReview: %v", err)
	}
	if total != 1 || len(pending) != 1 || pending[0].ID != submitted.ID {
		t.Fatalf("pending review list = %d entries (total %d), want just the submitted attempt", len(pending), total)
	}

	// Other trainers' queues stay empty.
	if _, total, _ := svc.ListPendingReview(8, 1, 20); total != 0 {
		t.Errorf("attempt leaked into another reviewer's queue (total %d)", total)
	}
}

func TestAmendAnswerRederivesScore(t *testing.T) {
	svc, attempts, _ := newAttemptFixture(reviewQuiz("quiz-1"))
	submitted := submitReviewAttempt(t, svc)

	stored, _ := attempts.FindByID(submitted.ID)
	var essayAnswerID string
	for _, answer := range stored.Answers {
		if answer.QuestionID == "q-essay" {
			essayAnswerID = answer.ID
		}
	}
	if essayAnswerID == "" {
		t.Fatal("essay answer missing from the attempt")
	}

	// Awarding 7 on a 5-point essay clamps to the question's value.
	amended, err := svc.AmendAnswer(9, submitted.ID, essayAnswerID, true, 7)
	if err != nil {
		t.Fatalf("AmendAnswer: %v", err)
	}
	if amended.Score != 15 {
		t.Errorf("amended score = %d, want 15 (10 auto + 5 clamped)", amended.Score)
	}

	stored, _ = attempts.FindByID(submitted.ID)
	if stored.Score != 15 {
		t.Errorf("persisted score = %d, want 15", stored.Score)
	}
	if _, total, _ := svc.ListPendingReview(9, 1, 20); total != 0 {
		t.Errorf("fully graded attempt still queued for review (total %d)", total)
	}

	// Re-grading downward re-derives again.
	amended, err = svc.AmendAnswer(9, submitted.ID, essayAnswerID, false, 0)
	if err != nil {
		t.Fatalf("second AmendAnswer: %v", err)
	}
	if amended.Score != 10 {
		t.Errorf("re-amended score = %d, want 10", amended.Score)
	}
}

func TestAmendAnswerRequiresQuizOwnership(t *testing.T) {
	svc, attempts, _ := newAttemptFixture(reviewQuiz("quiz-1"))
	submitted := submitReviewAttempt(t, svc)

	stored, _ := attempts.FindByID(submitted.ID)
	if _, err := svc.AmendAnswer(8, submitted.ID, stored.Answers[0].ID, true, 5); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("got %v, want ErrPermissionDenied", err)
	}
}

func TestAmendAnswerOnOpenAttemptRejected(t *testing.T) {
	svc, _, _ := newAttemptFixture(reviewQuiz("quiz-1"))

	attempt, _ := svc.Start(42, "FO Tanaka", "quiz-1", "")
	if _, err := svc.SaveAnswer(42, attempt.ID, "q-essay", "draft thoughts"); err != nil {
		t.Fatalf("SaveAnswer: %v", err)
	}
	if _, err := svc.AmendAnswer(9, attempt.ID, "answer-1", true, 5); !errors.Is(err, util.ErrAttemptNotCompleted) {
		t.Fatalf("got %v, want ErrAttemptNotCompleted", err)
	}
}

func TestAmendAnswerUnknownAnswer(t *testing.T) {
	svc, _, _ := newAttemptFixture(reviewQuiz("quiz-1"))
	submitted := submitReviewAttempt(t, svc)

	if _, err := svc.AmendAnswer(9, submitted.ID, "no-such-answer", true, 5); !errors.Is(err, util.ErrAnswerNotFound) {
		t.Fatalf("got %v, want ErrAnswerNotFound", err)
	}
}

func TestResultUsesGradingMethod(t *testing.T) {
	quiz := gradedQuiz("quiz-1", 0)
	quiz.GradingMethod = model.GradeHighest
	svc, _, _ := newAttemptFixture(quiz)

	// First run: 10 of 15. Second run: full marks.
	a1, _ := svc.Start(42, "FO Tanaka", "quiz-1", "")
	svc.SaveAnswer(42, a1.ID, "q-mc", "opt-a")
	svc.SaveAnswer(42, a1.ID, "q-tf", "false")
	if _, err := svc.Submit(42, a1.ID); err != nil {
		t.Fatalf("Submit a1: %v", err)
	}

	a2, _ := svc.Start(42, "FO Tanaka", "quiz-1", "")
	svc.SaveAnswer(42, a2.ID, "q-mc", "opt-a")
	svc.SaveAnswer(42, a2.ID, "q-tf", "true")
	if _, err := svc.Submit(42, a2.ID); err != nil {
		t.Fatalf("Submit a2: %v", err)
	}

	result, err := svc.Result(42, "quiz-1")
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if result.Score != 15 || !result.Passed || result.Attempts != 2 {
		t.Errorf("result %+v, want highest score 15 over 2 attempts, passed", result)
	}
}

func TestRemainingSecondsForUntimedQuiz(t *testing.T) {
	svc, _, _ := newAttemptFixture(gradedQuiz("quiz-1", 0))

	attempt, _ := svc.Start(42, "FO Tanaka", "quiz-1", "")
	detail, err := svc.Get(42, attempt.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if detail.RemainingSeconds != -1 {
		t.Errorf("untimed quiz remainingSeconds = %d, want -1", detail.RemainingSeconds)
	}
}
