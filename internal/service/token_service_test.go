package service

import (
	"aerocrew_training_backend/internal/model"
	"aerocrew_training_backend/internal/util"
	"errors"
	"strings"
	"testing"
	"time"
)

func publishedQuiz(id string) *model.Quiz {
	quiz := &model.Quiz{
		Title:  "B737 Type Rating",
		Status: model.QuizPublished,
	}
	quiz.ID = id
	return quiz
}

func TestGenerateTokenString(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token, err := GenerateTokenString()
		if err != nil {
			t.Fatalf("GenerateTokenString: %v", err)
		}
		if len(token) != 8 {
			t.Fatalf("token %q has length %d, want 8", token, len(token))
		}
		for _, ch := range token {
			if !strings.ContainsRune(tokenCharset, ch) {
				t.Fatalf("token %q contains %q outside the alphabet", token, ch)
			}
		}
		seen[token] = true
	}
	if len(seen) < 2 {
		t.Error("token generation looks deterministic")
	}
}

func TestIssueRequiresPublishedQuiz(t *testing.T) {
	draft := publishedQuiz("quiz-1")
	draft.Status = model.QuizDraft
	svc := NewTokenService(newFakeTokenStore(), newFakeQuizStore(draft))

	_, err := svc.Issue(1, "Capt. Reyes", IssueTokenRequest{QuizID: "quiz-1", ExpirationHours: 24})
	if !errors.Is(err, util.ErrQuizNotPublished) {
		t.Fatalf("got %v, want ErrQuizNotPublished", err)
	}
}

func TestIssueBindsStudentAtCreation(t *testing.T) {
	svc := NewTokenService(newFakeTokenStore(), newFakeQuizStore(publishedQuiz("quiz-1")))

	studentID := uint(42)
	token, err := svc.Issue(1, "Capt. Reyes", IssueTokenRequest{
		QuizID:              "quiz-1",
		ExpirationHours:     24,
		AssignedStudentID:   &studentID,
		AssignedStudentName: "FO Tanaka",
	})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if token.Status != model.TokenAssigned {
		t.Errorf("token status = %q, want assigned", token.Status)
	}
	if token.AssignedStudentID == nil || *token.AssignedStudentID != 42 {
		t.Error("assigned student not recorded")
	}
}

func TestRedeemHappyPathDoesNotConsume(t *testing.T) {
	tokens := newFakeTokenStore()
	svc := NewTokenService(tokens, newFakeQuizStore(publishedQuiz("quiz-1")))

	token, err := svc.Issue(1, "Capt. Reyes", IssueTokenRequest{QuizID: "quiz-1", ExpirationHours: 24})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	result, err := svc.Redeem(token.Token, 42, "FO Tanaka")
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if result.Quiz.ID != "quiz-1" {
		t.Errorf("redeemed quiz %q, want quiz-1", result.Quiz.ID)
	}

	// Redemption is a read; a second redeem still works.
	if _, err := svc.Redeem(token.Token, 42, "FO Tanaka"); err != nil {
		t.Fatalf("second redeem: %v", err)
	}
}

func TestRedeemExpiredToken(t *testing.T) {
	// Issued with a 24 hour window, checked one hour past it.
	token := &model.TestToken{
		Token:     "EXPIRED1",
		QuizID:    "quiz-1",
		Status:    model.TokenActive,
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	token.ID = "t-1"
	svc := NewTokenService(newFakeTokenStore(token), newFakeQuizStore(publishedQuiz("quiz-1")))

	_, err := svc.Redeem("EXPIRED1", 42, "FO Tanaka")
	if !errors.Is(err, util.ErrTokenExpired) {
		t.Fatalf("got %v, want ErrTokenExpired", err)
	}
}

func TestRedeemConsumedWinsOverExpiry(t *testing.T) {
	token := &model.TestToken{
		Token:     "USEDEXP1",
		QuizID:    "quiz-1",
		Status:    model.TokenUsed,
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	token.ID = "t-1"
	svc := NewTokenService(newFakeTokenStore(token), newFakeQuizStore(publishedQuiz("quiz-1")))

	_, err := svc.Redeem("USEDEXP1", 42, "FO Tanaka")
	if !errors.Is(err, util.ErrTokenAlreadyUsed) {
		t.Fatalf("got %v, want ErrTokenAlreadyUsed (consumed beats expired)", err)
	}
}

func TestRedeemRejectsWrongStudent(t *testing.T) {
	bound := uint(7)
	token := &model.TestToken{
		Token:               "BOUND123",
		QuizID:              "quiz-1",
		Status:              model.TokenAssigned,
		ExpiresAt:           time.Now().Add(time.Hour),
		AssignedStudentID:   &bound,
		AssignedStudentName: "FO Tanaka",
	}
	token.ID = "t-1"
	svc := NewTokenService(newFakeTokenStore(token), newFakeQuizStore(publishedQuiz("quiz-1")))

	if _, err := svc.Redeem("BOUND123", 42, "FO Okafor"); !errors.Is(err, util.ErrTokenForbidden) {
		t.Fatalf("got %v, want ErrTokenForbidden", err)
	}
	if _, err := svc.Redeem("BOUND123", 7, "FO Tanaka"); err != nil {
		t.Fatalf("bound student should redeem: %v", err)
	}
}

func TestMarkUsedIdempotent(t *testing.T) {
	tokens := newFakeTokenStore()
	svc := NewTokenService(tokens, newFakeQuizStore(publishedQuiz("quiz-1")))

	token, err := svc.Issue(1, "Capt. Reyes", IssueTokenRequest{QuizID: "quiz-1", ExpirationHours: 24})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if err := svc.MarkUsed(token.ID); err != nil {
		t.Fatalf("first MarkUsed: %v", err)
	}
	stored, _ := tokens.FindByID(token.ID)
	firstUsedAt := *stored.UsedAt

	if err := svc.MarkUsed(token.ID); err != nil {
		t.Fatalf("second MarkUsed: %v", err)
	}
	stored, _ = tokens.FindByID(token.ID)
	if !stored.UsedAt.Equal(firstUsedAt) {
		t.Error("second MarkUsed moved the consumption timestamp")
	}
	if stored.Status != model.TokenUsed {
		t.Errorf("status = %q, want used", stored.Status)
	}
}

func TestMarkUsedPreservesCancelledToken(t *testing.T) {
	// A trainer cancels the token while the student's attempt is still
	// open; the submit that follows must not resurrect it as used.
	tokens := newFakeTokenStore()
	svc := NewTokenService(tokens, newFakeQuizStore(publishedQuiz("quiz-1")))

	token, err := svc.Issue(1, "Capt. Reyes", IssueTokenRequest{QuizID: "quiz-1", ExpirationHours: 24})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.Cancel(token.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	if err := svc.MarkUsed(token.ID); err != nil {
		t.Fatalf("MarkUsed on cancelled token: %v", err)
	}
	stored, _ := tokens.FindByID(token.ID)
	if stored.Status != model.TokenCancelled {
		t.Errorf("status = %q, want the cancellation to stand", stored.Status)
	}
	if stored.UsedAt != nil {
		t.Error("cancelled token received a consumption timestamp")
	}
}

func TestCancelUsedTokenRejected(t *testing.T) {
	token := &model.TestToken{
		Token:     "USED1234",
		QuizID:    "quiz-1",
		Status:    model.TokenUsed,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	token.ID = "t-1"
	svc := NewTokenService(newFakeTokenStore(token), newFakeQuizStore(publishedQuiz("quiz-1")))

	if _, err := svc.Cancel("t-1"); !errors.Is(err, util.ErrInvalidTokenState) {
		t.Fatalf("got %v, want ErrInvalidTokenState", err)
	}
}
