package service

import (
	"aerocrew_training_backend/internal/model"
	"aerocrew_training_backend/internal/repository"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
)

// In-memory stores backing the service tests. They mimic the repository
// contract, including gorm.ErrRecordNotFound on misses and the
// conditional-update semantics of MarkUsed, CompleteIfInProgress and
// AssignIfPending.

type fakeQuizStore struct {
	quizzes map[string]*model.Quiz
}

func newFakeQuizStore(quizzes ...*model.Quiz) *fakeQuizStore {
	s := &fakeQuizStore{quizzes: make(map[string]*model.Quiz)}
	for _, q := range quizzes {
		s.quizzes[q.ID] = q
	}
	return s
}

func (s *fakeQuizStore) FindByID(id string) (*model.Quiz, error) {
	quiz, ok := s.quizzes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return quiz, nil
}

type fakeTokenStore struct {
	tokens map[string]*model.TestToken
	nextID int
}

func newFakeTokenStore(tokens ...*model.TestToken) *fakeTokenStore {
	s := &fakeTokenStore{tokens: make(map[string]*model.TestToken)}
	for _, t := range tokens {
		s.tokens[t.ID] = t
	}
	return s
}

func (s *fakeTokenStore) Create(token *model.TestToken) error {
	if token.ID == "" {
		s.nextID++
		token.ID = fmt.Sprintf("token-%d", s.nextID)
	}
	s.tokens[token.ID] = token
	return nil
}

func (s *fakeTokenStore) FindByID(id string) (*model.TestToken, error) {
	token, ok := s.tokens[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return token, nil
}

func (s *fakeTokenStore) FindByToken(tokenString string) (*model.TestToken, error) {
	for _, token := range s.tokens {
		if token.Token == tokenString {
			return token, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeTokenStore) Update(token *model.TestToken) error {
	if _, ok := s.tokens[token.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.tokens[token.ID] = token
	return nil
}

func (s *fakeTokenStore) MarkUsed(id string, usedAt time.Time) error {
	token, ok := s.tokens[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if token.Status == model.TokenUsed || token.Status == model.TokenCancelled {
		return nil
	}
	token.Status = model.TokenUsed
	token.UsedAt = &usedAt
	return nil
}

func (s *fakeTokenStore) ListByTrainer(trainerID uint, page, limit int) ([]model.TestToken, int64, error) {
	out := make([]model.TestToken, 0)
	for _, token := range s.tokens {
		if token.TrainerID == trainerID {
			out = append(out, *token)
		}
	}
	return out, int64(len(out)), nil
}

type fakeAttemptStore struct {
	mu       sync.Mutex
	attempts []*model.QuizAttempt
	quizzes  *fakeQuizStore
	nextID   int
}

func newFakeAttemptStore(quizzes *fakeQuizStore) *fakeAttemptStore {
	return &fakeAttemptStore{quizzes: quizzes}
}

func (s *fakeAttemptStore) Create(attempt *model.QuizAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if attempt.ID == "" {
		s.nextID++
		attempt.ID = fmt.Sprintf("attempt-%d", s.nextID)
	}
	s.attempts = append(s.attempts, attempt)
	return nil
}

func (s *fakeAttemptStore) find(id string) *model.QuizAttempt {
	for _, a := range s.attempts {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (s *fakeAttemptStore) FindByID(id string) (*model.QuizAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt := s.find(id)
	if attempt == nil {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *attempt
	copied.Answers = append([]model.QuizAnswer(nil), attempt.Answers...)
	return &copied, nil
}

func (s *fakeAttemptStore) FindInProgress(studentID uint, quizID string) (*model.QuizAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.attempts {
		if a.StudentID == studentID && a.QuizID == quizID && a.Status == model.AttemptInProgress {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeAttemptStore) CountFinished(studentID uint, quizID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, a := range s.attempts {
		if a.StudentID == studentID && a.QuizID == quizID && a.Status != model.AttemptInProgress {
			count++
		}
	}
	return count, nil
}

func (s *fakeAttemptStore) UpsertAnswer(answer *model.QuizAnswer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt := s.find(answer.AttemptID)
	if attempt == nil {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	attempt.LastSaved = &now
	for i := range attempt.Answers {
		if attempt.Answers[i].QuestionID == answer.QuestionID {
			attempt.Answers[i].AnswerText = answer.AnswerText
			*answer = attempt.Answers[i]
			return nil
		}
	}
	if answer.ID == "" {
		s.nextID++
		answer.ID = fmt.Sprintf("answer-%d", s.nextID)
	}
	attempt.Answers = append(attempt.Answers, *answer)
	return nil
}

func (s *fakeAttemptStore) CompleteIfInProgress(id string, score int, endTime time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt := s.find(id)
	if attempt == nil {
		return false, gorm.ErrRecordNotFound
	}
	if attempt.Status != model.AttemptInProgress {
		return false, nil
	}
	attempt.Status = model.AttemptCompleted
	attempt.Score = score
	attempt.EndTime = &endTime
	return true, nil
}

func (s *fakeAttemptStore) SaveGradedAnswers(answers []model.QuizAnswer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, graded := range answers {
		attempt := s.find(graded.AttemptID)
		if attempt == nil {
			continue
		}
		for i := range attempt.Answers {
			if attempt.Answers[i].QuestionID == graded.QuestionID {
				attempt.Answers[i].IsCorrect = graded.IsCorrect
				attempt.Answers[i].Points = graded.Points
			}
		}
	}
	return nil
}

func (s *fakeAttemptStore) ListByStudent(studentID uint, quizID string) ([]model.QuizAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.QuizAttempt, 0)
	for _, a := range s.attempts {
		if a.StudentID == studentID && a.QuizID == quizID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *fakeAttemptStore) ListCompleted(studentID uint, quizID string) ([]model.QuizAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.QuizAttempt, 0)
	for _, a := range s.attempts {
		if a.StudentID == studentID && a.QuizID == quizID && a.Status == model.AttemptCompleted {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *fakeAttemptStore) ListPendingReview(reviewerID uint, page, limit int) ([]model.QuizAttempt, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.QuizAttempt, 0)
	for _, a := range s.attempts {
		if a.Status != model.AttemptCompleted {
			continue
		}
		quiz, ok := s.quizzes.quizzes[a.QuizID]
		if !ok || quiz.CreatedBy != reviewerID {
			continue
		}
		for _, answer := range a.Answers {
			if answer.IsCorrect == nil {
				out = append(out, *a)
				break
			}
		}
	}
	return out, int64(len(out)), nil
}

func (s *fakeAttemptStore) UpdateScore(id string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt := s.find(id)
	if attempt == nil {
		return gorm.ErrRecordNotFound
	}
	attempt.Score = score
	return nil
}

func (s *fakeAttemptStore) ListOpenTimed() ([]repository.OpenTimedAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]repository.OpenTimedAttempt, 0)
	for _, a := range s.attempts {
		if a.Status != model.AttemptInProgress {
			continue
		}
		quiz, ok := s.quizzes.quizzes[a.QuizID]
		if !ok || quiz.TimeLimit == 0 {
			continue
		}
		out = append(out, repository.OpenTimedAttempt{QuizAttempt: *a, TimeLimit: quiz.TimeLimit})
	}
	return out, nil
}

type fakeExamRequestStore struct {
	requests []*model.ExamRequest
	nextID   int
	failIDs  map[string]bool // AssignIfPending returns an error for these
}

func newFakeExamRequestStore() *fakeExamRequestStore {
	return &fakeExamRequestStore{failIDs: make(map[string]bool)}
}

func (s *fakeExamRequestStore) Create(req *model.ExamRequest) error {
	if req.ID == "" {
		s.nextID++
		req.ID = fmt.Sprintf("exam-%d", s.nextID)
	}
	s.requests = append(s.requests, req)
	return nil
}

func (s *fakeExamRequestStore) find(id string) *model.ExamRequest {
	for _, r := range s.requests {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (s *fakeExamRequestStore) FindByID(id string) (*model.ExamRequest, error) {
	req := s.find(id)
	if req == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return req, nil
}

func (s *fakeExamRequestStore) ListPending() ([]model.ExamRequest, error) {
	out := make([]model.ExamRequest, 0)
	for _, r := range s.requests {
		if r.Status == model.RequestPending {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *fakeExamRequestStore) List(status model.RequestStatus, staffID uint, page, limit int) ([]model.ExamRequest, int64, error) {
	out := make([]model.ExamRequest, 0)
	for _, r := range s.requests {
		if status != "" && r.Status != status {
			continue
		}
		if staffID != 0 && (r.AssignedStaffID == nil || *r.AssignedStaffID != staffID) {
			continue
		}
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func (s *fakeExamRequestStore) Update(req *model.ExamRequest) error {
	existing := s.find(req.ID)
	if existing == nil {
		return gorm.ErrRecordNotFound
	}
	*existing = *req
	return nil
}

func (s *fakeExamRequestStore) AssignIfPending(id string, staffID uint, staffName string) (bool, error) {
	if s.failIDs[id] {
		return false, fmt.Errorf("simulated write failure for %s", id)
	}
	req := s.find(id)
	if req == nil {
		return false, gorm.ErrRecordNotFound
	}
	if req.Status != model.RequestPending {
		return false, nil
	}
	req.Status = model.RequestAssigned
	req.AssignedStaffID = &staffID
	req.AssignedStaffName = staffName
	return true, nil
}

type fakeTrainingRequestStore struct {
	requests []*model.TrainingRequest
	nextID   int
}

func (s *fakeTrainingRequestStore) Create(req *model.TrainingRequest) error {
	if req.ID == "" {
		s.nextID++
		req.ID = fmt.Sprintf("training-%d", s.nextID)
	}
	s.requests = append(s.requests, req)
	return nil
}

func (s *fakeTrainingRequestStore) find(id string) *model.TrainingRequest {
	for _, r := range s.requests {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (s *fakeTrainingRequestStore) FindByID(id string) (*model.TrainingRequest, error) {
	req := s.find(id)
	if req == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return req, nil
}

func (s *fakeTrainingRequestStore) ListPending() ([]model.TrainingRequest, error) {
	out := make([]model.TrainingRequest, 0)
	for _, r := range s.requests {
		if r.Status == model.RequestPending {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *fakeTrainingRequestStore) List(status model.RequestStatus, staffID uint, page, limit int) ([]model.TrainingRequest, int64, error) {
	out := make([]model.TrainingRequest, 0)
	for _, r := range s.requests {
		if status != "" && r.Status != status {
			continue
		}
		if staffID != 0 && (r.AssignedStaffID == nil || *r.AssignedStaffID != staffID) {
			continue
		}
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func (s *fakeTrainingRequestStore) Update(req *model.TrainingRequest) error {
	existing := s.find(req.ID)
	if existing == nil {
		return gorm.ErrRecordNotFound
	}
	*existing = *req
	return nil
}

func (s *fakeTrainingRequestStore) AssignIfPending(id string, staffID uint, staffName string) (bool, error) {
	req := s.find(id)
	if req == nil {
		return false, gorm.ErrRecordNotFound
	}
	if req.Status != model.RequestPending {
		return false, nil
	}
	req.Status = model.RequestAssigned
	req.AssignedStaffID = &staffID
	req.AssignedStaffName = staffName
	return true, nil
}

type fakeStaffStore struct {
	staff []*model.Staff
}

func newFakeStaffStore(staff ...*model.Staff) *fakeStaffStore {
	return &fakeStaffStore{staff: staff}
}

func (s *fakeStaffStore) FindByID(id uint) (*model.Staff, error) {
	for _, st := range s.staff {
		if st.ID == id {
			return st, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeStaffStore) FindByUserID(userID uint) (*model.Staff, error) {
	for _, st := range s.staff {
		if st.UserID == userID {
			return st, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeStaffStore) ListByRole(role model.StaffRole) ([]model.Staff, error) {
	out := make([]model.Staff, 0)
	for _, st := range s.staff {
		if st.Role == role {
			out = append(out, *st)
		}
	}
	return out, nil
}

func (s *fakeStaffStore) Update(staff *model.Staff) error {
	for _, st := range s.staff {
		if st.ID == staff.ID {
			*st = *staff
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *fakeStaffStore) IncrementAssignments(id uint, delta int) error {
	for _, st := range s.staff {
		if st.ID == id {
			st.CurrentAssignments += delta
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	userIDs  []uint
}

func (n *recordingNotifier) Notify(userID uint, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.userIDs = append(n.userIDs, userID)
	n.messages = append(n.messages, message)
}
