package service

import (
	"aerocrew_training_backend/internal/model"
	"aerocrew_training_backend/internal/util"
	"aerocrew_training_backend/pkg/logger"
	"aerocrew_training_backend/pkg/monitoring"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AssignmentService distributes pending exam and training requests
// across the matching staff pools with a deterministic round-robin.
type AssignmentService struct {
	ExamRequests     ExamRequestStore
	TrainingRequests TrainingRequestStore
	Staff            StaffStore
	Notifier         Notifier
}

func NewAssignmentService(exams ExamRequestStore, trainings TrainingRequestStore, staff StaffStore, notifier Notifier) *AssignmentService {
	return &AssignmentService{
		ExamRequests:     exams,
		TrainingRequests: trainings,
		Staff:            staff,
		Notifier:         notifier,
	}
}

// AssignmentResult reports a batch outcome. The batch is not
// transactional: a persistence failure skips that request and the loop
// continues, so Assigned+Failed == Total.
type AssignmentResult struct {
	Total    int `json:"total"`
	Assigned int `json:"assigned"`
	Failed   int `json:"failed"`
}

// eligiblePool filters the roster snapshot. Capacity is checked once
// against this snapshot for the whole batch; counters still move per
// assignment so the next batch sees saturation.
func (s *AssignmentService) eligiblePool(role model.StaffRole) ([]model.Staff, error) {
	roster, err := s.Staff.ListByRole(role)
	if err != nil {
		return nil, err
	}
	eligible := make([]model.Staff, 0, len(roster))
	for _, st := range roster {
		if st.Eligible() {
			eligible = append(eligible, st)
		}
	}
	return eligible, nil
}

// assignBatch walks the queue in insertion order and hands request i to
// eligible[i mod len(eligible)]. persist returns whether the request
// was still pending when the write landed.
func (s *AssignmentService) assignBatch(pool string, queueLen int, eligible []model.Staff,
	persist func(i int, st *model.Staff) (bool, error)) (*AssignmentResult, error) {

	if queueLen == 0 {
		return nil, util.ErrNoPendingRequests
	}
	if len(eligible) == 0 {
		return nil, util.ErrNoEligibleStaff
	}

	result := &AssignmentResult{Total: queueLen}
	for i := 0; i < queueLen; i++ {
		st := &eligible[i%len(eligible)]
		ok, err := persist(i, st)
		if err != nil || !ok {
			result.Failed++
			if err != nil {
				logger.Log.Error("assignment persistence failed",
					zap.String("pool", pool), zap.Int("queueIndex", i), zap.Error(err))
			}
			continue
		}
		if err := s.Staff.IncrementAssignments(st.ID, 1); err != nil {
			logger.Log.Error("failed to bump staff assignment counter",
				zap.Uint("staffId", st.ID), zap.Error(err))
		}
		if s.Notifier != nil {
			s.Notifier.Notify(st.UserID, fmt.Sprintf("A new %s request has been assigned to you", pool))
		}
		monitoring.AssignmentsMade.WithLabelValues(pool).Inc()
		result.Assigned++
	}
	return result, nil
}

// AssignExamRequests runs one round-robin batch over the pending exam
// queue and the examiner pool.
func (s *AssignmentService) AssignExamRequests() (*AssignmentResult, error) {
	pending, err := s.ExamRequests.ListPending()
	if err != nil {
		return nil, err
	}
	eligible, err := s.eligiblePool(model.StaffExaminer)
	if err != nil {
		return nil, err
	}
	return s.assignBatch("exam", len(pending), eligible, func(i int, st *model.Staff) (bool, error) {
		return s.ExamRequests.AssignIfPending(pending[i].ID, st.ID, st.Name)
	})
}

// AssignTrainingRequests is the trainer-pool variant.
func (s *AssignmentService) AssignTrainingRequests() (*AssignmentResult, error) {
	pending, err := s.TrainingRequests.ListPending()
	if err != nil {
		return nil, err
	}
	eligible, err := s.eligiblePool(model.StaffTrainer)
	if err != nil {
		return nil, err
	}
	return s.assignBatch("training", len(pending), eligible, func(i int, st *model.Staff) (bool, error) {
		return s.TrainingRequests.AssignIfPending(pending[i].ID, st.ID, st.Name)
	})
}

// PickupExamRequest lets one examiner self-claim a single pending
// request, bypassing round-robin.
func (s *AssignmentService) PickupExamRequest(staffUserID uint, requestID string) (*model.ExamRequest, error) {
	st, err := s.staffForPickup(staffUserID)
	if err != nil {
		return nil, err
	}
	ok, err := s.ExamRequests.AssignIfPending(requestID, st.ID, st.Name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrInvalidRequestState
	}
	if err := s.Staff.IncrementAssignments(st.ID, 1); err != nil {
		logger.Log.Error("failed to bump staff assignment counter",
			zap.Uint("staffId", st.ID), zap.Error(err))
	}
	return s.ExamRequests.FindByID(requestID)
}

func (s *AssignmentService) PickupTrainingRequest(staffUserID uint, requestID string) (*model.TrainingRequest, error) {
	st, err := s.staffForPickup(staffUserID)
	if err != nil {
		return nil, err
	}
	ok, err := s.TrainingRequests.AssignIfPending(requestID, st.ID, st.Name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrInvalidRequestState
	}
	if err := s.Staff.IncrementAssignments(st.ID, 1); err != nil {
		logger.Log.Error("failed to bump staff assignment counter",
			zap.Uint("staffId", st.ID), zap.Error(err))
	}
	return s.TrainingRequests.FindByID(requestID)
}

func (s *AssignmentService) staffForPickup(staffUserID uint) (*model.Staff, error) {
	st, err := s.Staff.FindByUserID(staffUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrStaffNotFound
		}
		return nil, err
	}
	if !st.Active {
		return nil, util.ErrStaffInactive
	}
	return st, nil
}

// ReassignExamRequest moves an assigned request to another examiner,
// chosen explicitly by an administrator.
func (s *AssignmentService) ReassignExamRequest(requestID string, newStaffID uint) (*model.ExamRequest, error) {
	req, err := s.ExamRequests.FindByID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrRequestNotFound
		}
		return nil, err
	}
	if req.Status != model.RequestAssigned {
		return nil, util.ErrInvalidRequestState
	}
	newStaff, err := s.Staff.FindByID(newStaffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrStaffNotFound
		}
		return nil, err
	}
	if !newStaff.Active {
		return nil, util.ErrStaffInactive
	}

	oldStaffID := req.AssignedStaffID
	req.AssignedStaffID = &newStaff.ID
	req.AssignedStaffName = newStaff.Name
	if err := s.ExamRequests.Update(req); err != nil {
		return nil, err
	}
	s.swapCounters(oldStaffID, newStaff.ID)
	if s.Notifier != nil {
		s.Notifier.Notify(newStaff.UserID, "An exam request has been reassigned to you")
	}
	return req, nil
}

func (s *AssignmentService) ReassignTrainingRequest(requestID string, newStaffID uint) (*model.TrainingRequest, error) {
	req, err := s.TrainingRequests.FindByID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrRequestNotFound
		}
		return nil, err
	}
	if req.Status != model.RequestAssigned {
		return nil, util.ErrInvalidRequestState
	}
	newStaff, err := s.Staff.FindByID(newStaffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrStaffNotFound
		}
		return nil, err
	}
	if !newStaff.Active {
		return nil, util.ErrStaffInactive
	}

	oldStaffID := req.AssignedStaffID
	req.AssignedStaffID = &newStaff.ID
	req.AssignedStaffName = newStaff.Name
	if err := s.TrainingRequests.Update(req); err != nil {
		return nil, err
	}
	s.swapCounters(oldStaffID, newStaff.ID)
	if s.Notifier != nil {
		s.Notifier.Notify(newStaff.UserID, "A training request has been reassigned to you")
	}
	return req, nil
}

func (s *AssignmentService) swapCounters(oldStaffID *uint, newStaffID uint) {
	if oldStaffID != nil {
		if err := s.Staff.IncrementAssignments(*oldStaffID, -1); err != nil {
			logger.Log.Error("failed to release staff assignment counter",
				zap.Uint("staffId", *oldStaffID), zap.Error(err))
		}
	}
	if err := s.Staff.IncrementAssignments(newStaffID, 1); err != nil {
		logger.Log.Error("failed to bump staff assignment counter",
			zap.Uint("staffId", newStaffID), zap.Error(err))
	}
}
