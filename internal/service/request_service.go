package service

import (
	"aerocrew_training_backend/internal/model"
	"aerocrew_training_backend/internal/util"
	"aerocrew_training_backend/pkg/logger"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RequestService owns the student-facing side of exam/training
// requests and the staff status advances after assignment. The
// pending -> assigned transition itself belongs to AssignmentService.
type RequestService struct {
	ExamRequests     ExamRequestStore
	TrainingRequests TrainingRequestStore
	Staff            StaffStore
}

func NewRequestService(exams ExamRequestStore, trainings TrainingRequestStore, staff StaffStore) *RequestService {
	return &RequestService{ExamRequests: exams, TrainingRequests: trainings, Staff: staff}
}

type CreateRequestInput struct {
	RequestedDate time.Time `json:"requestedDate" binding:"required"`
	Notes         string    `json:"notes"`
}

func (s *RequestService) CreateExamRequest(studentID uint, studentName string, in CreateRequestInput) (*model.ExamRequest, error) {
	req := &model.ExamRequest{
		StudentID:     studentID,
		StudentName:   studentName,
		RequestedDate: in.RequestedDate,
		Notes:         in.Notes,
		Status:        model.RequestPending,
	}
	if err := s.ExamRequests.Create(req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *RequestService) CreateTrainingRequest(pilotID uint, pilotName string, in CreateRequestInput) (*model.TrainingRequest, error) {
	req := &model.TrainingRequest{
		PilotID:       pilotID,
		PilotName:     pilotName,
		RequestedDate: in.RequestedDate,
		Notes:         in.Notes,
		Status:        model.RequestPending,
	}
	if err := s.TrainingRequests.Create(req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *RequestService) ListExamRequests(status model.RequestStatus, staffID uint, page, limit int) ([]model.ExamRequest, int64, error) {
	return s.ExamRequests.List(status, staffID, page, limit)
}

func (s *RequestService) ListTrainingRequests(status model.RequestStatus, staffID uint, page, limit int) ([]model.TrainingRequest, int64, error) {
	return s.TrainingRequests.List(status, staffID, page, limit)
}

// validTransition enumerates the post-assignment lifecycle moves staff
// may make. pending -> assigned is excluded on purpose; only the
// scheduler and pickup perform it.
func validTransition(from, to model.RequestStatus) bool {
	switch from {
	case model.RequestPending:
		return to == model.RequestCancelled
	case model.RequestAssigned:
		return to == model.RequestInProgress || to == model.RequestCancelled
	case model.RequestInProgress:
		return to == model.RequestCompleted || to == model.RequestCancelled
	default:
		return false
	}
}

// terminal transitions free the assigned staff member's capacity slot.
func (s *RequestService) releaseSlot(staffID *uint) {
	if staffID == nil {
		return
	}
	if err := s.Staff.IncrementAssignments(*staffID, -1); err != nil {
		logger.Log.Error("failed to release staff assignment counter",
			zap.Uint("staffId", *staffID), zap.Error(err))
	}
}

func (s *RequestService) AdvanceExamRequest(requestID string, to model.RequestStatus) (*model.ExamRequest, error) {
	req, err := s.ExamRequests.FindByID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrRequestNotFound
		}
		return nil, err
	}
	if !validTransition(req.Status, to) {
		return nil, util.ErrInvalidRequestState
	}
	from := req.Status
	req.Status = to
	if err := s.ExamRequests.Update(req); err != nil {
		return nil, err
	}
	if (to == model.RequestCompleted || to == model.RequestCancelled) && from != model.RequestPending {
		s.releaseSlot(req.AssignedStaffID)
	}
	return req, nil
}

func (s *RequestService) AdvanceTrainingRequest(requestID string, to model.RequestStatus) (*model.TrainingRequest, error) {
	req, err := s.TrainingRequests.FindByID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrRequestNotFound
		}
		return nil, err
	}
	if !validTransition(req.Status, to) {
		return nil, util.ErrInvalidRequestState
	}
	from := req.Status
	req.Status = to
	if err := s.TrainingRequests.Update(req); err != nil {
		return nil, err
	}
	if (to == model.RequestCompleted || to == model.RequestCancelled) && from != model.RequestPending {
		s.releaseSlot(req.AssignedStaffID)
	}
	return req, nil
}
