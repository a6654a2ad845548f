package service

import (
	"aerocrew_training_backend/internal/model"
	"aerocrew_training_backend/internal/repository"
	"aerocrew_training_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

// StaffService manages the trainer/examiner roster and its capacity
// fields.
type StaffService struct {
	Repo *repository.StaffRepository
}

func NewStaffService(repo *repository.StaffRepository) *StaffService {
	return &StaffService{Repo: repo}
}

type StaffReq struct {
	UserID         uint            `json:"userId" binding:"required"`
	JalID          string          `json:"jalId" binding:"required"`
	Name           string          `json:"name" binding:"required"`
	Role           model.StaffRole `json:"role" binding:"required,oneof=trainer examiner"`
	MaxAssignments int             `json:"maxAssignments" binding:"min=1"`
}

func (s *StaffService) Create(req StaffReq) (*model.Staff, error) {
	staff := &model.Staff{
		UserID:         req.UserID,
		JalID:          req.JalID,
		Name:           req.Name,
		Role:           req.Role,
		Active:         true,
		MaxAssignments: req.MaxAssignments,
	}
	if err := s.Repo.Create(staff); err != nil {
		return nil, err
	}
	return staff, nil
}

func (s *StaffService) List(role model.StaffRole) ([]model.Staff, error) {
	return s.Repo.ListByRole(role)
}

func (s *StaffService) SetActive(id uint, active bool) (*model.Staff, error) {
	staff, err := s.Repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrStaffNotFound
		}
		return nil, err
	}
	staff.Active = active
	if err := s.Repo.Update(staff); err != nil {
		return nil, err
	}
	return staff, nil
}

func (s *StaffService) SetCapacity(id uint, maxAssignments int) (*model.Staff, error) {
	staff, err := s.Repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrStaffNotFound
		}
		return nil, err
	}
	staff.MaxAssignments = maxAssignments
	if err := s.Repo.Update(staff); err != nil {
		return nil, err
	}
	return staff, nil
}
