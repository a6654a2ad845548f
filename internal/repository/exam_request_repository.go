package repository

import (
	"aerocrew_training_backend/internal/model"

	"gorm.io/gorm"
)

type ExamRequestRepository struct {
	DB *gorm.DB
}

func NewExamRequestRepository(db *gorm.DB) *ExamRequestRepository {
	return &ExamRequestRepository{DB: db}
}

func (r *ExamRequestRepository) Create(req *model.ExamRequest) error {
	return r.DB.Create(req).Error
}

func (r *ExamRequestRepository) FindByID(id string) (*model.ExamRequest, error) {
	var req model.ExamRequest
	if err := r.DB.First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// ListPending returns pending requests in insertion order; the queue
// position is the assignment priority.
func (r *ExamRequestRepository) ListPending() ([]model.ExamRequest, error) {
	var reqs []model.ExamRequest
	err := r.DB.Where("status = ?", model.RequestPending).Order("created_at asc").Find(&reqs).Error
	return reqs, err
}

func (r *ExamRequestRepository) List(status model.RequestStatus, staffID uint, page, limit int) ([]model.ExamRequest, int64, error) {
	var reqs []model.ExamRequest
	var total int64
	query := r.DB.Model(&model.ExamRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if staffID > 0 {
		query = query.Where("assigned_staff_id = ?", staffID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at asc").Offset(offset).Limit(limit).Find(&reqs).Error
	return reqs, total, err
}

func (r *ExamRequestRepository) Update(req *model.ExamRequest) error {
	return r.DB.Save(req).Error
}

// AssignIfPending persists one pending -> assigned transition; a lost
// race (request no longer pending) reports zero rows, not an error.
func (r *ExamRequestRepository) AssignIfPending(id string, staffID uint, staffName string) (bool, error) {
	result := r.DB.Model(&model.ExamRequest{}).
		Where("id = ? AND status = ?", id, model.RequestPending).
		Updates(map[string]interface{}{
			"status":              model.RequestAssigned,
			"assigned_staff_id":   staffID,
			"assigned_staff_name": staffName,
		})
	return result.RowsAffected > 0, result.Error
}
