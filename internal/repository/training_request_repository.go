package repository

import (
	"aerocrew_training_backend/internal/model"

	"gorm.io/gorm"
)

type TrainingRequestRepository struct {
	DB *gorm.DB
}

func NewTrainingRequestRepository(db *gorm.DB) *TrainingRequestRepository {
	return &TrainingRequestRepository{DB: db}
}

func (r *TrainingRequestRepository) Create(req *model.TrainingRequest) error {
	return r.DB.Create(req).Error
}

func (r *TrainingRequestRepository) FindByID(id string) (*model.TrainingRequest, error) {
	var req model.TrainingRequest
	if err := r.DB.First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *TrainingRequestRepository) ListPending() ([]model.TrainingRequest, error) {
	var reqs []model.TrainingRequest
	err := r.DB.Where("status = ?", model.RequestPending).Order("created_at asc").Find(&reqs).Error
	return reqs, err
}

func (r *TrainingRequestRepository) List(status model.RequestStatus, staffID uint, page, limit int) ([]model.TrainingRequest, int64, error) {
	var reqs []model.TrainingRequest
	var total int64
	query := r.DB.Model(&model.TrainingRequest{})
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

func (r *TrainingRequestRepository) Update(req *model.TrainingRequest) error {
	return r.DB.Save(req).Error
}

func (r *TrainingRequestRepository) AssignIfPending(id string, staffID uint, staffName string) (bool, error) {
	result := r.DB.Model(&model.TrainingRequest{}).
		Where("id = ? AND status = ?", id, model.RequestPending).
		Updates(map[string]interface{}{
			"status":              model.RequestAssigned,
			"assigned_staff_id":   staffID,
			"assigned_staff_name": staffName,
		})
	return result.RowsAffected > 0, result.Error
}
