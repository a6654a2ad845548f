package repository

import (
	"aerocrew_training_backend/internal/model"

	"gorm.io/gorm"
)

type StaffRepository struct {
	DB *gorm.DB
}

func NewStaffRepository(db *gorm.DB) *StaffRepository {
	return &StaffRepository{DB: db}
}

func (r *StaffRepository) Create(staff *model.Staff) error {
	return r.DB.Create(staff).Error
}

func (r *StaffRepository) FindByID(id uint) (*model.Staff, error) {
	var staff model.Staff
	if err := r.DB.First(&staff, id).Error; err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *StaffRepository) FindByUserID(userID uint) (*model.Staff, error) {
	var staff model.Staff
	if err := r.DB.Where("user_id = ?", userID).First(&staff).Error; err != nil {
		return nil, err
	}
	return &staff, nil
}

// ListByRole returns the roster in creation order; the scheduler relies
// on a stable order for its round-robin walk.
func (r *StaffRepository) ListByRole(role model.StaffRole) ([]model.Staff, error) {
	var staff []model.Staff
	err := r.DB.Where("role = ?", role).Order("created_at asc").Find(&staff).Error
	return staff, err
}

func (r *StaffRepository) Update(staff *model.Staff) error {
	return r.DB.Save(staff).Error
}

func (r *StaffRepository) IncrementAssignments(id uint, delta int) error {
	return r.DB.Model(&model.Staff{}).
		Where("id = ?", id).
		Update("current_assignments", gorm.Expr("current_assignments + ?", delta)).
		Error
}
