package repository

import (
	"aerocrew_training_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type TokenRepository struct {
	DB *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{DB: db}
}

func (r *TokenRepository) Create(token *model.TestToken) error {
	return r.DB.Create(token).Error
}

func (r *TokenRepository) FindByID(id string) (*model.TestToken, error) {
	var token model.TestToken
	if err := r.DB.First(&token, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *TokenRepository) FindByToken(tokenString string) (*model.TestToken, error) {
	var token model.TestToken
	if err := r.DB.Where("token = ?", tokenString).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *TokenRepository) Update(token *model.TestToken) error {
	return r.DB.Save(token).Error
}

// MarkUsed flips a token to used exactly once. Used and cancelled are
// both terminal: re-marking touches zero rows and reports no error, and
// a cancellation issued while an attempt was open survives its submit.
func (r *TokenRepository) MarkUsed(id string, usedAt time.Time) error {
	return r.DB.Model(&model.TestToken{}).
		Where("id = ? AND status NOT IN ?", id,
			[]model.TokenStatus{model.TokenUsed, model.TokenCancelled}).
		Updates(map[string]interface{}{
			"status":  model.TokenUsed,
			"used_at": usedAt,
		}).Error
}

func (r *TokenRepository) ListByTrainer(trainerID uint, page, limit int) ([]model.TestToken, int64, error) {
	var tokens []model.TestToken
	var total int64
	query := r.DB.Model(&model.TestToken{}).Where("trainer_id = ?", trainerID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&tokens).Error
	return tokens, total, err
}
