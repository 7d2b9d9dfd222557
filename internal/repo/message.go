package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mbenitez/tienda/internal/models"
)

func (r *GormRepo) GetMessages(ctx context.Context) ([]models.Message, error) {
	var messages []models.Message
	if err := r.DB.WithContext(ctx).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *GormRepo) CreateMessage(ctx context.Context, message *models.Message) error {
	return r.DB.WithContext(ctx).Create(message).Error
}

func (r *GormRepo) DeleteMessage(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Message{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
