package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/mbenitez/tienda/internal/models"
)

func (r *GormRepo) CreateTicket(ctx context.Context, ticket *models.Ticket) error {
	return r.DB.WithContext(ctx).Create(ticket).Error
}

func (r *GormRepo) GetTicket(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := r.DB.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&ticket).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *GormRepo) GetTicketsByUser(ctx context.Context, userID uuid.UUID) ([]models.Ticket, error) {
	var tickets []models.Ticket
	if err := r.DB.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("purchase_datetime ASC").
		Find(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}
