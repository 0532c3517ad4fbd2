package repositories

import (
	"context"

	"veil_server/models"
	"veil_server/services"
)

// NotificationRepository implements services.NotificationStore.
type NotificationRepository struct {
	DB *services.DynamoService
}

func NewNotificationRepository(db *services.DynamoService) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Append(ctx context.Context, n *models.Notification) error {
	return r.DB.PutItem(ctx, models.NotificationsTable, n, "")
}
