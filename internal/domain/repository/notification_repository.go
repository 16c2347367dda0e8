package repository

import "github.com/jportela/almoxarifado-api/internal/domain/entity"

// NotificationRepository porta de persistência de notificações de estoque.
type NotificationRepository interface {
	Create(notification *entity.Notification) error
	ListByOwner(ownerID string, onlyUnviewed bool, limit, offset int) ([]*entity.Notification, error)
	MarkViewed(id string) error
}
