package usecase

import (
	"context"

	"github.com/jportela/almoxarifado-api/internal/domain"
	"github.com/jportela/almoxarifado-api/internal/domain/entity"
	"github.com/jportela/almoxarifado-api/internal/domain/repository"
)

// NotificationUseCase leitura e "marcar como vista" — a única mutação de
// notificação externa ao motor.
type NotificationUseCase struct {
	repo repository.NotificationRepository
}

// NewNotificationUseCase constrói o caso de uso.
func NewNotificationUseCase(repo repository.NotificationRepository) *NotificationUseCase {
	return &NotificationUseCase{repo: repo}
}

// ListByOwner lista as notificações de um dono, opcionalmente só as não vistas.
func (uc *NotificationUseCase) ListByOwner(_ context.Context, ownerID string, onlyUnviewed bool, limit, offset int) ([]*entity.Notification, error) {
	if ownerID == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uc.repo.ListByOwner(ownerID, onlyUnviewed, limit, offset)
}

// MarkViewed marca a notificação como vista.
func (uc *NotificationUseCase) MarkViewed(_ context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidInput
	}
	return uc.repo.MarkViewed(id)
}
