package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jportela/almoxarifado-api/internal/domain"
	"github.com/jportela/almoxarifado-api/internal/domain/entity"
	"github.com/jportela/almoxarifado-api/internal/domain/repository"
)

var _ repository.NotificationRepository = (*NotificationRepo)(nil)

// NotificationRepo implementação de notificações sobre PostgreSQL
// (usável com pool ou tx).
type NotificationRepo struct {
	q Querier
}

// NewNotificationRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewNotificationRepository(q Querier) *NotificationRepo {
	return &NotificationRepo{q: q}
}

// Create persiste uma notificação de transição de status.
func (r *NotificationRepo) Create(notification *entity.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	query := `
		INSERT INTO notifications (id, owner_id, message, viewed, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query,
		notification.ID, notification.OwnerID, notification.Message,
		notification.Viewed, notification.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// ListByOwner lista notificações do dono, opcionalmente só as não vistas.
func (r *NotificationRepo) ListByOwner(ownerID string, onlyUnviewed bool, limit, offset int) ([]*entity.Notification, error) {
	query := `
		SELECT id, owner_id, message, viewed, created_at
		FROM notifications WHERE owner_id = $1`
	if onlyUnviewed {
		query += " AND viewed = false"
	}
	query += " ORDER BY created_at DESC LIMIT $2 OFFSET $3"

	rows, err := r.q.Query(context.Background(), query, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var list []*entity.Notification
	for rows.Next() {
		var n entity.Notification
		if err := rows.Scan(&n.ID, &n.OwnerID, &n.Message, &n.Viewed, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		list = append(list, &n)
	}
	return list, rows.Err()
}

// MarkViewed marca a notificação como vista.
func (r *NotificationRepo) MarkViewed(id string) error {
	tag, err := r.q.Exec(context.Background(),
		`UPDATE notifications SET viewed = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark notification viewed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
