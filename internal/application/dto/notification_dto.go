package dto

import (
	"time"

	"github.com/jportela/almoxarifado-api/internal/domain/entity"
)

// NotificationResponse uma notificação de transição de status.
type NotificationResponse struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Message   string    `json:"message"`
	Viewed    bool      `json:"viewed"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotificationResponse converte a entidade.
func NewNotificationResponse(n *entity.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		OwnerID:   n.OwnerID,
		Message:   n.Message,
		Viewed:    n.Viewed,
		CreatedAt: n.CreatedAt,
	}
}
