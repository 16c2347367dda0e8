package dto

import (
	"time"

	"github.com/jportela/almoxarifado-api/internal/domain/entity"
)

// RecordMovementRequest body para POST /api/stock/movements.
type RecordMovementRequest struct {
	ComponentID string `json:"component_id"`
	LocationID  string `json:"location_id"`
	OwnerID     string `json:"owner_id"`
	Type        string `json:"type"` // IN | OUT
	Quantity    int64  `json:"quantity"`
	Reference   string `json:"reference,omitempty"`
	CreatedBy   string `json:"created_by,omitempty"`
}

// EditBalanceRequest body para PUT /api/stock/balances. Quantity é a
// quantidade final desejada, não um delta.
type EditBalanceRequest struct {
	ComponentID string `json:"component_id"`
	LocationID  string `json:"location_id"`
	OwnerID     string `json:"owner_id"`
	Quantity    int64  `json:"quantity"`
	CreatedBy   string `json:"created_by,omitempty"`
}

// MovementResponse um movimento do razão.
type MovementResponse struct {
	ID          string    `json:"id"`
	ComponentID string    `json:"component_id"`
	LocationID  string    `json:"location_id"`
	OwnerID     string    `json:"owner_id"`
	Type        string    `json:"type"`
	Quantity    int64     `json:"quantity"`
	Reference   string    `json:"reference,omitempty"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   string    `json:"created_by,omitempty"`
}

// NewMovementResponse converte a entidade.
func NewMovementResponse(m *entity.Movement) MovementResponse {
	return MovementResponse{
		ID:          m.ID,
		ComponentID: m.ComponentID,
		LocationID:  m.LocationID,
		OwnerID:     m.OwnerID,
		Type:        m.Type,
		Quantity:    m.Quantity,
		Reference:   m.Reference,
		Date:        m.Date,
		CreatedAt:   m.CreatedAt,
		CreatedBy:   m.CreatedBy,
	}
}

// BalanceResponse o saldo materializado de uma chave.
type BalanceResponse struct {
	ComponentID string    `json:"component_id"`
	LocationID  string    `json:"location_id"`
	OwnerID     string    `json:"owner_id"`
	Quantity    int64     `json:"quantity"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewBalanceResponse converte a entidade.
func NewBalanceResponse(b *entity.Balance) BalanceResponse {
	return BalanceResponse{
		ComponentID: b.ComponentID,
		LocationID:  b.LocationID,
		OwnerID:     b.OwnerID,
		Quantity:    b.Quantity,
		UpdatedAt:   b.UpdatedAt,
	}
}

// ComponentAggregateResponse quantidade total e status de um componente.
type ComponentAggregateResponse struct {
	ComponentID string `json:"component_id"`
	Quantity    int64  `json:"quantity"`
	Status      string `json:"status"`
}
