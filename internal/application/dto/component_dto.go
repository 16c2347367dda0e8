package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jportela/almoxarifado-api/internal/domain/entity"
)

// ComponentRequest body para criar/atualizar um componente. Quantity e Status
// não entram aqui: são derivados e reescritos pelo motor de consistência.
type ComponentRequest struct {
	OwnerID     string          `json:"owner_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	MinStock    int64           `json:"min_stock"`
}

// ComponentResponse um componente com os derivados correntes.
type ComponentResponse struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"owner_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	MinStock    int64           `json:"min_stock"`
	Quantity    int64           `json:"quantity"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewComponentResponse converte a entidade.
func NewComponentResponse(c *entity.Component) ComponentResponse {
	return ComponentResponse{
		ID:          c.ID,
		OwnerID:     c.OwnerID,
		Name:        c.Name,
		Description: c.Description,
		Price:       c.Price,
		MinStock:    c.MinStock,
		Quantity:    c.Quantity,
		Status:      c.Status,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
