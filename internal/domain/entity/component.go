package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status de estoque de um componente, função pura de (quantidade, estoque mínimo).
const (
	StatusIndisponivel = "INDISPONIVEL"  // quantidade == 0
	StatusBaixoEstoque = "BAIXO_ESTOQUE" // 0 < quantidade < estoque mínimo
	StatusEmEstoque    = "EM_ESTOQUE"    // quantidade >= estoque mínimo
)

// Component representa um componente armazenado no almoxarifado.
// Quantity e Status são campos derivados: pertencem ao motor de consistência,
// que os reescreve a cada mutação (soma dos saldos por local + classificação).
type Component struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	Price       decimal.Decimal
	MinStock    int64
	Quantity    int64  // derivado: Σ saldos do componente
	Status      string // derivado: classificação por estoque mínimo
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
