package entity

import "time"

// Tipos de movimento do razão de estoque.
const (
	MovementTypeIN  = "IN"  // entrada
	MovementTypeOUT = "OUT" // saída
)

// Movement é um fato imutável do razão: uma entrada ou saída de estoque para a
// chave (componente, local, dono). Nunca é alterado; a remoção dispara o replay
// completo da chave, como se o movimento nunca tivesse existido.
type Movement struct {
	ID          string
	ComponentID string
	LocationID  string
	OwnerID     string
	Type        string
	Quantity    int64 // sempre positivo; a direção é dada por Type
	Reference   string
	Date        time.Time
	CreatedAt   time.Time
	CreatedBy   string
}
