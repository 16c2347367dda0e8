package entity

import "time"

// BalanceKey identifica a linha única de saldo de um componente em um local
// para um dono. Toda recomputação lê e escreve por chave, nunca por ponteiros
// entre objetos vivos.
type BalanceKey struct {
	ComponentID string
	LocationID  string
	OwnerID     string
}

// Balance é o saldo materializado de uma chave, derivado do razão de movimentos.
// Invariante: Quantity == max(0, ΣIN − ΣOUT) sobre os movimentos da chave.
// Um saldo zero é um fato real e consultável, não uma ausência de linha.
type Balance struct {
	ComponentID string
	LocationID  string
	OwnerID     string
	Quantity    int64
	UpdatedAt   time.Time
}

// Key devolve a chave da linha de saldo.
func (b *Balance) Key() BalanceKey {
	return BalanceKey{ComponentID: b.ComponentID, LocationID: b.LocationID, OwnerID: b.OwnerID}
}
