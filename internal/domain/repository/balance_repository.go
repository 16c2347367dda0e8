package repository

import "github.com/jportela/almoxarifado-api/internal/domain/entity"

// BalanceRepository porta para consultar/reescrever saldos por chave.
// Usado dentro de transações para garantir consistência.
type BalanceRepository interface {
	Get(key entity.BalanceKey) (*entity.Balance, error)
	// GetForUpdate bloqueia a linha de saldo (SELECT FOR UPDATE).
	GetForUpdate(key entity.BalanceKey) (*entity.Balance, error)
	Upsert(balance *entity.Balance) error
	ListByComponent(componentID string) ([]*entity.Balance, error)
	// SumByComponent soma os saldos de todos os locais e donos do componente.
	SumByComponent(componentID string) (int64, error)
}
