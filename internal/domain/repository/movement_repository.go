package repository

import (
	"time"

	"github.com/jportela/almoxarifado-api/internal/domain/entity"
)

// MovementRepository porta de persistência do razão de movimentos (append-only).
// Delete existe apenas para correções; quem remove deve reexecutar a
// recomputação da chave afetada.
type MovementRepository interface {
	Create(movement *entity.Movement) error
	GetByID(id string) (*entity.Movement, error)
	Delete(id string) error
	ListByComponent(componentID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error)
	// SumByKey devolve ΣIN e ΣOUT dos movimentos remanescentes da chave
	// (replay completo, nunca desfazimento incremental).
	SumByKey(key entity.BalanceKey) (in int64, out int64, err error)
}
