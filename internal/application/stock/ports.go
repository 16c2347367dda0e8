package stock

import (
	"context"

	"github.com/jportela/almoxarifado-api/internal/domain/entity"
	"github.com/jportela/almoxarifado-api/internal/domain/repository"
)

// Repos repositórios atados à transação corrente.
type Repos struct {
	Movements     repository.MovementRepository
	Balances      repository.BalanceRepository
	Components    repository.ComponentRepository
	Notifications repository.NotificationRepository
}

// TxRunner executa fn dentro de uma transação de BD, passando repositórios
// atados a essa transação. Garante atomicidade entre a escrita no razão e a
// recomputação dos derivados. Falhas de serialização devem ser devolvidas
// embrulhando domain.ErrConsistencyRace para habilitar a retentativa.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}

// Dispatcher é o coletor externo de notificações. O contrato é tolerante:
// entrega duplicada é aceitável, perda é aceitável; uma falha aqui jamais
// desfaz a escrita de saldo/agregado que já foi confirmada.
type Dispatcher interface {
	Dispatch(ctx context.Context, ownerID string, notification *entity.Notification) error
}
