package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jportela/almoxarifado-api/internal/application/stock"
	"github.com/jportela/almoxarifado-api/internal/domain"
)

var _ stock.TxRunner = (*TxRunner)(nil)

// Beginner abre transações; satisfeito por *pgxpool.Pool.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TxRunner executa callbacks dentro de uma transação PostgreSQL, com os
// repositórios do motor atados à transação.
type TxRunner struct {
	pool Beginner
}

// NewTxRunner constrói o runner com o pool.
func NewTxRunner(pool Beginner) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run abre a transação, executa fn com repos atados e faz Commit ou Rollback.
// Falhas de serialização (40001/40P01) voltam embrulhando
// domain.ErrConsistencyRace para o orquestrador retentar a sequência inteira.
func (r *TxRunner) Run(ctx context.Context, fn func(repos stock.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := stock.Repos{
		Movements:     NewMovementRepository(tx),
		Balances:      NewBalanceRepository(tx),
		Components:    NewComponentRepository(tx),
		Notifications: NewNotificationRepository(tx),
	}

	if err := fn(repos); err != nil {
		if isSerializationFailure(err) {
			return fmt.Errorf("%w: %v", domain.ErrConsistencyRace, err)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isSerializationFailure(err) {
			return fmt.Errorf("%w: %v", domain.ErrConsistencyRace, err)
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
