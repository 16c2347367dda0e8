package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jportela/almoxarifado-api/internal/domain/entity"
	"github.com/jportela/almoxarifado-api/internal/domain/repository"
)

var _ repository.BalanceRepository = (*BalanceRepo)(nil)

// BalanceRepo implementação do saldo materializado sobre PostgreSQL
// (usável com pool ou tx).
type BalanceRepo struct {
	q Querier
}

// NewBalanceRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewBalanceRepository(q Querier) *BalanceRepo {
	return &BalanceRepo{q: q}
}

// Get obtém o saldo da chave; chave sem linha devolve saldo zero.
func (r *BalanceRepo) Get(key entity.BalanceKey) (*entity.Balance, error) {
	return r.get(key, false)
}

// GetForUpdate obtém o saldo e bloqueia a linha (SELECT FOR UPDATE).
func (r *BalanceRepo) GetForUpdate(key entity.BalanceKey) (*entity.Balance, error) {
	return r.get(key, true)
}

func (r *BalanceRepo) get(key entity.BalanceKey, forUpdate bool) (*entity.Balance, error) {
	query := `
		SELECT component_id, location_id, owner_id, quantity, updated_at
		FROM balances WHERE component_id = $1 AND location_id = $2 AND owner_id = $3`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var b entity.Balance
	err := r.q.QueryRow(context.Background(), query, key.ComponentID, key.LocationID, key.OwnerID).Scan(
		&b.ComponentID, &b.LocationID, &b.OwnerID, &b.Quantity, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.Balance{ComponentID: key.ComponentID, LocationID: key.LocationID, OwnerID: key.OwnerID}, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return &b, nil
}

// Upsert insere ou reescreve a linha de saldo da chave — inclusive com
// quantidade zero: saldo zero é um fato real, não uma ausência.
func (r *BalanceRepo) Upsert(balance *entity.Balance) error {
	query := `
		INSERT INTO balances (component_id, location_id, owner_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (component_id, location_id, owner_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query,
		balance.ComponentID, balance.LocationID, balance.OwnerID, balance.Quantity)
	if err != nil {
		return fmt.Errorf("upsert balance: %w", err)
	}
	return nil
}

// ListByComponent lista os saldos do componente em todos os locais e donos.
func (r *BalanceRepo) ListByComponent(componentID string) ([]*entity.Balance, error) {
	query := `
		SELECT component_id, location_id, owner_id, quantity, updated_at
		FROM balances WHERE component_id = $1
		ORDER BY location_id, owner_id`
	rows, err := r.q.Query(context.Background(), query, componentID)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()

	var list []*entity.Balance
	for rows.Next() {
		var b entity.Balance
		if err := rows.Scan(&b.ComponentID, &b.LocationID, &b.OwnerID, &b.Quantity, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}

// SumByComponent soma os saldos de todos os locais e donos do componente.
func (r *BalanceRepo) SumByComponent(componentID string) (int64, error) {
	var total int64
	err := r.q.QueryRow(context.Background(),
		`SELECT COALESCE(SUM(quantity), 0) FROM balances WHERE component_id = $1`, componentID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum balances: %w", err)
	}
	return total, nil
}
