package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jportela/almoxarifado-api/internal/domain"
	"github.com/jportela/almoxarifado-api/internal/domain/entity"
	"github.com/jportela/almoxarifado-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementação do razão de movimentos sobre PostgreSQL
// (usável com pool ou tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste um movimento no razão.
func (r *MovementRepo) Create(movement *entity.Movement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO movements (id, component_id, location_id, owner_id, type, quantity, reference, date, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	createdBy := (*string)(nil)
	if movement.CreatedBy != "" {
		createdBy = &movement.CreatedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.ComponentID, movement.LocationID, movement.OwnerID,
		movement.Type, movement.Quantity, movement.Reference,
		movement.Date, movement.CreatedAt, createdBy,
	)
	if err != nil {
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// GetByID obtém um movimento por ID; nil se não existir.
func (r *MovementRepo) GetByID(id string) (*entity.Movement, error) {
	query := `
		SELECT id, component_id, location_id, owner_id, type, quantity, reference, date, created_at, created_by
		FROM movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// Delete remove um movimento do razão. O chamador deve recomputar a chave.
func (r *MovementRepo) Delete(id string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM movements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SumByKey soma ΣIN e ΣOUT dos movimentos remanescentes da chave.
func (r *MovementRepo) SumByKey(key entity.BalanceKey) (int64, int64, error) {
	query := `
		SELECT
			COALESCE(SUM(quantity) FILTER (WHERE type = 'IN'), 0),
			COALESCE(SUM(quantity) FILTER (WHERE type = 'OUT'), 0)
		FROM movements
		WHERE component_id = $1 AND location_id = $2 AND owner_id = $3`
	var in, out int64
	err := r.q.QueryRow(context.Background(), query, key.ComponentID, key.LocationID, key.OwnerID).Scan(&in, &out)
	if err != nil {
		return 0, 0, fmt.Errorf("sum movements by key: %w", err)
	}
	return in, out, nil
}

// ListByComponent lista movimentos de um componente em um intervalo de datas.
func (r *MovementRepo) ListByComponent(componentID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	query := `
		SELECT id, component_id, location_id, owner_id, type, quantity, reference, date, created_at, created_by
		FROM movements WHERE component_id = $1`
	args := []any{componentID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND date >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND date <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY date DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	var createdBy *string
	err := row.Scan(&m.ID, &m.ComponentID, &m.LocationID, &m.OwnerID, &m.Type,
		&m.Quantity, &m.Reference, &m.Date, &m.CreatedAt, &createdBy)
	if err != nil {
		return nil, err
	}
	if createdBy != nil {
		m.CreatedBy = *createdBy
	}
	return &m, nil
}
