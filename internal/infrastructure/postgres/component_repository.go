package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jportela/almoxarifado-api/internal/domain"
	"github.com/jportela/almoxarifado-api/internal/domain/entity"
	"github.com/jportela/almoxarifado-api/internal/domain/repository"
)

var _ repository.ComponentRepository = (*ComponentRepo)(nil)

const componentColumns = "id, owner_id, name, description, price, min_stock, quantity, status, created_at, updated_at"

// ComponentRepo implementação de componentes sobre PostgreSQL
// (usável com pool ou tx).
type ComponentRepo struct {
	q Querier
}

// NewComponentRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewComponentRepository(q Querier) *ComponentRepo {
	return &ComponentRepo{q: q}
}

// Create persiste um componente novo.
func (r *ComponentRepo) Create(component *entity.Component) error {
	if component.ID == "" {
		component.ID = uuid.New().String()
	}
	query := `
		INSERT INTO components (id, owner_id, name, description, price, min_stock, quantity, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())`
	_, err := r.q.Exec(context.Background(), query,
		component.ID, component.OwnerID, component.Name, component.Description,
		component.Price, component.MinStock, component.Quantity, component.Status,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create component: %w", err)
	}
	return nil
}

// GetByID obtém um componente por ID; nil se não existir.
func (r *ComponentRepo) GetByID(id string) (*entity.Component, error) {
	return r.get(id, false)
}

// GetForUpdate obtém o componente e bloqueia a linha (SELECT FOR UPDATE).
// É o ponto de serialização dos escritores concorrentes do mesmo agregado.
func (r *ComponentRepo) GetForUpdate(id string) (*entity.Component, error) {
	return r.get(id, true)
}

func (r *ComponentRepo) get(id string, forUpdate bool) (*entity.Component, error) {
	query := "SELECT " + componentColumns + " FROM components WHERE id = $1"
	if forUpdate {
		query += " FOR UPDATE"
	}
	c, err := scanComponent(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get component: %w", err)
	}
	return c, nil
}

// List lista componentes paginados por nome.
func (r *ComponentRepo) List(limit, offset int) ([]*entity.Component, error) {
	query := "SELECT " + componentColumns + " FROM components ORDER BY name LIMIT $1 OFFSET $2"
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}
	defer rows.Close()

	var list []*entity.Component
	for rows.Next() {
		c, err := scanComponent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan component: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Update grava os campos cadastrais (os derivados ficam com UpdateAggregate).
func (r *ComponentRepo) Update(component *entity.Component) error {
	query := `
		UPDATE components
		SET name = $2, description = $3, price = $4, min_stock = $5, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		component.ID, component.Name, component.Description, component.Price, component.MinStock)
	if err != nil {
		return fmt.Errorf("update component: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateAggregate reescreve quantidade total e status derivados.
func (r *ComponentRepo) UpdateAggregate(id string, quantity int64, status string) error {
	query := `UPDATE components SET quantity = $2, status = $3, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, quantity, status)
	if err != nil {
		return fmt.Errorf("update component aggregate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanComponent(row pgx.Row) (*entity.Component, error) {
	var c entity.Component
	err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Description, &c.Price,
		&c.MinStock, &c.Quantity, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
