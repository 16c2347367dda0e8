package repository

import "github.com/jportela/almoxarifado-api/internal/domain/entity"

// ComponentRepository porta de persistência de componentes.
type ComponentRepository interface {
	Create(component *entity.Component) error
	GetByID(id string) (*entity.Component, error)
	// GetForUpdate bloqueia a linha do componente (SELECT FOR UPDATE); é o
	// ponto de serialização de escritores concorrentes do mesmo agregado.
	GetForUpdate(id string) (*entity.Component, error)
	List(limit, offset int) ([]*entity.Component, error)
	Update(component *entity.Component) error
	// UpdateAggregate reescreve os campos derivados (quantidade total e status).
	UpdateAggregate(id string, quantity int64, status string) error
}
