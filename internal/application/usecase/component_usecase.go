package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jportela/almoxarifado-api/internal/application/stock"
	"github.com/jportela/almoxarifado-api/internal/domain"
	"github.com/jportela/almoxarifado-api/internal/domain/entity"
	"github.com/jportela/almoxarifado-api/internal/domain/repository"
)

// ComponentUseCase CRUD de componentes. A única interseção com o motor de
// consistência é o estoque mínimo: alterá-lo reclassifica o componente, então
// o update dispara a recomputação de agregado.
type ComponentUseCase struct {
	repo         repository.ComponentRepository
	orchestrator *stock.Orchestrator
}

// NewComponentUseCase constrói o caso de uso.
func NewComponentUseCase(repo repository.ComponentRepository, orchestrator *stock.Orchestrator) *ComponentUseCase {
	return &ComponentUseCase{repo: repo, orchestrator: orchestrator}
}

// ComponentInput entrada para criar/atualizar um componente.
type ComponentInput struct {
	OwnerID     string
	Name        string
	Description string
	Price       decimal.Decimal
	MinStock    int64
}

// Create cria o componente com os derivados zerados (sem saldo, INDISPONIVEL).
func (uc *ComponentUseCase) Create(_ context.Context, input ComponentInput) (*entity.Component, error) {
	if input.OwnerID == "" || input.Name == "" || input.MinStock < 0 || input.Price.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	component := &entity.Component{
		OwnerID:     input.OwnerID,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		MinStock:    input.MinStock,
		Quantity:    0,
		Status:      entity.StatusIndisponivel,
	}
	if err := uc.repo.Create(component); err != nil {
		return nil, err
	}
	return component, nil
}

// GetByID devolve o componente, com os derivados correntes.
func (uc *ComponentUseCase) GetByID(_ context.Context, id string) (*entity.Component, error) {
	component, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if component == nil {
		return nil, domain.ErrNotFound
	}
	return component, nil
}

// List lista componentes paginados.
func (uc *ComponentUseCase) List(_ context.Context, limit, offset int) ([]*entity.Component, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uc.repo.List(limit, offset)
}

// Update altera os campos cadastrais. Se o estoque mínimo mudou, a
// classificação pode ter mudado também: reavalia agregado e notificação.
func (uc *ComponentUseCase) Update(ctx context.Context, id string, input ComponentInput) (*entity.Component, error) {
	if input.Name == "" || input.MinStock < 0 || input.Price.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	component, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if component == nil {
		return nil, domain.ErrNotFound
	}

	minStockChanged := component.MinStock != input.MinStock
	component.Name = input.Name
	component.Description = input.Description
	component.Price = input.Price
	component.MinStock = input.MinStock
	if err := uc.repo.Update(component); err != nil {
		return nil, err
	}

	if minStockChanged {
		if err := uc.orchestrator.RecomputeComponent(ctx, id); err != nil {
			return nil, err
		}
	}
	return uc.repo.GetByID(id)
}
