package stock

import (
	"context"
	"time"

	"github.com/jportela/almoxarifado-api/internal/domain"
	"github.com/jportela/almoxarifado-api/internal/domain/entity"
	"github.com/jportela/almoxarifado-api/internal/domain/repository"
	"github.com/jportela/almoxarifado-api/internal/metrics"
)

// Referência gravada nos movimentos sintéticos criados por edição direta de saldo.
const manualAdjustmentReference = "ajuste manual"

// UseCase é o gatilho de entrada do motor de consistência: registra e remove
// movimentos, aplica edições diretas de saldo e expõe o modelo de leitura
// (saldo por chave e agregado por componente).
type UseCase struct {
	orchestrator  *Orchestrator
	movementRepo  repository.MovementRepository
	balanceRepo   repository.BalanceRepository
	componentRepo repository.ComponentRepository
	locationRepo  repository.LocationRepository
}

// NewUseCase constrói o caso de uso com repositórios atados ao pool (leituras
// fora de transação) e o orquestrador para as mutações.
func NewUseCase(
	orchestrator *Orchestrator,
	movementRepo repository.MovementRepository,
	balanceRepo repository.BalanceRepository,
	componentRepo repository.ComponentRepository,
	locationRepo repository.LocationRepository,
) *UseCase {
	return &UseCase{
		orchestrator:  orchestrator,
		movementRepo:  movementRepo,
		balanceRepo:   balanceRepo,
		componentRepo: componentRepo,
		locationRepo:  locationRepo,
	}
}

// MovementInput entrada para registrar um movimento.
type MovementInput struct {
	ComponentID string
	LocationID  string
	OwnerID     string
	Type        string // IN | OUT
	Quantity    int64
	Reference   string
	CreatedBy   string
}

// RecordMovement valida, grava o movimento no razão e recomputa a chave, tudo
// na mesma transação. Para OUT, o saldo corrente é lido com bloqueio de linha
// antes do append: saldo insuficiente rejeita a mutação sem tocar o razão.
func (uc *UseCase) RecordMovement(ctx context.Context, input MovementInput) (string, error) {
	if input.Type != entity.MovementTypeIN && input.Type != entity.MovementTypeOUT {
		return "", domain.ErrInvalidInput
	}
	if input.Quantity <= 0 {
		return "", domain.ErrInvalidInput
	}
	if err := uc.validateRefs(input.ComponentID, input.LocationID, input.OwnerID); err != nil {
		return "", err
	}

	key := entity.BalanceKey{ComponentID: input.ComponentID, LocationID: input.LocationID, OwnerID: input.OwnerID}
	now := time.Now()

	var movementID string
	err := uc.orchestrator.Mutate(ctx, key, func(r Repos) error {
		if input.Type == entity.MovementTypeOUT {
			balance, err := r.Balances.GetForUpdate(key)
			if err != nil {
				return err
			}
			if balance.Quantity < input.Quantity {
				return &domain.InsufficientStockError{Available: balance.Quantity}
			}
		}
		movement := &entity.Movement{
			ComponentID: input.ComponentID,
			LocationID:  input.LocationID,
			OwnerID:     input.OwnerID,
			Type:        input.Type,
			Quantity:    input.Quantity,
			Reference:   input.Reference,
			Date:        now,
			CreatedAt:   now,
			CreatedBy:   input.CreatedBy,
		}
		if err := r.Movements.Create(movement); err != nil {
			return err
		}
		movementID = movement.ID
		return nil
	})
	if err != nil {
		return "", err
	}

	metrics.MovementsRecorded.WithLabelValues(input.Type).Inc()
	return movementID, nil
}

// DeleteMovement remove um movimento e recomputa a chave dele como se o
// movimento nunca tivesse existido (replay completo, sem atalho de subtração).
func (uc *UseCase) DeleteMovement(ctx context.Context, movementID string) error {
	movement, err := uc.movementRepo.GetByID(movementID)
	if err != nil {
		return err
	}
	if movement == nil {
		return domain.ErrNotFound
	}

	key := entity.BalanceKey{ComponentID: movement.ComponentID, LocationID: movement.LocationID, OwnerID: movement.OwnerID}
	return uc.orchestrator.Mutate(ctx, key, func(r Repos) error {
		return r.Movements.Delete(movement.ID)
	})
}

// BalanceEditInput entrada para edição direta de saldo (correção manual).
type BalanceEditInput struct {
	ComponentID string
	LocationID  string
	OwnerID     string
	Quantity    int64
	CreatedBy   string
}

// EditBalance aplica uma correção manual de saldo. A correção vira um
// movimento sintético de ajuste no razão (IN ou OUT pelo delta contra a soma
// corrente), de modo que o razão continua sendo a única fonte de verdade: o
// próximo replay reproduz a correção em vez de revertê-la silenciosamente.
func (uc *UseCase) EditBalance(ctx context.Context, input BalanceEditInput) error {
	if input.Quantity < 0 {
		return domain.ErrInvalidInput
	}
	if err := uc.validateRefs(input.ComponentID, input.LocationID, input.OwnerID); err != nil {
		return err
	}

	key := entity.BalanceKey{ComponentID: input.ComponentID, LocationID: input.LocationID, OwnerID: input.OwnerID}
	now := time.Now()

	return uc.orchestrator.Mutate(ctx, key, func(r Repos) error {
		in, out, err := r.Movements.SumByKey(key)
		if err != nil {
			return err
		}
		// Delta contra a soma crua (sem clamp): se o razão estiver negativo por
		// remoções passadas, o ajuste compensa e o replay chega à quantidade pedida.
		delta := input.Quantity - (in - out)
		if delta == 0 {
			return nil // recomputação ainda roda; é idempotente
		}
		movementType := entity.MovementTypeIN
		if delta < 0 {
			movementType = entity.MovementTypeOUT
			delta = -delta
		}
		return r.Movements.Create(&entity.Movement{
			ComponentID: input.ComponentID,
			LocationID:  input.LocationID,
			OwnerID:     input.OwnerID,
			Type:        movementType,
			Quantity:    delta,
			Reference:   manualAdjustmentReference,
			Date:        now,
			CreatedAt:   now,
			CreatedBy:   input.CreatedBy,
		})
	})
}

// ClearBalance zera o saldo de uma chave. A "remoção" de um saldo é modelada
// como edição para zero: a linha permanece, porque saldo zero é um fato
// consultável, e o agregado do componente é recomputado.
func (uc *UseCase) ClearBalance(ctx context.Context, componentID, locationID, ownerID, createdBy string) error {
	return uc.EditBalance(ctx, BalanceEditInput{
		ComponentID: componentID,
		LocationID:  locationID,
		OwnerID:     ownerID,
		Quantity:    0,
		CreatedBy:   createdBy,
	})
}

// GetBalance devolve o saldo da chave; chave sem linha devolve saldo zero.
func (uc *UseCase) GetBalance(_ context.Context, componentID, locationID, ownerID string) (*entity.Balance, error) {
	if componentID == "" || locationID == "" || ownerID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.balanceRepo.Get(entity.BalanceKey{ComponentID: componentID, LocationID: locationID, OwnerID: ownerID})
}

// ListBalances lista os saldos de um componente em todos os locais.
func (uc *UseCase) ListBalances(_ context.Context, componentID string) ([]*entity.Balance, error) {
	if componentID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.balanceRepo.ListByComponent(componentID)
}

// ComponentAggregate agregado corrente de um componente.
type ComponentAggregate struct {
	ComponentID string
	Quantity    int64
	Status      string
}

// GetComponentAggregate devolve quantidade total e status do componente.
func (uc *UseCase) GetComponentAggregate(_ context.Context, componentID string) (*ComponentAggregate, error) {
	component, err := uc.componentRepo.GetByID(componentID)
	if err != nil {
		return nil, err
	}
	if component == nil {
		return nil, domain.ErrNotFound
	}
	return &ComponentAggregate{ComponentID: component.ID, Quantity: component.Quantity, Status: component.Status}, nil
}

// ListMovements lista os movimentos de um componente em um intervalo de datas.
func (uc *UseCase) ListMovements(_ context.Context, componentID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	if componentID == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uc.movementRepo.ListByComponent(componentID, from, to, limit, offset)
}

// validateRefs confirma que componente e local existem antes de abrir a transação.
func (uc *UseCase) validateRefs(componentID, locationID, ownerID string) error {
	if componentID == "" || locationID == "" || ownerID == "" {
		return domain.ErrInvalidInput
	}
	component, err := uc.componentRepo.GetByID(componentID)
	if err != nil {
		return err
	}
	if component == nil {
		return domain.ErrNotFound
	}
	location, err := uc.locationRepo.GetByID(locationID)
	if err != nil {
		return err
	}
	if location == nil {
		return domain.ErrNotFound
	}
	return nil
}
