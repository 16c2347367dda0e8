package stock_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jportela/almoxarifado-api/internal/application/stock"
	"github.com/jportela/almoxarifado-api/internal/application/stock/stocktest"
	"github.com/jportela/almoxarifado-api/internal/domain"
	"github.com/jportela/almoxarifado-api/internal/domain/entity"
	"github.com/jportela/almoxarifado-api/pkg/logger"
)

type engine struct {
	store      *stocktest.Store
	txRunner   *stocktest.TxRunner
	dispatcher *stocktest.DispatcherRecorder
	uc         *stock.UseCase
	orch       *stock.Orchestrator
}

func newEngine(t *testing.T, maxRetries uint64) *engine {
	t.Helper()
	store := stocktest.NewStore()
	txRunner := stocktest.NewTxRunner(store)
	dispatcher := &stocktest.DispatcherRecorder{}
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	orch := stock.NewOrchestrator(txRunner, dispatcher, log, stock.OrchestratorConfig{MaxRetries: maxRetries})
	repos := store.Repos()
	uc := stock.NewUseCase(orch, repos.Movements, repos.Balances, repos.Components, store.LocationRepo())
	return &engine{store: store, txRunner: txRunner, dispatcher: dispatcher, uc: uc, orch: orch}
}

func (e *engine) seed(t *testing.T, minStock int64) (componentID, locationID string) {
	t.Helper()
	component := &entity.Component{OwnerID: ownerID, Name: "Capacitor 100uF", MinStock: minStock, Status: entity.StatusIndisponivel}
	e.store.SeedComponent(component)
	location := &entity.Location{Name: "Prateleira A"}
	e.store.SeedLocation(location)
	return component.ID, location.ID
}

const ownerID = "00000000-0000-0000-0000-000000000001"

func movement(componentID, locationID, kind string, quantity int64) stock.MovementInput {
	return stock.MovementInput{
		ComponentID: componentID,
		LocationID:  locationID,
		OwnerID:     ownerID,
		Type:        kind,
		Quantity:    quantity,
		Reference:   "pedido 42",
	}
}

func TestRecordMovementIN(t *testing.T) {
	e := newEngine(t, 0)
	componentID, locationID := e.seed(t, 5)
	ctx := context.Background()

	id, err := e.uc.RecordMovement(ctx, movement(componentID, locationID, entity.MovementTypeIN, 10))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	key := entity.BalanceKey{ComponentID: componentID, LocationID: locationID, OwnerID: ownerID}
	balance := e.store.Balance(key)
	require.NotNil(t, balance, "a entrada deve materializar a linha de saldo")
	assert.Equal(t, int64(10), balance.Quantity)

	component := e.store.Component(componentID)
	assert.Equal(t, int64(10), component.Quantity)
	assert.Equal(t, entity.StatusEmEstoque, component.Status)
}

func TestRecordMovementValidation(t *testing.T) {
	e := newEngine(t, 0)
	componentID, locationID := e.seed(t, 5)
	ctx := context.Background()

	cases := []struct {
		name  string
		input stock.MovementInput
		want  error
	}{
		{"tipo inválido", movement(componentID, locationID, "TRANSFER", 1), domain.ErrInvalidInput},
		{"quantidade zero", movement(componentID, locationID, entity.MovementTypeIN, 0), domain.ErrInvalidInput},
		{"quantidade negativa", movement(componentID, locationID, entity.MovementTypeIN, -3), domain.ErrInvalidInput},
		{"componente inexistente", movement("inexistente", locationID, entity.MovementTypeIN, 1), domain.ErrNotFound},
		{"local inexistente", movement(componentID, "inexistente", entity.MovementTypeIN, 1), domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.uc.RecordMovement(ctx, tc.input)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Equal(t, 0, e.store.MovementCount(), "entrada rejeitada não pode tocar o razão")
}

func TestRecordMovementOUTInsufficient(t *testing.T) {
	e := newEngine(t, 0)
	componentID, locationID := e.seed(t, 5)
	ctx := context.Background()

	_, err := e.uc.RecordMovement(ctx, movement(componentID, locationID, entity.MovementTypeIN, 5))
	require.NoError(t, err)

	_, err = e.uc.RecordMovement(ctx, movement(componentID, locationID, entity.MovementTypeOUT, 8))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(5), insufficient.Available, "a rejeição carrega o saldo disponível no momento da checagem")

	assert.Equal(t, 1, e.store.MovementCount(), "a saída rejeitada não entra no razão")
	component := e.store.Component(componentID)
	assert.Equal(t, int64(5), component.Quantity)
}

func TestRecordMovementOUTExact(t *testing.T) {
	e := newEngine(t, 0)
	componentID, locationID := e.seed(t, 5)
	ctx := context.Background()

	_, err := e.uc.RecordMovement(ctx, movement(componentID, locationID, entity.MovementTypeIN, 5))
	require.NoError(t, err)
	_, err = e.uc.RecordMovement(ctx, movement(componentID, locationID, entity.MovementTypeOUT, 5))
	require.NoError(t, err, "saída igual ao saldo deve passar")

	key := entity.BalanceKey{ComponentID: componentID, LocationID: locationID, OwnerID: ownerID}
	assert.Equal(t, int64(0), e.store.Balance(key).Quantity)
	assert.Equal(t, entity.StatusIndisponivel, e.store.Component(componentID).Status)
}

func TestDeleteMovementReplays(t *testing.T) {
	e := newEngine(t, 0)
	componentID, locationID := e.seed(t, 5)
	ctx := context.Background()

	inID, err := e.uc.RecordMovement(ctx, movement(componentID, locationID, entity.MovementTypeIN, 10))
	require.NoError(t, err)
	_, err = e.uc.RecordMovement(ctx, movement(componentID, locationID, entity.MovementTypeOUT, 4))
	require.NoError(t, err)

	// Remover a entrada deixa o razão com ΣIN-ΣOUT = -4; o replay grampeia em 0.
	require.NoError(t, e.uc.DeleteMovement(ctx, inID))

	key := entity.BalanceKey{ComponentID: componentID, LocationID: locationID, OwnerID: ownerID}
	assert.Equal(t, int64(0), e.store.Balance(key).Quantity, "soma negativa do razão grampeia o saldo em zero")
	component := e.store.Component(componentID)
	assert.Equal(t, int64(0), component.Quantity)
	assert.Equal(t, entity.StatusIndisponivel, component.Status)
}

func TestDeleteMovementNotFound(t *testing.T) {
	e := newEngine(t, 0)
	e.seed(t, 5)
	err := e.uc.DeleteMovement(context.Background(), "inexistente")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEditBalance(t *testing.T) {
	e := newEngine(t, 0)
	componentID, locationID := e.seed(t, 5)
	ctx := context.Background()
	key := entity.BalanceKey{ComponentID: componentID, LocationID: locationID, OwnerID: ownerID}

	_, err := e.uc.RecordMovement(ctx, movement(componentID, locationID, entity.MovementTypeIN, 10))
	require.NoError(t, err)

	err = e.uc.EditBalance(ctx, stock.BalanceEditInput{
		ComponentID: componentID, LocationID: locationID, OwnerID: ownerID, Quantity: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3), e.store.Balance(key).Quantity)
	assert.Equal(t, 2, e.store.MovementCount(), "a correção vira movimento sintético no razão")
	component := e.store.Component(componentID)
	assert.Equal(t, int64(3), component.Quantity)
	assert.Equal(t, entity.StatusBaixoEstoque, component.Status)

	// O ajuste é um fato do razão: um novo replay reproduz a correção.
	require.NoError(t, e.orch.RecomputeComponent(ctx, componentID))
	assert.Equal(t, int64(3), e.store.Component(componentID).Quantity)
}

func TestEditBalanceAfterNegativeLedger(t *testing.T) {
	e := newEngine(t, 0)
	componentID, locationID := e.seed(t, 5)
	ctx := context.Background()
	key := entity.BalanceKey{ComponentID: componentID, LocationID: locationID, OwnerID: ownerID}

	inID, err := e.uc.RecordMovement(ctx, movement(componentID, locationID, entity.MovementTypeIN, 10))
	require.NoError(t, err)
	_, err = e.uc.RecordMovement(ctx, movement(componentID, locationID, entity.MovementTypeOUT, 4))
	require.NoError(t, err)
	require.NoError(t, e.uc.DeleteMovement(ctx, inID)) // razão fica em -4, saldo em 0

	// O delta do ajuste é contra a soma crua (-4), não contra o saldo grampeado.
	err = e.uc.EditBalance(ctx, stock.BalanceEditInput{
		ComponentID: componentID, LocationID: locationID, OwnerID: ownerID, Quantity: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), e.store.Balance(key).Quantity)

	require.NoError(t, e.orch.RecomputeComponent(ctx, componentID))
	assert.Equal(t, int64(7), e.store.Component(componentID).Quantity, "replay posterior chega à quantidade pedida")
}

func TestEditBalanceNegativeRejected(t *testing.T) {
	e := newEngine(t, 0)
	componentID, locationID := e.seed(t, 5)
	err := e.uc.EditBalance(context.Background(), stock.BalanceEditInput{
		ComponentID: componentID, LocationID: locationID, OwnerID: ownerID, Quantity: -1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClearBalance(t *testing.T) {
	e := newEngine(t, 0)
	componentID, locationID := e.seed(t, 5)
	ctx := context.Background()
	key := entity.BalanceKey{ComponentID: componentID, LocationID: locationID, OwnerID: ownerID}

	_, err := e.uc.RecordMovement(ctx, movement(componentID, locationID, entity.MovementTypeIN, 10))
	require.NoError(t, err)

	require.NoError(t, e.uc.ClearBalance(ctx, componentID, locationID, ownerID, "admin"))

	balance := e.store.Balance(key)
	require.NotNil(t, balance, "zerar mantém a linha: saldo zero é um fato consultável")
	assert.Equal(t, int64(0), balance.Quantity)
	assert.Equal(t, entity.StatusIndisponivel, e.store.Component(componentID).Status)
}

func TestGetBalanceZeroForUnknownKey(t *testing.T) {
	e := newEngine(t, 0)
	componentID, locationID := e.seed(t, 5)

	balance, err := e.uc.GetBalance(context.Background(), componentID, locationID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance.Quantity, "chave nunca movimentada responde saldo zero, não erro")
}

func TestAggregateAcrossLocations(t *testing.T) {
	e := newEngine(t, 12)
	componentID, locationID := e.seed(t, 12)
	other := &entity.Location{Name: "Prateleira B"}
	e.store.SeedLocation(other)
	ctx := context.Background()

	_, err := e.uc.RecordMovement(ctx, movement(componentID, locationID, entity.MovementTypeIN, 6))
	require.NoError(t, err)
	_, err = e.uc.RecordMovement(ctx, movement(componentID, other.ID, entity.MovementTypeIN, 4))
	require.NoError(t, err)

	agg, err := e.uc.GetComponentAggregate(ctx, componentID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), agg.Quantity, "o agregado soma os saldos de todos os locais")
	assert.Equal(t, entity.StatusBaixoEstoque, agg.Status)

	balances, err := e.uc.ListBalances(ctx, componentID)
	require.NoError(t, err)
	assert.Len(t, balances, 2)
}

func TestNotificationsOnlyOnTransition(t *testing.T) {
	e := newEngine(t, 0)
	componentID, locationID := e.seed(t, 5)
	ctx := context.Background()

	// INDISPONIVEL -> EM_ESTOQUE
	_, err := e.uc.RecordMovement(ctx, movement(componentID, locationID, entity.MovementTypeIN, 10))
	require.NoError(t, err)
	// mesmo status, sem notificação
	_, err = e.uc.RecordMovement(ctx, movement(componentID, locationID, entity.MovementTypeIN, 5))
	require.NoError(t, err)
	// EM_ESTOQUE -> BAIXO_ESTOQUE
	_, err = e.uc.RecordMovement(ctx, movement(componentID, locationID, entity.MovementTypeOUT, 12))
	require.NoError(t, err)
	// BAIXO_ESTOQUE -> INDISPONIVEL
	_, err = e.uc.RecordMovement(ctx, movement(componentID, locationID, entity.MovementTypeOUT, 3))
	require.NoError(t, err)

	notifications := e.store.Notifications()
	require.Len(t, notifications, 3, "apenas transições de status notificam")
	assert.Equal(t, "Capacitor 100uF está em estoque (10 unidades)", notifications[0].Message)
	assert.Equal(t, "Capacitor 100uF está com estoque baixo (3 unidades)", notifications[1].Message)
	assert.Equal(t, "Capacitor 100uF está indisponível (0 unidades)", notifications[2].Message)

	dispatched := e.dispatcher.Dispatched()
	require.Len(t, dispatched, 3, "cada notificação criada é despachada uma vez após o commit")
}

func TestDispatchFailureDoesNotFailMutation(t *testing.T) {
	e := newEngine(t, 0)
	componentID, locationID := e.seed(t, 5)
	e.dispatcher.Err = assert.AnError

	_, err := e.uc.RecordMovement(context.Background(), movement(componentID, locationID, entity.MovementTypeIN, 10))
	require.NoError(t, err, "falha de despacho é registrada e descartada, nunca desfaz a escrita")

	notifications := e.store.Notifications()
	assert.Len(t, notifications, 1, "a notificação persiste mesmo com o despacho falhando")
	assert.Equal(t, entity.StatusEmEstoque, e.store.Component(componentID).Status)
}

func TestConsistencyRaceRetries(t *testing.T) {
	e := newEngine(t, 3)
	componentID, locationID := e.seed(t, 5)
	e.txRunner.InjectRaces(2)

	_, err := e.uc.RecordMovement(context.Background(), movement(componentID, locationID, entity.MovementTypeIN, 10))
	require.NoError(t, err, "falhas de serialização dentro do limite são retentadas")
	assert.Equal(t, 3, e.txRunner.Runs())
	assert.Equal(t, int64(10), e.store.Component(componentID).Quantity)
}

func TestConsistencyRaceExhausted(t *testing.T) {
	e := newEngine(t, 2)
	componentID, locationID := e.seed(t, 5)
	e.txRunner.InjectRaces(10)

	_, err := e.uc.RecordMovement(context.Background(), movement(componentID, locationID, entity.MovementTypeIN, 10))
	assert.ErrorIs(t, err, domain.ErrConsistencyRace, "esgotadas as tentativas, o erro sobe ao chamador")
}

func TestConcurrentMovementsDoNotLoseUpdates(t *testing.T) {
	e := newEngine(t, 0)
	componentID, locationID := e.seed(t, 5)
	ctx := context.Background()

	const writers = 32
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			_, err := e.uc.RecordMovement(ctx, movement(componentID, locationID, entity.MovementTypeIN, 1))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	component := e.store.Component(componentID)
	assert.Equal(t, int64(writers), component.Quantity, "escritores concorrentes da mesma chave não podem perder atualizações")
	assert.Equal(t, entity.StatusEmEstoque, component.Status)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	e := newEngine(t, 0)
	componentID, locationID := e.seed(t, 5)
	ctx := context.Background()

	_, err := e.uc.RecordMovement(ctx, movement(componentID, locationID, entity.MovementTypeIN, 7))
	require.NoError(t, err)

	before := e.store.Component(componentID)
	require.NoError(t, e.orch.RecomputeComponent(ctx, componentID))
	require.NoError(t, e.orch.RecomputeComponent(ctx, componentID))
	after := e.store.Component(componentID)

	assert.Equal(t, before.Quantity, after.Quantity)
	assert.Equal(t, before.Status, after.Status)
	assert.Len(t, e.store.Notifications(), 1, "recomputar sem mudança de status não emite nada novo")
}
