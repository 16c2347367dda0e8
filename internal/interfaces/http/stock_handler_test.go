package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jportela/almoxarifado-api/internal/application/stock"
	"github.com/jportela/almoxarifado-api/internal/application/stock/stocktest"
	"github.com/jportela/almoxarifado-api/internal/application/usecase"
	"github.com/jportela/almoxarifado-api/internal/domain/entity"
	"github.com/jportela/almoxarifado-api/internal/infrastructure/notify"
	apphttp "github.com/jportela/almoxarifado-api/internal/interfaces/http"
	"github.com/jportela/almoxarifado-api/pkg/logger"
)

const (
	testOwnerID = "00000000-0000-0000-0000-0000000000aa"
)

type testEnv struct {
	app         *fiber.App
	store       *stocktest.Store
	componentID string
	locationID  string
}

// buildTestApp monta a aplicação completa sobre o store em memória.
func buildTestApp(t *testing.T) *testEnv {
	t.Helper()

	store := stocktest.NewStore()
	txRunner := stocktest.NewTxRunner(store)
	dispatcher := &stocktest.DispatcherRecorder{}
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	orch := stock.NewOrchestrator(txRunner, dispatcher, log, stock.OrchestratorConfig{})

	repos := store.Repos()
	stockUC := stock.NewUseCase(orch, repos.Movements, repos.Balances, repos.Components, store.LocationRepo())
	componentUC := usecase.NewComponentUseCase(repos.Components, orch)
	notificationUC := usecase.NewNotificationUseCase(repos.Notifications)

	component := &entity.Component{OwnerID: testOwnerID, Name: "Sensor DHT22", MinStock: 5, Status: entity.StatusIndisponivel}
	store.SeedComponent(component)
	location := &entity.Location{Name: "Gaveta 3"}
	store.SeedLocation(location)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		StockUC:        stockUC,
		ComponentUC:    componentUC,
		NotificationUC: notificationUC,
		Hub:            notify.NewHub(4),
	})
	return &testEnv{app: app, store: store, componentID: component.ID, locationID: location.ID}
}

func (e *testEnv) request(t *testing.T, method, target string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), "corpo: %s", raw)
	return out
}

func (e *testEnv) movementBody(kind string, quantity int64) map[string]any {
	return map[string]any{
		"component_id": e.componentID,
		"location_id":  e.locationID,
		"owner_id":     testOwnerID,
		"type":         kind,
		"quantity":     quantity,
		"reference":    "os 7",
	}
}

func TestRecordMovementEndpoint(t *testing.T) {
	env := buildTestApp(t)

	resp := env.request(t, http.MethodPost, "/api/stock/movements", env.movementBody("IN", 10))
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["id"])

	component := env.store.Component(env.componentID)
	assert.Equal(t, int64(10), component.Quantity)
	assert.Equal(t, entity.StatusEmEstoque, component.Status)
}

func TestRecordMovementEndpointValidation(t *testing.T) {
	env := buildTestApp(t)

	resp := env.request(t, http.MethodPost, "/api/stock/movements", env.movementBody("TRANSFER", 10))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "VALIDATION", body["code"])
}

func TestRecordMovementEndpointInsufficientStock(t *testing.T) {
	env := buildTestApp(t)

	resp := env.request(t, http.MethodPost, "/api/stock/movements", env.movementBody("IN", 4))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = env.request(t, http.MethodPost, "/api/stock/movements", env.movementBody("OUT", 9))
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	assert.Equal(t, "estoque insuficiente, disponível: 4", body["message"], "a resposta carrega o saldo disponível")
}

func TestDeleteMovementEndpoint(t *testing.T) {
	env := buildTestApp(t)

	resp := env.request(t, http.MethodPost, "/api/stock/movements", env.movementBody("IN", 10))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	movementID := decodeBody(t, resp)["id"].(string)

	resp = env.request(t, http.MethodDelete, "/api/stock/movements/"+movementID, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	component := env.store.Component(env.componentID)
	assert.Equal(t, int64(0), component.Quantity, "remover o movimento recomputa por replay")
	assert.Equal(t, entity.StatusIndisponivel, component.Status)
}

func TestDeleteMovementEndpointNotFound(t *testing.T) {
	env := buildTestApp(t)
	resp := env.request(t, http.MethodDelete, "/api/stock/movements/inexistente", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestGetBalanceEndpointZeroKey(t *testing.T) {
	env := buildTestApp(t)

	target := fmt.Sprintf("/api/stock/balances?component_id=%s&location_id=%s&owner_id=%s",
		env.componentID, env.locationID, testOwnerID)
	resp := env.request(t, http.MethodGet, target, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(0), body["quantity"], "chave nunca movimentada responde saldo zero")
}

func TestEditBalanceEndpoint(t *testing.T) {
	env := buildTestApp(t)

	resp := env.request(t, http.MethodPut, "/api/stock/balances", map[string]any{
		"component_id": env.componentID,
		"location_id":  env.locationID,
		"owner_id":     testOwnerID,
		"quantity":     8,
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	component := env.store.Component(env.componentID)
	assert.Equal(t, int64(8), component.Quantity)
	assert.Equal(t, 1, env.store.MovementCount(), "a edição direta vira movimento sintético no razão")
}

func TestClearBalanceEndpoint(t *testing.T) {
	env := buildTestApp(t)

	resp := env.request(t, http.MethodPost, "/api/stock/movements", env.movementBody("IN", 10))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	target := fmt.Sprintf("/api/stock/balances?component_id=%s&location_id=%s&owner_id=%s",
		env.componentID, env.locationID, testOwnerID)
	resp = env.request(t, http.MethodDelete, target, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.request(t, http.MethodGet, target, nil)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(0), body["quantity"], "zerar mantém a linha consultável com quantidade zero")
}

func TestComponentAggregateEndpoint(t *testing.T) {
	env := buildTestApp(t)

	resp := env.request(t, http.MethodPost, "/api/stock/movements", env.movementBody("IN", 3))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = env.request(t, http.MethodGet, "/api/stock/components/"+env.componentID, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(3), body["quantity"])
	assert.Equal(t, entity.StatusBaixoEstoque, body["status"])
}

func TestNotificationsEndpoint(t *testing.T) {
	env := buildTestApp(t)

	// INDISPONIVEL -> EM_ESTOQUE gera a notificação
	resp := env.request(t, http.MethodPost, "/api/stock/movements", env.movementBody("IN", 10))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = env.request(t, http.MethodGet, "/api/notifications/?owner_id="+testOwnerID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	require.Equal(t, float64(1), body["total"])

	items := body["notifications"].([]any)
	first := items[0].(map[string]any)
	assert.Equal(t, "Sensor DHT22 está em estoque (10 unidades)", first["message"])
	assert.Equal(t, false, first["viewed"])

	// marcar como vista
	resp = env.request(t, http.MethodPatch, "/api/notifications/"+first["id"].(string)+"/viewed", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.request(t, http.MethodGet, "/api/notifications/?owner_id="+testOwnerID+"&unviewed=true", nil)
	body = decodeBody(t, resp)
	assert.Equal(t, float64(0), body["total"], "notificação vista sai do filtro de não vistas")
}

func TestComponentEndpoints(t *testing.T) {
	env := buildTestApp(t)

	resp := env.request(t, http.MethodPost, "/api/components/", map[string]any{
		"owner_id":  testOwnerID,
		"name":      "Relé 5V",
		"price":     "12.50",
		"min_stock": 2,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)
	assert.Equal(t, entity.StatusIndisponivel, created["status"], "componente nasce sem saldo")

	resp = env.request(t, http.MethodGet, "/api/components/"+created["id"].(string), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	got := decodeBody(t, resp)
	assert.Equal(t, "Relé 5V", got["name"])

	resp = env.request(t, http.MethodGet, "/api/components/", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	list := decodeBody(t, resp)
	assert.Equal(t, float64(2), list["total"])
}

func TestComponentUpdateMinStockReclassifies(t *testing.T) {
	env := buildTestApp(t)

	resp := env.request(t, http.MethodPost, "/api/stock/movements", env.movementBody("IN", 10))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// com 10 em estoque, subir o mínimo para 20 reclassifica para BAIXO_ESTOQUE
	resp = env.request(t, http.MethodPut, "/api/components/"+env.componentID, map[string]any{
		"owner_id":  testOwnerID,
		"name":      "Sensor DHT22",
		"price":     "0",
		"min_stock": 20,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, entity.StatusBaixoEstoque, body["status"])

	notifications := env.store.Notifications()
	require.NotEmpty(t, notifications)
	last := notifications[len(notifications)-1]
	assert.Equal(t, "Sensor DHT22 está com estoque baixo (10 unidades)", last.Message)
}
