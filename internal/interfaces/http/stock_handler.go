package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jportela/almoxarifado-api/internal/application/dto"
	"github.com/jportela/almoxarifado-api/internal/application/stock"
	"github.com/jportela/almoxarifado-api/internal/domain"
)

// StockHandler atende as rotas de movimentos e saldos.
type StockHandler struct {
	uc *stock.UseCase
}

// NewStockHandler constrói o handler.
func NewStockHandler(uc *stock.UseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// RecordMovement registra uma entrada ou saída no razão.
// POST /api/stock/movements
func (h *StockHandler) RecordMovement(c *fiber.Ctx) error {
	var in dto.RecordMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	id, err := h.uc.RecordMovement(c.Context(), stock.MovementInput{
		ComponentID: in.ComponentID,
		LocationID:  in.LocationID,
		OwnerID:     in.OwnerID,
		Type:        in.Type,
		Quantity:    in.Quantity,
		Reference:   in.Reference,
		CreatedBy:   in.CreatedBy,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// DeleteMovement remove um movimento; os saldos da chave são recomputados por
// replay completo do razão restante.
// DELETE /api/stock/movements/:id
func (h *StockHandler) DeleteMovement(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return respondError(c, domain.ErrInvalidInput)
	}
	if err := h.uc.DeleteMovement(c.Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListMovements lista os movimentos de um componente, com filtro de datas.
// GET /api/stock/movements?component_id=&from=&to=&limit=&offset=
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	componentID := c.Query("component_id")
	from, err := parseDateQuery(c.Query("from"))
	if err != nil {
		return respondError(c, domain.ErrInvalidInput)
	}
	to, err := parseDateQuery(c.Query("to"))
	if err != nil {
		return respondError(c, domain.ErrInvalidInput)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return respondError(c, domain.ErrInvalidInput)
	}
	page.DefaultPage()

	movements, err := h.uc.ListMovements(c.Context(), componentID, from, to, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, dto.NewMovementResponse(m))
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}

// GetBalance devolve o saldo de uma chave; chave nunca movimentada devolve zero.
// GET /api/stock/balances?component_id=&location_id=&owner_id=
func (h *StockHandler) GetBalance(c *fiber.Ctx) error {
	balance, err := h.uc.GetBalance(c.Context(), c.Query("component_id"), c.Query("location_id"), c.Query("owner_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewBalanceResponse(balance))
}

// ListBalances lista os saldos de um componente em todos os locais.
// GET /api/stock/balances/component/:id
func (h *StockHandler) ListBalances(c *fiber.Ctx) error {
	balances, err := h.uc.ListBalances(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.BalanceResponse, 0, len(balances))
	for _, b := range balances {
		out = append(out, dto.NewBalanceResponse(b))
	}
	return c.JSON(fiber.Map{"total": len(out), "balances": out})
}

// EditBalance aplica uma correção manual de saldo; a correção vira um
// movimento sintético de ajuste no razão.
// PUT /api/stock/balances
func (h *StockHandler) EditBalance(c *fiber.Ctx) error {
	var in dto.EditBalanceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	err := h.uc.EditBalance(c.Context(), stock.BalanceEditInput{
		ComponentID: in.ComponentID,
		LocationID:  in.LocationID,
		OwnerID:     in.OwnerID,
		Quantity:    in.Quantity,
		CreatedBy:   in.CreatedBy,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "saldo ajustado"})
}

// ClearBalance zera o saldo de uma chave (a linha permanece, com quantidade zero).
// DELETE /api/stock/balances?component_id=&location_id=&owner_id=
func (h *StockHandler) ClearBalance(c *fiber.Ctx) error {
	err := h.uc.ClearBalance(c.Context(), c.Query("component_id"), c.Query("location_id"), c.Query("owner_id"), c.Query("created_by"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "saldo zerado"})
}

// GetComponentAggregate devolve a quantidade total e o status do componente.
// GET /api/stock/components/:id
func (h *StockHandler) GetComponentAggregate(c *fiber.Ctx) error {
	agg, err := h.uc.GetComponentAggregate(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ComponentAggregateResponse{
		ComponentID: agg.ComponentID,
		Quantity:    agg.Quantity,
		Status:      agg.Status,
	})
}

// parseDateQuery aceita RFC 3339 ou data simples (2006-01-02); vazio vira nil.
func parseDateQuery(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		t, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, err
		}
	}
	return &t, nil
}
