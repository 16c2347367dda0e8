package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jportela/almoxarifado-api/internal/application/dto"
	"github.com/jportela/almoxarifado-api/internal/application/usecase"
	"github.com/jportela/almoxarifado-api/internal/domain"
)

// ComponentHandler atende o CRUD de componentes.
type ComponentHandler struct {
	uc *usecase.ComponentUseCase
}

// NewComponentHandler constrói o handler.
func NewComponentHandler(uc *usecase.ComponentUseCase) *ComponentHandler {
	return &ComponentHandler{uc: uc}
}

// Create cria um componente; nasce sem saldo e INDISPONIVEL.
// POST /api/components
func (h *ComponentHandler) Create(c *fiber.Ctx) error {
	var in dto.ComponentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	component, err := h.uc.Create(c.Context(), usecase.ComponentInput{
		OwnerID:     in.OwnerID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		MinStock:    in.MinStock,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewComponentResponse(component))
}

// List lista componentes paginados.
// GET /api/components?limit=&offset=
func (h *ComponentHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return respondError(c, domain.ErrInvalidInput)
	}
	page.DefaultPage()

	components, err := h.uc.List(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.ComponentResponse, 0, len(components))
	for _, component := range components {
		out = append(out, dto.NewComponentResponse(component))
	}
	return c.JSON(fiber.Map{"total": len(out), "components": out})
}

// GetByID devolve o componente com quantidade e status derivados correntes.
// GET /api/components/:id
func (h *ComponentHandler) GetByID(c *fiber.Ctx) error {
	component, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewComponentResponse(component))
}

// Update altera os campos cadastrais; mudar o estoque mínimo reclassifica o
// componente e pode emitir notificação de transição.
// PUT /api/components/:id
func (h *ComponentHandler) Update(c *fiber.Ctx) error {
	var in dto.ComponentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	component, err := h.uc.Update(c.Context(), c.Params("id"), usecase.ComponentInput{
		OwnerID:     in.OwnerID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		MinStock:    in.MinStock,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewComponentResponse(component))
}
