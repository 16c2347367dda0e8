package http

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/jportela/almoxarifado-api/internal/application/dto"
	"github.com/jportela/almoxarifado-api/internal/application/usecase"
	"github.com/jportela/almoxarifado-api/internal/domain"
	"github.com/jportela/almoxarifado-api/internal/infrastructure/notify"
)

// NotificationHandler atende listagem, marcação e stream de notificações.
type NotificationHandler struct {
	uc  *usecase.NotificationUseCase
	hub *notify.Hub
}

// NewNotificationHandler constrói o handler.
func NewNotificationHandler(uc *usecase.NotificationUseCase, hub *notify.Hub) *NotificationHandler {
	return &NotificationHandler{uc: uc, hub: hub}
}

// List lista as notificações de um dono, opcionalmente só as não vistas.
// GET /api/notifications?owner_id=&unviewed=&limit=&offset=
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return respondError(c, domain.ErrInvalidInput)
	}
	page.DefaultPage()

	notifications, err := h.uc.ListByOwner(c.Context(), c.Query("owner_id"), c.QueryBool("unviewed"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, dto.NewNotificationResponse(n))
	}
	return c.JSON(fiber.Map{"total": len(out), "notifications": out})
}

// MarkViewed marca a notificação como vista.
// PATCH /api/notifications/:id/viewed
func (h *NotificationHandler) MarkViewed(c *fiber.Ctx) error {
	if err := h.uc.MarkViewed(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "notificação marcada como vista"})
}

// Stream entrega notificações em tempo real via Server-Sent Events. A conexão
// vive até o cliente desligar; notificações perdidas por backpressure são
// descartadas e continuam consultáveis pela listagem.
// GET /api/notifications/stream?owner_id=
func (h *NotificationHandler) Stream(c *fiber.Ctx) error {
	ownerID := c.Query("owner_id")
	if ownerID == "" {
		return respondError(c, domain.ErrInvalidInput)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	ctx, cancel := context.WithCancel(context.Background())
	ch, unsubscribe := h.hub.Subscribe(ctx, ownerID)

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case n := <-ch:
				payload, err := json.Marshal(dto.NewNotificationResponse(n))
				if err != nil {
					continue
				}
				if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))
	return nil
}
