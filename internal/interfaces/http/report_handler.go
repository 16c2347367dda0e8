package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jportela/almoxarifado-api/internal/application/report"
)

// ReportHandler atende os relatórios de posição de estoque.
type ReportHandler struct {
	uc *report.StockReportUseCase
}

// NewReportHandler constrói o handler.
func NewReportHandler(uc *report.StockReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// StockXLSX devolve a posição de estoque em planilha Excel.
// GET /api/reports/stock.xlsx
func (h *ReportHandler) StockXLSX(c *fiber.Ctx) error {
	data, err := h.uc.GenerateXLSX(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, attachment("xlsx"))
	return c.Send(data)
}

// StockPDF devolve a posição de estoque em PDF.
// GET /api/reports/stock.pdf
func (h *ReportHandler) StockPDF(c *fiber.Ctx) error {
	data, err := h.uc.GeneratePDF(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, attachment("pdf"))
	return c.Send(data)
}

func attachment(ext string) string {
	return fmt.Sprintf(`attachment; filename="estoque_%s.%s"`, time.Now().Format("20060102"), ext)
}
