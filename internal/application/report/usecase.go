// Package report gera relatórios da posição de estoque corrente.
package report

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jportela/almoxarifado-api/internal/domain/repository"
)

// StockRow uma linha do relatório de posição de estoque.
type StockRow struct {
	Name     string
	Status   string
	Quantity int64
	MinStock int64
	Price    decimal.Decimal
	Total    decimal.Decimal // Price * Quantity
}

// Exporter serializa as linhas do relatório em um formato de saída.
type Exporter interface {
	Export(rows []StockRow) ([]byte, error)
}

// StockReportUseCase monta a posição de estoque e delega a serialização.
type StockReportUseCase struct {
	componentRepo repository.ComponentRepository
	excel         Exporter
	pdf           Exporter
}

// NewStockReportUseCase constrói o caso de uso com os dois exportadores.
func NewStockReportUseCase(componentRepo repository.ComponentRepository, excel, pdf Exporter) *StockReportUseCase {
	return &StockReportUseCase{componentRepo: componentRepo, excel: excel, pdf: pdf}
}

// GenerateXLSX devolve a posição de estoque em planilha Excel.
func (uc *StockReportUseCase) GenerateXLSX(ctx context.Context) ([]byte, error) {
	rows, err := uc.rows(ctx)
	if err != nil {
		return nil, err
	}
	return uc.excel.Export(rows)
}

// GeneratePDF devolve a posição de estoque em PDF.
func (uc *StockReportUseCase) GeneratePDF(ctx context.Context) ([]byte, error) {
	rows, err := uc.rows(ctx)
	if err != nil {
		return nil, err
	}
	return uc.pdf.Export(rows)
}

func (uc *StockReportUseCase) rows(_ context.Context) ([]StockRow, error) {
	const pageSize = 500
	var rows []StockRow
	for offset := 0; ; offset += pageSize {
		components, err := uc.componentRepo.List(pageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, c := range components {
			rows = append(rows, StockRow{
				Name:     c.Name,
				Status:   c.Status,
				Quantity: c.Quantity,
				MinStock: c.MinStock,
				Price:    c.Price,
				Total:    c.Price.Mul(decimal.NewFromInt(c.Quantity)),
			})
		}
		if len(components) < pageSize {
			return rows, nil
		}
	}
}
