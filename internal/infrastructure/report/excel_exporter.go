package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	appreport "github.com/jportela/almoxarifado-api/internal/application/report"
)

var _ appreport.Exporter = (*ExcelExporter)(nil)

// ExcelExporter serializa a posição de estoque em planilha XLSX.
type ExcelExporter struct{}

// NewExcelExporter constrói o exportador.
func NewExcelExporter() *ExcelExporter { return &ExcelExporter{} }

// Export gera a planilha com uma linha por componente.
func (e *ExcelExporter) Export(rows []appreport.StockRow) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{"componente", "status", "quantidade", "estoque_minimo", "preco_unitario", "valor_total"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("escrever cabeçalho: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("calcular célula: %w", err)
		}
		line := []interface{}{
			r.Name,
			r.Status,
			r.Quantity,
			r.MinStock,
			r.Price.StringFixed(2),
			r.Total.StringFixed(2),
		}
		if err := f.SetSheetRow(sheet, cell, &line); err != nil {
			return nil, fmt.Errorf("escrever linha: %w", err)
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("gravar planilha: %w", err)
	}
	return buf.Bytes(), nil
}
