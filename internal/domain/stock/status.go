// Package stock contém as regras puras de classificação de estoque.
package stock

import "github.com/jportela/almoxarifado-api/internal/domain/entity"

// Classify devolve o status de estoque a partir do estado completo atual.
// Sempre recalculado do zero; nunca derivado de payloads parciais de update.
func Classify(quantity, minStock int64) string {
	switch {
	case quantity <= 0:
		return entity.StatusIndisponivel
	case quantity < minStock:
		return entity.StatusBaixoEstoque
	default:
		return entity.StatusEmEstoque
	}
}
