package domain

import (
	"errors"
	"fmt"
)

// Erros de domínio (sem dependências externas).
var (
	ErrNotFound          = errors.New("recurso não encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrConflict          = errors.New("conflito com o estado atual")
	ErrInsufficientStock = errors.New("estoque insuficiente")
	ErrConsistencyRace   = errors.New("disputa de concorrência na recomputação de estoque")
)

// InsufficientStockError rejeição de uma saída, com o saldo disponível no
// momento da checagem. Desembrulha para ErrInsufficientStock.
type InsufficientStockError struct {
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("estoque insuficiente, disponível: %d", e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
