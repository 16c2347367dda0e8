package repository

import "github.com/jportela/almoxarifado-api/internal/domain/entity"

// LocationRepository consulta de locais para validação de referências.
// O CRUD de locais é de um colaborador externo e fica fora deste serviço.
type LocationRepository interface {
	GetByID(id string) (*entity.Location, error)
}
