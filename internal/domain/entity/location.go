package entity

import "time"

// Location é um local físico de armazenamento (almoxarifado, sala, estante).
// O cadastro de locais é mantido fora deste núcleo; aqui só validamos referências.
type Location struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}
