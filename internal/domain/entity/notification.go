package entity

import "time"

// Notification criada apenas quando uma recomputação detecta transição de
// status do componente. Depois de criada só muda pelo "marcar como vista".
type Notification struct {
	ID        string
	OwnerID   string
	Message   string
	Viewed    bool
	CreatedAt time.Time
}
