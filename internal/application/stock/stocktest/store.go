// Package stocktest fornece dublês em memória das portas de persistência do
// motor de estoque, para testes sem banco.
package stocktest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jportela/almoxarifado-api/internal/application/stock"
	"github.com/jportela/almoxarifado-api/internal/domain"
	"github.com/jportela/almoxarifado-api/internal/domain/entity"
	"github.com/jportela/almoxarifado-api/internal/domain/repository"
)

// Store guarda o estado em mapas guardados por mutex. Os repositórios e o
// TxRunner devolvidos operam todos sobre o mesmo Store.
type Store struct {
	mu            sync.Mutex
	movements     map[string]*entity.Movement
	balances      map[entity.BalanceKey]*entity.Balance
	components    map[string]*entity.Component
	locations     map[string]*entity.Location
	notifications []*entity.Notification
}

// NewStore constrói o store vazio.
func NewStore() *Store {
	return &Store{
		movements:  make(map[string]*entity.Movement),
		balances:   make(map[entity.BalanceKey]*entity.Balance),
		components: make(map[string]*entity.Component),
		locations:  make(map[string]*entity.Location),
	}
}

// SeedComponent insere um componente direto no estado.
func (s *Store) SeedComponent(c *entity.Component) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	cp := *c
	s.components[c.ID] = &cp
}

// SeedLocation insere um local direto no estado.
func (s *Store) SeedLocation(l *entity.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	cp := *l
	s.locations[l.ID] = &cp
}

// Component devolve uma cópia do componente, ou nil.
func (s *Store) Component(id string) *entity.Component {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.components[id]
	if !ok {
		return nil
	}
	cp := *c
	return &cp
}

// Balance devolve uma cópia do saldo da chave, ou nil se a linha não existe.
func (s *Store) Balance(key entity.BalanceKey) *entity.Balance {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.balances[key]
	if !ok {
		return nil
	}
	cp := *b
	return &cp
}

// Notifications devolve uma cópia de todas as notificações criadas.
func (s *Store) Notifications() []*entity.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		cp := *n
		out = append(out, &cp)
	}
	return out
}

// MovementCount devolve quantos movimentos existem no razão.
func (s *Store) MovementCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.movements)
}

// Repos devolve o conjunto de repositórios sobre este store.
func (s *Store) Repos() stock.Repos {
	return stock.Repos{
		Movements:     &movementRepo{s: s},
		Balances:      &balanceRepo{s: s},
		Components:    &componentRepo{s: s},
		Notifications: &notificationRepo{s: s},
	}
}

// LocationRepo devolve o repositório de locais sobre este store.
func (s *Store) LocationRepo() repository.LocationRepository { return &locationRepo{s: s} }

// TxRunner executa fn sobre o store segurando um mutex próprio, aproximando a
// atomicidade da transação real. InjectRaces > 0 faz as próximas execuções
// falharem com ErrConsistencyRace antes de tocar o estado, para exercitar o
// caminho de retentativa.
type TxRunner struct {
	store *Store

	mu          sync.Mutex
	racesToFail int
	runs        int
}

var _ stock.TxRunner = (*TxRunner)(nil)

// NewTxRunner constrói o runner sobre o store.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// InjectRaces faz as próximas n execuções falharem com ErrConsistencyRace.
func (t *TxRunner) InjectRaces(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.racesToFail = n
}

// Runs devolve quantas execuções foram tentadas (incluindo as que falharam).
func (t *TxRunner) Runs() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.runs
}

// Run implementa stock.TxRunner.
func (t *TxRunner) Run(_ context.Context, fn func(r stock.Repos) error) error {
	t.mu.Lock()
	t.runs++
	if t.racesToFail > 0 {
		t.racesToFail--
		t.mu.Unlock()
		return fmt.Errorf("%w: falha injetada", domain.ErrConsistencyRace)
	}
	t.mu.Unlock()
	return fn(t.store.Repos())
}

// DispatcherRecorder grava as notificações despachadas; Err, se definido,
// é devolvido em todo despacho.
type DispatcherRecorder struct {
	mu         sync.Mutex
	Err        error
	dispatched []*entity.Notification
}

var _ stock.Dispatcher = (*DispatcherRecorder)(nil)

// Dispatch implementa stock.Dispatcher.
func (d *DispatcherRecorder) Dispatch(_ context.Context, _ string, n *entity.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	d.dispatched = append(d.dispatched, n)
	return nil
}

// Dispatched devolve as notificações entregues até agora.
func (d *DispatcherRecorder) Dispatched() []*entity.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*entity.Notification, len(d.dispatched))
	copy(out, d.dispatched)
	return out
}

type movementRepo struct{ s *Store }

func (r *movementRepo) Create(m *entity.Movement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	cp := *m
	r.s.movements[m.ID] = &cp
	return nil
}

func (r *movementRepo) GetByID(id string) (*entity.Movement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.movements[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *movementRepo) Delete(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.movements[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.movements, id)
	return nil
}

func (r *movementRepo) ListByComponent(componentID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.Movement
	for _, m := range r.s.movements {
		if m.ComponentID != componentID {
			continue
		}
		if from != nil && m.Date.Before(*from) {
			continue
		}
		if to != nil && m.Date.After(*to) {
			continue
		}
		cp := *m
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Date.After(list[j].Date) })
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

func (r *movementRepo) SumByKey(key entity.BalanceKey) (int64, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var in, out int64
	for _, m := range r.s.movements {
		if m.ComponentID != key.ComponentID || m.LocationID != key.LocationID || m.OwnerID != key.OwnerID {
			continue
		}
		switch m.Type {
		case entity.MovementTypeIN:
			in += m.Quantity
		case entity.MovementTypeOUT:
			out += m.Quantity
		}
	}
	return in, out, nil
}

type balanceRepo struct{ s *Store }

func (r *balanceRepo) Get(key entity.BalanceKey) (*entity.Balance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.balances[key]
	if !ok {
		// chave nunca movimentada: saldo zero, não erro
		return &entity.Balance{
			ComponentID: key.ComponentID,
			LocationID:  key.LocationID,
			OwnerID:     key.OwnerID,
		}, nil
	}
	cp := *b
	return &cp, nil
}

func (r *balanceRepo) GetForUpdate(key entity.BalanceKey) (*entity.Balance, error) {
	return r.Get(key)
}

func (r *balanceRepo) Upsert(b *entity.Balance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *b
	r.s.balances[b.Key()] = &cp
	return nil
}

func (r *balanceRepo) ListByComponent(componentID string) ([]*entity.Balance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.Balance
	for _, b := range r.s.balances {
		if b.ComponentID != componentID {
			continue
		}
		cp := *b
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].LocationID != list[j].LocationID {
			return list[i].LocationID < list[j].LocationID
		}
		return list[i].OwnerID < list[j].OwnerID
	})
	return list, nil
}

func (r *balanceRepo) SumByComponent(componentID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var total int64
	for _, b := range r.s.balances {
		if b.ComponentID == componentID {
			total += b.Quantity
		}
	}
	return total, nil
}

type componentRepo struct{ s *Store }

func (r *componentRepo) Create(c *entity.Component) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	for _, existing := range r.s.components {
		if existing.OwnerID == c.OwnerID && existing.Name == c.Name {
			return domain.ErrDuplicate
		}
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	cp := *c
	r.s.components[c.ID] = &cp
	return nil
}

func (r *componentRepo) GetByID(id string) (*entity.Component, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.components[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *componentRepo) GetForUpdate(id string) (*entity.Component, error) {
	return r.GetByID(id)
}

func (r *componentRepo) List(limit, offset int) ([]*entity.Component, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]*entity.Component, 0, len(r.s.components))
	for _, c := range r.s.components {
		cp := *c
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

func (r *componentRepo) Update(c *entity.Component) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.components[c.ID]
	if !ok {
		return domain.ErrNotFound
	}
	existing.Name = c.Name
	existing.Description = c.Description
	existing.Price = c.Price
	existing.MinStock = c.MinStock
	existing.UpdatedAt = time.Now()
	return nil
}

func (r *componentRepo) UpdateAggregate(id string, quantity int64, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.components[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Quantity = quantity
	c.Status = status
	c.UpdatedAt = time.Now()
	return nil
}

type notificationRepo struct{ s *Store }

func (r *notificationRepo) Create(n *entity.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	cp := *n
	r.s.notifications = append(r.s.notifications, &cp)
	return nil
}

func (r *notificationRepo) ListByOwner(ownerID string, onlyUnviewed bool, limit, offset int) ([]*entity.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.Notification
	for _, n := range r.s.notifications {
		if n.OwnerID != ownerID {
			continue
		}
		if onlyUnviewed && n.Viewed {
			continue
		}
		cp := *n
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

func (r *notificationRepo) MarkViewed(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, n := range r.s.notifications {
		if n.ID == id {
			n.Viewed = true
			return nil
		}
	}
	return domain.ErrNotFound
}

type locationRepo struct{ s *Store }

func (r *locationRepo) GetByID(id string) (*entity.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.locations[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}
