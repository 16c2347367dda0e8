// Package notify implementa o despachante de notificações em memória.
// O transporte concreto até o cliente (sockets, SSE, filas) é um colaborador
// externo; aqui registramos assinantes por dono e entregamos com melhor
// esforço — perda é aceitável, bloquear o caminho de escrita não é.
package notify

import (
	"context"
	"sync"

	"github.com/jportela/almoxarifado-api/internal/application/stock"
	"github.com/jportela/almoxarifado-api/internal/domain/entity"
)

var _ stock.Dispatcher = (*Hub)(nil)

// Hub registro de assinantes por dono com canais bufferizados.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[int64]chan *entity.Notification
	nextID      int64
	bufferSize  int
}

// NewHub constrói o hub; bufferSize <= 0 usa o padrão.
func NewHub(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &Hub{
		subscribers: make(map[string]map[int64]chan *entity.Notification),
		bufferSize:  bufferSize,
	}
}

// Subscribe registra um assinante para o dono. Cancelar o contexto ou chamar
// a função devolvida remove a inscrição. O canal não é fechado: despachos em
// voo podem ainda estar escrevendo nele; o assinante encerra pelo contexto.
func (h *Hub) Subscribe(ctx context.Context, ownerID string) (<-chan *entity.Notification, func()) {
	if ownerID == "" {
		ch := make(chan *entity.Notification)
		close(ch)
		return ch, func() {}
	}

	stream := make(chan *entity.Notification, h.bufferSize)

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	if h.subscribers[ownerID] == nil {
		h.subscribers[ownerID] = make(map[int64]chan *entity.Notification)
	}
	h.subscribers[ownerID][id] = stream
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if subs := h.subscribers[ownerID]; subs != nil {
			delete(subs, id)
			if len(subs) == 0 {
				delete(h.subscribers, ownerID)
			}
		}
		h.mu.Unlock()
	}
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return stream, cancel
}

// Dispatch entrega a notificação aos assinantes do dono. Canal cheio descarta
// a mensagem. Dono sem assinantes não é erro: a notificação persiste no banco
// e será lida na próxima listagem.
func (h *Hub) Dispatch(_ context.Context, ownerID string, notification *entity.Notification) error {
	if ownerID == "" || notification == nil {
		return nil
	}

	h.mu.RLock()
	subs := h.subscribers[ownerID]
	streams := make([]chan *entity.Notification, 0, len(subs))
	for _, stream := range subs {
		streams = append(streams, stream)
	}
	h.mu.RUnlock()

	for _, stream := range streams {
		select {
		case stream <- notification:
		default:
			// assinante lento: descarta em vez de segurar a escrita
		}
	}
	return nil
}
