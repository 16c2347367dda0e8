package stock

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/jportela/almoxarifado-api/internal/domain"
	"github.com/jportela/almoxarifado-api/internal/domain/entity"
	domainstock "github.com/jportela/almoxarifado-api/internal/domain/stock"
	"github.com/jportela/almoxarifado-api/internal/metrics"
	"github.com/jportela/almoxarifado-api/pkg/keyedmutex"
	"github.com/jportela/almoxarifado-api/pkg/logger"
)

// Orchestrator mantém os três fatos derivados sincronizados a cada mutação:
// o saldo da chave, o total agregado do componente e o status de estoque.
// É o único ponto de entrada pós-mutação; a sequência completa
// (saldo → agregado → notificação) roda dentro de uma transação, serializada
// por componente com um mutex por chave mais o bloqueio de linha do agregado.
type Orchestrator struct {
	txRunner        TxRunner
	dispatcher      Dispatcher
	locks           *keyedmutex.KeyedMutex
	log             *logger.Logger
	maxRetries      uint64
	dispatchTimeout time.Duration
}

// OrchestratorConfig parâmetros do orquestrador.
type OrchestratorConfig struct {
	MaxRetries      uint64        // retentativas após falha de serialização
	DispatchTimeout time.Duration // limite do despacho; nunca segura a escrita
}

// NewOrchestrator constrói o orquestrador.
func NewOrchestrator(txRunner TxRunner, dispatcher Dispatcher, log *logger.Logger, cfg OrchestratorConfig) *Orchestrator {
	if cfg.DispatchTimeout <= 0 {
		cfg.DispatchTimeout = 500 * time.Millisecond
	}
	return &Orchestrator{
		txRunner:        txRunner,
		dispatcher:      dispatcher,
		locks:           keyedmutex.New(),
		log:             log,
		maxRetries:      cfg.MaxRetries,
		dispatchTimeout: cfg.DispatchTimeout,
	}
}

// Mutate serializa pelo componente da chave, abre a transação, executa a
// mutação (escrita no razão) e em seguida a sequência de recomputação da
// chave. Em falha de serialização a sequência inteira é retentada um número
// limitado de vezes; esgotadas as tentativas, ErrConsistencyRace sobe ao
// chamador. A notificação de transição, se houver, é despachada somente após
// o commit: uma falha de despacho é registrada e descartada.
func (o *Orchestrator) Mutate(ctx context.Context, key entity.BalanceKey, mutate func(r Repos) error) error {
	return o.run(ctx, key.ComponentID, &key, mutate)
}

// RecomputeComponent reavalia apenas agregado e status do componente, sem
// reprocessar o saldo de uma chave específica. Usado quando o estoque mínimo
// muda: a classificação depende dele, os saldos não.
func (o *Orchestrator) RecomputeComponent(ctx context.Context, componentID string) error {
	return o.run(ctx, componentID, nil, nil)
}

func (o *Orchestrator) run(ctx context.Context, componentID string, key *entity.BalanceKey, mutate func(r Repos) error) error {
	unlock := o.locks.Lock(componentID)
	defer unlock()

	var pending *entity.Notification

	backoff := retry.WithMaxRetries(o.maxRetries, retry.NewExponential(10*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		pending = nil
		err := o.txRunner.Run(ctx, func(r Repos) error {
			if mutate != nil {
				if err := mutate(r); err != nil {
					return err
				}
			}
			n, err := o.recompute(r, componentID, key)
			if err != nil {
				return err
			}
			pending = n
			return nil
		})
		if errors.Is(err, domain.ErrConsistencyRace) {
			metrics.RecomputeRetries.Inc()
			o.log.Warn().Err(err).Str("component_id", componentID).Msg("falha de serialização na recomputação, retentando")
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return err
	}

	if pending != nil {
		o.dispatch(ctx, pending)
	}
	return nil
}

// recompute executa a sequência do motor para um componente, dentro da
// transação corrente: trava a linha do componente, reescreve o saldo da chave
// (quando há chave), soma os saldos de todos os locais, classifica e grava os
// derivados, e cria a notificação se o status transicionou.
func (o *Orchestrator) recompute(r Repos, componentID string, key *entity.BalanceKey) (*entity.Notification, error) {
	component, err := r.Components.GetForUpdate(componentID)
	if err != nil {
		return nil, err
	}
	if component == nil {
		return nil, domain.ErrNotFound
	}

	if key != nil {
		if err := recomputeBalance(r, *key); err != nil {
			return nil, err
		}
	}

	total, err := r.Balances.SumByComponent(componentID)
	if err != nil {
		return nil, err
	}

	previous := component.Status
	current := domainstock.Classify(total, component.MinStock)
	if err := r.Components.UpdateAggregate(componentID, total, current); err != nil {
		return nil, err
	}

	notification := NotifyIfTransitioned(component, previous, current, total)
	if notification == nil {
		return nil, nil
	}
	if err := r.Notifications.Create(notification); err != nil {
		return nil, err
	}
	return notification, nil
}

// recomputeBalance replay completo do razão da chave: Quantity = max(0, ΣIN − ΣOUT),
// gravado por upsert. Idempotente: recomputar duas vezes sem novos movimentos
// produz o mesmo valor, inclusive o zero (linha criada mesmo com saldo 0).
func recomputeBalance(r Repos, key entity.BalanceKey) error {
	in, out, err := r.Movements.SumByKey(key)
	if err != nil {
		return err
	}
	quantity := in - out
	if quantity < 0 {
		quantity = 0
	}
	return r.Balances.Upsert(&entity.Balance{
		ComponentID: key.ComponentID,
		LocationID:  key.LocationID,
		OwnerID:     key.OwnerID,
		Quantity:    quantity,
		UpdatedAt:   time.Now(),
	})
}

// dispatch entrega a notificação ao coletor externo com tempo limitado.
// Falha de despacho: loga e descarta; o estado do motor já está confirmado.
func (o *Orchestrator) dispatch(ctx context.Context, n *entity.Notification) {
	dispatchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.dispatchTimeout)
	defer cancel()

	if err := o.dispatcher.Dispatch(dispatchCtx, n.OwnerID, n); err != nil {
		metrics.DispatchFailures.Inc()
		o.log.Warn().Err(err).Str("owner_id", n.OwnerID).Msg("falha ao despachar notificação, descartada")
	}
}
