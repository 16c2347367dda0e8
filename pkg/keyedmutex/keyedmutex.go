// Package keyedmutex fornece exclusão mútua por chave.
package keyedmutex

import "sync"

// KeyedMutex serializa seções críticas pela chave; chaves distintas não se
// bloqueiam. Entradas têm contagem de referência e são removidas ao ficar
// ociosas, para o mapa não crescer com o número de chaves já vistas.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// New cria o mutex por chave.
func New() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*lockEntry)}
}

// Lock adquire o mutex da chave, bloqueando se outro detentor existir, e
// devolve a função de liberação.
func (k *KeyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &lockEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
