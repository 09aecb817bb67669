package service

import (
	"context"
	"sync"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/logger"

	"github.com/google/uuid"
)

// EventHook observes committed workflow events.
type EventHook interface {
	Handle(ctx context.Context, e domain.Event) error
}

type EventHookFunc func(ctx context.Context, e domain.Event) error

func (f EventHookFunc) Handle(ctx context.Context, e domain.Event) error {
	return f(ctx, e)
}

type namedHook struct {
	name string
	hook EventHook
}

// Emitter delivers every event to its hooks in registration order. A failing
// hook is logged and does not stop later hooks or fail the mutation.
type Emitter struct {
	mu    sync.RWMutex
	hooks []namedHook
	clock Clock
}

func NewEmitter(clock Clock) *Emitter {
	return &Emitter{clock: clock}
}

func (em *Emitter) Register(name string, hook EventHook) {
	em.mu.Lock()
	defer em.mu.Unlock()
	em.hooks = append(em.hooks, namedHook{name: name, hook: hook})
}

func (em *Emitter) Emit(ctx context.Context, e domain.Event) {
	if em == nil {
		return
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = em.clock.now()
	}

	em.mu.RLock()
	hooks := em.hooks
	em.mu.RUnlock()

	for _, h := range hooks {
		if err := h.hook.Handle(ctx, e); err != nil {
			logger.ErrorContext(ctx, "Event hook failed", "hook", h.name, "type", e.Type, "entityID", e.EntityID, "error", err)
		}
	}
}

// keyedMutex serializes work per key, e.g. all mutations of one order.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

// Lock blocks until key is free and returns its unlock func.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
