package events

import (
	"sync"

	"github.com/google/uuid"
)

// Disposable releases a resource exactly once; further calls are no-ops.
type Disposable interface {
	Dispose()
}

// DisposeFunc adapts a function into a Disposable with a double-release guard.
type DisposeFunc struct {
	once sync.Once
	f    func()
}

// NewDisposeFunc wraps f so that it runs at most once.
func NewDisposeFunc(f func()) *DisposeFunc {
	return &DisposeFunc{f: f}
}

func (d *DisposeFunc) Dispose() {
	d.once.Do(d.f)
}

// Emitter is a minimal publish/subscribe registry. Handlers are invoked
// synchronously on the emitting goroutine, outside the emitter lock, so a
// handler may subscribe or dispose without deadlocking.
type Emitter[T any] struct {
	mu       sync.Mutex
	handlers map[string]func(T)
}

// NewEmitter creates an empty emitter.
func NewEmitter[T any]() *Emitter[T] {
	return &Emitter[T]{handlers: make(map[string]func(T))}
}

// Subscribe registers handler and returns its subscription handle.
func (e *Emitter[T]) Subscribe(handler func(T)) Disposable {
	id := uuid.New().String()

	e.mu.Lock()
	e.handlers[id] = handler
	e.mu.Unlock()

	return NewDisposeFunc(func() {
		e.mu.Lock()
		delete(e.handlers, id)
		e.mu.Unlock()
	})
}

// Emit delivers value to every handler subscribed at the time of the call.
func (e *Emitter[T]) Emit(value T) {
	e.mu.Lock()
	snapshot := make([]func(T), 0, len(e.handlers))
	for _, h := range e.handlers {
		snapshot = append(snapshot, h)
	}
	e.mu.Unlock()

	for _, h := range snapshot {
		h(value)
	}
}

// Len reports the number of live subscriptions.
func (e *Emitter[T]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.handlers)
}
