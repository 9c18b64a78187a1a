// Package loomlog routes log records produced anywhere in a program through
// zero or more active output handlers. The Manager owns the set of handlers,
// installs process-wide dispatch callbacks while any handler is active, and
// manages the lifecycle of handler/stream pairs created through pluggable
// factories. Loggers are lightweight category-bound front-ends over the
// installed callbacks.
package loomlog

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/pkg/errors"

	"github.com/loomworks/loomlog/pkg/backends"
	"github.com/loomworks/loomlog/pkg/handlers"
	"github.com/loomworks/loomlog/pkg/types"
)

// Registry errors.
var (
	// ErrDuplicateHandler is returned when a handler is added twice.
	ErrDuplicateHandler = errors.New("handler already registered")

	// ErrEmptyID is returned when a factory handler is added with an
	// empty id.
	ErrEmptyID = errors.New("handler id must not be empty")

	// ErrNoHandlerFactory is returned when no handler factory is set.
	ErrNoHandlerFactory = errors.New("no handler factory configured")

	// ErrNoStreamFactory is returned when a stream type is requested but
	// no stream factory is set.
	ErrNoStreamFactory = errors.New("no stream factory configured")
)

// factoryHandler records a handler/stream pair created through the pluggable
// factories, keyed by its external id. The pair is owned by the Manager from
// successful registration until removal or shutdown.
type factoryHandler struct {
	id      string
	handler types.Handler
	stream  io.Writer
}

// Manager tracks active log handlers and dispatches records to them.
//
// All operations serialize on a single mutex; the lock is held for in-memory
// bookkeeping and factory create/destroy calls only. Mutating operations are
// atomic from the caller's perspective: they either fully apply or roll back
// to the pre-call state.
type Manager struct {
	mu              sync.Mutex
	slot            CallbackSlot
	handlerFactory  types.HandlerFactory
	streamFactory   types.StreamFactory
	activeHandlers  []types.Handler
	factoryHandlers []factoryHandler
}

// NewManager creates a Manager that installs its dispatch callbacks into the
// given slot. A nil slot leaves dispatch reachable only through the Manager's
// own methods. The handler and stream factories start unset; use
// SetHandlerFactory and SetStreamFactory.
func NewManager(slot CallbackSlot) *Manager {
	return &Manager{slot: slot}
}

var (
	defaultManager     *Manager
	defaultManagerOnce sync.Once
)

// Default returns the process-wide Manager, creating it on first use with
// the default handler and stream factories and the process callback slot.
func Default() *Manager {
	defaultManagerOnce.Do(func() {
		defaultManager = NewManager(DefaultSlot())
		defaultManager.handlerFactory = handlers.NewFactory()
		defaultManager.streamFactory = backends.NewFactory()
	})
	return defaultManager
}

// AddHandler registers a handler to receive every dispatched record. Adding
// a handler that is already registered fails with ErrDuplicateHandler and
// leaves the set unchanged. The first successful add installs the
// process-wide dispatch callbacks.
func (m *Manager) AddHandler(h types.Handler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addActiveLocked(h)
}

// RemoveHandler removes a previously added handler. Removing an unknown
// handler is a no-op. When the last handler is removed the dispatch
// callbacks are uninstalled.
func (m *Manager) RemoveHandler(h types.Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeActiveLocked(h)
}

// AddFactoryHandler creates a handler (and, optionally, its output stream)
// through the configured factories and registers it under id. An existing
// factory handler with the same id is destroyed first, so adding is also
// replacing. On any failure the registry is left in its pre-call state and
// every resource created along the way is released through its factory.
func (m *Manager) AddFactoryHandler(id, handlerType string, level types.Level, filters types.CategoryFilters,
	handlerParams json.RawMessage, streamType string, streamParams json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.destroyFactoryHandlerLocked(id) // Replace semantics
	if id == "" {
		return ErrEmptyID
	}

	// Create the output stream first (optional). Until the registration
	// commits, the created stream and handler are released through their
	// factories on every exit path.
	var stream io.Writer
	if streamType != "" {
		if m.streamFactory == nil {
			return ErrNoStreamFactory
		}
		s, err := m.streamFactory.CreateStream(streamType, streamParams)
		if err != nil {
			return errors.Wrapf(err, "create stream %q", streamType)
		}
		stream = s
	}
	committed := false
	defer func() {
		if !committed && stream != nil {
			m.streamFactory.DestroyStream(stream)
		}
	}()

	if m.handlerFactory == nil {
		return ErrNoHandlerFactory
	}
	handler, err := m.handlerFactory.CreateHandler(handlerType, level, filters, stream, handlerParams)
	if err != nil {
		return errors.Wrapf(err, "create handler %q", handlerType)
	}
	defer func() {
		if !committed {
			m.handlerFactory.DestroyHandler(handler)
		}
	}()

	m.factoryHandlers = append(m.factoryHandlers, factoryHandler{id: id, handler: handler, stream: stream})
	if err := m.addActiveLocked(handler); err != nil {
		m.factoryHandlers = m.factoryHandlers[:len(m.factoryHandlers)-1]
		return err
	}
	committed = true
	return nil
}

// RemoveFactoryHandler destroys the factory handler registered under id and
// removes it from the active set. Unknown ids are a no-op.
func (m *Manager) RemoveFactoryHandler(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destroyFactoryHandlerLocked(id)
}

// EnumFactoryHandlers invokes visit with the id of every current factory
// handler, in registration order.
func (m *Manager) EnumFactoryHandlers(visit func(id string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range m.factoryHandlers {
		visit(h.id)
	}
}

// SetHandlerFactory replaces the handler factory. Since factory handlers
// must be destroyed through the factory that created them, swapping the
// factory first destroys all existing factory handlers. Setting the same
// factory again is a no-op.
func (m *Manager) SetHandlerFactory(f types.HandlerFactory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handlerFactory != f {
		m.destroyFactoryHandlersLocked()
		m.handlerFactory = f
	}
}

// SetStreamFactory replaces the stream factory, destroying all existing
// factory handlers first. Setting the same factory again is a no-op.
func (m *Manager) SetStreamFactory(f types.StreamFactory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.streamFactory != f {
		m.destroyFactoryHandlersLocked()
		m.streamFactory = f
	}
}

// Shutdown uninstalls the dispatch callbacks, destroys all factory handlers
// and deactivates every handler. The Manager can be reused afterwards.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destroyFactoryHandlersLocked()
	m.activeHandlers = nil
	if m.slot != nil {
		m.slot.Set(nil)
	}
}

// addActiveLocked adds h to the active set, installing the dispatch
// callbacks on the 0 -> 1 transition.
func (m *Manager) addActiveLocked(h types.Handler) error {
	for _, active := range m.activeHandlers {
		if active == h {
			return ErrDuplicateHandler
		}
	}
	m.activeHandlers = append(m.activeHandlers, h)
	if len(m.activeHandlers) == 1 && m.slot != nil {
		m.slot.Set(&Callbacks{
			Message: m.logMessage,
			Write:   m.logWrite,
			Enabled: m.logEnabled,
		})
	}
	return nil
}

// removeActiveLocked removes h from the active set, uninstalling the
// dispatch callbacks on the 1 -> 0 transition.
func (m *Manager) removeActiveLocked(h types.Handler) {
	for i, active := range m.activeHandlers {
		if active == h {
			m.activeHandlers = append(m.activeHandlers[:i], m.activeHandlers[i+1:]...)
			if len(m.activeHandlers) == 0 && m.slot != nil {
				m.slot.Set(nil)
			}
			return
		}
	}
}

// destroyFactoryHandlerLocked removes the factory handler with the given id,
// destroying its handler and stream through the current factories.
func (m *Manager) destroyFactoryHandlerLocked(id string) {
	for i, h := range m.factoryHandlers {
		if h.id == id {
			m.removeActiveLocked(h.handler)
			if m.handlerFactory != nil {
				m.handlerFactory.DestroyHandler(h.handler)
			}
			if h.stream != nil && m.streamFactory != nil {
				m.streamFactory.DestroyStream(h.stream)
			}
			m.factoryHandlers = append(m.factoryHandlers[:i], m.factoryHandlers[i+1:]...)
			return
		}
	}
}

// destroyFactoryHandlersLocked destroys every factory handler.
func (m *Manager) destroyFactoryHandlersLocked() {
	for _, h := range m.factoryHandlers {
		m.removeActiveLocked(h.handler)
		if m.handlerFactory != nil {
			m.handlerFactory.DestroyHandler(h.handler)
		}
		if h.stream != nil && m.streamFactory != nil {
			m.streamFactory.DestroyStream(h.stream)
		}
	}
	m.factoryHandlers = nil
}

// logMessage broadcasts a formatted message to every active handler.
func (m *Manager) logMessage(msg string, level types.Level, category string, attr types.Attributes) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range m.activeHandlers {
		h.Message(msg, level, category, attr)
	}
}

// logWrite broadcasts raw output to every active handler.
func (m *Manager) logWrite(data []byte, level types.Level, category string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range m.activeHandlers {
		h.Write(data, level, category)
	}
}

// logEnabled reports whether a record of the given level and category would
// be accepted by at least one active handler, i.e. whether level is at or
// above the minimum threshold across all handlers. With no active handlers
// logging is always disabled.
func (m *Manager) logEnabled(level types.Level, category string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.activeHandlers) == 0 {
		return false
	}
	min := types.LevelNone
	for _, h := range m.activeHandlers {
		if l := h.Level(category); l < min {
			min = l
		}
	}
	return level >= min
}
