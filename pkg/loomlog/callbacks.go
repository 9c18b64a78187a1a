package loomlog

import (
	"sync/atomic"

	"github.com/loomworks/loomlog/pkg/types"
)

// Callbacks is the triple of process-wide dispatch functions a Manager
// installs while it has at least one active handler. Loggers consult the
// installed callbacks on every call, so with no handlers active logging is a
// cheap no-op.
type Callbacks struct {
	// Message dispatches a formatted log message.
	Message func(msg string, level types.Level, category string, attr types.Attributes)

	// Write dispatches raw log output.
	Write func(data []byte, level types.Level, category string)

	// Enabled reports whether any active handler would accept a record of
	// the given level and category.
	Enabled func(level types.Level, category string) bool
}

// CallbackSlot is the single registration point for dispatch callbacks.
// Set replaces the current callbacks; Set(nil) uninstalls them.
type CallbackSlot interface {
	Set(cb *Callbacks)
}

// processSlot is the process-wide callback slot used by the default Manager
// and by Logger instances.
type processSlot struct {
	cb atomic.Pointer[Callbacks]
}

func (s *processSlot) Set(cb *Callbacks) {
	s.cb.Store(cb)
}

var slot processSlot

// DefaultSlot returns the process-wide callback slot.
func DefaultSlot() CallbackSlot {
	return &slot
}

// installed returns the currently installed callbacks, or nil.
func installed() *Callbacks {
	return slot.cb.Load()
}
