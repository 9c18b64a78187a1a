package types

import (
	"encoding/json"
	"io"
	"time"
)

// Attributes carries optional metadata attached to a log record.
// Zero values mean the attribute is absent.
type Attributes struct {
	Time     time.Time
	File     string
	Line     int
	Function string
	Code     int
	Details  string
}

// CategoryFilter pairs a dot-separated category name with the minimum level
// accepted for that category and its subcategories.
type CategoryFilter struct {
	Category string
	Level    Level
}

// CategoryFilters is an ordered list of category filters.
type CategoryFilters []CategoryFilter

// Handler receives log records accepted for delivery. A handler also reports
// the threshold level it applies to a given category so the dispatcher can
// cheaply answer "would any handler take this record".
//
// Handlers must tolerate being invoked in arbitrary order relative to other
// handlers.
type Handler interface {
	// Message delivers a formatted log message.
	Message(msg string, level Level, category string, attr Attributes)

	// Write delivers raw log output.
	Write(data []byte, level Level, category string)

	// Level returns the minimum level this handler accepts for category.
	Level(category string) Level
}

// HandlerFactory creates and destroys handlers by type name. A handler
// created by a factory must be destroyed through the same factory.
type HandlerFactory interface {
	// CreateHandler creates a handler of the named type. The stream may be
	// nil when the handler type does not require one. Params carry
	// type-specific settings as raw JSON.
	CreateHandler(handlerType string, level Level, filters CategoryFilters, stream io.Writer, params json.RawMessage) (Handler, error)

	// DestroyHandler releases a handler previously returned by CreateHandler.
	DestroyHandler(h Handler)
}

// StreamFactory creates and destroys output streams by type name.
type StreamFactory interface {
	// CreateStream opens a sink of the named type.
	CreateStream(streamType string, params json.RawMessage) (io.Writer, error)

	// DestroyStream releases a stream previously returned by CreateStream.
	DestroyStream(w io.Writer)
}
