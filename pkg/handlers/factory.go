package handlers

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"github.com/loomworks/loomlog/pkg/types"
)

// Handler type names recognized by the default factory.
const (
	TypeStreamHandler = "StreamHandler"
	TypeJSONHandler   = "JSONHandler"
)

// ErrUnknownHandlerType is returned for handler types the factory does not
// recognize.
var ErrUnknownHandlerType = errors.New("unknown handler type")

// ErrNoStream is returned when a handler type that requires an output
// stream is created without one.
var ErrNoStream = errors.New("output stream is not specified")

// Factory is the default handler factory. It creates StreamHandler and
// JSONHandler instances; both require an output stream.
type Factory struct{}

// NewFactory creates the default handler factory.
func NewFactory() *Factory {
	return &Factory{}
}

// CreateHandler creates a handler of the named type.
func (f *Factory) CreateHandler(handlerType string, level types.Level, filters types.CategoryFilters,
	stream io.Writer, params json.RawMessage) (types.Handler, error) {
	switch handlerType {
	case TypeStreamHandler:
		if stream == nil {
			return nil, ErrNoStream
		}
		return NewStreamHandler(stream, level, filters), nil
	case TypeJSONHandler:
		if stream == nil {
			return nil, ErrNoStream
		}
		return NewJSONHandler(stream, level, filters), nil
	}
	return nil, errors.Wrap(ErrUnknownHandlerType, handlerType)
}

// DestroyHandler releases a handler created by this factory. The default
// handlers hold no resources of their own; their streams are owned and
// closed by the stream factory.
func (f *Factory) DestroyHandler(h types.Handler) {
}
