// Package control implements the JSON remote-configuration protocol for the
// log manager. Requests create, remove and enumerate dynamically created
// handlers at runtime:
//
// Adding a log handler:
//
//	{
//	  "cmd": "addHandler",       // Command name
//	  "id": "handler1",          // Handler ID
//	  "hnd": {                   // Handler settings
//	    "type": "JSONHandler",   // Handler type
//	    "params": { ... }        // Additional handler parameters
//	  },
//	  "strm": {                  // Stream settings
//	    "type": "file",          // Stream type
//	    "params": { ... }        // Additional stream parameters
//	  },
//	  "filt": [                  // Category filters
//	    { "cat": "app", "lvl": "all" }
//	  ],
//	  "lvl": "warn"              // Default logging level
//	}
//
// Removing a log handler:
//
//	{ "cmd": "removeHandler", "id": "handler1" }
//
// Enumerating active log handlers:
//
//	{ "cmd": "enumHandlers" }
//
// with the reply
//
//	["handler1", "handler2"]
//
// How the request bytes arrive is up to the caller; the protocol operates on
// an in-memory buffer and writes its response into the same buffer.
package control

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/loomworks/loomlog/pkg/loomlog"
	"github.com/loomworks/loomlog/pkg/types"
)

// Protocol errors.
var (
	// ErrParse is returned for requests that are not well-formed, including
	// unrecognized level names.
	ErrParse = errors.New("malformed configuration request")

	// ErrUnknownCommand is returned for commands the protocol does not
	// recognize.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrResponseTooLarge is returned when the serialized response does not
	// fit into the request buffer. No partial response is written.
	ErrResponseTooLarge = errors.New("response exceeds buffer capacity")
)

// object is the handler/stream settings subdocument.
type object struct {
	Type   string          `json:"type"`
	Params json.RawMessage `json:"params"`
}

// filterEntry is one category filter of the "filt" list. An omitted level
// defaults to none.
type filterEntry struct {
	Category string      `json:"cat"`
	Level    types.Level `json:"lvl"`
}

func (e *filterEntry) UnmarshalJSON(data []byte) error {
	type alias filterEntry
	a := alias{Level: types.LevelNone}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*e = filterEntry(a)
	return nil
}

// request is the parsed configuration request. Unknown fields are ignored
// for forward compatibility.
type request struct {
	Cmd     string        `json:"cmd"`
	ID      string        `json:"id"`
	Handler object        `json:"hnd"`
	Stream  object        `json:"strm"`
	Filters []filterEntry `json:"filt"`
	Level   types.Level   `json:"lvl"`
}

// Processor parses configuration requests and drives a Manager.
type Processor struct {
	manager *loomlog.Manager
}

// NewProcessor creates a processor bound to the given manager. A nil manager
// binds to the process-wide default.
func NewProcessor(m *loomlog.Manager) *Processor {
	if m == nil {
		m = loomlog.Default()
	}
	return &Processor{manager: m}
}

// Process handles one configuration request. The request occupies
// buf[:reqSize]; the response is written back into buf's backing array,
// bounded by cap(buf), and its size is returned. A response that would not
// fit fails without writing anything. Commands that produce no response body
// return a size of zero.
func (p *Processor) Process(buf []byte, reqSize int) (int, error) {
	rep, err := p.apply(buf[:reqSize])
	if err != nil {
		return 0, err
	}
	if len(rep) > cap(buf) {
		return 0, ErrResponseTooLarge
	}
	copy(buf[:cap(buf)], rep)
	return len(rep), nil
}

// apply parses and dispatches one request document, returning the response
// body (nil when the command has none).
func (p *Processor) apply(doc []byte) ([]byte, error) {
	req := request{Level: types.LevelNone}
	if err := json.Unmarshal(doc, &req); err != nil {
		return nil, errors.WithMessage(ErrParse, err.Error())
	}

	switch req.Cmd {
	case "addHandler":
		return nil, p.addHandler(&req)
	case "removeHandler":
		p.manager.RemoveFactoryHandler(req.ID)
		return nil, nil
	case "enumHandlers":
		return p.enumHandlers()
	}
	return nil, errors.Wrap(ErrUnknownCommand, req.Cmd)
}

func (p *Processor) addHandler(req *request) error {
	filters := make(types.CategoryFilters, 0, len(req.Filters))
	for _, f := range req.Filters {
		filters = append(filters, types.CategoryFilter{Category: f.Category, Level: f.Level})
	}
	return p.manager.AddFactoryHandler(req.ID, req.Handler.Type, req.Level, filters,
		req.Handler.Params, req.Stream.Type, req.Stream.Params)
}

func (p *Processor) enumHandlers() ([]byte, error) {
	ids := make([]string, 0, 4)
	p.manager.EnumFactoryHandlers(func(id string) {
		ids = append(ids, id)
	})
	rep, err := json.Marshal(ids)
	if err != nil {
		return nil, errors.Wrap(err, "encode response")
	}
	return rep, nil
}
