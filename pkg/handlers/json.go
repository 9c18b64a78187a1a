package handlers

import (
	"encoding/json"
	"io"

	"github.com/loomworks/loomlog/pkg/filter"
	"github.com/loomworks/loomlog/pkg/types"
)

// jsonRecord is the wire shape of one JSONHandler record. Field order
// matches the line handler's field order.
type jsonRecord struct {
	Level    string `json:"level"`
	Message  string `json:"message,omitempty"`
	Category string `json:"category,omitempty"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
	Function string `json:"function,omitempty"`
	Time     int64  `json:"time,omitempty"`
	Code     int    `json:"code,omitempty"`
	Details  string `json:"details,omitempty"`
}

// JSONHandler writes each log record as a single JSON object followed by a
// newline. Raw writes pass through unchanged.
type JSONHandler struct {
	w      io.Writer
	enc    *json.Encoder
	filter *filter.Filter
}

// NewJSONHandler creates a JSON handler writing to w, filtering by the given
// default level and category filters.
func NewJSONHandler(w io.Writer, level types.Level, filters types.CategoryFilters) *JSONHandler {
	return &JSONHandler{
		w:      w,
		enc:    json.NewEncoder(w),
		filter: filter.New(level, filters),
	}
}

// Level returns the handler's threshold for the given category.
func (h *JSONHandler) Level(category string) types.Level {
	return h.filter.Level(category)
}

// Write copies raw output to the stream unchanged.
func (h *JSONHandler) Write(data []byte, level types.Level, category string) {
	_, _ = h.w.Write(data)
}

// Message encodes one record object. Timestamps are encoded as Unix
// milliseconds.
func (h *JSONHandler) Message(msg string, level types.Level, category string, attr types.Attributes) {
	rec := jsonRecord{
		Level:    level.String(),
		Message:  msg,
		Category: category,
		File:     attr.File,
		Line:     attr.Line,
		Function: attr.Function,
		Code:     attr.Code,
		Details:  attr.Details,
	}
	if !attr.Time.IsZero() {
		rec.Time = attr.Time.UnixMilli()
	}
	_ = h.enc.Encode(rec) // Best effort; a handler has nowhere to report write errors
}
