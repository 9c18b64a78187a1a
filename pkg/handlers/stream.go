// Package handlers provides the default log handler implementations and the
// default handler factory. Both handlers write to an io.Writer supplied by
// the stream factory and carry their own category filter.
package handlers

import (
	"fmt"
	"io"
	"strings"

	"github.com/loomworks/loomlog/pkg/filter"
	"github.com/loomworks/loomlog/pkg/types"
)

// timestampLayout is the record timestamp format used by StreamHandler.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// StreamHandler formats log records as single lines of text:
//
//	<time> [category] file:line, func(): LEVEL: message [code = 1, details = x]
//
// Fields whose attributes are absent are omitted.
type StreamHandler struct {
	w      io.Writer
	filter *filter.Filter
}

// NewStreamHandler creates a line-oriented handler writing to w, filtering
// by the given default level and category filters.
func NewStreamHandler(w io.Writer, level types.Level, filters types.CategoryFilters) *StreamHandler {
	return &StreamHandler{
		w:      w,
		filter: filter.New(level, filters),
	}
}

// Level returns the handler's threshold for the given category.
func (h *StreamHandler) Level(category string) types.Level {
	return h.filter.Level(category)
}

// Write copies raw output to the stream unchanged.
func (h *StreamHandler) Write(data []byte, level types.Level, category string) {
	_, _ = h.w.Write(data) // Best effort; a handler has nowhere to report write errors
}

// Message formats and writes one record line.
func (h *StreamHandler) Message(msg string, level types.Level, category string, attr types.Attributes) {
	var b strings.Builder
	if !attr.Time.IsZero() {
		b.WriteString(attr.Time.Format(timestampLayout))
		b.WriteByte(' ')
	}
	if category != "" {
		b.WriteByte('[')
		b.WriteString(category)
		b.WriteString("] ")
	}
	if attr.File != "" {
		b.WriteString(attr.File)
		if attr.Line > 0 {
			fmt.Fprintf(&b, ":%d", attr.Line)
		}
		if attr.Function != "" {
			b.WriteString(", ")
		} else {
			b.WriteString(": ")
		}
	}
	if attr.Function != "" {
		b.WriteString(attr.Function)
		b.WriteString("(): ")
	}
	b.WriteString(strings.ToUpper(level.String()))
	b.WriteString(": ")
	b.WriteString(msg)
	if attr.Code != 0 || attr.Details != "" {
		b.WriteString(" [")
		if attr.Code != 0 {
			fmt.Fprintf(&b, "code = %d", attr.Code)
		}
		if attr.Details != "" {
			if attr.Code != 0 {
				b.WriteString(", ")
			}
			b.WriteString("details = ")
			b.WriteString(attr.Details)
		}
		b.WriteByte(']')
	}
	b.WriteByte('\n')
	_, _ = io.WriteString(h.w, b.String())
}
