package types

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Level is the severity of a log record and, on the filtering side, the
// minimum severity a handler accepts for a category. Lower values denote
// looser filtering: LevelAll passes everything, LevelNone passes nothing.
type Level int

// Severity levels. The gaps between ordinals are intentional so that
// thresholds can be compared numerically: a record passes a filter when its
// level is at or above the filter's level.
const (
	LevelAll   Level = 1
	LevelTrace Level = 1
	LevelInfo  Level = 30
	LevelWarn  Level = 40
	LevelError Level = 50
	LevelPanic Level = 60
	LevelNone  Level = 70
)

// levelNames maps the recognized level names to their ordinals. Names are
// case-sensitive; this is the exact set accepted by the configuration
// protocol.
var levelNames = []struct {
	name  string
	level Level
}{
	{"none", LevelNone},
	{"trace", LevelTrace},
	{"info", LevelInfo},
	{"warn", LevelWarn},
	{"error", LevelError},
	{"panic", LevelPanic},
	{"all", LevelAll},
}

// ParseLevel converts a level name to its Level value.
// Unknown names return an error.
func ParseLevel(name string) (Level, error) {
	for _, entry := range levelNames {
		if entry.name == name {
			return entry.level, nil
		}
	}
	return LevelNone, errors.Errorf("unknown level name %q", name)
}

// String returns the canonical name for the level. LevelAll and LevelTrace
// share an ordinal; the trace name is used for both.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelPanic:
		return "panic"
	case LevelNone:
		return "none"
	}
	return "unknown"
}

// MarshalJSON encodes the level as its name.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON decodes a level from its name. A non-string value or an
// unrecognized name is an error.
func (l *Level) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return errors.Wrap(err, "level must be a string")
	}
	level, err := ParseLevel(name)
	if err != nil {
		return err
	}
	*l = level
	return nil
}
