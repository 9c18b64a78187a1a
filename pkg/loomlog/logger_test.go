package loomlog

import (
	"strings"
	"testing"

	"github.com/loomworks/loomlog/pkg/types"
)

// recordingHandler captures full records for logger tests.
type recordingHandler struct {
	threshold types.Level
	records   []record
}

type record struct {
	msg      string
	level    types.Level
	category string
	attr     types.Attributes
}

func (h *recordingHandler) Message(msg string, level types.Level, category string, attr types.Attributes) {
	h.records = append(h.records, record{msg, level, category, attr})
}

func (h *recordingHandler) Write(data []byte, level types.Level, category string) {
	h.records = append(h.records, record{msg: string(data), level: level, category: category})
}

func (h *recordingHandler) Level(category string) types.Level {
	return h.threshold
}

func TestLoggerNoHandlers(t *testing.T) {
	log := NewLogger("app")
	if log.Enabled(types.LevelPanic) {
		t.Error("Enabled returned true with no handlers installed")
	}
	// Must not panic.
	log.Info("dropped")
	log.Write(types.LevelInfo, []byte("dropped"))
}

func TestLoggerDispatch(t *testing.T) {
	m := NewManager(DefaultSlot())
	defer m.Shutdown()
	h := &recordingHandler{threshold: types.LevelInfo}
	if err := m.AddHandler(h); err != nil {
		t.Fatalf("AddHandler: %v", err)
	}

	log := NewLogger("app.network")
	if !log.Enabled(types.LevelError) {
		t.Fatal("Enabled(error) = false with an info handler active")
	}
	if log.Enabled(types.LevelTrace) {
		t.Fatal("Enabled(trace) = true with an info handler active")
	}

	log.Trace("filtered out")
	log.Infof("hello %s", "world")
	log.Error("boom")
	log.LogAttr(types.LevelWarn, "with attrs", types.Attributes{Code: 7, Details: "ctx"})
	log.Write(types.LevelInfo, []byte("raw bytes"))

	if len(h.records) != 4 {
		t.Fatalf("record count = %d, want 4: %+v", len(h.records), h.records)
	}
	if h.records[0].msg != "hello world" || h.records[0].level != types.LevelInfo {
		t.Errorf("first record = %+v", h.records[0])
	}
	if h.records[0].category != "app.network" {
		t.Errorf("category = %q, want app.network", h.records[0].category)
	}
	if h.records[0].attr.Time.IsZero() {
		t.Error("message record has no timestamp")
	}
	if h.records[2].attr.Code != 7 || h.records[2].attr.Details != "ctx" {
		t.Errorf("attribute record = %+v", h.records[2])
	}
	if h.records[3].msg != "raw bytes" {
		t.Errorf("raw record = %+v", h.records[3])
	}
}

func TestLoggerWithCaller(t *testing.T) {
	m := NewManager(DefaultSlot())
	defer m.Shutdown()
	h := &recordingHandler{threshold: types.LevelTrace}
	if err := m.AddHandler(h); err != nil {
		t.Fatalf("AddHandler: %v", err)
	}

	NewLogger("app").WithCaller().Info("where am I")

	if len(h.records) != 1 {
		t.Fatalf("record count = %d, want 1", len(h.records))
	}
	attr := h.records[0].attr
	if attr.File != "logger_test.go" {
		t.Errorf("caller file = %q, want logger_test.go", attr.File)
	}
	if attr.Line == 0 {
		t.Error("caller line not recorded")
	}
	if !strings.Contains(attr.Function, "TestLoggerWithCaller") {
		t.Errorf("caller function = %q, want TestLoggerWithCaller", attr.Function)
	}
}

func TestFuncName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"github.com/loomworks/loomlog/pkg/loomlog.TestFuncName", "TestFuncName"},
		{"github.com/loomworks/loomlog/pkg/loomlog.(*Logger).log", "(*Logger).log"},
		{"main.main", "main"},
	}
	for _, tt := range tests {
		if got := funcName(tt.in); got != tt.want {
			t.Errorf("funcName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
