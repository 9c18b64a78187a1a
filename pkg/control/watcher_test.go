package control

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// enumIDs snapshots the manager's factory handler ids through the processor.
func enumIDs(p *Processor) []string {
	ids := []string{}
	p.manager.EnumFactoryHandlers(func(id string) { ids = append(ids, id) })
	return ids
}

// waitForIDs polls until the manager reports exactly the wanted ids.
func waitForIDs(t *testing.T, p *Processor, want ...string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		got := enumIDs(p)
		if len(got) == len(want) {
			match := true
			for i := range got {
				if got[i] != want[i] {
					match = false
					break
				}
			}
			if match {
				return
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("handler ids = %v, want %v", got, want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestWatcherAppliesInitialConfig(t *testing.T) {
	p, _, _ := newTestProcessor()
	path := filepath.Join(t.TempDir(), "loomlog.json")
	writeConfig(t, path, `{"cmd": "addHandler", "id": "boot", "hnd": {"type": "test"}}`)

	w := NewWatcher(p, path)
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	waitForIDs(t, p, "boot")
}

func TestWatcherAppliesChanges(t *testing.T) {
	p, _, _ := newTestProcessor()
	path := filepath.Join(t.TempDir(), "loomlog.json")

	w := NewWatcher(p, path)
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	// File created after the watcher started.
	writeConfig(t, path, `{"cmd": "addHandler", "id": "h1", "hnd": {"type": "test"}}`)
	waitForIDs(t, p, "h1")

	// A document array replaces the set in order.
	writeConfig(t, path, `[
		{"cmd": "removeHandler", "id": "h1"},
		{"cmd": "addHandler", "id": "h2", "hnd": {"type": "test"}},
		{"cmd": "addHandler", "id": "h3", "hnd": {"type": "test"}}
	]`)
	waitForIDs(t, p, "h2", "h3")
}

func TestWatcherFailingDocumentDoesNotStopRest(t *testing.T) {
	p, _, _ := newTestProcessor()
	path := filepath.Join(t.TempDir(), "loomlog.json")
	writeConfig(t, path, `[
		{"cmd": "addHandler", "id": "bad", "hnd": {"type": "nope"}},
		{"cmd": "addHandler", "id": "good", "hnd": {"type": "test"}}
	]`)

	w := NewWatcher(p, path)
	if err := w.Start(); err == nil {
		w.Stop()
		t.Fatal("Start with a failing document reported no error")
	}

	// The failing document is reported but the remaining ones still apply.
	if got := enumIDs(p); len(got) != 1 || got[0] != "good" {
		t.Errorf("handler ids after failed start = %v, want [good]", got)
	}
}

func TestWatcherReportsErrors(t *testing.T) {
	p, _, _ := newTestProcessor()
	path := filepath.Join(t.TempDir(), "loomlog.json")

	w := NewWatcher(p, path)
	errs := make(chan error, 4)
	w.SetErrorHandler(func(err error) { errs <- err })
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	writeConfig(t, path, `{"cmd": "selfDestruct"}`)
	select {
	case <-errs:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the error handler")
	}
}

func TestWatcherIgnoresSiblingFiles(t *testing.T) {
	p, _, _ := newTestProcessor()
	dir := t.TempDir()
	path := filepath.Join(dir, "loomlog.json")

	w := NewWatcher(p, path)
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	writeConfig(t, filepath.Join(dir, "other.json"),
		`{"cmd": "addHandler", "id": "stray", "hnd": {"type": "test"}}`)
	writeConfig(t, path, `{"cmd": "addHandler", "id": "mine", "hnd": {"type": "test"}}`)
	waitForIDs(t, p, "mine")
}
