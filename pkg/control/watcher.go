package control

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// Watcher applies configuration requests from a JSON file whenever the file
// changes. The file holds either a single request document or an array of
// request documents, in the same schema Process accepts. Each document is
// applied independently; a failing document does not stop the rest.
//
// The watcher monitors the file's directory so editors and configuration
// management tools that replace the file atomically are picked up.
type Watcher struct {
	proc    *Processor
	path    string
	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup

	mu      sync.Mutex
	onError func(error)
}

// NewWatcher creates a watcher that feeds changes of the file at path into
// proc. Call Start to begin watching.
func NewWatcher(proc *Processor, path string) *Watcher {
	return &Watcher{
		proc: proc,
		path: filepath.Clean(path),
		done: make(chan struct{}),
	}
}

// SetErrorHandler installs a callback invoked with errors encountered while
// reading or applying the file. By default errors are dropped.
func (w *Watcher) SetErrorHandler(fn func(error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = fn
}

// Start applies the file once (if it exists) and begins watching for
// changes.
func (w *Watcher) Start() error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		_ = fw.Close()
		return errors.Wrap(err, "watch config directory")
	}
	w.watcher = fw

	if _, err := os.Stat(w.path); err == nil {
		if err := w.applyFile(); err != nil {
			_ = fw.Close()
			return errors.Wrap(err, "apply initial config")
		}
	}

	w.wg.Add(1)
	go w.watch()
	return nil
}

// Stop stops watching and waits for the watch goroutine to exit.
func (w *Watcher) Stop() {
	close(w.done)
	w.wg.Wait()
	_ = w.watcher.Close()
}

// reportError invokes the installed error handler, if any.
func (w *Watcher) reportError(err error) {
	w.mu.Lock()
	fn := w.onError
	w.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

func (w *Watcher) watch() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if err := w.applyFile(); err != nil {
				w.reportError(err)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.reportError(err)
		}
	}
}

// applyFile reads the config file and applies every request document in it.
func (w *Watcher) applyFile() error {
	data, err := os.ReadFile(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Removed between event and read
		}
		return errors.Wrap(err, "read config file")
	}

	docs, err := splitDocuments(data)
	if err != nil {
		return err
	}
	var firstErr error
	for _, doc := range docs {
		if _, err := w.proc.apply(doc); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// splitDocuments returns the request documents of a config file: the
// elements of a top-level array, or the single top-level object.
func splitDocuments(data []byte) ([]json.RawMessage, error) {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '[':
			var docs []json.RawMessage
			if err := json.Unmarshal(data, &docs); err != nil {
				return nil, errors.WithMessage(ErrParse, err.Error())
			}
			return docs, nil
		default:
			return []json.RawMessage{data}, nil
		}
	}
	return nil, nil // Empty file
}
