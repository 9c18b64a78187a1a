package backends

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
)

// DefaultBufferSize is the buffer size for file streams.
const DefaultBufferSize = 32 * 1024

// FileStream is an append-mode log file with process-safe locking. Writes
// acquire an advisory flock so multiple processes can share one log file.
type FileStream struct {
	file   *os.File
	writer *bufio.Writer
	lock   *flock.Flock
	path   string
}

// NewFileStream opens (creating if needed) the file at path for appending.
func NewFileStream(path string) (*FileStream, error) {
	dir := filepath.Dir(path)
	// #nosec G301 - log directories need to be accessible by other processes
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "create directory")
	}

	cleanPath := filepath.Clean(path)
	file, err := os.OpenFile(cleanPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644) // #nosec G302 - log files need to be readable
	if err != nil {
		return nil, errors.Wrap(err, "open file")
	}

	return &FileStream{
		file:   file,
		writer: bufio.NewWriterSize(file, DefaultBufferSize),
		lock:   flock.New(cleanPath),
		path:   cleanPath,
	}, nil
}

// Path returns the file path.
func (s *FileStream) Path() string {
	return s.path
}

// Write appends data to the file under the file lock.
func (s *FileStream) Write(data []byte) (int, error) {
	if err := s.lock.Lock(); err != nil {
		return 0, errors.Wrap(err, "acquire lock")
	}
	defer func() {
		_ = s.lock.Unlock() // Best effort unlock
	}()

	n, err := s.writer.Write(data)
	if err != nil {
		return n, err
	}
	return n, s.writer.Flush()
}

// Close flushes buffered data and closes the file.
func (s *FileStream) Close() error {
	var firstErr error
	if err := s.writer.Flush(); err != nil {
		firstErr = errors.Wrap(err, "flush")
	}
	if err := s.file.Close(); err != nil && firstErr == nil {
		firstErr = errors.Wrap(err, "close file")
	}
	return firstErr
}
