package backends

import (
	"bufio"
	"net"
	"sync"

	"github.com/pkg/errors"
)

// SocketStream writes log output to a network connection. It supports any
// network accepted by net.Dial ("tcp", "udp", "unix", ...).
type SocketStream struct {
	network string
	address string
	conn    net.Conn
	writer  *bufio.Writer
	mu      sync.Mutex // Protects concurrent access to writer
}

// NewSocketStream connects to the given network address.
func NewSocketStream(network, address string) (*SocketStream, error) {
	conn, err := net.Dial(network, address)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s %s", network, address)
	}
	return &SocketStream{
		network: network,
		address: address,
		conn:    conn,
		writer:  bufio.NewWriter(conn),
	}, nil
}

// Write sends data over the connection.
func (s *SocketStream) Write(data []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.writer.Write(data)
	if err != nil {
		return n, err
	}
	return n, s.writer.Flush()
}

// Close flushes and closes the connection.
func (s *SocketStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	if err := s.writer.Flush(); err != nil {
		firstErr = errors.Wrap(err, "flush")
	}
	if err := s.conn.Close(); err != nil && firstErr == nil {
		firstErr = errors.Wrap(err, "close connection")
	}
	return firstErr
}
