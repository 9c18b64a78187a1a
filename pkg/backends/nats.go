package backends

import (
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
)

// NATSStream publishes each write as a message on a NATS subject. Useful
// for shipping log records to a central collector without touching disk.
type NATSStream struct {
	conn    *nats.Conn
	subject string
}

// NewNATSStream connects to a NATS server and binds the stream to subject.
// An empty url uses the default NATS server address.
func NewNATSStream(url, subject string) (*NATSStream, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	if subject == "" {
		return nil, errors.New("nats subject must not be empty")
	}
	conn, err := nats.Connect(url, nats.Name("loomlog"))
	if err != nil {
		return nil, errors.Wrapf(err, "connect to nats %s", url)
	}
	return &NATSStream{conn: conn, subject: subject}, nil
}

// Write publishes data as one message.
func (s *NATSStream) Write(data []byte) (int, error) {
	if err := s.conn.Publish(s.subject, data); err != nil {
		return 0, errors.Wrap(err, "publish")
	}
	return len(data), nil
}

// Close flushes pending messages and closes the connection.
func (s *NATSStream) Close() error {
	err := s.conn.Flush()
	s.conn.Close()
	return err
}
