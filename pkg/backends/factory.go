// Package backends provides the default output stream implementations and
// the default stream factory used for dynamically created log handlers.
package backends

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Stream type names recognized by the default factory.
const (
	TypeStdout = "stdout"
	TypeStderr = "stderr"
	TypeFile   = "file"
	TypeSocket = "socket"
	TypeNATS   = "nats"
)

// ErrUnknownStreamType is returned for stream types the factory does not
// recognize.
var ErrUnknownStreamType = errors.New("unknown stream type")

// fileParams configures a "file" stream.
type fileParams struct {
	Path string `json:"path"`
}

// socketParams configures a "socket" stream. Network defaults to "tcp".
type socketParams struct {
	Network string `json:"network"`
	Address string `json:"address"`
}

// natsParams configures a "nats" stream.
type natsParams struct {
	URL     string `json:"url"`
	Subject string `json:"subject"`
}

// Factory is the default stream factory. Streams it opens are owned by the
// caller and must be released through DestroyStream.
type Factory struct{}

// NewFactory creates the default stream factory.
func NewFactory() *Factory {
	return &Factory{}
}

// CreateStream opens a sink of the named type. Params are type-specific;
// see fileParams, socketParams and natsParams.
func (f *Factory) CreateStream(streamType string, params json.RawMessage) (io.Writer, error) {
	switch streamType {
	case TypeStdout:
		return os.Stdout, nil
	case TypeStderr:
		return os.Stderr, nil
	case TypeFile:
		var p fileParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		if p.Path == "" {
			return nil, errors.New("file stream requires a path")
		}
		return NewFileStream(p.Path)
	case TypeSocket:
		var p socketParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		if p.Network == "" {
			p.Network = "tcp"
		}
		return NewSocketStream(p.Network, p.Address)
	case TypeNATS:
		var p natsParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		return NewNATSStream(p.URL, p.Subject)
	}
	return nil, errors.Wrap(ErrUnknownStreamType, streamType)
}

// DestroyStream closes a stream opened by CreateStream. The process streams
// (stdout, stderr) and writers the factory does not own are left open.
func (f *Factory) DestroyStream(w io.Writer) {
	if w == os.Stdout || w == os.Stderr {
		return
	}
	if closer, ok := w.(io.Closer); ok {
		_ = closer.Close() // Best effort close
	}
}

// unmarshalParams decodes optional stream parameters. Absent params decode
// to zero values.
func unmarshalParams(params json.RawMessage, v interface{}) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return errors.Wrap(err, "parse stream params")
	}
	return nil
}
