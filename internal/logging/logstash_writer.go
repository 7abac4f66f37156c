// Package logging mirrors application log output to a Logstash TCP input.
package logging

import (
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"time"
)

const (
	dialTimeout   = 2 * time.Second
	writeTimeout  = time.Second
	retryInterval = 5 * time.Second
)

// LogstashWriter forwards log lines over a single TCP connection. Writes never
// block the caller on network trouble; while Logstash is unreachable entries
// are dropped and a reconnect is attempted after a cool-down.
type LogstashWriter struct {
	addr string

	mu          sync.Mutex
	conn        net.Conn
	lastFailure time.Time
	closed      bool
}

// NewLogstashWriter returns a writer safe for concurrent use. The connection
// is established lazily on first write.
func NewLogstashWriter(addr string) (*LogstashWriter, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, errors.New("logstash: empty address")
	}
	return &LogstashWriter{addr: addr}, nil
}

// Write implements io.Writer. A failed send closes the connection and starts
// the retry cool-down; the entry is reported as written either way so the
// local logger keeps going.
func (w *LogstashWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	line := make([]byte, len(p))
	copy(line, p)
	if line[len(line)-1] != '\n' {
		line = append(line, '\n')
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, io.ErrClosedPipe
	}
	if !w.connectLocked() {
		return len(p), nil
	}

	_ = w.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := w.conn.Write(line); err != nil {
		w.conn.Close()
		w.conn = nil
		w.lastFailure = time.Now()
	}
	return len(p), nil
}

// Close tears down the TCP connection. Subsequent writes fail.
func (w *LogstashWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.conn == nil {
		return nil
	}
	err := w.conn.Close()
	w.conn = nil
	return err
}

func (w *LogstashWriter) connectLocked() bool {
	if w.conn != nil {
		return true
	}
	if !w.lastFailure.IsZero() && time.Since(w.lastFailure) < retryInterval {
		return false
	}

	conn, err := net.DialTimeout("tcp", w.addr, dialTimeout)
	if err != nil {
		w.lastFailure = time.Now()
		return false
	}
	w.conn = conn
	w.lastFailure = time.Time{}
	return true
}
