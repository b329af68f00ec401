// Package transport owns the single TCP socket an ARRCON session talks
// over: dialing it, writing and reading exact byte counts, a non-destructive
// readiness probe, and an idempotent close. It knows nothing about RCON
// packet framing — that's internal/frame's job.
package transport

import (
	"bufio"
	"context"
	"io"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/radj307/ARRCON/internal/apperr"
	"github.com/radj307/ARRCON/internal/util"
)

// Transport wraps a single net.Conn with a buffered reader so the readiness
// probe (ReadableWithin) can Peek without consuming bytes the caller still
// needs.
type Transport struct {
	mu     sync.Mutex
	conn   net.Conn
	r      *bufio.Reader
	closed bool
	logger zerolog.Logger
}

// Connect dials addr ("host:port") over TCP using ctx for cancellation and
// address-resolution timeout. It performs no RCON handshake — the returned
// Transport is a bare, unauthenticated socket.
func Connect(ctx context.Context, addr string) (*Transport, error) {
	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, apperr.New(apperr.ConnectFailed, "transport.Connect", err)
	}
	return &Transport{
		conn:   conn,
		r:      bufio.NewReader(conn),
		logger: util.ComponentLogger("transport"),
	}, nil
}

// SendAll writes every byte of data, or fails with WriteFailed. deadline is
// the absolute time by which the write must complete; a zero deadline means
// no deadline is applied.
func (t *Transport) SendAll(data []byte, deadline time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return apperr.New(apperr.WriteFailed, "transport.SendAll", net.ErrClosed)
	}
	if err := t.conn.SetWriteDeadline(deadline); err != nil {
		return apperr.New(apperr.WriteFailed, "transport.SendAll", err)
	}
	n, err := t.conn.Write(data)
	if err != nil {
		return apperr.New(apperr.WriteFailed, "transport.SendAll", err)
	}
	if n != len(data) {
		return apperr.New(apperr.WriteFailed, "transport.SendAll", io.ErrShortWrite)
	}
	return nil
}

// RecvExact reads exactly n bytes. A peer-closed connection, whether before
// the first byte or partway through the read, fails with ConnectionLost;
// any other failure, including a deadline expiry, fails with ReadFailed.
func (t *Transport) RecvExact(n int, deadline time.Time) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, apperr.New(apperr.ReadFailed, "transport.RecvExact", net.ErrClosed)
	}
	if err := t.conn.SetReadDeadline(deadline); err != nil {
		return nil, apperr.New(apperr.ReadFailed, "transport.RecvExact", err)
	}

	buf := make([]byte, n)
	read, err := io.ReadFull(t.r, buf)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, apperr.New(apperr.ConnectionLost, "transport.RecvExact", err)
		}
		return nil, apperr.New(apperr.ReadFailed, "transport.RecvExact", err)
	}
	return buf[:read], nil
}

// ReadableWithin reports whether at least one byte becomes available before
// timeout elapses, without consuming it. This is the idiomatic Go substitute
// for a select(2)/pselect(2) readiness probe: a bounded SetReadDeadline plus
// a non-destructive Peek(1) on the buffered reader, which leaves the byte in
// place for the next RecvExact to read.
func (t *Transport) ReadableWithin(timeout time.Duration) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return false, apperr.New(apperr.ReadFailed, "transport.ReadableWithin", net.ErrClosed)
	}
	if err := t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return false, apperr.New(apperr.ReadFailed, "transport.ReadableWithin", err)
	}
	defer t.conn.SetReadDeadline(time.Time{})

	_, err := t.r.Peek(1)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return false, nil
		}
		if err == io.EOF {
			return false, apperr.New(apperr.ConnectionLost, "transport.ReadableWithin", err)
		}
		return false, apperr.New(apperr.ReadFailed, "transport.ReadableWithin", err)
	}
	return true, nil
}

// FlushPending discards any bytes already buffered or waiting on the wire,
// up to a short bound, without blocking for new data that hasn't arrived
// yet. Used once a command's sentinel reply has arrived, to consume any
// trailing frames the server sends after it.
func (t *Transport) FlushPending() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	_ = t.conn.SetReadDeadline(time.Now().Add(20 * time.Millisecond))
	defer t.conn.SetReadDeadline(time.Time{})

	buf := make([]byte, 4096)
	for {
		n, err := t.r.Read(buf)
		if n > 0 {
			t.logger.Debug().Int("bytes", n).Msg("flushed pending bytes")
		}
		if err != nil {
			return
		}
	}
}

// Close closes the underlying socket. Safe to call more than once.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	return t.conn.Close()
}
