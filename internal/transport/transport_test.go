package transport

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/radj307/ARRCON/internal/apperr"
)

func listenLoopback(t *testing.T) (net.Listener, string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })
	return ln, ln.Addr().String()
}

func TestConnectAndClose(t *testing.T) {
	ln, addr := listenLoopback(t)
	accepted := make(chan net.Conn, 1)
	go func() {
		c, _ := ln.Accept()
		accepted <- c
	}()

	tr, err := Connect(context.Background(), addr)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	<-accepted

	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("second Close should be a no-op, got %v", err)
	}
}

func TestConnectFailure(t *testing.T) {
	ln, addr := listenLoopback(t)
	ln.Close() // nothing listening on addr now

	_, err := Connect(context.Background(), addr)
	if !apperr.Is(err, apperr.ConnectFailed) {
		t.Fatalf("expected ConnectFailed, got %v", err)
	}
}

func TestSendAllAndRecvExact(t *testing.T) {
	ln, addr := listenLoopback(t)
	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		buf := make([]byte, 5)
		c.Read(buf)
		c.Write([]byte("reply"))
	}()

	tr, err := Connect(context.Background(), addr)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer tr.Close()

	if err := tr.SendAll([]byte("hello"), time.Now().Add(time.Second)); err != nil {
		t.Fatalf("SendAll: %v", err)
	}

	got, err := tr.RecvExact(5, time.Now().Add(time.Second))
	if err != nil {
		t.Fatalf("RecvExact: %v", err)
	}
	if string(got) != "reply" {
		t.Fatalf("got %q, want %q", got, "reply")
	}
	<-serverDone
}

func TestRecvExactTimeout(t *testing.T) {
	ln, addr := listenLoopback(t)
	accepted := make(chan net.Conn, 1)
	go func() {
		c, _ := ln.Accept()
		accepted <- c
	}()

	tr, err := Connect(context.Background(), addr)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer tr.Close()
	server := <-accepted
	defer server.Close()

	_, err = tr.RecvExact(4, time.Now().Add(20*time.Millisecond))
	if !apperr.Is(err, apperr.ReadFailed) {
		t.Fatalf("expected ReadFailed on deadline expiry, got %v", err)
	}
}

func TestReadableWithin(t *testing.T) {
	ln, addr := listenLoopback(t)
	ready := make(chan net.Conn, 1)
	go func() {
		c, _ := ln.Accept()
		ready <- c
	}()

	tr, err := Connect(context.Background(), addr)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer tr.Close()
	server := <-ready
	defer server.Close()

	ok, err := tr.ReadableWithin(20 * time.Millisecond)
	if err != nil {
		t.Fatalf("ReadableWithin: %v", err)
	}
	if ok {
		t.Fatalf("expected not readable before anything was sent")
	}

	server.Write([]byte("x"))

	ok, err = tr.ReadableWithin(time.Second)
	if err != nil {
		t.Fatalf("ReadableWithin: %v", err)
	}
	if !ok {
		t.Fatalf("expected readable after peer wrote a byte")
	}

	// Peek must not have consumed the byte.
	got, err := tr.RecvExact(1, time.Now().Add(time.Second))
	if err != nil {
		t.Fatalf("RecvExact: %v", err)
	}
	if got[0] != 'x' {
		t.Fatalf("got %q, want 'x'", got)
	}
}

func TestRecvExactConnectionLost(t *testing.T) {
	ln, addr := listenLoopback(t)
	go func() {
		c, _ := ln.Accept()
		c.Close()
	}()

	tr, err := Connect(context.Background(), addr)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer tr.Close()

	_, err = tr.RecvExact(4, time.Now().Add(time.Second))
	if !apperr.Is(err, apperr.ConnectionLost) {
		t.Fatalf("expected ConnectionLost, got %v", err)
	}
}
