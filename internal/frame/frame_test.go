package frame

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/radj307/ARRCON/internal/apperr"
	"github.com/radj307/ARRCON/internal/packet"
	"github.com/radj307/ARRCON/internal/transport"
)

func dialedPair(t *testing.T) (*transport.Transport, net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	accepted := make(chan net.Conn, 1)
	go func() {
		c, _ := ln.Accept()
		accepted <- c
	}()

	tr, err := transport.Connect(context.Background(), ln.Addr().String())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { tr.Close() })

	server := <-accepted
	t.Cleanup(func() { server.Close() })
	return tr, server
}

func TestSendRecvRoundTrip(t *testing.T) {
	tr, server := dialedPair(t)
	ch := New(tr)

	p := packet.Packet{ID: 7, Type: packet.TypeExecCommand, Body: "status"}
	data, err := p.Serialize()
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		server.Write(data)
	}()

	got, err := ch.Recv(time.Now().Add(time.Second))
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if got != p {
		t.Fatalf("got %+v, want %+v", got, p)
	}
	<-done
}

func TestSendWritesWireBytes(t *testing.T) {
	tr, server := dialedPair(t)
	ch := New(tr)

	p := packet.Packet{ID: 1, Type: packet.TypeAuth, Body: "secret"}
	if err := ch.Send(p, time.Now().Add(time.Second)); err != nil {
		t.Fatalf("Send: %v", err)
	}

	want, err := p.Serialize()
	if err != nil {
		t.Fatal(err)
	}
	got := make([]byte, len(want))
	server.SetReadDeadline(time.Now().Add(time.Second))
	if _, err := server.Read(got); err != nil {
		t.Fatalf("read from server side: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("wire bytes mismatch: got %x, want %x", got, want)
	}
}

func TestRecvDiscardsOversizeDeclaredSize(t *testing.T) {
	tr, server := dialedPair(t)
	ch := New(tr)

	declared := packet.PSizeMax + 900
	header := make([]byte, 4)
	header[0] = byte(declared)
	header[1] = byte(declared >> 8)
	body := make([]byte, declared)
	go func() {
		server.Write(header)
		server.Write(body)
	}()

	_, err := ch.Recv(time.Now().Add(time.Second))
	if !apperr.Is(err, apperr.OversizePacket) {
		t.Fatalf("expected OversizePacket, got %v", err)
	}
}

func TestRecvRejectsUndersizeDeclaredSize(t *testing.T) {
	tr, server := dialedPair(t)
	ch := New(tr)

	undersize := []byte{1, 0, 0, 0}
	go server.Write(undersize)

	_, err := ch.Recv(time.Now().Add(time.Second))
	if !apperr.Is(err, apperr.CorruptFrame) {
		t.Fatalf("expected CorruptFrame, got %v", err)
	}
}
