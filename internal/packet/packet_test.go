package packet

import (
	"strings"
	"testing"

	"github.com/radj307/ARRCON/internal/apperr"
)

func TestRoundTrip(t *testing.T) {
	cases := []Packet{
		{ID: 0, Type: TypeAuth, Body: ""},
		{ID: 1, Type: TypeExecCommand, Body: "status"},
		{ID: 2, Type: TypeResponseValue, Body: strings.Repeat("A", 3000)},
		{ID: -1, Type: TypeAuthResponse, Body: ""},
	}
	for _, p := range cases {
		data, err := p.Serialize()
		if err != nil {
			t.Fatalf("Serialize(%+v): %v", p, err)
		}
		got, err := Deserialize(data)
		if err != nil {
			t.Fatalf("Deserialize after Serialize(%+v): %v", p, err)
		}
		if got != p {
			t.Fatalf("round trip mismatch: got %+v, want %+v", got, p)
		}
	}
}

func TestSizeLaw(t *testing.T) {
	p := Packet{ID: 5, Type: TypeExecCommand, Body: "hello world"}
	data, err := p.Serialize()
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 4+p.Size() {
		t.Fatalf("len(data)=%d, want %d", len(data), 4+p.Size())
	}
	if len(data) != 14+len(p.Body) {
		t.Fatalf("len(data)=%d, want %d", len(data), 14+len(p.Body))
	}
}

func TestEndianLaw(t *testing.T) {
	p := Packet{ID: 1, Type: TypeAuth, Body: "secret"}
	data, err := p.Serialize()
	if err != nil {
		t.Fatal(err)
	}
	want := p.Size()
	got := int(data[0]) | int(data[1])<<8 | int(data[2])<<16 | int(data[3])<<24
	if got != want {
		t.Fatalf("first four bytes decode to %d, want little-endian %d", got, want)
	}
}

func TestSerializeRejectsInteriorNUL(t *testing.T) {
	p := Packet{ID: 1, Type: TypeExecCommand, Body: "bad\x00body"}
	_, err := p.Serialize()
	if !apperr.Is(err, apperr.CorruptFrame) {
		t.Fatalf("expected CorruptFrame, got %v", err)
	}
}

func TestSerializeRejectsOversize(t *testing.T) {
	p := Packet{ID: 1, Type: TypeExecCommand, Body: strings.Repeat("x", PSizeMax)}
	_, err := p.Serialize()
	if !apperr.Is(err, apperr.CorruptFrame) {
		t.Fatalf("expected CorruptFrame, got %v", err)
	}
}

func TestDeserializeRejectsUndersize(t *testing.T) {
	// Declared size below PSizeMin.
	data := []byte{5, 0, 0, 0, 1, 2, 3, 4, 5}
	_, err := Deserialize(data)
	if !apperr.Is(err, apperr.CorruptFrame) {
		t.Fatalf("expected CorruptFrame, got %v", err)
	}
}

func TestDeserializeRejectsMissingTerminator(t *testing.T) {
	p := Packet{ID: 1, Type: TypeExecCommand, Body: "ok"}
	data, err := p.Serialize()
	if err != nil {
		t.Fatal(err)
	}
	// Truncate the trailing empty terminator off.
	truncated := data[:len(data)-1]
	_, err = Deserialize(truncated)
	if !apperr.Is(err, apperr.CorruptFrame) {
		t.Fatalf("expected CorruptFrame, got %v", err)
	}
}

func TestDeserializeRejectsLengthMismatch(t *testing.T) {
	p := Packet{ID: 1, Type: TypeExecCommand, Body: "ok"}
	data, err := p.Serialize()
	if err != nil {
		t.Fatal(err)
	}
	data = append(data, 0xFF) // trailing garbage the declared size doesn't account for
	_, err = Deserialize(data)
	if !apperr.Is(err, apperr.CorruptFrame) {
		t.Fatalf("expected CorruptFrame, got %v", err)
	}
}
