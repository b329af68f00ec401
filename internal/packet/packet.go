// Package packet implements the Source RCON wire frame: a length-prefixed
// binary packet with a 32-bit id, a 32-bit type, a NUL-terminated body,
// and a trailing empty NUL-terminated string. All integer fields are
// little-endian on the wire regardless of host endianness.
//
// The codec is pure: Serialize and Deserialize do no I/O, and neither
// allocates beyond the buffer they return.
package packet

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/radj307/ARRCON/internal/apperr"
)

// Type codes. ExecCommand (client to server) and AuthResponse (server to
// client) share the numeric value 2; direction disambiguates, never the
// type code alone.
const (
	TypeAuth          int32 = 3
	TypeExecCommand   int32 = 2
	TypeAuthResponse  int32 = 2
	TypeResponseValue int32 = 0
)

const (
	// PSizeMin is the smallest legal declared size: id + type + two
	// terminating NULs, with a zero-length body.
	PSizeMin = 10
	// PSizeMax is the largest declared size ARRCON will construct for an
	// outbound packet. Inbound packets larger than this are logged and
	// discarded by the frame layer, not rejected here.
	PSizeMax = 4096

	// sizeFieldLen is the width of the leading size field itself, which
	// is not counted in the declared size.
	sizeFieldLen = 4
)

// Packet is one RCON protocol frame.
type Packet struct {
	ID   int32
	Type int32
	Body string
}

// Size returns the value that belongs in the wire size field: the byte
// count following the size field itself.
func (p Packet) Size() int {
	return 4 + 4 + len(p.Body) + 1 + 1
}

// Serialize renders p as wire bytes: a little-endian size prefix followed
// by id, type, body, and the two NUL terminators. It fails if the body
// contains an interior NUL (the wire format has no way to escape one) or
// if the resulting declared size would exceed PSizeMax.
func (p Packet) Serialize() ([]byte, error) {
	if strings.IndexByte(p.Body, 0) != -1 {
		return nil, apperr.New(apperr.CorruptFrame, "packet.Serialize", fmt.Errorf("body contains an interior NUL"))
	}
	size := p.Size()
	if size > PSizeMax {
		return nil, apperr.New(apperr.CorruptFrame, "packet.Serialize", fmt.Errorf("packet size %d exceeds PSizeMax %d", size, PSizeMax))
	}

	buf := make([]byte, sizeFieldLen+size)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(size))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(p.ID))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(p.Type))
	copy(buf[12:], p.Body)
	// buf[12+len(p.Body)] and buf[13+len(p.Body)] are already zero-valued.
	return buf, nil
}

// Deserialize parses the wire bytes produced by Serialize, including the
// leading size field. It fails with a CorruptFrame error if the declared
// size is below PSizeMin, the buffer length doesn't match the declared
// size, or either NUL terminator is missing.
func Deserialize(data []byte) (Packet, error) {
	if len(data) < sizeFieldLen {
		return Packet{}, apperr.New(apperr.CorruptFrame, "packet.Deserialize", fmt.Errorf("buffer too short to contain a size field: %d bytes", len(data)))
	}

	size := int32(binary.LittleEndian.Uint32(data[0:4]))
	if size < PSizeMin {
		return Packet{}, apperr.New(apperr.CorruptFrame, "packet.Deserialize", fmt.Errorf("declared size %d is below PSizeMin %d", size, PSizeMin))
	}
	if len(data) != sizeFieldLen+int(size) {
		return Packet{}, apperr.New(apperr.CorruptFrame, "packet.Deserialize", fmt.Errorf("buffer length %d does not match declared size %d", len(data), size))
	}

	rest := data[sizeFieldLen:]
	if len(rest) < 10 {
		return Packet{}, apperr.New(apperr.CorruptFrame, "packet.Deserialize", fmt.Errorf("frame too short for id+type+terminators"))
	}

	id := int32(binary.LittleEndian.Uint32(rest[0:4]))
	typ := int32(binary.LittleEndian.Uint32(rest[4:8]))
	bodyAndTerm := rest[8:]

	nulIdx := bytes.IndexByte(bodyAndTerm, 0)
	if nulIdx == -1 {
		return Packet{}, apperr.New(apperr.CorruptFrame, "packet.Deserialize", fmt.Errorf("missing body terminator"))
	}
	body := bodyAndTerm[:nulIdx]
	trailer := bodyAndTerm[nulIdx+1:]
	if len(trailer) != 1 || trailer[0] != 0 {
		return Packet{}, apperr.New(apperr.CorruptFrame, "packet.Deserialize", fmt.Errorf("missing or malformed trailing empty terminator"))
	}

	return Packet{ID: id, Type: typ, Body: string(body)}, nil
}
