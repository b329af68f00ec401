// Package frame is the thin channel between internal/rcon's session state
// machine and internal/transport's raw socket: it turns a Packet into wire
// bytes and back.
package frame

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/radj307/ARRCON/internal/apperr"
	"github.com/radj307/ARRCON/internal/packet"
	"github.com/radj307/ARRCON/internal/transport"
	"github.com/radj307/ARRCON/internal/util"
)

// Channel sends and receives whole Packets over a Transport.
type Channel struct {
	t      *transport.Transport
	logger zerolog.Logger
}

// New wraps t in a Channel.
func New(t *transport.Transport) *Channel {
	return &Channel{t: t, logger: util.ComponentLogger("frame")}
}

// Send serializes p and writes it to the transport.
func (c *Channel) Send(p packet.Packet, deadline time.Time) error {
	data, err := p.Serialize()
	if err != nil {
		return err
	}
	return c.t.SendAll(data, deadline)
}

// Recv reads one complete frame: a 4-byte size prefix followed by exactly
// that many bytes, then decodes it into a Packet.
//
// An undersize declared size is a CorruptFrame: there's no way to know how
// many bytes to discard to resynchronize, so the caller must give up on the
// stream. An oversize declared size is different — the peer is still
// telling the truth about how many bytes follow, so Recv reads and discards
// exactly that many bytes (keeping the stream in sync for the next frame)
// before returning OversizePacket.
func (c *Channel) Recv(deadline time.Time) (packet.Packet, error) {
	sizeBytes, err := c.t.RecvExact(4, deadline)
	if err != nil {
		return packet.Packet{}, err
	}
	size := int32(binary.LittleEndian.Uint32(sizeBytes))
	if size < packet.PSizeMin {
		return packet.Packet{}, apperr.New(apperr.CorruptFrame, "frame.Recv", fmt.Errorf("declared size %d below PSizeMin %d", size, packet.PSizeMin))
	}
	if size > packet.PSizeMax {
		c.logger.Warn().Int32("declared_size", size).Msg("discarding oversize frame")
		if _, err := c.t.RecvExact(int(size), deadline); err != nil {
			return packet.Packet{}, err
		}
		return packet.Packet{}, apperr.New(apperr.OversizePacket, "frame.Recv", fmt.Errorf("declared size %d exceeds PSizeMax %d", size, packet.PSizeMax))
	}

	rest, err := c.t.RecvExact(int(size), deadline)
	if err != nil {
		return packet.Packet{}, err
	}

	full := make([]byte, 0, 4+len(rest))
	full = append(full, sizeBytes...)
	full = append(full, rest...)
	return packet.Deserialize(full)
}
