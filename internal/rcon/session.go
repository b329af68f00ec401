// Package rcon implements the RCON session state machine: authentication
// and per-command execution with sentinel-based multi-packet reassembly,
// layered over internal/frame.
package rcon

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/radj307/ARRCON/internal/apperr"
	"github.com/radj307/ARRCON/internal/frame"
	"github.com/radj307/ARRCON/internal/packet"
	"github.com/radj307/ARRCON/internal/transport"
	"github.com/radj307/ARRCON/internal/util"
)

// State is one of the three states a Session can be in.
type State int

const (
	Connected State = iota
	Authenticated
	Closed
)

func (s State) String() string {
	switch s {
	case Connected:
		return "Connected"
	case Authenticated:
		return "Authenticated"
	case Closed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Config holds the Session's own timing knobs. CommandDelay is deliberately
// absent here — the Driver enforces the inter-command delay, not the
// Session (spec-equivalent split: the Session only knows about delays
// internal to a single exchange).
type Config struct {
	// SentinelPause is the brief wait after sending a command and before
	// sending the sentinel, giving the server a head start on producing
	// its response so the sentinel's reply can't reorder ahead of it.
	SentinelPause time.Duration
	// ReceiveDelay is the pause between reassembly-loop receives.
	ReceiveDelay time.Duration
	// ReadTimeout bounds each individual frame read. There is no overall
	// command timeout by design; a stuck server can hang the client.
	ReadTimeout time.Duration
}

// DefaultConfig returns ARRCON's default Session timing.
func DefaultConfig() Config {
	return Config{
		SentinelPause: 10 * time.Millisecond,
		ReceiveDelay:  10 * time.Millisecond,
		ReadTimeout:   5 * time.Second,
	}
}

// Session is the authenticated lifetime of one TCP connection to an RCON
// server. It exclusively owns the Transport and the Frame channel built
// over it for its entire lifetime.
type Session struct {
	tr     *transport.Transport
	ch     *frame.Channel
	ids    *IDAllocator
	cfg    Config
	state  State
	logger zerolog.Logger
}

// New wraps an already-connected Transport in a Session, in the Connected
// state.
func New(tr *transport.Transport, cfg Config) *Session {
	return &Session{
		tr:     tr,
		ch:     frame.New(tr),
		ids:    NewIDAllocator(),
		cfg:    cfg,
		state:  Connected,
		logger: util.ComponentLogger("rcon"),
	}
}

// State returns the Session's current state.
func (s *Session) State() State {
	return s.state
}

func (s *Session) deadline() time.Time {
	if s.cfg.ReadTimeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(s.cfg.ReadTimeout)
}

func (s *Session) closeOnErr(err error) error {
	s.state = Closed
	_ = s.tr.Close()
	return err
}

// Authenticate sends the Auth packet and waits for the server's reply. It
// tolerates a single leading empty ResponseValue frame some servers
// (notably Minecraft) send before the real AuthResponse; the reply after
// that must be an AuthResponse carrying the request's id.
func (s *Session) Authenticate(password string) error {
	if s.state != Connected {
		return apperr.New(apperr.SessionClosed, "rcon.Authenticate", fmt.Errorf("session is %s, not Connected", s.state))
	}

	pid := s.ids.Get()
	if err := s.ch.Send(packet.Packet{ID: pid, Type: packet.TypeAuth, Body: password}, s.deadline()); err != nil {
		return s.closeOnErr(err)
	}

	reply, err := s.ch.Recv(s.deadline())
	if err != nil {
		return s.closeOnErr(err)
	}

	if reply.Type == packet.TypeResponseValue && reply.Body == "" {
		s.logger.Debug().Msg("discarding leading empty response before auth reply")
		reply, err = s.ch.Recv(s.deadline())
		if err != nil {
			return s.closeOnErr(err)
		}
	}

	if reply.Type != packet.TypeAuthResponse {
		s.state = Closed
		_ = s.tr.Close()
		return apperr.New(apperr.AuthRejected, "rcon.Authenticate", fmt.Errorf("expected an AuthResponse (type %d), got type %d", packet.TypeAuthResponse, reply.Type))
	}
	if reply.ID != pid {
		s.state = Closed
		_ = s.tr.Close()
		return apperr.New(apperr.AuthRejected, "rcon.Authenticate", fmt.Errorf("server rejected authentication (reply id %d != request id %d)", reply.ID, pid))
	}

	s.state = Authenticated
	return nil
}

// RunCommand sends command and reassembles its (possibly fragmented)
// response using the trailing-sentinel technique: a second, syntactically
// invalid ResponseValue request sent immediately after the command, whose
// echoed reply — guaranteed by TCP's FIFO ordering to arrive after every
// reply belonging to the command — marks the end of the command's output.
//
// emit is called once per response chunk as it arrives, in order, before
// RunCommand returns; the returned string is the full concatenated output.
// If the connection is lost mid-reassembly, RunCommand returns whatever was
// buffered so far together with the error.
func (s *Session) RunCommand(command string, emit func(chunk string)) (string, error) {
	if s.state != Authenticated {
		return "", apperr.New(apperr.SessionClosed, "rcon.RunCommand", fmt.Errorf("session is %s, not Authenticated", s.state))
	}

	cmdPid := s.ids.Get()
	if err := s.ch.Send(packet.Packet{ID: cmdPid, Type: packet.TypeExecCommand, Body: command}, s.deadline()); err != nil {
		return "", s.closeOnErr(err)
	}

	time.Sleep(s.cfg.SentinelPause)

	termPid := s.ids.Get()
	if err := s.ch.Send(packet.Packet{ID: termPid, Type: packet.TypeResponseValue, Body: ""}, s.deadline()); err != nil {
		return "", s.closeOnErr(err)
	}

	var output []byte
	for {
		reply, err := s.ch.Recv(s.deadline())
		if err != nil {
			if apperr.Is(err, apperr.OversizePacket) {
				s.logger.Warn().Msg("discarded oversize frame during reassembly")
				time.Sleep(s.cfg.ReceiveDelay)
				continue
			}
			return string(output), s.closeOnErr(err)
		}

		switch reply.ID {
		case cmdPid:
			output = append(output, reply.Body...)
			if emit != nil {
				emit(reply.Body)
			}
		case termPid:
			s.tr.FlushPending()
			return string(output), nil
		default:
			s.logger.Debug().Int32("id", reply.ID).Msg("discarding frame with unrecognized id during reassembly")
		}

		time.Sleep(s.cfg.ReceiveDelay)
	}
}

// Close closes the Session's Transport. Safe to call more than once and
// safe to call regardless of the current state.
func (s *Session) Close() error {
	if s.state == Closed {
		return nil
	}
	s.state = Closed
	return s.tr.Close()
}
