package e131

import (
	"fmt"
	"net"
	"strconv"
)

// Sender transmits frames to a group, stamping a rolling sequence number.
type Sender struct {
	conn net.Conn
	seq  byte
}

func DialSender(group string, port int) (*Sender, error) {
	if group == "" {
		group = DefaultGroup
	}
	if port == 0 {
		port = DefaultPort
	}
	conn, err := net.Dial("udp4", net.JoinHostPort(group, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("e131: dial %s: %w", group, err)
	}
	return &Sender{conn: conn}, nil
}

// NewSender wraps an already connected conn.
func NewSender(conn net.Conn) *Sender { return &Sender{conn: conn} }

func (s *Sender) Send(f *Frame) error {
	s.seq++
	f.SetSequence(s.seq)
	n, err := s.conn.Write(f[:])
	if err != nil {
		return fmt.Errorf("e131: send: %w", err)
	}
	if n != FrameSize {
		return fmt.Errorf("e131: short write %d of %d bytes", n, FrameSize)
	}
	return nil
}

func (s *Sender) Close() error { return s.conn.Close() }
