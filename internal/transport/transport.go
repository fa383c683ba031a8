// Package transport implements the bound TCP request/reply socket that
// carries the wire-codec envelopes between the shim and a backend process.
package transport

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"

	unifmuerrors "github.com/unifmu/unifmu-go/internal/errors"
)

// state tracks the strict send/recv alternation spec.md 4.B mandates: "the
// very first operation after a successful bind is recv ... from that point
// the transport alternates send and recv strictly." Grounded on the
// teacher's explicit conn.SessionState enum.
type state uint8

const (
	stateExpectRecv state = iota // next valid operation is Recv (handshake, or a command's reply)
	stateExpectSend              // next valid operation is Send (a command, after a recv)
	stateClosed
)

// Socket is a bound TCP request/reply endpoint: it accepts exactly one peer
// connection (the backend) and thereafter serves recv/send pairs over it.
type Socket struct {
	mu       sync.Mutex
	listener net.Listener
	conn     net.Conn
	st       state
	endpoint string
}

// Bind opens a listening socket on the given host. Pass "127.0.0.1" for a
// local instance or "0.0.0.0" for a remote-backend instance (spec.md 4.B).
// Port 0 lets the kernel choose; Endpoint() recovers the chosen port.
func Bind(host string) (*Socket, error) {
	l, err := net.Listen("tcp", net.JoinHostPort(host, "0"))
	if err != nil {
		return nil, unifmuerrors.NewTransportError("bind", err)
	}
	addr := l.Addr().(*net.TCPAddr)
	return &Socket{
		listener: l,
		st:       stateExpectRecv,
		endpoint: fmt.Sprintf("tcp://%s:%d", host, addr.Port),
	}, nil
}

// Endpoint returns the tcp://host:port string to inject into the backend's
// environment.
func (s *Socket) Endpoint() string { return s.endpoint }

// Port returns just the numeric port, for UNIFMU_DISPATCHER_ENDPOINT_PORT.
func (s *Socket) Port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

// acceptOnce lazily accepts the single backend connection this socket will
// ever serve. Called internally by the first Recv.
func (s *Socket) acceptOnce() error {
	if s.conn != nil {
		return nil
	}
	c, err := s.listener.Accept()
	if err != nil {
		return unifmuerrors.NewTransportError("accept", err)
	}
	s.conn = c
	return nil
}

// Recv reads exactly one length-delimited message. It is a protocol error to
// call Recv when a Send is due (two consecutive recvs); the very first call
// awaits the handshake.
func (s *Socket) Recv() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st == stateClosed {
		return nil, unifmuerrors.NewTransportError("recv", io.ErrClosedPipe)
	}
	if s.st == stateExpectSend {
		return nil, unifmuerrors.NewTransportError("recv", fmt.Errorf("protocol misuse: recv called while a send is expected"))
	}
	if err := s.acceptOnce(); err != nil {
		return nil, err
	}
	var hdr [4]byte
	if _, err := io.ReadFull(s.conn, hdr[:]); err != nil {
		return nil, unifmuerrors.NewTransportError("recv", err)
	}
	n := binary.BigEndian.Uint32(hdr[:])
	buf := make([]byte, n)
	if _, err := io.ReadFull(s.conn, buf); err != nil {
		return nil, unifmuerrors.NewTransportError("recv", err)
	}
	s.st = stateExpectSend
	return buf, nil
}

// Send writes exactly one length-delimited message. It is a protocol error
// to call Send before the matching Recv (send-before-recv or two consecutive
// sends), per spec.md 4.B.
func (s *Socket) Send(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st == stateClosed {
		return unifmuerrors.NewTransportError("send", io.ErrClosedPipe)
	}
	if s.st != stateExpectSend {
		return unifmuerrors.NewTransportError("send", fmt.Errorf("protocol misuse: send called before recv"))
	}
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(payload)))
	if _, err := s.conn.Write(hdr[:]); err != nil {
		return unifmuerrors.NewTransportError("send", err)
	}
	if _, err := s.conn.Write(payload); err != nil {
		return unifmuerrors.NewTransportError("send", err)
	}
	s.st = stateExpectRecv
	return nil
}

// Close releases the listener and the accepted connection, if any.
func (s *Socket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = stateClosed
	var err error
	if s.conn != nil {
		err = s.conn.Close()
	}
	if cerr := s.listener.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
