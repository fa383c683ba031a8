// Package dispatcher composes a transport.Socket and a backend.Supervisor,
// racing every wire operation against the backend's liveness poll the way
// original_source/fmiapi/src/dispatcher.rs races its wire op against
// monitor_subprocess() inside tokio::select! -- here expressed with
// goroutines, channels, and Go's native select, its direct idiomatic
// counterpart.
package dispatcher

import (
	"context"

	unifmuerrors "github.com/unifmu/unifmu-go/internal/errors"
	"github.com/unifmu/unifmu-go/internal/backend"
	"github.com/unifmu/unifmu-go/internal/transport"
	"github.com/unifmu/unifmu-go/internal/wire"
)

// Dispatcher exposes send, recv, and send_and_recv per spec.md 4.D, each
// racing the underlying wire operation against the supervisor's Monitor.
type Dispatcher struct {
	socket     *transport.Socket
	supervisor *backend.Supervisor
	ctx        context.Context
	cancel     context.CancelFunc
}

// New wires a bound socket to a running (or remote) supervisor. The returned
// Dispatcher owns both and is responsible for closing them (see Close).
func New(socket *transport.Socket, supervisor *backend.Supervisor) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{socket: socket, supervisor: supervisor, ctx: ctx, cancel: cancel}
}

// race runs op on its own goroutine and returns whichever of op or the
// supervisor's liveness monitor completes first, per spec.md 4.D's
// contractual outcomes.
func (d *Dispatcher) race(op func() ([]byte, error)) ([]byte, error) {
	type opResult struct {
		buf []byte
		err error
	}
	opDone := make(chan opResult, 1)
	go func() {
		buf, err := op()
		opDone <- opResult{buf, err}
	}()

	monitorCtx, cancelMonitor := context.WithCancel(d.ctx)
	defer cancelMonitor()
	monitorDone := make(chan error, 1)
	go func() { monitorDone <- d.supervisor.Monitor(monitorCtx) }()

	select {
	case r := <-opDone:
		return r.buf, r.err
	case err := <-monitorDone:
		if err != nil && unifmuerrors.IsSubprocessDeath(err) {
			return nil, err
		}
		// Monitor resolving with a context-cancellation error (remote mode,
		// or the dispatcher itself closing) is not a backend death.
		r := <-opDone
		return r.buf, r.err
	}
}

// Send transmits one encoded Command.
func (d *Dispatcher) Send(cmd wire.Command) error {
	_, err := d.race(func() ([]byte, error) {
		return nil, d.socket.Send(wire.EncodeCommand(cmd))
	})
	return err
}

// Recv receives one encoded Reply and decodes it.
func (d *Dispatcher) Recv() (wire.Reply, error) {
	buf, err := d.race(func() ([]byte, error) { return d.socket.Recv() })
	if err != nil {
		return nil, err
	}
	reply, err := wire.DecodeReply(buf)
	if err != nil {
		return nil, unifmuerrors.NewTransportError("recv: decode reply", err)
	}
	return reply, nil
}

// SendAndRecv performs the send-then-recv pair as a single funnel, the shape
// every FMI call uses.
func (d *Dispatcher) SendAndRecv(cmd wire.Command) (wire.Reply, error) {
	if err := d.Send(cmd); err != nil {
		return nil, err
	}
	return d.Recv()
}

// AwaitHandshake performs the very first recv on the socket, specialized to
// the handshake reply, and verifies its status field (spec.md 4.D).
func (d *Dispatcher) AwaitHandshake() error {
	buf, err := d.race(func() ([]byte, error) { return d.socket.Recv() })
	if err != nil {
		return err
	}
	h, err := wire.DecodeHandshakeReply(buf)
	if err != nil {
		return unifmuerrors.NewTransportError("await_handshake: decode", err)
	}
	if h.Status != 0 {
		return unifmuerrors.NewTransportError("await_handshake", &backendImplementationError{status: h.Status})
	}
	return nil
}

type backendImplementationError struct{ status int32 }

func (e *backendImplementationError) Error() string {
	return "backend reported non-zero handshake status"
}

// Endpoint exposes the bound transport endpoint for logging and for the
// backend supervisor's environment injection.
func (d *Dispatcher) Endpoint() string { return d.socket.Endpoint() }

// Close releases the transport and terminates a still-running local backend.
// It does not itself send FreeInstance -- that is internal/instance's
// responsibility, since the dispatcher has no notion of "instance".
func (d *Dispatcher) Close() error {
	d.cancel()
	_ = d.supervisor.Kill()
	return d.socket.Close()
}
