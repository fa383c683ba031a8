package dispatcher

import (
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/unifmu/unifmu-go/internal/backend"
	unifmuerrors "github.com/unifmu/unifmu-go/internal/errors"
	"github.com/unifmu/unifmu-go/internal/transport"
	"github.com/unifmu/unifmu-go/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialFake(t *testing.T, endpoint string) net.Conn {
	t.Helper()
	conn, err := net.DialTimeout("tcp", endpoint[len("tcp://"):], time.Second)
	require.NoError(t, err)
	return conn
}

func writeFramed(t *testing.T, conn net.Conn, payload []byte) {
	t.Helper()
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(payload)))
	_, err := conn.Write(hdr[:])
	require.NoError(t, err)
	_, err = conn.Write(payload)
	require.NoError(t, err)
}

func readFramed(t *testing.T, conn net.Conn) []byte {
	t.Helper()
	var hdr [4]byte
	_, err := io.ReadFull(conn, hdr[:])
	require.NoError(t, err)
	n := binary.BigEndian.Uint32(hdr[:])
	buf := make([]byte, n)
	_, err = io.ReadFull(conn, buf)
	require.NoError(t, err)
	return buf
}

func TestAwaitHandshakeThenSendAndRecv(t *testing.T) {
	sock, err := transport.Bind("127.0.0.1")
	require.NoError(t, err)

	sup, err := backend.SpawnLocal(backend.LaunchParams{
		Command:     []string{"sleep", "5"},
		ResourceDir: t.TempDir(),
	})
	require.NoError(t, err)
	defer sup.Kill()

	d := New(sock, sup)
	defer d.Close()

	conn := dialFake(t, sock.Endpoint())
	defer conn.Close()

	writeFramed(t, conn, wire.EncodeHandshakeReply(wire.HandshakeReply{Status: 0}))
	require.NoError(t, d.AwaitHandshake())

	go func() {
		readFramed(t, conn)
		writeFramed(t, conn, wire.EncodeReply(wire.NewStatusReply(0)))
	}()

	reply, err := d.SendAndRecv(wire.NewSimpleCmd(wire.TagFmi2Terminate))
	require.NoError(t, err)
	status, ok := reply.(*wire.StatusReply)
	require.True(t, ok)
	assert.Equal(t, int32(0), status.Status)
}

func TestSendAndRecvDetectsBackendDeath(t *testing.T) {
	sock, err := transport.Bind("127.0.0.1")
	require.NoError(t, err)

	sup, err := backend.SpawnLocal(backend.LaunchParams{
		Command:     []string{"sh", "-c", "sleep 0.05; exit 1"},
		ResourceDir: t.TempDir(),
	})
	require.NoError(t, err)

	d := New(sock, sup)
	defer d.Close()

	start := time.Now()
	_, err = d.Recv()
	elapsed := time.Since(start)

	assert.True(t, unifmuerrors.IsSubprocessDeath(err))
	assert.Less(t, elapsed, 2*time.Second)
}
