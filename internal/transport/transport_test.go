package transport

import (
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialAndWrite(t *testing.T, endpoint string, payload []byte) net.Conn {
	t.Helper()
	addr := endpoint[len("tcp://"):]
	conn, err := net.DialTimeout("tcp", addr, time.Second)
	require.NoError(t, err)
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(payload)))
	_, err = conn.Write(hdr[:])
	require.NoError(t, err)
	_, err = conn.Write(payload)
	require.NoError(t, err)
	return conn
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

func TestBindRecvFirst(t *testing.T) {
	sock, err := Bind("127.0.0.1")
	require.NoError(t, err)
	defer sock.Close()

	conn := dialAndWrite(t, sock.Endpoint(), []byte("handshake-ok"))
	defer conn.Close()

	got, err := sock.Recv()
	require.NoError(t, err)
	assert.Equal(t, []byte("handshake-ok"), got)
}

func TestSendBeforeRecvIsProtocolMisuse(t *testing.T) {
	sock, err := Bind("127.0.0.1")
	require.NoError(t, err)
	defer sock.Close()

	err = sock.Send([]byte("too early"))
	assert.Error(t, err)
}

func TestStrictAlternation(t *testing.T) {
	sock, err := Bind("127.0.0.1")
	require.NoError(t, err)
	defer sock.Close()

	conn := dialAndWrite(t, sock.Endpoint(), []byte("handshake-ok"))
	defer conn.Close()

	_, err = sock.Recv()
	require.NoError(t, err)

	// Two consecutive recvs are a protocol error.
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := sock.Recv()
		assert.Error(t, err)
	}()
	<-done

	require.NoError(t, sock.Send([]byte("command-1")))
	assert.Equal(t, []byte("command-1"), readFramed(t, conn))

	// Two consecutive sends are a protocol error.
	err = sock.Send([]byte("command-2"))
	assert.Error(t, err)
}

func TestEndpointUsesRequestedHost(t *testing.T) {
	sock, err := Bind("0.0.0.0")
	require.NoError(t, err)
	defer sock.Close()
	assert.Contains(t, sock.Endpoint(), "tcp://0.0.0.0:")
	assert.Greater(t, sock.Port(), 0)
}
