package channel

import (
	"bufio"
	"errors"
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idun-project/idunsh/internal/petscii"
	"github.com/idun-project/idunsh/internal/proto"
)

// serveOnce accepts one connection, reads one command line, replies with the
// given bytes and closes. It returns a channel carrying the received line.
func serveOnce(t *testing.T, path string, reply []byte) <-chan string {
	t.Helper()
	ln, err := net.Listen("unix", path)
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	got := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			close(got)
			return
		}
		defer conn.Close()
		line, _ := bufio.NewReader(conn).ReadString('\n')
		got <- line
		if len(reply) > 0 {
			_, _ = conn.Write(reply)
		}
	}()
	return got
}

func TestSendSuccessEmptyResponse(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "lua")
	got := serveOnce(t, sock, nil)

	c := &Client{SocketPath: sock}
	err := c.Send(proto.Stop())
	require.NoError(t, err)
	assert.Equal(t, "sys.stop()\n", <-got)
}

func TestSendSuccessStatusByte(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "lua")
	got := serveOnce(t, sock, []byte{0x00})

	c := &Client{SocketPath: sock}
	msg, err := proto.Shell(proto.Dir, "0:", 0)
	require.NoError(t, err)
	require.NoError(t, c.Send(msg))
	assert.Equal(t, `sys.shell(3, "0:", 0)`+"\n", <-got)
}

func TestSendRemoteRejection(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "lua")
	reply := append([]byte{0x01}, petscii.ToPetscii("bad device")...)
	serveOnce(t, sock, reply)

	c := &Client{SocketPath: sock}
	err := c.Send(proto.Stop())
	require.Error(t, err)

	var re *proto.RemoteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "bad device", re.Message)
	assert.False(t, errors.Is(err, ErrUnavailable))
}

func TestSendChannelUnavailable(t *testing.T) {
	c := &Client{SocketPath: filepath.Join(t.TempDir(), "absent")}
	err := c.Send(proto.Stop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))

	var re *proto.RemoteError
	assert.False(t, errors.As(err, &re))
}
