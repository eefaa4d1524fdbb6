// Package channel implements the client side of the local command channel to
// the idun control process.
//
// The protocol is single-shot: connect, write one newline-terminated command
// line, then read until the peer closes the connection. There is no length
// prefix; framing is purely by connection close.
package channel

import (
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/idun-project/idunsh/internal/proto"
)

// ErrUnavailable reports that the control process endpoint could not be
// reached or the exchange failed at the transport level. It is distinct from
// proto.RemoteError, which means the command reached the control process and
// was rejected there.
var ErrUnavailable = errors.New("local channel unavailable")

// Client issues single-shot commands over the control socket.
type Client struct {
	// SocketPath is the filesystem location of the control process socket.
	SocketPath string
}

// Send transmits one command line and interprets the response.
// A nil return means the control process accepted the command (or closed the
// connection without a response, which the protocol treats as success).
func (c *Client) Send(msg string) error {
	conn, err := net.Dial("unix", c.SocketPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer conn.Close()

	if _, err := io.WriteString(conn, msg+"\n"); err != nil {
		return fmt.Errorf("%w: write: %v", ErrUnavailable, err)
	}

	// Block until the peer closes; same-host peer, no read deadline.
	resp, err := io.ReadAll(conn)
	if err != nil {
		return fmt.Errorf("%w: read: %v", ErrUnavailable, err)
	}
	return proto.ParseResponse(resp)
}
