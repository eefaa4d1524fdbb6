// Package output receives redirected program output from the cartridge.
//
// When a command requests redirection it passes this process's pid on the
// wire; the control process then connects back to a unix socket named after
// that pid and streams the program's PETSCII output until it is done.
package output

import (
	"io"
	"net"
	"os"
	"strings"

	"github.com/idun-project/idunsh/internal/petscii"
)

// Listener owns the redirection socket for one command.
type Listener struct {
	path string
	ln   net.Listener
}

// Listen binds the redirection socket at path.
func Listen(path string) (*Listener, error) {
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	return &Listener{path: path, ln: ln}, nil
}

// Path returns the socket's filesystem location.
func (l *Listener) Path() string { return l.path }

// Relay accepts exactly one connection and copies its output to w until the
// peer closes, decoding PETSCII and translating the C64's carriage-return
// line endings to newlines.
func (l *Listener) Relay(w io.Writer) error {
	conn, err := l.ln.Accept()
	if err != nil {
		return err
	}
	defer conn.Close()

	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			s := strings.ReplaceAll(petscii.ToASCII(buf[:n]), "\r", "\n")
			if _, werr := io.WriteString(w, s); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Close shuts the listener down and removes the socket file.
func (l *Listener) Close() error {
	err := l.ln.Close()
	_ = os.Remove(l.path)
	return err
}
