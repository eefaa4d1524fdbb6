package proto

import (
	"github.com/idun-project/idunsh/internal/petscii"
)

// Response status codes. The control process replies with a single status
// byte, optionally followed by a PETSCII message.
const (
	StatusOK byte = 0
)

// RemoteError is a nonzero status returned by the control process. Message is
// the PETSCII-decoded text that followed the status byte.
type RemoteError struct {
	Status  byte
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return "remote rejected command"
	}
	return "remote rejected command: " + e.Message
}

// ParseResponse interprets a full response read from the control process.
// An empty response or a leading zero byte means success; any trailing bytes
// after a zero status are discarded (program output travels on a separate
// redirection socket).
func ParseResponse(b []byte) error {
	if len(b) == 0 || b[0] == StatusOK {
		return nil
	}
	return &RemoteError{
		Status:  b[0],
		Message: petscii.ToASCII(b[1:]),
	}
}
