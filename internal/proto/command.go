// Package proto implements the textual wire contract spoken with the idun
// cartridge's control process.
//
// A command is a single newline-terminated line:
//
//	sys.shell(<id>, "<arg>", <pid>)
//	sys.stop()
//	sys.reboot(<mode>)
//	sys.chdir("<path>")
//
// Responses are status-byte-first: byte 0 is 0 on success; on failure the
// remaining bytes are a PETSCII-encoded error message.
package proto

import (
	"fmt"
	"strings"
)

// Command identifies a shell command kind. The numeric values are part of the
// wire contract and must never be renumbered.
type Command uint8

const (
	Exec    Command = 0
	Go      Command = 1
	Load    Command = 2
	Dir     Command = 3
	Catalog Command = 4
	Drives  Command = 5
	Mount   Command = 6
	Assign  Command = 7
)

func (c Command) String() string {
	switch c {
	case Exec:
		return "exec"
	case Go:
		return "go"
	case Load:
		return "load"
	case Dir:
		return "dir"
	case Catalog:
		return "catalog"
	case Drives:
		return "drives"
	case Mount:
		return "mount"
	case Assign:
		return "assign"
	default:
		return fmt.Sprintf("command(%d)", uint8(c))
	}
}

// checkArg rejects arguments that would break out of the quoted field.
// The cartridge side does not unescape, so these cannot be transmitted.
func checkArg(arg string) error {
	if strings.ContainsAny(arg, "\"\r\n") {
		return fmt.Errorf("argument must not contain quote or newline: %q", arg)
	}
	return nil
}

// Shell builds a sys.shell command line. pid is the requesting process id
// used for output redirection; 0 means no redirection.
func Shell(cmd Command, arg string, pid uint32) (string, error) {
	if err := checkArg(arg); err != nil {
		return "", err
	}
	return fmt.Sprintf("sys.shell(%d, \"%s\", %d)", cmd, arg, pid), nil
}

// Stop builds the sys.stop command line (sends the STOP key).
func Stop() string {
	return "sys.stop()"
}

// Reboot builds the sys.reboot command line.
func Reboot(mode uint8) string {
	return fmt.Sprintf("sys.reboot(%d)", mode)
}

// Chdir builds the sys.chdir command line used to synchronize the cartridge
// shell's working directory with the host.
func Chdir(path string) (string, error) {
	if err := checkArg(path); err != nil {
		return "", err
	}
	return fmt.Sprintf("sys.chdir(\"%s\")", path), nil
}
