package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandFlagArgs(t *testing.T) {
	assert.Equal(t, "", expandFlagArgs(""))
	assert.Equal(t, "/r ", expandFlagArgs("r"))
	assert.Equal(t, "/a /b /c ", expandFlagArgs("abc"))
}

func TestRootCommandWiring(t *testing.T) {
	a := &app{}
	root := a.newRootCmd()

	for _, name := range []string{
		"go", "load", "exec", "dir", "catalog",
		"drives", "mount", "assign", "reboot", "stop", "version",
	} {
		cmd, _, err := root.Find([]string{name})
		assert.NoError(t, err, "command %s", name)
		assert.Equal(t, name, cmd.Name(), "command %s", name)
	}
}
