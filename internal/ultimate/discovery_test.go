package ultimate

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// respondOnce binds a loopback UDP socket and answers the first datagram with
// the given payload. It returns the socket's address as the probe target.
func respondOnce(t *testing.T, payload []byte) *net.UDPAddr {
	t.Helper()
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	go func() {
		buf := make([]byte, 64)
		n, src, err := conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		if string(buf[:n]) != discoveryMsg {
			return
		}
		_, _ = conn.WriteToUDP(payload, src)
	}()
	return conn.LocalAddr().(*net.UDPAddr)
}

func TestDetectFound(t *testing.T) {
	target := respondOnce(t, []byte("*** C64 Ultimate (V1.47) 3.14 ***"))

	addr, version, outcome := detect(target, time.Second)
	assert.Equal(t, DetectFound, outcome)
	assert.Equal(t, "127.0.0.1", addr)
	assert.Equal(t, "3.14", version)
}

func TestDetectMalformedBanner(t *testing.T) {
	target := respondOnce(t, []byte("*** Something Else ***"))

	addr, _, outcome := detect(target, time.Second)
	assert.Equal(t, DetectMalformed, outcome)
	assert.Empty(t, addr)
}

func TestDetectInvalidUTF8(t *testing.T) {
	target := respondOnce(t, []byte{0xFF, 0xFE, 0xFD})

	_, _, outcome := detect(target, time.Second)
	assert.Equal(t, DetectMalformed, outcome)
}

func TestDetectTimeout(t *testing.T) {
	// A bound socket that never answers.
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	require.NoError(t, err)
	defer conn.Close()

	addr, _, outcome := detect(conn.LocalAddr().(*net.UDPAddr), 50*time.Millisecond)
	assert.Equal(t, DetectTimeout, outcome)
	assert.Empty(t, addr)
}

func TestParseBanner(t *testing.T) {
	cases := []struct {
		payload string
		version string
		ok      bool
	}{
		{"*** C64 Ultimate (V1.47) 3.14 ***", "3.14", true},
		{"C64 Ultimate (V1) 1.0", "1.0", true},
		{"*** Something Else ***", "", false},
		{"C64 Ultimate no parenthesis 3.14", "", false},
		{"C64 Ultimate (V1.47)", "", false},
		{"C64 Ultimate (V1.47) beta ***", "", false},
	}
	for _, c := range cases {
		v, ok := parseBanner(c.payload)
		assert.Equal(t, c.ok, ok, "payload %q", c.payload)
		if c.ok {
			assert.Equal(t, c.version, v, "payload %q", c.payload)
		}
	}
}

func TestDetectOutcomeString(t *testing.T) {
	assert.Equal(t, "found", DetectFound.String())
	assert.Equal(t, "timeout", DetectTimeout.String())
	assert.Equal(t, "malformed reply", DetectMalformed.String())
	assert.Equal(t, "socket error", DetectSocketError.String())
}
