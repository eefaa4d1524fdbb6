package ultimate

import (
	"net"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"
)

// UDP LAN discovery for the C64 Ultimate "Ident Service".
//
// Probe: the 4 bytes "ping" broadcast to port 64.
// Reply: a textual banner, e.g.
//
//	*** C64 Ultimate (V1.47) 3.14 ***
//
// The protocol is single-shot: one probe, one receive, first responder wins.
// There is no de-duplication and no authentication beyond the banner marker,
// which assumes a trusted LAN.
const (
	discoveryPort = 64
	discoveryMsg  = "ping"
	bannerMarker  = "C64 Ultimate"

	// DefaultDetectTimeout bounds the single receive call.
	DefaultDetectTimeout = 500 * time.Millisecond
)

// DetectOutcome distinguishes discovery failure causes. The public surface
// collapses everything but DetectFound to "not found"; the tag exists so the
// causes stay observable in tests and logs.
type DetectOutcome int

const (
	DetectFound DetectOutcome = iota
	DetectTimeout
	DetectMalformed
	DetectSocketError
)

func (o DetectOutcome) String() string {
	switch o {
	case DetectFound:
		return "found"
	case DetectTimeout:
		return "timeout"
	case DetectMalformed:
		return "malformed reply"
	case DetectSocketError:
		return "socket error"
	default:
		return "unknown"
	}
}

// Detect probes the LAN for a C64 Ultimate and returns the responder's IP
// address. ok=false means no device was found, whatever the cause.
// A timeout of 0 uses DefaultDetectTimeout.
func Detect(timeout time.Duration) (addr string, ok bool) {
	if timeout <= 0 {
		timeout = DefaultDetectTimeout
	}
	target := &net.UDPAddr{IP: net.IPv4bcast, Port: discoveryPort}
	addr, _, outcome := detect(target, timeout)
	return addr, outcome == DetectFound
}

// detect sends one probe to target and waits for exactly one reply.
// The sender's source IP is authoritative, not any identity claimed in the
// payload.
func detect(target *net.UDPAddr, timeout time.Duration) (addr, version string, outcome DetectOutcome) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		return "", "", DetectSocketError
	}
	defer conn.Close()

	// Best effort; sending to a unicast target works without it.
	enableBroadcast(conn)

	_ = conn.SetReadDeadline(time.Now().Add(timeout))

	if _, err := conn.WriteToUDP([]byte(discoveryMsg), target); err != nil {
		return "", "", DetectSocketError
	}

	buf := make([]byte, 2048)
	n, src, err := conn.ReadFromUDP(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return "", "", DetectTimeout
		}
		return "", "", DetectSocketError
	}

	if !utf8.Valid(buf[:n]) {
		return "", "", DetectMalformed
	}
	version, ok := parseBanner(string(buf[:n]))
	if !ok {
		return "", "", DetectMalformed
	}
	return src.IP.String(), version, DetectFound
}

func enableBroadcast(conn *net.UDPConn) {
	sc, err := conn.SyscallConn()
	if err != nil {
		return
	}
	_ = sc.Control(func(fd uintptr) {
		_ = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_BROADCAST, 1)
	})
}

// parseBanner validates a discovery reply and extracts its version token.
// The payload must contain the marker substring, then a ')', then a
// whitespace-separated token made of digits and dots.
func parseBanner(payload string) (version string, ok bool) {
	_, rest, found := strings.Cut(payload, bannerMarker)
	if !found {
		return "", false
	}
	_, rest, found = strings.Cut(rest, ")")
	if !found {
		return "", false
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", false
	}
	v := fields[0]
	for i := 0; i < len(v); i++ {
		c := v[i]
		if (c < '0' || c > '9') && c != '.' {
			return "", false
		}
	}
	return v, true
}
