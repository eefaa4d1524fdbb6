// Package ultimate talks to a C64 Ultimate on the LAN: UDP discovery of the
// device and the REST endpoints for running content and managing drives.
//
// For any of this to work, the "Web Remote Control Service" and the "Ident
// Service" must be enabled in the device configuration.
package ultimate

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// REST endpoints consumed on the device.
const (
	endpointRunPRG  = "/v1/runners:run_prg"
	endpointRunCRT  = "/v1/runners:run_crt"
	endpointSIDPlay = "/v1/runners:sidplay"
	endpointMODPlay = "/v1/runners:modplay"
	endpointDrives  = "/v1/drives"
)

// maxLoadedPRG bounds load address + file size for PRG content; the C64 has a
// 16-bit address space.
const maxLoadedPRG = 65536

// RejectionError is a dispatch-time rejection: the request never left the
// host because the file cannot be sent (wrong extension, oversized PRG).
// Transport failures are reported separately, with the failing URL.
type RejectionError struct {
	Path   string
	Reason string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Path)
}

// Client issues REST requests to one device. Addr is the device's host or
// host:port; it comes from explicit configuration or from Detect, never from
// ambient process state.
type Client struct {
	Addr string
	HTTP *http.Client
}

func NewClient(addr string) *Client {
	return &Client{Addr: addr, HTTP: &http.Client{}}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

// fileExt reports the lower-cased extension of path's final element.
// hasExt is false when the name contains no dot (or only a leading one, as in
// dotfiles); note a trailing dot yields hasExt=true with an empty extension.
func fileExt(path string) (ext string, hasExt bool) {
	base := strings.ToLower(filepath.Base(path))
	dot := strings.LastIndexByte(base, '.')
	if dot <= 0 {
		return "", false
	}
	return base[dot+1:], true
}

// prgMeta returns the file size and the little-endian 16-bit load address
// stored in the file's first two bytes.
func prgMeta(path string) (size uint64, loadAddr uint16, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return 0, 0, err
	}

	var hdr [2]byte
	if _, err := io.ReadFull(f, hdr[:]); err != nil {
		return 0, 0, fmt.Errorf("read load address: %w", err)
	}
	return uint64(fi.Size()), binary.LittleEndian.Uint16(hdr[:]), nil
}

// ResolveLoad selects the runner endpoint for a content file.
//
// Files with no extension or ".prg" are checked against the address space:
// load address + size must stay below 64K. CRT/SID/MOD files route to their
// dedicated runners without the file being opened here, so large files are
// fine. Anything else is rejected.
func ResolveLoad(path string) (string, error) {
	ext, hasExt := fileExt(path)
	if !hasExt || ext == "prg" {
		size, addr, err := prgMeta(path)
		if err != nil {
			return "", err
		}
		if size+uint64(addr) >= maxLoadedPRG {
			return "", &RejectionError{Path: path, Reason: "PRG file is too large"}
		}
		return endpointRunPRG, nil
	}
	switch ext {
	case "crt":
		return endpointRunCRT, nil
	case "sid":
		return endpointSIDPlay, nil
	case "mod":
		return endpointMODPlay, nil
	}
	return "", &RejectionError{Path: path, Reason: "file extension not recognized"}
}

// ResolveMount selects the mount endpoint for a disk image on the given
// drive. Only known disk image extensions are accepted; there is no
// best-effort guessing.
func ResolveMount(device, path string) (string, error) {
	ext, hasExt := fileExt(path)
	if !hasExt {
		return "", &RejectionError{Path: path, Reason: "unrecognized disk image file type"}
	}
	switch ext {
	case "d64", "g64", "d71", "g71", "d81":
		return fmt.Sprintf("%s/%smount?type=%s", endpointDrives, device, ext), nil
	}
	return "", &RejectionError{Path: path, Reason: "unrecognized disk image file type"}
}

// Load runs a content file on the device.
func (c *Client) Load(path string) error {
	endpoint, err := ResolveLoad(path)
	if err != nil {
		return err
	}
	return c.post(endpoint, path)
}

// Mount mounts a disk image file on the given drive (e.g. "a" or "b").
func (c *Client) Mount(device, path string) error {
	endpoint, err := ResolveMount(device, path)
	if err != nil {
		return err
	}
	return c.post(endpoint, path)
}

// post uploads the file's raw bytes to http://<addr><endpoint>. Transport
// failures carry the failing URL for diagnosis.
func (c *Client) post(endpoint, file string) error {
	body, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	url := "http://" + c.Addr + endpoint
	resp, err := c.httpClient().Post(url, "application/octet-stream", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("C64 Ultimate web request fail: %s: %w", url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("C64 Ultimate web request fail: %s: %s", url, resp.Status)
	}
	return nil
}
