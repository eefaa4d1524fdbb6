package ultimate

import (
	"encoding/json"
	"fmt"
	"io"
)

// Device is one entry in the device's drive list. Not every device reports
// every field.
type Device struct {
	Enabled   bool   `json:"enabled"`
	BusID     int    `json:"bus_id"`
	Type      string `json:"type,omitempty"`
	Rom       string `json:"rom,omitempty"`
	ImageFile string `json:"image_file,omitempty"`
	ImagePath string `json:"image_path,omitempty"`
}

// DriveList is the JSON document returned by GET /v1/drives. Each entry is an
// irregular single-key map: the key is the drive slot identifier ("a", "b",
// or a longer sub-device name).
type DriveList struct {
	Drives []map[string]Device `json:"drives"`
}

// Drives fetches the device's drive list.
func (c *Client) Drives() (*DriveList, error) {
	url := "http://" + c.Addr + endpointDrives
	resp, err := c.httpClient().Get(url)
	if err != nil {
		return nil, fmt.Errorf("C64 Ultimate web request fail: %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("C64 Ultimate web request fail: %s: %s", url, resp.Status)
	}
	var dl DriveList
	if err := json.NewDecoder(resp.Body).Decode(&dl); err != nil {
		return nil, fmt.Errorf("decode drive list: %w", err)
	}
	return &dl, nil
}

// Render prints the drive list one line per slot, e.g.
//
//	a:=GAMES.D64
//	b:=<Disabled>
//
// Only single-character slot keys are listed; sub-device entries with longer
// keys are skipped.
func (dl *DriveList) Render(w io.Writer) {
	for _, entry := range dl.Drives {
		for slot, dev := range entry {
			if len(slot) != 1 {
				continue
			}
			if dev.Enabled {
				fmt.Fprintf(w, "%s:=%s\n", slot, dev.ImageFile)
			} else {
				fmt.Fprintf(w, "%s:=<Disabled>\n", slot)
			}
		}
	}
}
