// Package refresh reloads the zone dataset store when update events arrive
// on a Kafka topic. Zone boundary files change rarely (new plan editions),
// so the event payload only says that something changed; the store reloads
// the whole directory and swaps its snapshot.
package refresh

import (
	"fmt"
	"strings"
	"time"
)

type Event struct {
	Version int       `json:"version"`
	Op      string    `json:"op"` // reload | update | delete
	File    string    `json:"file,omitempty"`
	TS      time.Time `json:"ts"`
}

func (e Event) Validate() error {
	if e.Version != 1 {
		return fmt.Errorf("version must be 1")
	}
	switch e.Op {
	case "reload":
	case "update", "delete":
		if strings.TrimSpace(e.File) == "" {
			return fmt.Errorf("file is required for op %q", e.Op)
		}
	default:
		return fmt.Errorf("op must be reload|update|delete")
	}
	if e.TS.IsZero() {
		return fmt.Errorf("ts is required")
	}
	return nil
}
