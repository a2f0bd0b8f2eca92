package refresh

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
)

func TestEventValidate(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name string
		ev   Event
		ok   bool
	}{
		{"reload", Event{Version: 1, Op: "reload", TS: now}, true},
		{"update with file", Event{Version: 1, Op: "update", File: "odonates.geojson", TS: now}, true},
		{"delete with file", Event{Version: 1, Op: "delete", File: "odonates.geojson", TS: now}, true},
		{"update without file", Event{Version: 1, Op: "update", TS: now}, false},
		{"bad op", Event{Version: 1, Op: "truncate", TS: now}, false},
		{"bad version", Event{Version: 2, Op: "reload", TS: now}, false},
		{"missing ts", Event{Version: 1, Op: "reload"}, false},
	}
	for _, c := range cases {
		err := c.ev.Validate()
		if c.ok && err != nil {
			t.Errorf("%s: unexpected error %v", c.name, err)
		}
		if !c.ok && err == nil {
			t.Errorf("%s: expected error", c.name)
		}
	}
}

type fakeReloader struct {
	calls int
	err   error
}

func (f *fakeReloader) Reload() error {
	f.calls++
	return f.err
}

func msgWith(t *testing.T, ev Event) *sarama.ConsumerMessage {
	t.Helper()
	raw, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return &sarama.ConsumerMessage{Topic: "pna-zone-refresh", Value: raw}
}

func TestProcessOne_TriggersReload(t *testing.T) {
	r := &fakeReloader{}
	c := New(Config{Topic: "pna-zone-refresh"}, nil, r)

	err := c.ProcessOne(context.Background(), msgWith(t, Event{
		Version: 1, Op: "update", File: "chiropteres.geojson", TS: time.Now(),
	}))
	if err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}
	if r.calls != 1 {
		t.Fatalf("reload calls=%d want 1", r.calls)
	}
}

func TestProcessOne_RejectsInvalidPayloads(t *testing.T) {
	r := &fakeReloader{}
	c := New(Config{}, nil, r)

	if err := c.ProcessOne(context.Background(), &sarama.ConsumerMessage{Value: []byte("{")}); err == nil {
		t.Fatalf("expected decode error")
	}
	if err := c.ProcessOne(context.Background(), msgWith(t, Event{Version: 1, Op: "update", TS: time.Now()})); err == nil {
		t.Fatalf("expected validation error")
	}
	if r.calls != 0 {
		t.Fatalf("invalid events must not reload, calls=%d", r.calls)
	}
}
