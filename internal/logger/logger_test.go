package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v\n%s", err, buf.String())
	}
	return rec
}

func TestSlogBridgeCarriesContextAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	zl := Build(Config{Level: "debug", Component: "test"}, &buf)
	sl := NewSlog(&zl)

	ctx := WithRequestID(context.Background(), "req-1")
	sl.With("dataset", "zones.geojson").InfoContext(ctx, "zone file loaded", "features", 12)

	rec := decodeLine(t, &buf)
	if rec["msg"] != "zone file loaded" || rec["level"] != "info" {
		t.Fatalf("record: %v", rec)
	}
	if rec["request_id"] != "req-1" {
		t.Fatalf("context request_id missing: %v", rec)
	}
	if rec["component"] != "test" || rec["dataset"] != "zones.geojson" {
		t.Fatalf("bound fields missing: %v", rec)
	}
	if rec["features"] != float64(12) {
		t.Fatalf("features=%v want 12", rec["features"])
	}
}

func TestSlogBridgeFlattensGroups(t *testing.T) {
	var buf bytes.Buffer
	zl := Build(Config{Level: "debug"}, &buf)
	sl := NewSlog(&zl)

	sl.WithGroup("geo").Info("projected", "x", 700000.0, "inside", true)

	rec := decodeLine(t, &buf)
	if rec["geo.x"] != float64(700000) {
		t.Fatalf("geo.x=%v", rec["geo.x"])
	}
	if rec["geo.inside"] != true {
		t.Fatalf("geo.inside=%v", rec["geo.inside"])
	}
}

func TestSlogBridgeLevelMapping(t *testing.T) {
	var buf bytes.Buffer
	zl := Build(Config{Level: "debug"}, &buf)
	sl := NewSlog(&zl)

	sl.Warn("boundary case")
	rec := decodeLine(t, &buf)
	if rec["level"] != "warn" {
		t.Fatalf("level=%v want warn", rec["level"])
	}

	buf.Reset()
	sl.Error("upstream failed", "err", "boom")
	rec = decodeLine(t, &buf)
	if rec["level"] != "error" || rec["err"] != "boom" {
		t.Fatalf("record: %v", rec)
	}
}
