// Package zonedata parses uploaded zone-boundary documents into zone
// features. Documents are GeoJSON-style: a top-level "type" member and a
// "features" array, geometries expressed in Lambert-93.
//
// Parsing is strict at the document level and lenient at the feature level:
// a document missing "type" or "features" is rejected as a whole, while a
// feature whose geometry cannot be decoded is kept with a nil geometry so
// the matcher can skip it without losing the rest of the file.
package zonedata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/mgirardot/pna-zonage/internal/model"
)

// ErrInvalidDataset marks a structurally malformed document. Callers report
// it per file and continue with the remaining files.
var ErrInvalidDataset = errors.New("invalid zone dataset")

// ParseCollection decodes one document into zone features.
func ParseCollection(data []byte) ([]model.ZoneFeature, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: parse json: %v", ErrInvalidDataset, err)
	}

	if _, ok := root["type"]; !ok {
		return nil, fmt.Errorf(`%w: missing required member "type"`, ErrInvalidDataset)
	}
	featuresRaw, ok := root["features"]
	if !ok {
		return nil, fmt.Errorf(`%w: missing required member "features"`, ErrInvalidDataset)
	}

	var feats []json.RawMessage
	if err := json.Unmarshal(featuresRaw, &feats); err != nil {
		return nil, fmt.Errorf(`%w: "features" must be an array: %v`, ErrInvalidDataset, err)
	}

	out := make([]model.ZoneFeature, 0, len(feats))
	for _, fr := range feats {
		out = append(out, parseFeature(fr))
	}
	return out, nil
}

// parseFeature never fails: undecodable members degrade to nil geometry or
// empty properties.
func parseFeature(raw json.RawMessage) model.ZoneFeature {
	var f struct {
		Geometry   json.RawMessage    `json:"geometry"`
		Properties geojson.Properties `json:"properties"`
	}
	// On error the struct keeps its zero values; the feature is then an
	// empty shell skipped by the matcher.
	_ = json.Unmarshal(raw, &f)

	zf := model.ZoneFeature{Properties: f.Properties}
	if zf.Properties == nil {
		zf.Properties = geojson.Properties{}
	}

	zf.Geometry = decodeGeometry(f.Geometry)
	if zf.Geometry != nil {
		zf.Bound = zf.Geometry.Bound()
	}
	return zf
}

func decodeGeometry(raw json.RawMessage) orb.Geometry {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	g, err := geojson.UnmarshalGeometry(raw)
	if err != nil || g == nil {
		return nil
	}
	return g.Geometry()
}
