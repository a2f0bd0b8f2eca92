// Package geocode resolves free-text addresses to coordinates through the
// BAN geocoder (api-adresse.data.gouv.fr), the national address base for
// France. Resolution is a collaborator of the core: the matcher only ever
// sees the resulting projected point.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mgirardot/pna-zonage/internal/model"
	"github.com/mgirardot/pna-zonage/internal/observability"
	"github.com/mgirardot/pna-zonage/internal/proj"
)

// ErrNoResult means the geocoder answered but found nothing for the
// address.
var ErrNoResult = errors.New("no geocoding result")

// Result is a resolved address: the point in both reference systems, the
// normalized label the geocoder matched, and a 0-100 confidence score.
type Result struct {
	Point model.Point `json:"point"`
	Label string      `json:"label"`
	Score float64     `json:"score"`
}

// Geocoder is the seam the router depends on; the Redis/LRU cached variant
// and test fakes implement it too.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (Result, error)
}

type Client struct {
	logger *slog.Logger
	client *http.Client
	base   *url.URL
}

var _ Geocoder = (*Client)(nil)

func New(logger *slog.Logger, client *http.Client, baseURL string) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = http.DefaultClient
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse geocoder url: %w", err)
	}
	return &Client{logger: logger, client: client, base: u}, nil
}

// Geocode resolves one address, keeping only the best candidate (limit=1,
// as the original tool queried).
func (c *Client) Geocode(ctx context.Context, address string) (Result, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return Result{}, errors.New("address is required")
	}

	u := *c.base
	q := u.Query()
	q.Set("q", address)
	q.Set("limit", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	observability.ObserveGeocode(err, time.Since(start).Seconds())
	if err != nil {
		return Result{}, fmt.Errorf("geocoder call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("geocoder status %d", resp.StatusCode)
	}

	var body struct {
		Features []struct {
			Geometry struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties struct {
				Label string  `json:"label"`
				Score float64 `json:"score"`
			} `json:"properties"`
		} `json:"features"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{}, fmt.Errorf("decode geocoder response: %w", err)
	}

	if len(body.Features) == 0 {
		return Result{}, fmt.Errorf("%w: %q", ErrNoResult, address)
	}
	f := body.Features[0]
	if len(f.Geometry.Coordinates) < 2 {
		return Result{}, fmt.Errorf("geocoder result without coordinates for %q", address)
	}

	// The geocoder answers [lon, lat].
	lon, lat := f.Geometry.Coordinates[0], f.Geometry.Coordinates[1]
	res := Result{
		Point: proj.PointFromWGS84(lon, lat),
		Label: f.Properties.Label,
		Score: f.Properties.Score * 100,
	}

	c.logger.Debug("address resolved",
		"label", res.Label,
		"score", strconv.FormatFloat(res.Score, 'f', 1, 64),
	)
	return res, nil
}
