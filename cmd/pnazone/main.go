// Command pnazone runs a single verification from the shell: it loads the
// zone datasets of a directory, resolves the queried location and prints the
// result as JSON. Exit code 0 means the point falls in at least one zone,
// 1 means no zone, 2 means the query could not be answered.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/mgirardot/pna-zonage/internal/aggregate"
	"github.com/mgirardot/pna-zonage/internal/config"
	"github.com/mgirardot/pna-zonage/internal/geocode"
	"github.com/mgirardot/pna-zonage/internal/httpclient"
	"github.com/mgirardot/pna-zonage/internal/logger"
	"github.com/mgirardot/pna-zonage/internal/match"
	"github.com/mgirardot/pna-zonage/internal/model"
	"github.com/mgirardot/pna-zonage/internal/proj"
	"github.com/mgirardot/pna-zonage/internal/store"
)

type output struct {
	Address   string              `json:"address,omitempty"`
	Label     string              `json:"label,omitempty"`
	Score     float64             `json:"score,omitempty"`
	Point     model.Point         `json:"point"`
	Matched   bool                `json:"matched"`
	ZoneCount int                 `json:"zone_count"`
	Zones     []model.MatchResult `json:"zones"`
}

func main() {
	os.Exit(run())
}

func run() int {
	var (
		dataDir   = flag.String("data", "./data", "directory of GeoJSON zone datasets")
		address   = flag.String("address", "", "address to geocode")
		lon       = flag.Float64("lon", 0, "WGS84 longitude in degrees")
		lat       = flag.Float64("lat", 0, "WGS84 latitude in degrees")
		x         = flag.Float64("x", 0, "Lambert-93 easting in meters")
		y         = flag.Float64("y", 0, "Lambert-93 northing in meters")
		forceType = flag.String("type", "", "force a plan type for every dataset (default: detect)")
		radius    = flag.Float64("radius", match.DefaultBufferRadius, "buffer radius in meters")
		logLevel  = flag.String("log-level", "warn", "log level")
	)
	flag.Parse()
	_ = godotenv.Load()

	zl := logger.Build(logger.Config{Level: *logLevel, Component: "pnazone"}, os.Stderr)
	appLog := logger.NewSlog(&zl)

	hasLonLat := flagSet("lon") || flagSet("lat")
	hasXY := flagSet("x") || flagSet("y")
	modes := 0
	for _, on := range []bool{*address != "", hasLonLat, hasXY} {
		if on {
			modes++
		}
	}
	if modes != 1 {
		fmt.Fprintln(os.Stderr, "supply exactly one of -address, -lon/-lat or -x/-y")
		flag.Usage()
		return 2
	}

	forced, err := config.ParsePlanType(*forceType)
	if err != nil {
		fmt.Fprintln(os.Stderr, "-type:", err)
		return 2
	}

	ctx := context.Background()

	zones := store.New(appLog, *dataDir, forced)
	if err := zones.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "load datasets:", err)
		return 2
	}

	out := output{Address: *address}
	switch {
	case *address != "":
		cfg := config.FromEnv()
		g, err := geocode.New(appLog, httpclient.NewOutbound(cfg.GeocodeTimeout), cfg.GeocoderURL)
		if err != nil {
			fmt.Fprintln(os.Stderr, "geocoder:", err)
			return 2
		}
		gctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		res, err := g.Geocode(gctx, *address)
		if err != nil {
			fmt.Fprintln(os.Stderr, "geocode:", err)
			return 2
		}
		out.Point, out.Label, out.Score = res.Point, res.Label, res.Score
	case hasLonLat:
		out.Point = proj.PointFromWGS84(*lon, *lat)
	default:
		out.Point = proj.PointFromLambert93(*x, *y)
	}

	matcher := match.New(match.WithBufferRadius(*radius))
	matched, results, err := matcher.Match(out.Point, zones.Datasets())
	if err != nil {
		fmt.Fprintln(os.Stderr, "match:", err)
		return 2
	}

	out.Matched = matched
	out.Zones = aggregate.New().Enrich(results)
	if out.Zones == nil {
		out.Zones = []model.MatchResult{}
	}
	out.ZoneCount = len(out.Zones)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintln(os.Stderr, "encode:", err)
		return 2
	}

	if !matched {
		return 1
	}
	return 0
}

func flagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
