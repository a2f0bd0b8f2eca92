// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mgirardot/pna-zonage/internal/model"
)

type RefreshCfg struct {
	Enabled bool
	Brokers []string
	Topic   string
	GroupID string
}

type Config struct {
	Addr     string
	LogLevel string

	// Zone datasets
	DataDir      string
	ForceType    model.PlanType
	BufferRadius float64

	// Geocoding
	GeocoderURL     string
	GeocodeTimeout  time.Duration
	RedisAddr       string
	GeocodeCacheTTL time.Duration
	GeocodeLRUSize  int

	Refresh RefreshCfg
}

func FromEnv() Config {
	forced, err := ParsePlanType(getenv("FORCE_TYPE", ""))
	if err != nil {
		slog.Warn("FORCE_TYPE not recognized, falling back to detection", "err", err)
	}

	return Config{
		Addr:     getenv("ADDR", ":8085"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		DataDir:      getenv("DATA_DIR", "./data"),
		ForceType:    forced,
		BufferRadius: getfloat("BUFFER_RADIUS_M", 1.0),

		GeocoderURL:     getenv("GEOCODER_URL", "https://api-adresse.data.gouv.fr/search/"),
		GeocodeTimeout:  getduration("GEOCODE_TIMEOUT", 10*time.Second),
		RedisAddr:       getenv("REDIS_ADDR", ""),
		GeocodeCacheTTL: getduration("GEOCODE_CACHE_TTL", 24*time.Hour),
		GeocodeLRUSize:  getint("GEOCODE_LRU_SIZE", 1024),

		Refresh: RefreshCfg{
			Enabled: getbool("REFRESH_ENABLED", false),
			Brokers: splitCSV(getenv("KAFKA_BROKERS", "localhost:9092")),
			Topic:   getenv("ZONE_REFRESH_TOPIC", "pna-zone-refresh"),
			GroupID: getenv("KAFKA_GROUP_ID", "pna-zonage"),
		},
	}
}

// ParsePlanType maps the FORCE_TYPE selector values onto plan types. Empty
// and "auto" mean automatic detection; any other unrecognized value is an
// error so a typo cannot silently turn forcing off.
func ParsePlanType(s string) (model.PlanType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return model.PlanTypeUndetected, nil
	case "chiropteres", "chiroptères":
		return model.PlanTypeChiroptera, nil
	case "odonates":
		return model.PlanTypeOdonata, nil
	case "pie-grieche-grise", "grise":
		return model.PlanTypeGreyShrike, nil
	case "pie-grieche-meridionale", "meridionale":
		return model.PlanTypeSouthernGreyShrike, nil
	case "pie-grieche-tete-rousse", "tete-rousse":
		return model.PlanTypeRedBackedShrike, nil
	default:
		return model.PlanTypeUndetected, fmt.Errorf("unrecognized plan type selector %q", s)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
