// Package config loads runtime settings from the environment.
//
// Values are read from an optional .env file in the working directory first,
// then from the process environment. Command-line flags override them.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/morikuni/failure/v2"
)

const (
	DefaultFIRMSHost = "https://firms.modaps.eosdis.nasa.gov"
	DefaultBaiduHost = "https://api.map.baidu.com"
	DefaultCacheTTL  = 24 * time.Hour
)

// ErrorCode defines error types for configuration
type ErrorCode string

const (
	// ErrInvalidValue is returned when an environment value does not parse
	ErrInvalidValue ErrorCode = "InvalidConfigValue"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}

// Config holds settings shared by the CLI and the MCP server
type Config struct {
	MapKey    string
	FIRMSHost string
	DataDir   string

	// CacheDir enables the on-disk cache when set
	CacheDir string
	CacheTTL time.Duration

	// GeoKeyFile is the two-line AK/SK credentials file for Baidu reverse geocoding
	GeoKeyFile string
	BaiduHost  string

	// GoogleMapsKey selects the Google reverse geocoder instead of Baidu
	GoogleMapsKey string
}

// Load reads the configuration. A missing .env file is not an error.
func Load() (Config, error) {
	return LoadFile(".env")
}

// LoadFile reads the configuration using the given dotenv file
func LoadFile(path string) (Config, error) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, failure.Wrap(err, failure.Context{"file": path})
	}

	ttl, err := getenvDuration("FIRMS_CACHE_TTL", DefaultCacheTTL)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		MapKey:        os.Getenv("FIRMS_MAP_KEY"),
		FIRMSHost:     getenv("FIRMS_HOST", DefaultFIRMSHost),
		DataDir:       getenv("FIRMS_DATA_DIR", "."),
		CacheDir:      os.Getenv("FIRMS_CACHE_DIR"),
		CacheTTL:      ttl,
		GeoKeyFile:    getenv("FIRMS_GEO_KEY_FILE", "key"),
		BaiduHost:     getenv("BAIDU_MAP_HOST", DefaultBaiduHost),
		GoogleMapsKey: os.Getenv("FIRMS_GOOGLE_MAPS_KEY"),
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	// plain integers are seconds
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return 0, failure.New(ErrInvalidValue,
		failure.Message(key+" must be a duration such as 24h or a number of seconds"),
		failure.Context{"key": key, "value": v},
	)
}
