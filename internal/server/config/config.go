// Package config handles configuration for the CDN server: built-in
// defaults, an optional JSON overlay and command-line flags, applied in
// that order.
package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	StorageLocal = "local"
	StorageS3    = "s3"

	SessionsMemory   = "memory"
	SessionsSQLite   = "sqlite"
	SessionsPostgres = "postgres"
)

const MiB = 1 << 20

// Config holds runtime settings for the CDN server.
//
// Sizes are in bytes. DailyUploadLimit of 0 disables the quota. An empty
// AdminPassword disables admin login; an empty GRPCAddr disables the health
// endpoint; an empty SecretKey makes the server pick a random one per run.
type Config struct {
	HTTPAddr             string
	GRPCAddr             string
	PublicHost           string
	StorageBackend       string
	StorageDir           string
	MaxUploadSize        int64
	DailyUploadLimit     int64
	AdminPassword        string
	SessionTTL           time.Duration
	SessionBackend       string
	DatabaseDSN          string
	SecretKey            string
	IOWorkers            int
	LogFile              string
	CookieSecure         bool
	RequireAuthForUpload bool
	S3RootUser           string
	S3RootPassword       string
	S3Bucket             string
	S3Region             string
	S3BaseEndpoint       string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8000"
	c.GRPCAddr = ":50051"
	c.PublicHost = "cdn.kaityxd.xyz"
	c.StorageBackend = StorageLocal
	c.StorageDir = "cdn_files"
	c.MaxUploadSize = 512 * MiB
	c.DailyUploadLimit = 1024 * MiB
	c.SessionTTL = 24 * time.Hour
	c.SessionBackend = SessionsMemory
	c.IOWorkers = 8
	c.LogFile = "logs/cdn.log"
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "cdn"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

// Validate reports the first setting the server cannot start with.
func (c *Config) Validate() error {
	switch {
	case c.HTTPAddr == "":
		return errors.New("http address is required")
	case c.PublicHost == "":
		return errors.New("public host is required")
	case c.MaxUploadSize <= 0:
		return errors.New("max upload size must be positive")
	case c.DailyUploadLimit < 0:
		return errors.New("daily upload limit must not be negative")
	case c.SessionTTL <= 0:
		return errors.New("session ttl must be positive")
	case c.IOWorkers <= 0:
		return errors.New("io workers must be positive")
	}

	switch c.StorageBackend {
	case StorageLocal:
		if c.StorageDir == "" {
			return errors.New("storage dir is required")
		}
	case StorageS3:
		if c.S3Bucket == "" {
			return errors.New("s3 bucket is required")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}

	switch c.SessionBackend {
	case SessionsMemory, SessionsSQLite:
	case SessionsPostgres:
		if c.DatabaseDSN == "" {
			return errors.New("database dsn is required for postgres sessions")
		}
	default:
		return fmt.Errorf("unknown session backend %q", c.SessionBackend)
	}

	return nil
}

// LoadConfig builds a Config from defaults, then the JSON file named by
// -c/-config, then the remaining flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
