package config

import (
	"encoding/json"
	"os"

	"github.com/KaityXD/choas-lib/internal/flagx"
	"github.com/KaityXD/choas-lib/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Absent keys leave
// the corresponding Config field untouched; sizes are bytes and the
// session ttl accepts "24h" or integer nanoseconds.
type JsonConfig struct {
	HTTPAddr             *string         `json:"http_addr"`
	GRPCAddr             *string         `json:"grpc_addr"`
	PublicHost           *string         `json:"public_host"`
	StorageBackend       *string         `json:"storage_backend"`
	StorageDir           *string         `json:"storage_dir"`
	MaxUploadSize        *int64          `json:"max_upload_size"`
	DailyUploadLimit     *int64          `json:"daily_upload_limit"`
	AdminPassword        *string         `json:"admin_password"`
	SessionTTL           *timex.Duration `json:"session_ttl"`
	SessionBackend       *string         `json:"session_backend"`
	DatabaseDSN          *string         `json:"database_dsn"`
	SecretKey            *string         `json:"secret_key"`
	IOWorkers            *int            `json:"io_workers"`
	LogFile              *string         `json:"log_file"`
	CookieSecure         *bool           `json:"cookie_secure"`
	RequireAuthForUpload *bool           `json:"require_auth_for_upload"`
	S3RootUser           *string         `json:"s3_root_user"`
	S3RootPassword       *string         `json:"s3_root_password"`
	S3Bucket             *string         `json:"s3_bucket"`
	S3Region             *string         `json:"s3_region"`
	S3BaseEndpoint       *string         `json:"s3_base_endpoint"`
}

// parseJson overlays config with the file named by -c/-config.
// It does nothing when no file is named and panics when the file cannot be
// read or decoded.
func parseJson(config *Config) {
	path := flagx.ConfigPath(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var c JsonConfig
	if err := json.Unmarshal(data, &c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.PublicHost, c.PublicHost)
	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.StorageDir, c.StorageDir)
	setString(&config.AdminPassword, c.AdminPassword)
	setString(&config.SessionBackend, c.SessionBackend)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogFile, c.LogFile)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.MaxUploadSize != nil {
		config.MaxUploadSize = *c.MaxUploadSize
	}
	if c.DailyUploadLimit != nil {
		config.DailyUploadLimit = *c.DailyUploadLimit
	}
	if c.SessionTTL != nil {
		config.SessionTTL = c.SessionTTL.Duration
	}
	if c.IOWorkers != nil {
		config.IOWorkers = *c.IOWorkers
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	if c.RequireAuthForUpload != nil {
		config.RequireAuthForUpload = *c.RequireAuthForUpload
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
