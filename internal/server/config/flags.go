package config

import (
	"flag"
	"os"
	"time"

	"github.com/KaityXD/choas-lib/internal/flagx"
)

// parseFlags overlays Config with command-line flags.
//
//	-a string   HTTP listen address
//	-r string   gRPC health listen address ("" disables)
//	-n string   public host used in returned URLs
//	-b string   storage backend: local | s3
//	-d string   storage directory (local backend)
//	-m int      max upload size, MiB
//	-q int      daily upload limit, MiB (0 disables)
//	-x string   admin password
//	-t int      session ttl, minutes
//	-s string   session backend: memory | sqlite | postgres
//	-l string   database DSN for SQL session backends
//	-k string   JWT signing key
//	-w int      concurrent storage operations
//	-o string   log file ("" logs to stdout only)
//	-u -p -B -g -e   S3 user, password, bucket, region, endpoint
//
// Unknown flags are filtered out first so -c/-config never trip the parser.
// A malformed value panics.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-r", "-n", "-b", "-d", "-m", "-q", "-x", "-t", "-s", "-l", "-k", "-w", "-o",
		"-u", "-p", "-B", "-g", "-e",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP listen address")
	fs.StringVar(&config.GRPCAddr, "r", config.GRPCAddr, "gRPC health listen address")
	fs.StringVar(&config.PublicHost, "n", config.PublicHost, "public host for file URLs")
	fs.StringVar(&config.StorageBackend, "b", config.StorageBackend, "storage backend (local|s3)")
	fs.StringVar(&config.StorageDir, "d", config.StorageDir, "storage directory")
	maxUpload := fs.Int64("m", config.MaxUploadSize/MiB, "max upload size (in MiB)")
	dailyLimit := fs.Int64("q", config.DailyUploadLimit/MiB, "daily upload limit (in MiB)")
	fs.StringVar(&config.AdminPassword, "x", config.AdminPassword, "admin password")
	ttl := fs.Int("t", int(config.SessionTTL.Minutes()), "session ttl (in minutes)")
	fs.StringVar(&config.SessionBackend, "s", config.SessionBackend, "session backend (memory|sqlite|postgres)")
	fs.StringVar(&config.DatabaseDSN, "l", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "k", config.SecretKey, "JWT secret key")
	fs.IntVar(&config.IOWorkers, "w", config.IOWorkers, "concurrent storage operations")
	fs.StringVar(&config.LogFile, "o", config.LogFile, "log file")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "B", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.MaxUploadSize = *maxUpload * MiB
	config.DailyUploadLimit = *dailyLimit * MiB
	config.SessionTTL = time.Duration(*ttl) * time.Minute
}
