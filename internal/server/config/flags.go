package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/courseimage/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string      gRPC bind address (e.g., ":50051")
//	-l string      REST bind address (e.g., ":8080")
//	-d string      PostgreSQL DSN
//	-s string      JWT HMAC secret key
//	-t duration    issued token validity (e.g., "24h")
//	-store string  blob store: s3 | memory
//	-u string      S3 root user
//	-p string      S3 root password
//	-b string      S3 bucket name
//	-g string      S3 region
//	-e string      S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-tmp string    scratch directory root
//	-w string      wwwroot used in file URLs
//	-lock duration course lock wait timeout
//	-m int         max decoded upload size in bytes
//	-log string    log backend: slog | zap
//
// os.Args is first filtered with flagx.FilterArgs so flags owned by other
// components (e.g. -c, -issue-token) do not break parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"a", "l", "d", "s", "t", "store", "u", "p", "b", "g", "e", "tmp", "w", "lock", "m", "log",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.EndpointAddrHTTP, "l", config.EndpointAddrHTTP, "REST address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.DurationVar(&config.AccessTokenValidityDuration, "t", config.AccessTokenValidityDuration, "issued token validity")

	fs.StringVar(&config.BlobStore, "store", config.BlobStore, "blob store (s3|memory)")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.TempDir, "tmp", config.TempDir, "scratch directory root")
	fs.StringVar(&config.WWWRoot, "w", config.WWWRoot, "public base URL")
	fs.DurationVar(&config.CourseLockTimeout, "lock", config.CourseLockTimeout, "course lock wait timeout")
	fs.Int64Var(&config.MaxUploadBytes, "m", config.MaxUploadBytes, "max upload size in bytes")
	fs.StringVar(&config.LogBackend, "log", config.LogBackend, "log backend (slog|zap)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
