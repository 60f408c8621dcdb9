package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/courseimage/internal/flagx"
	"github.com/dmitrijs2005/courseimage/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations use
// timex.Duration so both "5s" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrGRPC            string          `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP            string          `json:"endpoint_addr_http"`
	DatabaseDSN                 string          `json:"database_dsn"`
	SecretKey                   string          `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	BlobStore                   string          `json:"blob_store"`
	S3RootUser                  string          `json:"s3_root_user"`
	S3RootPassword              string          `json:"s3_root_password"`
	S3Bucket                    string          `json:"s3_bucket"`
	S3Region                    string          `json:"s3_region"`
	S3BaseEndpoint              string          `json:"s3_base_endpoint"`
	TempDir                     string          `json:"temp_dir"`
	WWWRoot                     string          `json:"wwwroot"`
	CourseLockTimeout           *timex.Duration `json:"course_lock_timeout"`
	MaxUploadBytes              *int64          `json:"max_upload_bytes"`
	LogBackend                  string          `json:"log_backend"`
}

// parseJson overlays values from the file named by -c/-config. Keys absent
// from the file keep their current value. An unreadable or malformed file
// panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFilePath(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	setString(&config.BlobStore, c.BlobStore)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.TempDir, c.TempDir)
	setString(&config.WWWRoot, c.WWWRoot)
	if c.CourseLockTimeout != nil {
		config.CourseLockTimeout = c.CourseLockTimeout.Duration
	}
	if c.MaxUploadBytes != nil {
		config.MaxUploadBytes = *c.MaxUploadBytes
	}
	setString(&config.LogBackend, c.LogBackend)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
