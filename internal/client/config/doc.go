// Package config loads runtime configuration for the upload client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string         address:port of the gRPC endpoint
//	-t string         access token
//	-timeout duration per-call deadline (e.g. "30s")
//
// # JSON schema
//
// Durations accept strings like "30s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "access_token": "eyJhbGciOi...",
//	  "request_timeout": "30s"
//	}
package config
