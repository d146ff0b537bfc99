// Package config loads runtime configuration for the sealvault CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. SEALVAULT_TOKEN from the environment.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string     address:port of the sealvault gRPC endpoint
//	-timeout dur  per-request timeout, e.g. "10s"
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "access_token": "eyJ...",
//	  "request_timeout": "10s"
//	}
//
// The access token is deliberately not a flag so it stays out of process
// listings.
package config
