// Package config handles configuration loading, parsing, and validation
// from defaults, an optional config file and environment variables. It
// provides type-safe access to the gateway's listen settings, the auth
// service location and the gRPC backend targets while keeping configuration
// details separate from request handling.
package config
