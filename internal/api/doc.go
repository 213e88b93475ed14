// Package api holds the gateway's route handlers. Each handler validates the
// inbound payload, acquires a backend adapter for the duration of the request,
// invokes exactly one backend operation and reshapes the reply into the
// gateway's JSON contract. Failures are mapped to HTTP statuses in errors.go.
package api
