// Package backend provides the gRPC plumbing shared by the clients, orders
// and products adapters: protobuf contracts described in Go, an explicit
// optional-field builder for requests, a channel pool handing out
// per-request leases, and classification of call failures.
package backend
