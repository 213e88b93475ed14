// Package domain contains the gateway's error taxonomy and the user identity
// produced by token validation. It is independent of any transport: the HTTP
// layer maps these errors to status codes and the backend adapters wrap
// their failures in them.
package domain
