package backend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/dynamicpb"
)

// RequestIDHeader is the gRPC metadata key carrying the gateway request id.
const RequestIDHeader = "x-request-id"

// Invoke performs one unary RPC through the lease. The pool timeout bounds
// the call and failures are returned as *Error.
func (l *Lease) Invoke(ctx context.Context, method Method, req, reply proto.Message) error {
	if l.Released() {
		return &Error{Backend: l.Backend(), Method: method.Name(), Code: codes.Canceled, Detail: ErrLeaseReleased.Error(), cause: ErrLeaseReleased}
	}

	p := l.pool
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}
	if p.cfg.RequestID != nil {
		if id := p.cfg.RequestID(ctx); id != "" {
			ctx = metadata.AppendToOutgoingContext(ctx, RequestIDHeader, id)
		}
	}

	start := time.Now()
	err := l.conn.Invoke(ctx, method.FullName(), req, reply)
	elapsed := time.Since(start)

	code := status.Code(err)
	if p.cfg.Observer != nil {
		p.cfg.Observer.ObserveBackendCall(p.cfg.Name, method.Name(), code.String(), elapsed)
	}

	if err != nil {
		p.logger.DebugContext(ctx, "backend call failed",
			slog.String("method", method.Name()),
			slog.String("code", code.String()),
			slog.Duration("elapsed", elapsed))
		return Classify(p.cfg.Name, method.Name(), err)
	}
	return nil
}

// Call builds the request from fields, invokes method and decodes the reply
// into out. A nil out discards the reply.
func (l *Lease) Call(ctx context.Context, method Method, fields *Fields, out any) error {
	req, err := fields.Build(method.Input())
	if err != nil {
		return fmt.Errorf("build %s request: %w", method.Name(), err)
	}

	reply := dynamicpb.NewMessage(method.Output())
	if err := l.Invoke(ctx, method, req, reply); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := Decode(reply, out); err != nil {
		return &Error{Backend: l.Backend(), Method: method.Name(), Code: codes.DataLoss, Detail: ErrMalformedReply.Error(), cause: err}
	}
	return nil
}
