// Package backendtest runs in-process gRPC backends for tests. A Server
// serves every method of a backend.Schema over bufconn, records the requests
// it receives and answers with replies built from backend.Fields.
package backendtest

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/phrazzld/censudex-gateway/internal/platform/backend"
)

const bufSize = 1024 * 1024

// HandlerFunc answers one call. Returning a nil reply sends an empty message.
type HandlerFunc func(ctx context.Context, req *dynamicpb.Message) (*backend.Fields, error)

// Call is a request received by the server.
type Call struct {
	Method   string
	Request  *dynamicpb.Message
	Metadata metadata.MD
}

// Fields returns the fields present on the request, keyed by proto name.
func (c Call) Fields() map[string]any {
	return RequestFields(c.Request)
}

// Server is an in-process gRPC backend.
type Server struct {
	schema *backend.Schema
	lis    *bufconn.Listener
	srv    *grpc.Server

	mu       sync.Mutex
	handlers map[string]HandlerFunc
	calls    []Call
}

// NewServer starts a server for schema. It is stopped when the test ends.
func NewServer(t testing.TB, schema *backend.Schema) *Server {
	t.Helper()

	s := &Server{
		schema:   schema,
		lis:      bufconn.Listen(bufSize),
		srv:      grpc.NewServer(),
		handlers: make(map[string]HandlerFunc),
	}

	svc := schema.Service()
	desc := grpc.ServiceDesc{
		ServiceName: string(svc.FullName()),
		HandlerType: (*interface{})(nil),
		Metadata:    schema.File().Path(),
	}
	methods := svc.Methods()
	for i := 0; i < methods.Len(); i++ {
		md := methods.Get(i)
		desc.Methods = append(desc.Methods, grpc.MethodDesc{
			MethodName: string(md.Name()),
			Handler:    s.unary(md),
		})
	}
	s.srv.RegisterService(&desc, s)

	go func() {
		_ = s.srv.Serve(s.lis)
	}()

	t.Cleanup(func() {
		s.srv.Stop()
		_ = s.lis.Close()
	})

	return s
}

func (s *Server) unary(md protoreflect.MethodDescriptor) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(_ any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
		req := dynamicpb.NewMessage(md.Input())
		if err := dec(req); err != nil {
			return nil, err
		}

		inMD, _ := metadata.FromIncomingContext(ctx)
		name := string(md.Name())

		s.mu.Lock()
		s.calls = append(s.calls, Call{Method: name, Request: req, Metadata: inMD})
		h := s.handlers[name]
		s.mu.Unlock()

		if h == nil {
			return nil, status.Errorf(codes.Unimplemented, "method %s not implemented", name)
		}

		reply, err := h(ctx, req)
		if err != nil {
			return nil, err
		}
		return reply.Build(md.Output())
	}
}

// Handle installs h for the named method.
func (s *Server) Handle(method string, h HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = h
}

// Reply answers every call to method with reply.
func (s *Server) Reply(method string, reply *backend.Fields) {
	s.Handle(method, func(context.Context, *dynamicpb.Message) (*backend.Fields, error) {
		return reply, nil
	})
}

// Fail answers every call to method with a gRPC status error.
func (s *Server) Fail(method string, code codes.Code, msg string) {
	s.Handle(method, func(context.Context, *dynamicpb.Message) (*backend.Fields, error) {
		return nil, status.Error(code, msg)
	})
}

// Delay answers every call to method after d, or fails when the caller gives up first.
func (s *Server) Delay(method string, d time.Duration, reply *backend.Fields) {
	s.Handle(method, func(ctx context.Context, _ *dynamicpb.Message) (*backend.Fields, error) {
		select {
		case <-time.After(d):
			return reply, nil
		case <-ctx.Done():
			return nil, status.FromContextError(ctx.Err()).Err()
		}
	})
}

// Calls returns every call received so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsTo returns the calls received for method.
func (s *Server) CallsTo(method string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Target is the dial target understood by DialOptions.
func (s *Server) Target() string {
	return "passthrough:///bufnet"
}

// DialOptions route connections to the in-process listener.
func (s *Server) DialOptions() []grpc.DialOption {
	return []grpc.DialOption{
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return s.lis.DialContext(ctx)
		}),
	}
}

// Pool returns a pool connected to the server, closed when the test ends.
func (s *Server) Pool(t testing.TB, name string, mode backend.Mode) *backend.Pool {
	t.Helper()
	return NewPool(t, backend.PoolConfig{
		Name:        name,
		Target:      s.Target(),
		Mode:        mode,
		Timeout:     5 * time.Second,
		DialOptions: s.DialOptions(),
	})
}

// NewPool creates a pool and closes it when the test ends.
func NewPool(t testing.TB, cfg backend.PoolConfig) *backend.Pool {
	t.Helper()
	pool, err := backend.NewPool(cfg)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	t.Cleanup(func() { _ = pool.Close() })
	return pool
}

// UnreachablePool returns a pool whose every call fails at the transport level.
func UnreachablePool(t testing.TB, name string) *backend.Pool {
	t.Helper()
	return NewPool(t, backend.PoolConfig{
		Name:    name,
		Target:  "passthrough:///unreachable",
		Timeout: 2 * time.Second,
		DialOptions: []grpc.DialOption{
			grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
				return nil, &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
			}),
		},
	})
}

var requestMarshaler = protojson.MarshalOptions{UseProtoNames: true}

// RequestFields returns the populated fields of msg keyed by proto name.
// Fields that were never set are absent from the map.
func RequestFields(msg proto.Message) map[string]any {
	out := map[string]any{}
	if msg == nil {
		return out
	}
	data, err := requestMarshaler.Marshal(msg)
	if err != nil {
		return out
	}
	_ = json.Unmarshal(data, &out)
	return out
}
