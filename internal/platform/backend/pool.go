package backend

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
)

// Mode selects how a pool manages gRPC channels.
type Mode string

const (
	// ModeShared keeps one long-lived channel shared by all leases.
	ModeShared Mode = "shared"
	// ModePerRequest opens a channel per lease and closes it on release.
	ModePerRequest Mode = "per_request"
)

// Observer receives one observation per completed backend call.
type Observer interface {
	ObserveBackendCall(backend, method, code string, elapsed time.Duration)
}

// PoolConfig configures a Pool.
type PoolConfig struct {
	// Name identifies the backend in errors, logs and metrics (clients, orders, products).
	Name string
	// Target is the gRPC dial target, usually host:port.
	Target string
	Mode   Mode
	// Timeout bounds every call made through the pool. Zero means no bound.
	Timeout time.Duration
	// DialOptions are appended to the pool's defaults.
	DialOptions []grpc.DialOption
	// RequestID extracts the request id propagated as x-request-id metadata.
	RequestID func(context.Context) string
	Observer  Observer
	Logger    *slog.Logger
}

// Pool hands out leases on the gRPC channel of a single backend.
//
// Channels are created with grpc.NewClient, which never dials; an unreachable
// backend surfaces as an Unavailable error at call time.
type Pool struct {
	cfg      PoolConfig
	logger   *slog.Logger
	dialOpts []grpc.DialOption

	mu     sync.Mutex
	shared *grpc.ClientConn
	closed bool

	inFlight atomic.Int64
}

// NewPool creates a pool. No channel is created until the first Acquire.
func NewPool(cfg PoolConfig) (*Pool, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("backend pool: name is required")
	}
	if cfg.Target == "" {
		return nil, fmt.Errorf("backend pool %s: target is required", cfg.Name)
	}
	switch cfg.Mode {
	case "":
		cfg.Mode = ModeShared
	case ModeShared, ModePerRequest:
	default:
		return nil, fmt.Errorf("backend pool %s: unknown connection mode %q", cfg.Name, cfg.Mode)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}
	dialOpts = append(dialOpts, cfg.DialOptions...)

	return &Pool{
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "backend_pool"), slog.String("backend", cfg.Name)),
		dialOpts: dialOpts,
	}, nil
}

// Name returns the backend name.
func (p *Pool) Name() string {
	return p.cfg.Name
}

// Mode returns the pool's connection mode.
func (p *Pool) Mode() Mode {
	return p.cfg.Mode
}

// InFlight returns the number of leases that have not been released.
func (p *Pool) InFlight() int64 {
	return p.inFlight.Load()
}

// Acquire returns a lease on the backend channel. The caller must Release it.
func (p *Pool) Acquire(ctx context.Context) (*Lease, error) {
	if err := ctx.Err(); err != nil {
		return nil, Classify(p.cfg.Name, "", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, &Error{Backend: p.cfg.Name, Code: codes.Unavailable, Detail: ErrPoolClosed.Error(), cause: ErrPoolClosed}
	}

	lease := &Lease{pool: p}
	switch p.cfg.Mode {
	case ModePerRequest:
		conn, err := p.dial()
		if err != nil {
			return nil, err
		}
		lease.conn = conn
		lease.owned = true
	default:
		if p.shared == nil {
			conn, err := p.dial()
			if err != nil {
				return nil, err
			}
			p.shared = conn
		}
		lease.conn = p.shared
	}

	p.inFlight.Add(1)
	return lease, nil
}

func (p *Pool) dial() (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(p.cfg.Target, p.dialOpts...)
	if err != nil {
		return nil, &Error{Backend: p.cfg.Name, Code: codes.Unavailable, Detail: err.Error(), cause: err}
	}
	return conn, nil
}

// Close closes the shared channel and rejects further acquisitions.
// Leases still outstanding fail their next call. Close is idempotent.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if p.shared != nil {
		err := p.shared.Close()
		p.shared = nil
		if err != nil {
			return fmt.Errorf("close %s channel: %w", p.cfg.Name, err)
		}
	}
	return nil
}

// Lease is a connection handle for a single request. Release may be called
// any number of times; only the first call has an effect.
type Lease struct {
	pool     *Pool
	conn     *grpc.ClientConn
	owned    bool
	once     sync.Once
	released atomic.Bool
}

// Release returns the lease to its pool. In per-request mode it closes the
// lease's channel; close failures are logged.
func (l *Lease) Release() {
	if l == nil {
		return
	}
	l.once.Do(func() {
		l.released.Store(true)
		l.pool.inFlight.Add(-1)
		if l.owned {
			if err := l.conn.Close(); err != nil {
				l.pool.logger.Warn("failed to close backend channel", slog.Any("error", err))
			}
		}
	})
}

// Released reports whether Release has been called.
func (l *Lease) Released() bool {
	return l.released.Load()
}

// Backend returns the name of the leased backend.
func (l *Lease) Backend() string {
	return l.pool.cfg.Name
}
