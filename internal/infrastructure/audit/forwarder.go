package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/claimflow/claimflow-go/internal/domain/claims"
)

// Forwarder delivers committed entries to a sink on background workers.
// Delivery failures are kept for Retry and never reach the caller.
type Forwarder struct {
	sink         Sink
	logger       *slog.Logger
	queue        chan claims.AuditEntry
	workers      int
	bufferSize   int
	writeTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	failedMu sync.Mutex
	failed   []claims.AuditEntry
}

// Option configures the Forwarder.
type Option func(*Forwarder)

// WithWorkers sets the number of delivery workers.
func WithWorkers(n int) Option {
	return func(f *Forwarder) {
		if n > 0 {
			f.workers = n
		}
	}
}

// WithBufferSize sets the queue size.
func WithBufferSize(size int) Option {
	return func(f *Forwarder) {
		if size > 0 {
			f.bufferSize = size
		}
	}
}

// WithWriteTimeout bounds a single sink write.
func WithWriteTimeout(d time.Duration) Option {
	return func(f *Forwarder) {
		f.writeTimeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Forwarder) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewForwarder creates a forwarder and starts its workers.
func NewForwarder(sink Sink, opts ...Option) *Forwarder {
	f := &Forwarder{
		sink:         sink,
		logger:       slog.Default(),
		workers:      2,
		bufferSize:   256,
		writeTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.queue = make(chan claims.AuditEntry, f.bufferSize)

	for i := 0; i < f.workers; i++ {
		f.wg.Add(1)
		go f.run()
	}
	return f
}

// Publish queues an entry for delivery without blocking. Entries that cannot
// be queued go straight to the failed list.
func (f *Forwarder) Publish(entry claims.AuditEntry) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		f.fail(entry, ErrSinkClosed)
		return
	}

	select {
	case f.queue <- entry:
	default:
		f.fail(entry, errors.New("audit queue full"))
	}
}

// Failed returns the entries whose delivery failed, oldest first.
func (f *Forwarder) Failed() []claims.AuditEntry {
	f.failedMu.Lock()
	defer f.failedMu.Unlock()

	result := make([]claims.AuditEntry, len(f.failed))
	copy(result, f.failed)
	return result
}

// Retry redelivers failed entries synchronously and returns how many are
// still failing.
func (f *Forwarder) Retry(ctx context.Context) (int, error) {
	f.failedMu.Lock()
	pending := f.failed
	f.failed = nil
	f.failedMu.Unlock()

	var errs []error
	for _, entry := range pending {
		if err := ctx.Err(); err != nil {
			f.fail(entry, err)
			continue
		}
		if err := f.write(ctx, entry); err != nil {
			errs = append(errs, err)
			f.fail(entry, err)
		}
	}

	f.failedMu.Lock()
	remaining := len(f.failed)
	f.failedMu.Unlock()
	return remaining, errors.Join(errs...)
}

// Close stops accepting entries, drains the queue and waits for the workers.
func (f *Forwarder) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	close(f.queue)
	f.mu.Unlock()

	f.wg.Wait()
}

func (f *Forwarder) run() {
	defer f.wg.Done()
	for entry := range f.queue {
		if err := f.write(context.Background(), entry); err != nil {
			f.fail(entry, err)
		}
	}
}

func (f *Forwarder) write(ctx context.Context, entry claims.AuditEntry) error {
	if f.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.writeTimeout)
		defer cancel()
	}
	return f.sink.Write(ctx, entry)
}

func (f *Forwarder) fail(entry claims.AuditEntry, err error) {
	f.logger.Warn("audit forwarding failed",
		"sink", f.sink.Name(),
		"entry_id", entry.ID,
		"claim_id", entry.ClaimID,
		"error", err,
	)
	f.failedMu.Lock()
	f.failed = append(f.failed, entry)
	f.failedMu.Unlock()
}
