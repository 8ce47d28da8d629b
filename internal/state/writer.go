package state

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/raphaelgruber/pokerub/internal/store"
)

// writeTimeout bounds a single store call made by the writer.
const writeTimeout = 5 * time.Second

type writeOp struct {
	key    string
	value  []byte
	remove bool
}

// writer applies store writes on its own goroutine. Pending writes are
// coalesced per key, so only the latest value of a key is written and
// enqueue never waits on the store. Failures are logged and dropped.
type writer struct {
	kv     store.KV
	logger *slog.Logger
	wake   chan struct{}
	wg     sync.WaitGroup

	mu       sync.Mutex
	pending  map[string]writeOp
	order    []string // pending keys in first-enqueued order
	barriers []chan struct{}
	closed   bool
}

func newWriter(kv store.KV, logger *slog.Logger) *writer {
	w := &writer{
		kv:      kv,
		logger:  logger,
		wake:    make(chan struct{}, 1),
		pending: make(map[string]writeOp),
	}
	w.wg.Add(1)
	go w.run()
	return w
}

func (w *writer) run() {
	defer w.wg.Done()
	for range w.wake {
		ops, barriers, closed := w.take()
		for _, op := range ops {
			w.apply(op)
		}
		for _, done := range barriers {
			close(done)
		}
		if closed {
			return
		}
	}
}

// take empties the pending set.
func (w *writer) take() ([]writeOp, []chan struct{}, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ops := make([]writeOp, 0, len(w.order))
	for _, key := range w.order {
		ops = append(ops, w.pending[key])
	}
	barriers := w.barriers
	w.pending = make(map[string]writeOp)
	w.order = nil
	w.barriers = nil
	return ops, barriers, w.closed
}

func (w *writer) apply(op writeOp) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if op.remove {
		if err := w.kv.Remove(ctx, op.key); err != nil {
			w.logger.Error("failed to remove persisted key", "key", op.key, "error", err)
		}
		return
	}
	if err := w.kv.Set(ctx, op.key, op.value); err != nil {
		w.logger.Error("failed to persist key", "key", op.key, "bytes", len(op.value), "error", err)
	}
}

// signal wakes the writer without blocking.
func (w *writer) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// enqueue replaces any pending write for op.key. Ops arriving after close
// are dropped.
func (w *writer) enqueue(op writeOp) bool {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.logger.Warn("write dropped after close", "key", op.key)
		return false
	}
	if _, ok := w.pending[op.key]; !ok {
		w.order = append(w.order, op.key)
	}
	w.pending[op.key] = op
	w.mu.Unlock()

	w.signal()
	return true
}

// flush waits until every op enqueued before the call has been applied.
func (w *writer) flush(ctx context.Context) error {
	done := make(chan struct{})
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.barriers = append(w.barriers, done)
	w.mu.Unlock()
	w.signal()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close applies pending ops and stops the goroutine.
func (w *writer) close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()

	w.signal()
	w.wg.Wait()
}
