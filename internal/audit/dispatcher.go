package audit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sink persists audit entries.
type Sink interface {
	Log(ctx context.Context, e Entry) error
}

// Dispatcher writes audit entries off the request path. Entries are dropped,
// never blocked on, when the queue is full.
type Dispatcher struct {
	sink  Sink
	queue chan Entry
	wg    sync.WaitGroup
	once  sync.Once
}

func NewDispatcher(sink Sink) *Dispatcher {
	return NewDispatcherSize(sink, 100)
}

func NewDispatcherSize(sink Sink, size int) *Dispatcher {
	d := &Dispatcher{
		sink:  sink,
		queue: make(chan Entry, size),
	}

	d.wg.Add(1)
	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for e := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := d.sink.Log(ctx, e); err != nil {
			zap.L().Error("audit write failed",
				zap.String("action", e.Action),
				zap.String("table", e.Table),
				zap.Error(err),
			)
		}
		cancel()
	}
}

// Dispatch enqueues e and reports whether it was accepted.
func (d *Dispatcher) Dispatch(e Entry) bool {
	select {
	case d.queue <- e:
		return true
	default:
		zap.L().Warn("audit queue full, dropping event", zap.String("action", e.Action))
		return false
	}
}

// Close drains the queue and stops the worker. Dispatch must not be called afterwards.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}
