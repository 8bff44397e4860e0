package parallel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrWorkerPanic wraps the value recovered from a panicking worker.
var ErrWorkerPanic = errors.New("parallel: worker panic")

// RowFunc computes raster row y of the state captured in snap into dst.
// dst holds exactly snap.Size.W RGBA pixels and must be fully written.
// It runs without the buffer lock and must not retain dst.
type RowFunc func(dst []byte, y int, snap *Snapshot)

// WorkerPool runs a fixed number of goroutines that claim, compute and
// commit rows of a Buffer.
//
// Worker loop:
//
//	claim   (lock)    exit on shutdown, park while every row is claimed,
//	                  otherwise take a ticket and snapshot the state
//	compute (no lock) render the row into a worker-local slice
//	commit  (lock)    write it if the snapshot is still current, else drop it
//
// A worker that panics ends the session: the panic is turned into an error
// wrapping ErrWorkerPanic, the buffer is shut down so the remaining workers
// exit, and Wait returns the error.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	buf     *Buffer
	render  RowFunc
	workers int
	log     *slog.Logger

	startOnce sync.Once
	group     *errgroup.Group
	stop      func() bool

	errMu sync.Mutex
	err   error
}

// NewWorkerPool creates a pool over buf. If workers is 0 or negative,
// GOMAXPROCS is used. The pool does nothing until Start.
func NewWorkerPool(buf *Buffer, workers int, render RowFunc, log *slog.Logger) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &WorkerPool{
		buf:     buf,
		render:  render,
		workers: workers,
		log:     log,
	}
}

// Start launches the workers. Cancelling ctx shuts the buffer down.
// Calls after the first are no-ops.
func (p *WorkerPool) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		g, gctx := errgroup.WithContext(ctx)
		p.group = g
		p.stop = context.AfterFunc(gctx, p.buf.Shutdown)

		for id := range p.workers {
			g.Go(func() error {
				return p.worker(id)
			})
		}
		p.log.Debug("parallel: workers started", "workers", p.workers)
	})
}

// worker is the main loop of one worker goroutine.
func (p *WorkerPool) worker(id int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: worker %d: %v", ErrWorkerPanic, id, r)
			p.log.Error("parallel: worker failed", "worker", id, "err", err)
			p.fail(err)
		}
	}()

	var row []byte
	for {
		y, snap, ok := p.buf.claim()
		if !ok {
			return nil
		}

		n := snap.Size.Pitch()
		if cap(row) < n {
			row = make([]byte, n)
		}
		row = row[:n]

		p.render(row, y, &snap)
		p.buf.commit(y, &snap, row)
	}
}

func (p *WorkerPool) fail(err error) {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	if p.err == nil {
		p.err = err
	}
}

// Err returns the first worker failure without blocking, or nil.
func (p *WorkerPool) Err() error {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	return p.err
}

// Wait blocks until every worker has exited and returns the first failure.
// Wait returns nil if the pool was never started.
func (p *WorkerPool) Wait() error {
	if p.group == nil {
		return nil
	}
	err := p.group.Wait()
	p.stop()
	return err
}

// Close shuts the buffer down and joins the workers.
func (p *WorkerPool) Close() error {
	p.buf.Shutdown()
	err := p.Wait()
	p.log.Debug("parallel: workers stopped", "err", err)
	return err
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}
