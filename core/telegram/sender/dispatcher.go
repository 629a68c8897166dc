// Package sender runs outbound Telegram deliveries on a bounded worker pool.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/capitanshop/shopbot/core/logger"
	"github.com/capitanshop/shopbot/core/telegram/netutil"
)

var (
	// ErrQueueClosed is returned when enqueue is attempted after dispatcher stop.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull indicates the queue is saturated and the job was not accepted.
	ErrQueueFull = errors.New("telegram sender: queue full")
)

// Options controls the behaviour of the outbound dispatcher.
type Options struct {
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent retrying a single job.
	MaxDuration time.Duration
	// PerSecond caps deliveries across all workers; 0 disables pacing.
	PerSecond float64
	Burst     int
}

// Job is one outbound call. Run must be safe to repeat when retries are enabled.
type Job struct {
	Action string
	ChatID int64
	Run    func(ctx context.Context) error
	// Done, when set, receives the final outcome of the job.
	Done func(err error)
}

type queued struct {
	ctx context.Context
	job Job
}

// Dispatcher executes jobs asynchronously with retries and global pacing.
type Dispatcher struct {
	opts    Options
	jobs    chan queued
	limiter *rate.Limiter
	group   *errgroup.Group

	mu     sync.RWMutex
	closed bool
	once   sync.Once

	sent atomic.Uint64
	errs atomic.Uint64
}

// NewDispatcher starts the workers with defaults for zeroed options.
func NewDispatcher(opts Options) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 2 * time.Second
	}
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = 12 * time.Second
	}

	limit := rate.Inf
	if opts.PerSecond > 0 {
		limit = rate.Limit(opts.PerSecond)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}

	d := &Dispatcher{
		opts:    opts,
		jobs:    make(chan queued, opts.QueueSize),
		limiter: rate.NewLimiter(limit, opts.Burst),
		group:   new(errgroup.Group),
	}
	for i := 0; i < opts.Workers; i++ {
		d.group.Go(d.worker)
	}
	return d
}

// Enqueue schedules job without blocking. The context travels with the job
// for logging and cancellation.
func (d *Dispatcher) Enqueue(ctx context.Context, job Job) error {
	if job.Run == nil {
		return errors.New("telegram sender: nil run function")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.jobs <- queued{ctx: ctx, job: job}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Do runs job on the caller's goroutine with the same retry and pacing rules.
func (d *Dispatcher) Do(ctx context.Context, job Job) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return d.execute(ctx, job)
}

// Sent returns the number of jobs that eventually succeeded.
func (d *Dispatcher) Sent() uint64 { return d.sent.Load() }

// ErrorCount returns the number of failed jobs.
func (d *Dispatcher) ErrorCount() uint64 { return d.errs.Load() }

// Close stops accepting jobs and waits until the queue drains.
func (d *Dispatcher) Close() error {
	var err error
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.jobs)
		d.mu.Unlock()
		err = d.group.Wait()
	})
	return err
}

func (d *Dispatcher) worker() error {
	for q := range d.jobs {
		_ = d.execute(q.ctx, q.job)
	}
	return nil
}

func (d *Dispatcher) execute(ctx context.Context, job Job) error {
	err := d.attempt(ctx, job)
	if err != nil {
		d.errs.Add(1)
	} else {
		d.sent.Add(1)
	}
	if job.Done != nil {
		job.Done(err)
	}
	return err
}

func (d *Dispatcher) attempt(ctx context.Context, job Job) error {
	deadlineCtx, cancel := context.WithTimeout(ctx, d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	attempts := d.opts.MaxRetries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := d.limiter.Wait(deadlineCtx); err != nil {
			lastErr = err
			break
		}
		lastErr = job.Run(deadlineCtx)
		if lastErr == nil {
			attrs := jobAttrs(job, attempt, start)
			logger.LogEvent(ctx, logger.TG, slog.LevelDebug, "send.success", attrs...)
			return nil
		}
		if !netutil.ShouldRetry(lastErr) || attempt == attempts {
			break
		}

		delay := d.opts.RetryBackoff * time.Duration(attempt)
		if wait := netutil.RetryAfter(lastErr); wait > delay {
			delay = wait
		}
		logger.LogEvent(ctx, logger.TG, slog.LevelDebug, "send.retry.backoff",
			append(jobAttrs(job, attempt, start), slog.Duration("delay", delay))...)
		timer := time.NewTimer(delay)
		select {
		case <-deadlineCtx.Done():
			timer.Stop()
			lastErr = deadlineCtx.Err()
			attempt = attempts
		case <-timer.C:
		}
	}

	logger.LogEvent(ctx, logger.TG, slog.LevelError, "send.fail",
		append(jobAttrs(job, attempts, start),
			slog.String("status", "fail"),
			slog.String("err", SanitizeError(lastErr)),
			slog.String("error_kind", ClassifyError(lastErr)),
		)...)
	return lastErr
}

func jobAttrs(job Job, attempt int, start time.Time) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("component", "tg.sender"),
		slog.String("action", job.Action),
		slog.Int("attempts", attempt),
		slog.Duration("elapsed", logger.Took(start)),
	}
	if job.ChatID != 0 {
		attrs = append(attrs, slog.Int64("recipient", job.ChatID))
	}
	return attrs
}
