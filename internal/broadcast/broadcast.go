// Package broadcast fans a reply out to every registered user on the outbound dispatcher.
package broadcast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/capitanshop/shopbot/core/logger"
	"github.com/capitanshop/shopbot/core/telegram/sender"
	"github.com/capitanshop/shopbot/internal/chat"
)

// Recipients lists the users a broadcast goes to.
type Recipients interface {
	All(ctx context.Context) ([]int64, error)
}

// Queue runs delivery jobs; *sender.Dispatcher satisfies it.
type Queue interface {
	Enqueue(ctx context.Context, job sender.Job) error
	Do(ctx context.Context, job sender.Job) error
}

// Summary counts per-recipient outcomes.
type Summary struct {
	Recipients int
	Sent       int
	Failed     int
}

// Delivery tracks one running broadcast.
type Delivery struct {
	wg     sync.WaitGroup
	total  int
	sent   atomic.Int64
	failed atomic.Int64
}

// Wait blocks until every recipient has been attempted or ctx ends, then
// returns the counts seen so far.
func (d *Delivery) Wait(ctx context.Context) Summary {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
	return d.Summary()
}

// Summary returns the current counts without waiting.
func (d *Delivery) Summary() Summary {
	return Summary{Recipients: d.total, Sent: int(d.sent.Load()), Failed: int(d.failed.Load())}
}

type Broadcaster struct {
	users  Recipients
	sender chat.Sender
	queue  Queue
}

func New(users Recipients, s chat.Sender, q Queue) *Broadcaster {
	return &Broadcaster{users: users, sender: s, queue: q}
}

// Broadcast schedules reply for every registered user and returns without
// waiting for deliveries. A failed recipient never stops the others. When the
// queue is saturated the delivery runs on the calling goroutine.
func (b *Broadcaster) Broadcast(ctx context.Context, action string, reply chat.Reply) (*Delivery, error) {
	ids, err := b.users.All(ctx)
	if err != nil {
		logger.LogEvent(ctx, logger.SVCBroadcast, slog.LevelError, "broadcast.recipients",
			slog.String("status", "fail"),
			slog.String("action", action),
			logger.Err(err),
		)
		return nil, fmt.Errorf("broadcast: list recipients: %w", err)
	}

	jobCtx := context.WithoutCancel(ctx)
	start := time.Now()
	d := &Delivery{total: len(ids)}
	d.wg.Add(len(ids))
	for _, id := range ids {
		id := id
		job := sender.Job{
			Action: action,
			ChatID: id,
			Run: func(ctx context.Context) error {
				return b.sender.SendTo(ctx, id, reply)
			},
			Done: func(err error) {
				defer d.wg.Done()
				if err != nil {
					d.failed.Add(1)
					logger.LogEvent(jobCtx, logger.SVCBroadcast, slog.LevelWarn, "broadcast.recipient",
						slog.String("status", "fail"),
						slog.String("action", action),
						slog.Int64("recipient", id),
						logger.Err(err),
					)
					return
				}
				d.sent.Add(1)
			},
		}
		err := b.queue.Enqueue(jobCtx, job)
		switch {
		case err == nil:
		case errors.Is(err, sender.ErrQueueFull):
			// Do reports the result through job.Done as well.
			_ = b.queue.Do(jobCtx, job)
		default:
			job.Done(err)
		}
	}

	go func() {
		d.wg.Wait()
		s := d.Summary()
		status := "ok"
		if s.Failed > 0 {
			status = "fail"
		}
		logger.LogEvent(jobCtx, logger.SVCBroadcast, slog.LevelInfo, "broadcast.done",
			slog.String("status", status),
			slog.String("action", action),
			slog.Int("recipients", s.Recipients),
			slog.Int("sent", s.Sent),
			slog.Int("failed", s.Failed),
			slog.Duration("duration", logger.Took(start)),
		)
	}()
	return d, nil
}
