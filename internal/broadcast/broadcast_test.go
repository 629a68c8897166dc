package broadcast

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitanshop/shopbot/core/telegram/sender"
	"github.com/capitanshop/shopbot/internal/chat"
)

type fakeUsers struct {
	ids []int64
	err error
}

func (f fakeUsers) All(context.Context) ([]int64, error) { return f.ids, f.err }

type recordingSender struct {
	mu      sync.Mutex
	got     []int64
	failFor map[int64]bool
}

func (r *recordingSender) SendTo(_ context.Context, id int64, _ chat.Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, id)
	if r.failFor[id] {
		return errors.New("bot was blocked by the user")
	}
	return nil
}

func (r *recordingSender) recipients() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.got...)
}

func newDispatcher(t *testing.T, queue int) *sender.Dispatcher {
	d := sender.NewDispatcher(sender.Options{QueueSize: queue, Workers: 2, RetryBackoff: time.Millisecond})
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestBroadcastContinuesAfterFailedRecipient(t *testing.T) {
	s := &recordingSender{failFor: map[int64]bool{2: true}}
	b := New(fakeUsers{ids: []int64{1, 2, 3}}, s, newDispatcher(t, 16))

	d, err := b.Broadcast(context.Background(), "announce_product", chat.Reply{Text: "new"})
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sum := d.Wait(ctx)

	assert.Equal(t, Summary{Recipients: 3, Sent: 2, Failed: 1}, sum)
	assert.ElementsMatch(t, []int64{1, 2, 3}, s.recipients())
}

func TestBroadcastRecipientListFailure(t *testing.T) {
	s := &recordingSender{}
	b := New(fakeUsers{err: errors.New("db down")}, s, newDispatcher(t, 4))

	d, err := b.Broadcast(context.Background(), "announce_product", chat.Reply{Text: "new"})
	assert.Error(t, err)
	assert.Nil(t, d)
	assert.Empty(t, s.recipients())
}

func TestBroadcastAfterCloseCountsFailures(t *testing.T) {
	disp := sender.NewDispatcher(sender.Options{QueueSize: 1, Workers: 1})
	require.NoError(t, disp.Close())
	s := &recordingSender{}
	b := New(fakeUsers{ids: []int64{1, 2}}, s, disp)

	d, err := b.Broadcast(context.Background(), "announce_product", chat.Reply{Text: "new"})
	require.NoError(t, err)
	assert.Equal(t, Summary{Recipients: 2, Failed: 2}, d.Wait(context.Background()))
	assert.Empty(t, s.recipients())
}

type fullQueue struct{ inline int }

func (q *fullQueue) Enqueue(context.Context, sender.Job) error { return sender.ErrQueueFull }

func (q *fullQueue) Do(ctx context.Context, job sender.Job) error {
	q.inline++
	err := job.Run(ctx)
	job.Done(err)
	return err
}

func TestBroadcastRunsInlineWhenQueueFull(t *testing.T) {
	q := &fullQueue{}
	s := &recordingSender{}
	b := New(fakeUsers{ids: []int64{4, 5}}, s, q)

	d, err := b.Broadcast(context.Background(), "announce_product", chat.Reply{Text: "new"})
	require.NoError(t, err)
	assert.Equal(t, Summary{Recipients: 2, Sent: 2}, d.Wait(context.Background()))
	assert.Equal(t, 2, q.inline)
	assert.Equal(t, []int64{4, 5}, s.recipients())
}
