package matchmaker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mcoot/matchmaker/internal/lock"
	"github.com/mcoot/matchmaker/internal/model"
)

// recordingLocker counts calls through to a real locker
type recordingLocker struct {
	inner    lock.Locker
	tryErr   error
	tries    atomic.Int32
	releases atomic.Int32

	releaseCtxErr error
}

func (l *recordingLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	l.tries.Add(1)
	if l.tryErr != nil {
		return false, l.tryErr
	}
	return l.inner.TryLock(ctx, key, ttl)
}

func (l *recordingLocker) Release(ctx context.Context, key string) error {
	l.releases.Add(1)
	l.releaseCtxErr = ctx.Err()
	return l.inner.Release(ctx, key)
}

// countingQueue records every call made against the queue
type countingQueue struct {
	inner Queue
	calls atomic.Int32
}

func (q *countingQueue) Length(ctx context.Context, mode model.Mode) (int64, error) {
	q.calls.Add(1)
	return q.inner.Length(ctx, mode)
}

func (q *countingQueue) PopTwo(ctx context.Context, mode model.Mode) (string, string, error) {
	q.calls.Add(1)
	return q.inner.PopTwo(ctx, mode)
}

// stubQueue returns canned results
type stubQueue struct {
	length   int64
	lenErr   error
	one, two string
	popErr   error
}

func (q *stubQueue) Length(context.Context, model.Mode) (int64, error) {
	return q.length, q.lenErr
}

func (q *stubQueue) PopTwo(context.Context, model.Mode) (string, string, error) {
	return q.one, q.two, q.popErr
}

// cancellingQueue cancels the attempt's context from inside the critical section
type cancellingQueue struct {
	cancel context.CancelFunc
}

func (q *cancellingQueue) Length(ctx context.Context, _ model.Mode) (int64, error) {
	q.cancel()
	return 0, ctx.Err()
}

func (q *cancellingQueue) PopTwo(context.Context, model.Mode) (string, string, error) {
	return "", "", nil
}

// countingRegistry wraps a registry and can inject failures
type countingRegistry struct {
	inner     SessionRegistry
	createErr error
	saveErr   error
	creates   atomic.Int32
	saves     atomic.Int32
}

func (r *countingRegistry) CreateSession(ctx context.Context, mode model.Mode, roles model.RoleAssignment) (*model.SessionState, error) {
	r.creates.Add(1)
	if r.createErr != nil {
		return nil, r.createErr
	}
	return r.inner.CreateSession(ctx, mode, roles)
}

func (r *countingRegistry) SaveState(ctx context.Context, state *model.SessionState) error {
	r.saves.Add(1)
	if r.saveErr != nil {
		return r.saveErr
	}
	return r.inner.SaveState(ctx, state)
}

// countingNotifier wraps a notifier and can panic on demand
type countingNotifier struct {
	inner Notifier
	panic bool
	calls atomic.Int32
}

func (n *countingNotifier) SendSessionStart(state *model.SessionState) int {
	n.calls.Add(1)
	if n.panic {
		panic("connection table corrupted")
	}
	return n.inner.SendSessionStart(state)
}

// recordingConn captures messages sent to one participant
type recordingConn struct {
	mu       sync.Mutex
	messages [][]byte
}

func (c *recordingConn) Send(message []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, message)
	return nil
}

func (c *recordingConn) Messages() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.messages...)
}

// exclusionTracker is a queue and registry that records how many attempts are
// inside the length-check..session-creation region at once
type exclusionTracker struct {
	active    atomic.Int32
	maxActive atomic.Int32
	nextID    atomic.Int64
}

func (p *exclusionTracker) Length(context.Context, model.Mode) (int64, error) {
	n := p.active.Add(1)
	for {
		m := p.maxActive.Load()
		if n <= m || p.maxActive.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(time.Millisecond)
	return 2, nil
}

func (p *exclusionTracker) PopTwo(context.Context, model.Mode) (string, string, error) {
	return "uuid-a", "uuid-b", nil
}

func (p *exclusionTracker) CreateSession(_ context.Context, _ model.Mode, roles model.RoleAssignment) (*model.SessionState, error) {
	time.Sleep(time.Millisecond)
	return &model.SessionState{SessionID: model.SessionID(p.nextID.Add(1)), FirstID: roles.First, SecondID: roles.Second}, nil
}

func (p *exclusionTracker) SaveState(context.Context, *model.SessionState) error {
	p.active.Add(-1)
	return nil
}
