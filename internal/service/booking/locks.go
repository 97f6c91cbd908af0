package booking

import (
	"context"
	"sync"
)

// trainLocks serializes seat mutations per train inside one process.
type trainLocks struct {
	mu    sync.Mutex
	locks map[int64]chan struct{}
}

func newTrainLocks() *trainLocks {
	return &trainLocks{locks: make(map[int64]chan struct{})}
}

func (l *trainLocks) acquire(ctx context.Context, trainID int64) (func(), error) {
	l.mu.Lock()
	ch, ok := l.locks[trainID]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[trainID] = ch
	}
	l.mu.Unlock()

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
