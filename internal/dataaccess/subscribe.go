package dataaccess

import (
	"context"
	"sync"
	"time"

	"localmart/internal/backend"
	"localmart/utils"
)

// Subscribe installs a live subscription for the given query shape. At most
// one live subscription exists per (collection, filters) key; installing a
// second tears down the first. Every snapshot is written into the query cache
// and delivered to onUpdate in arrival order. A listener error is reported to
// onError and followed by a reconnection attempt with identical parameters
// after a fixed delay, indefinitely. The returned stop function is idempotent
// and immediately ends callback delivery.
func (s *Store) Subscribe(ctx context.Context, collection string, filters []backend.Filter, sortSpec backend.Sort, limit int, onUpdate func([]backend.Document), onError func(error)) (stop func()) {
	key := queryKey(collection, filters)
	sub := &subscription{
		store: s,
		key:   key,
		query: backend.Query{
			Collection: collection,
			Filters:    pruneFilters(filters),
			Sort:       sortSpec,
			Limit:      limit,
		},
		onUpdate: onUpdate,
		onError:  onError,
		done:     make(chan struct{}),
	}

	s.mu.Lock()
	if prev, ok := s.subs[key]; ok {
		prev.cancel()
	}
	s.subs[key] = sub
	s.mu.Unlock()

	go sub.connect(ctx)

	return func() {
		s.mu.Lock()
		if s.subs[sub.key] == sub {
			delete(s.subs, sub.key)
		}
		s.mu.Unlock()
		sub.cancel()
	}
}

// subscription is one live query binding. It moves between connecting,
// active and reconnect-scheduled until cancelled by its owner.
type subscription struct {
	store    *Store
	key      string
	query    backend.Query
	onUpdate func([]backend.Document)
	onError  func(error)

	mu       sync.Mutex
	listener backend.Listener
	timer    *time.Timer
	stopped  bool
	done     chan struct{}
}

func (sub *subscription) connect(ctx context.Context) {
	listener, err := sub.store.docs.Watch(ctx, sub.query)
	if err != nil {
		sub.fail(ctx, err)
		return
	}

	sub.mu.Lock()
	if sub.stopped {
		sub.mu.Unlock()
		listener.Stop()
		return
	}
	sub.listener = listener
	sub.mu.Unlock()

	for {
		select {
		case <-sub.done:
			return
		case snap, ok := <-listener.Snapshots():
			if !ok {
				return
			}
			sub.store.queryCache.Set(sub.key, Page{Items: snap}, sub.store.snapshotTTL)
			sub.onUpdate(snap)
		case err, ok := <-listener.Errors():
			if !ok {
				return
			}
			sub.fail(ctx, err)
			return
		}
	}
}

// fail reports the error and schedules one reconnection attempt. The retry is
// unconditional and indefinite; the fixed delay carries no backoff and no
// ceiling.
func (sub *subscription) fail(ctx context.Context, err error) {
	sub.onError(err)

	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.stopped {
		return
	}
	if sub.listener != nil {
		sub.listener.Stop()
		sub.listener = nil
	}
	utils.Warn("subscription error, reconnect scheduled", map[string]any{
		"collection": sub.query.Collection,
		"delay":      sub.store.reconnectDelay.String(),
		"error":      err.Error(),
	})
	sub.timer = time.AfterFunc(sub.store.reconnectDelay, func() { sub.connect(ctx) })
}

// cancel ends the subscription. Idempotent; safe to call from the disposer
// and from a replacement with the same key.
func (sub *subscription) cancel() {
	sub.mu.Lock()
	if sub.stopped {
		sub.mu.Unlock()
		return
	}
	sub.stopped = true
	if sub.timer != nil {
		sub.timer.Stop()
	}
	listener := sub.listener
	close(sub.done)
	sub.mu.Unlock()

	if listener != nil {
		listener.Stop()
	}
}
