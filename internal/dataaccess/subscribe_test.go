package dataaccess

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"localmart/internal/backend"
	"localmart/internal/marketerrors"
)

// fakeListener is a scriptable backend.Listener.
type fakeListener struct {
	snaps   chan []backend.Document
	errs    chan error
	once    sync.Once
	stopped chan struct{}
}

func newFakeListener() *fakeListener {
	return &fakeListener{
		snaps:   make(chan []backend.Document, 1),
		errs:    make(chan error, 1),
		stopped: make(chan struct{}),
	}
}

func (l *fakeListener) Snapshots() <-chan []backend.Document { return l.snaps }
func (l *fakeListener) Errors() <-chan error                 { return l.errs }
func (l *fakeListener) Stop() {
	l.once.Do(func() { close(l.stopped) })
}

func collectUpdates() (func([]backend.Document), func() [][]backend.Document) {
	var mu sync.Mutex
	var got [][]backend.Document
	onUpdate := func(snap []backend.Document) {
		mu.Lock()
		got = append(got, snap)
		mu.Unlock()
	}
	read := func() [][]backend.Document {
		mu.Lock()
		defer mu.Unlock()
		return append([][]backend.Document(nil), got...)
	}
	return onUpdate, read
}

func TestSubscribeDeliversSnapshotsAndCachesThem(t *testing.T) {
	store, docs, _, _ := newTestStore(t)
	listener := newFakeListener()

	docs.EXPECT().
		Watch(gomock.Any(), gomock.Any()).
		Return(listener, nil)

	onUpdate, updates := collectUpdates()
	stop := store.Subscribe(context.Background(), testCollection, nil, backend.Sort{Field: "createdAt", Desc: true}, 50, onUpdate, func(error) {})
	defer stop()

	listener.snaps <- docsWithIDs("a", "b")

	require.Eventually(t, func() bool {
		return len(updates()) == 1
	}, time.Second, 5*time.Millisecond)
	require.Len(t, updates()[0], 2)

	// The snapshot doubles as the cached first page for the same query shape.
	page, err := store.QueryPage(context.Background(), testCollection, nil, backend.Sort{}, 20, "", true)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
}

func TestSubscribeReconnectsWithSameParamsAfterFixedDelay(t *testing.T) {
	delay := 40 * time.Millisecond
	store, docs, _, _ := newTestStore(t, WithReconnectDelay(delay))

	first := newFakeListener()
	second := newFakeListener()

	var mu sync.Mutex
	var queries []backend.Query
	var watchTimes []time.Time
	recordWatch := func(q backend.Query) {
		mu.Lock()
		queries = append(queries, q)
		watchTimes = append(watchTimes, time.Now())
		mu.Unlock()
	}

	gomock.InOrder(
		docs.EXPECT().
			Watch(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, q backend.Query) (backend.Listener, error) {
				recordWatch(q)
				return first, nil
			}),
		docs.EXPECT().
			Watch(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, q backend.Query) (backend.Listener, error) {
				recordWatch(q)
				return second, nil
			}),
	)

	var errMu sync.Mutex
	var gotErrs []error
	filters := []backend.Filter{{Field: "category", Op: backend.OpEqual, Value: "Books"}}
	stop := store.Subscribe(context.Background(), testCollection, filters, backend.Sort{Field: "createdAt", Desc: true}, 50,
		func([]backend.Document) {},
		func(err error) {
			errMu.Lock()
			gotErrs = append(gotErrs, err)
			errMu.Unlock()
		})
	defer stop()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(watchTimes) == 1
	}, time.Second, 5*time.Millisecond)

	first.errs <- marketerrors.ErrTransport

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(watchTimes) == 2
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	elapsed := watchTimes[1].Sub(watchTimes[0])
	require.GreaterOrEqual(t, elapsed, delay)
	// The retry repeats the original query untouched.
	require.Equal(t, queries[0], queries[1])
	mu.Unlock()

	errMu.Lock()
	require.Len(t, gotErrs, 1)
	require.ErrorIs(t, gotErrs[0], marketerrors.ErrTransport)
	errMu.Unlock()
}

func TestSubscribeStopCancelsPendingReconnect(t *testing.T) {
	store, docs, _, _ := newTestStore(t, WithReconnectDelay(30*time.Millisecond))
	listener := newFakeListener()

	// Exactly one Watch; a stop during the reconnect window ends the retry.
	docs.EXPECT().
		Watch(gomock.Any(), gomock.Any()).
		Return(listener, nil).
		Times(1)

	errSeen := make(chan struct{})
	stop := store.Subscribe(context.Background(), testCollection, nil, backend.Sort{}, 0,
		func([]backend.Document) {},
		func(error) { close(errSeen) })

	listener.errs <- marketerrors.ErrTransport
	<-errSeen

	stop()
	time.Sleep(80 * time.Millisecond)

	// Stop is idempotent.
	stop()
}

func TestSubscribeStopEndsDelivery(t *testing.T) {
	store, docs, _, _ := newTestStore(t)
	listener := newFakeListener()

	docs.EXPECT().
		Watch(gomock.Any(), gomock.Any()).
		Return(listener, nil)

	onUpdate, updates := collectUpdates()
	stop := store.Subscribe(context.Background(), testCollection, nil, backend.Sort{}, 0, onUpdate, func(error) {})

	listener.snaps <- docsWithIDs("a")
	require.Eventually(t, func() bool {
		return len(updates()) == 1
	}, time.Second, 5*time.Millisecond)

	stop()

	select {
	case <-listener.stopped:
	case <-time.After(time.Second):
		t.Fatal("listener was not stopped")
	}

	// A snapshot arriving after stop is dropped.
	select {
	case listener.snaps <- docsWithIDs("a", "b"):
	default:
	}
	time.Sleep(30 * time.Millisecond)
	require.Len(t, updates(), 1)
}

func TestSubscribeReplacesExistingKey(t *testing.T) {
	store, docs, _, _ := newTestStore(t)
	first := newFakeListener()
	second := newFakeListener()

	firstWatched := make(chan struct{})
	gomock.InOrder(
		docs.EXPECT().
			Watch(gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, backend.Query) (backend.Listener, error) {
				close(firstWatched)
				return first, nil
			}),
		docs.EXPECT().Watch(gomock.Any(), gomock.Any()).Return(second, nil),
	)

	stop1 := store.Subscribe(context.Background(), testCollection, nil, backend.Sort{}, 0, func([]backend.Document) {}, func(error) {})
	defer stop1()

	select {
	case <-firstWatched:
	case <-time.After(time.Second):
		t.Fatal("first subscription never connected")
	}

	// Same collection and filters: the second subscription evicts the first.
	stop2 := store.Subscribe(context.Background(), testCollection, nil, backend.Sort{}, 0, func([]backend.Document) {}, func(error) {})
	defer stop2()

	select {
	case <-first.stopped:
	case <-time.After(time.Second):
		t.Fatal("first listener was not stopped on replacement")
	}
}
