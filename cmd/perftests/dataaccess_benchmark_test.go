package perftests

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"localmart/internal/backend"
	"localmart/internal/dataaccess"
	"localmart/internal/pending"
)

const benchCollection = "artifacts/bench/public/data/sell_items"

func seedDoc(i int) backend.Document {
	return backend.Document{
		"name":           fmt.Sprintf("item_%d", i),
		"description":    "benchmark listing",
		"category":       "Electronics",
		"price":          float64(10 + i%500),
		"status":         "available",
		"whatsappNumber": "+38640111222",
		"images":         []any{"https://blobs.localmart.dev/images/bench/item.jpg"},
		"userId":         fmt.Sprintf("user_%d", i%50),
	}
}

func setupStore(b *testing.B, numDocs int) (*dataaccess.Store, *backend.MemoryStore) {
	b.Helper()
	mem := backend.NewMemoryStore()
	for i := 0; i < numDocs; i++ {
		mem.AddDocument(benchCollection, fmt.Sprintf("doc_%d", i), seedDoc(i))
	}

	plog, err := pending.Open(":memory:")
	if err != nil {
		b.Fatalf("failed to open pending log: %v", err)
	}
	b.Cleanup(func() { plog.Close() })

	store := dataaccess.New(mem, mem, plog)
	b.Cleanup(store.Close)
	return store, mem
}

// Benchmark 1: QueryPage - Warm Cache (repeated identical first-page reads)
func Benchmark_QueryPage_WarmCache(b *testing.B) {
	store, _ := setupStore(b, 1000)
	ctx := context.Background()
	sortSpec := backend.Sort{Field: "price", Desc: true}

	// Prime the cache once.
	if _, err := store.QueryPage(ctx, benchCollection, nil, sortSpec, 20, "", true); err != nil {
		b.Fatalf("failed to prime cache: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := store.QueryPage(ctx, benchCollection, nil, sortSpec, 20, "", true); err != nil {
			b.Fatalf("query failed: %v", err)
		}
	}
}

// Benchmark 2: QueryPage - Cold (cache bypassed, full backend evaluation)
func Benchmark_QueryPage_Cold(b *testing.B) {
	store, _ := setupStore(b, 1000)
	ctx := context.Background()
	sortSpec := backend.Sort{Field: "price", Desc: true}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := store.QueryPage(ctx, benchCollection, nil, sortSpec, 20, "", false); err != nil {
			b.Fatalf("query failed: %v", err)
		}
	}
}

// Benchmark 3: GetByIDs - chunked fetch of 25 ids, warm vs cold document cache
func Benchmark_GetByIDs_Cold(b *testing.B) {
	ctx := context.Background()
	ids := make([]string, 25)
	for i := range ids {
		ids[i] = fmt.Sprintf("doc_%d", i)
	}

	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		b.StopTimer()
		store, _ := setupStore(b, 100)
		b.StartTimer()

		if _, err := store.GetByIDs(ctx, benchCollection, ids); err != nil {
			b.Fatalf("fetch failed: %v", err)
		}
	}
}

func Benchmark_GetByIDs_WarmCache(b *testing.B) {
	store, _ := setupStore(b, 100)
	ctx := context.Background()
	ids := make([]string, 25)
	for i := range ids {
		ids[i] = fmt.Sprintf("doc_%d", i)
	}

	if _, err := store.GetByIDs(ctx, benchCollection, ids); err != nil {
		b.Fatalf("failed to prime cache: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := store.GetByIDs(ctx, benchCollection, ids); err != nil {
			b.Fatalf("fetch failed: %v", err)
		}
	}
}

// Benchmark 4: Update - Concurrent optimistic patches against a shared document
func Benchmark_Update_ConcurrentSharedDoc(b *testing.B) {
	store, _ := setupStore(b, 10)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()

	var version int64

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			v := atomic.AddInt64(&version, 1)
			patch := backend.Document{"price": float64(v % 1000)}
			if err := store.Update(ctx, benchCollection, "doc_0", patch); err != nil {
				b.Fatalf("update failed: %v", err)
			}
		}
	})
}

// Benchmark 5: Mixed workload (cached readers plus invalidating writers)
func Benchmark_MixedWorkload(b *testing.B) {
	store, _ := setupStore(b, 500)
	ctx := context.Background()
	sortSpec := backend.Sort{Field: "createdAt", Desc: true}

	b.ReportAllocs()
	b.ResetTimer()

	var counter int64

	// Ratio: 80% readers, 20% writers
	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			if rnd.Intn(10) < 8 {
				if _, err := store.QueryPage(ctx, benchCollection, nil, sortSpec, 20, "", true); err != nil {
					b.Fatalf("query failed: %v", err)
				}
			} else {
				id := fmt.Sprintf("doc_%d", rnd.Intn(500))
				patch := backend.Document{"price": float64(rnd.Intn(1000))}
				if err := store.Update(ctx, benchCollection, id, patch); err != nil {
					b.Fatalf("update failed: %v", err)
				}
			}
			atomic.AddInt64(&counter, 1)
		}
	})
}
