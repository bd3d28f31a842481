package ring

import (
	"fmt"
	"sync"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/droidtail/droidtail/internal/record"
)

func numbered(i int) record.Record {
	return record.Record{Message: fmt.Sprintf("msg %d", i)}
}

func TestAppendBelowCapacity(t *testing.T) {
	b := New(5)
	for i := 0; i < 3; i++ {
		b.Append(numbered(i))
	}

	if b.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", b.Len())
	}
	snap := b.Snapshot()
	for i, rec := range snap {
		if rec.Message != fmt.Sprintf("msg %d", i) {
			t.Errorf("snapshot[%d] = %q", i, rec.Message)
		}
	}
}

func TestAppendEvictsOldest(t *testing.T) {
	b := New(3)
	for i := 0; i < 7; i++ {
		b.Append(numbered(i))
	}

	if b.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", b.Len())
	}
	snap := b.Snapshot()
	want := []string{"msg 4", "msg 5", "msg 6"}
	for i, w := range want {
		if snap[i].Message != w {
			t.Errorf("snapshot[%d] = %q, want %q", i, snap[i].Message, w)
		}
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	b := New(4)
	b.Append(numbered(0))

	snap := b.Snapshot()
	snap[0].Message = "mutated"

	if got := b.Snapshot()[0].Message; got != "msg 0" {
		t.Fatalf("buffer contents changed through snapshot: %q", got)
	}
}

func TestDefaultCapacityFallback(t *testing.T) {
	for _, n := range []int{0, -1} {
		if got := New(n).Cap(); got != DefaultCapacity {
			t.Errorf("New(%d).Cap() = %d, want %d", n, got, DefaultCapacity)
		}
	}
}

// After N appends the buffer holds exactly min(N, capacity) records, in
// arrival order, with the first N-capacity evicted.
func TestAppendCountAndOrderProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("min(N, cap) records in arrival order", prop.ForAll(
		func(capacity, n int) bool {
			b := New(capacity)
			for i := 0; i < n; i++ {
				b.Append(numbered(i))
			}

			want := n
			if want > capacity {
				want = capacity
			}
			snap := b.Snapshot()
			if len(snap) != want || b.Len() != want {
				return false
			}
			first := n - want
			for i, rec := range snap {
				if rec.Message != fmt.Sprintf("msg %d", first+i) {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 64),
		gen.IntRange(0, 300),
	))

	properties.TestingRun(t)
}

func TestConcurrentAppendAndSnapshot(t *testing.T) {
	b := New(128)
	done := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			default:
				b.Append(numbered(i))
			}
		}
	}()

	// Readers must always observe a consistent, gap-free window.
	for i := 0; i < 200; i++ {
		snap := b.Snapshot()
		for j := 1; j < len(snap); j++ {
			var prev, cur int
			fmt.Sscanf(snap[j-1].Message, "msg %d", &prev)
			fmt.Sscanf(snap[j].Message, "msg %d", &cur)
			if cur != prev+1 {
				t.Fatalf("snapshot out of order: %q then %q", snap[j-1].Message, snap[j].Message)
			}
		}
	}
	close(done)
	wg.Wait()
}
