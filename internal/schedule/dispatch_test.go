package schedule

import (
	"sync/atomic"
	"testing"
)

func TestRunParallel_PreservesOrder(t *testing.T) {
	items := []int{10, 20, 30, 40, 50}

	results := RunParallel(2, items, func(_ int, item int) int {
		return item * 2
	})

	want := []int{20, 40, 60, 80, 100}
	for i := range want {
		if results[i] != want[i] {
			t.Errorf("results[%d] = %d, want %d", i, results[i], want[i])
		}
	}
}

func TestRunParallel_RespectsWorkerCap(t *testing.T) {
	const workers = 3

	var (
		active    atomic.Int32
		maxActive atomic.Int32
	)

	items := make([]int, 50)

	RunParallel(workers, items, func(_ int, _ int) int {
		n := active.Add(1)
		defer active.Add(-1)

		for {
			cur := maxActive.Load()
			if n <= cur || maxActive.CompareAndSwap(cur, n) {
				break
			}
		}

		return 0
	})

	if got := maxActive.Load(); got > int32(workers) {
		t.Fatalf("max concurrent callbacks = %d, want <= %d", got, workers)
	}
}

func TestRunParallel_EmptyInput(t *testing.T) {
	results := RunParallel(4, []int{}, func(_ int, _ int) int { return 1 })
	if len(results) != 0 {
		t.Fatalf("RunParallel on empty input returned %d results, want 0", len(results))
	}
}

func TestRunParallel_ZeroWorkersTreatedAsOne(t *testing.T) {
	results := RunParallel(0, []int{1, 2, 3}, func(_ int, item int) int { return item })
	if len(results) != 3 {
		t.Fatalf("RunParallel(0, ...) returned %d results, want 3", len(results))
	}
}
