package energy

import (
	"sync"
	"testing"
)

func TestChannel_Merge(t *testing.T) {
	c := Channel{SumWeighted: 1, SumUnweighted: 2, PeakAbs: 0.5, NSamples: 10}
	c.Merge(Channel{SumWeighted: 3, SumUnweighted: 4, PeakAbs: 0.9, NSamples: 5})

	if c.SumWeighted != 4 || c.SumUnweighted != 6 || c.NSamples != 15 {
		t.Fatalf("Merge() = %+v, want SumWeighted=4 SumUnweighted=6 NSamples=15", c)
	}

	if c.PeakAbs != 0.9 {
		t.Errorf("Merge() PeakAbs = %v, want 0.9 (larger delta peak)", c.PeakAbs)
	}
}

func TestChannel_Merge_PeakNeverDecreases(t *testing.T) {
	c := Channel{PeakAbs: 0.8}
	c.Merge(Channel{PeakAbs: 0.2})

	if c.PeakAbs != 0.8 {
		t.Errorf("Merge() with smaller delta peak = %v, want 0.8 (unchanged)", c.PeakAbs)
	}
}

func TestGlobal_AddAndSnapshot(t *testing.T) {
	g := NewGlobal(2)

	g.Add([]Channel{
		{SumWeighted: 1, SumUnweighted: 1, NSamples: 100},
		{SumWeighted: 2, SumUnweighted: 2, NSamples: 100},
	})
	g.Add([]Channel{
		{SumWeighted: 3, SumUnweighted: 3, NSamples: 50},
		{SumWeighted: 4, SumUnweighted: 4, NSamples: 50},
	})

	csum, sum, nMono, perChannel := g.Snapshot()

	if csum != 10 {
		t.Errorf("CSum = %v, want 10", csum)
	}

	if sum != 10 {
		t.Errorf("Sum = %v, want 10", sum)
	}

	if nMono != 300 {
		t.Errorf("NMonoSamples = %v, want 300", nMono)
	}

	if perChannel[0].SumWeighted != 4 || perChannel[1].SumWeighted != 6 {
		t.Errorf("PerChannel = %+v, want [SumWeighted=4, SumWeighted=6]", perChannel)
	}
}

// TestGlobal_AddIsOrderIndependent commits the same set of deltas from many
// goroutines in an unpredictable order and checks the aggregate is identical
// either way, since Merge is commutative and Add is the only write path.
func TestGlobal_AddIsOrderIndependent(t *testing.T) {
	g := NewGlobal(1)

	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			g.Add([]Channel{{SumWeighted: 1, SumUnweighted: 1, NSamples: 1}})
		}()
	}

	wg.Wait()

	csum, _, nMono, _ := g.Snapshot()

	if csum != 100 || nMono != 100 {
		t.Fatalf("after 100 concurrent Adds: csum=%v nMono=%v, want 100/100", csum, nMono)
	}
}

func TestGlobal_SnapshotIsACopy(t *testing.T) {
	g := NewGlobal(1)
	g.Add([]Channel{{SumWeighted: 1, NSamples: 1}})

	_, _, _, perChannel := g.Snapshot()
	perChannel[0].SumWeighted = 999

	_, _, _, again := g.Snapshot()
	if again[0].SumWeighted == 999 {
		t.Fatal("Snapshot() returned a slice that aliases internal state")
	}
}
