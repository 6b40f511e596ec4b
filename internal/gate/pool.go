// Package gate implements the gating engine: the pool that gated
// workers append provisional block loudness into, and the absolute/relative/
// level/dialogue gating passes that reduce it to a final LKFS.
package gate

import "sync"

// Record is one gated block's provisional contribution: its start frame, its
// K-weighted mean-square power, and the speech probability an external
// classifier assigned it (1.0 when no classifier is wired in).
type Record struct {
	StartFrame int64
	MeanSquare float64
	SpeechProb float64
}

// Pool is the append-only gating pool: gated workers append records from
// multiple goroutines during processing; the Gating Engine reads it only
// after the end-of-stream barrier, so the single mutex guarding appends never
// contends with a reader. Constructed only when LKFS or dialogue modes are
// active.
type Pool struct {
	mu      sync.Mutex
	records []Record
}

// NewPool allocates an empty GatingPool sized for an expected block count.
func NewPool(expectedBlocks int) *Pool {
	return &Pool{records: make([]Record, 0, expectedBlocks)}
}

// Append adds one gated block's record to the pool.
func (p *Pool) Append(r Record) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.records = append(p.records, r)
}

// Snapshot returns the pool's records ordered by start frame, safe to read
// after the processing barrier.
func (p *Pool) Snapshot() []Record {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Record, len(p.records))
	copy(out, p.records)

	sortByStartFrame(out)

	return out
}

func sortByStartFrame(records []Record) {
	// Insertion sort: gating pools are bounded by stream duration / hop size
	// (seconds, not millions of entries), and appends arrive nearly sorted
	// since each worker's partition emits in stream order.
	for i := 1; i < len(records); i++ {
		j := i
		for j > 0 && records[j-1].StartFrame > records[j].StartFrame {
			records[j-1], records[j] = records[j], records[j-1]
			j--
		}
	}
}
