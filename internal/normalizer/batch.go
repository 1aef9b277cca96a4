package normalizer

// Default batch thresholds from spec §4.1: "batch sizes >= 64 for sentences
// and >= 256 for short surfaces/keywords."
const (
	DefaultSentenceBatchSize = 64
	DefaultSurfaceBatchSize  = 256
)

// Batch accumulates raw text inputs and flushes them together once a
// threshold is reached, amortizing the tagger's one-time setup (wordlist
// lookups, irregular-table construction) the way a GPU-backed parser would
// amortize a forward pass across a pipe-style batch.
type Batch struct {
	threshold int
	pending   []string
	process   func([]string) error
}

// newBatch constructs a Batch that calls process once pending reaches
// threshold, or on an explicit Flush.
func newBatch(threshold int, process func([]string) error) *Batch {
	if threshold <= 0 {
		threshold = DefaultSentenceBatchSize
	}
	return &Batch{threshold: threshold, process: process}
}

// Add appends text to the batch, flushing automatically once the
// threshold is reached.
func (b *Batch) Add(text string) error {
	b.pending = append(b.pending, text)
	if len(b.pending) >= b.threshold {
		return b.Flush()
	}
	return nil
}

// Flush processes whatever is pending, even if below threshold.
func (b *Batch) Flush() error {
	if len(b.pending) == 0 {
		return nil
	}
	pending := b.pending
	b.pending = nil
	return b.process(pending)
}
