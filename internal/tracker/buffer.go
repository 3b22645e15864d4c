package tracker

import "backend-presence/internal/session"

// sampleBuffer accumulates samples for the open session until the batch
// threshold is reached. It is guarded by the coordinator's mutex.
type sampleBuffer struct {
	limit   int
	samples []session.Sample
}

func newSampleBuffer(limit int) *sampleBuffer {
	return &sampleBuffer{limit: limit}
}

// append adds a sample and reports whether the buffer reached its threshold.
func (b *sampleBuffer) append(smp session.Sample) bool {
	b.samples = append(b.samples, smp)
	return len(b.samples) >= b.limit
}

// take returns the buffered samples and leaves the buffer empty.
func (b *sampleBuffer) take() []session.Sample {
	batch := b.samples
	b.samples = nil
	return batch
}

func (b *sampleBuffer) len() int {
	return len(b.samples)
}
