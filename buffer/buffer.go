// Package buffer adds threaded ring-buffering in front of any
// sonora.Source, decoupling a slow or blocking upstream (decoding,
// network, disk) from the real-time pull that reads it.
package buffer

import (
	"sync"

	"github.com/agalue/sonora"
)

// DefaultCapacity is the ring buffer size used by New. At 48000 Hz
// stereo this induces a 50ms filter delay; doubling the capacity
// doubles the delay. For a delay independent of the device's actual
// rate and channel count, size the buffer explicitly with
// NewWithCapacity(source, int(rate)*int(channels)/20).
const DefaultCapacity = 4800

// Buffer wraps a Source with a background goroutine that keeps a ring
// buffer topped up, so that WriteSamples calls on the consuming side
// never block on the wrapped Source's own latency.
type Buffer struct {
	channels sonora.ChannelCount
	rate     sonora.SampleRate

	mu   sync.Mutex
	cond *sync.Cond

	data             []sonora.Sample
	index, len       int
	samplesRemaining int
	hasRemaining     bool
	dropped          bool
}

// New wraps source with a ring buffer of DefaultCapacity samples and
// starts the filling goroutine.
func New(source sonora.Source) *Buffer {
	return NewWithCapacity(source, DefaultCapacity)
}

// NewWithCapacity wraps source with a ring buffer of the given sample
// capacity (shared across all channels) and starts the filling
// goroutine. Capacity cannot be changed after construction.
func NewWithCapacity(source sonora.Source, capacity int) *Buffer {
	b := &Buffer{
		channels: source.ChannelCount(),
		rate:     source.SampleRate(),
		data:     make([]sonora.Sample, capacity),
	}
	b.cond = sync.NewCond(&b.mu)

	go b.fill(source, capacity)

	return b
}

// fill runs on a dedicated goroutine for the lifetime of the Buffer,
// topping up the ring buffer from source whenever WriteSamples has
// drained it, and exiting once source itself has run dry or the
// Buffer has been closed.
func (b *Buffer) fill(source sonora.Source, capacity int) {
	back := make([]sonora.Sample, capacity)

	b.mu.Lock()
	defer b.mu.Unlock()

	for {
		for b.len >= len(b.data) {
			b.cond.Wait()
			if b.dropped {
				return
			}
		}
		if b.dropped {
			return
		}

		samplesMissing := len(b.data) - b.len
		back = back[:samplesMissing]

		b.mu.Unlock()
		written := source.WriteSamples(back)
		b.mu.Lock()

		if b.dropped {
			return
		}

		if written < samplesMissing {
			back = back[:written]
			b.samplesRemaining = b.len + written
			b.hasRemaining = true
		}

		writeIndex := (b.index + b.len) % len(b.data)
		n := copy(b.data[writeIndex:], back)
		if n < len(back) {
			copy(b.data, back[n:])
		}
		b.len = len(b.data)

		if b.hasRemaining {
			return
		}
	}
}

// ChannelCount returns the wrapped Source's channel count.
func (b *Buffer) ChannelCount() sonora.ChannelCount { return b.channels }

// SampleRate returns the wrapped Source's sample rate.
func (b *Buffer) SampleRate() sonora.SampleRate { return b.rate }

// WriteSamples reads from the ring buffer, blocking until either out
// is fully satisfied or the wrapped Source has permanently run dry.
func (b *Buffer) WriteSamples(out []sonora.Sample) int {
	total := 0

	for len(out) > 0 {
		b.mu.Lock()

		remaining := out
		if b.hasRemaining {
			n := len(remaining)
			if b.samplesRemaining < n {
				n = b.samplesRemaining
			}
			b.samplesRemaining -= n
			remaining = remaining[:n]
		}

		if len(remaining) == 0 {
			b.mu.Unlock()
			return total
		}

		if b.len >= len(remaining) {
			b.writeTo(remaining)
			b.cond.Signal()
			b.mu.Unlock()
			total += len(remaining)
			return total
		}

		n := b.len
		b.writeTo(remaining[:n])
		dropped := b.dropped
		b.cond.Signal()
		b.mu.Unlock()

		total += n
		out = out[len(remaining[:n]):]

		if dropped {
			return total
		}
	}

	return total
}

// writeTo copies output from the ring buffer; callers must hold mu and
// must have already verified enough data is present.
func (b *Buffer) writeTo(output []sonora.Sample) {
	n := copy(output, b.data[b.index:])
	if n < len(output) {
		copy(output[n:], b.data)
	}
	b.index = (b.index + len(output)) % len(b.data)
	b.len -= len(output)
}

// Reset is a no-op: a Buffer's filling goroutine owns the only handle
// to the wrapped Source's read cursor, and rewinding it from the
// consumer side would race the producer. Close and recreate the
// Buffer to restart playback instead.
func (b *Buffer) Reset() {}

// Close signals the filling goroutine to stop and wakes it if it is
// currently waiting. After Close, WriteSamples drains whatever is
// still in the ring buffer and then returns 0 permanently.
func (b *Buffer) Close() {
	b.mu.Lock()
	b.dropped = true
	b.cond.Signal()
	b.mu.Unlock()
}
