package sonora

// Cycle wraps a Source and loops it indefinitely: whenever the upstream
// Source reaches end-of-stream, Cycle resets it and keeps filling the
// remainder of the output buffer.
//
// Cycle is not necessarily infinite: if the wrapped Source still
// produces 0 samples immediately after a reset, Cycle gives up and
// returns whatever it had accumulated, behaving as a finite Source from
// then on. This guards against ever looping forever on an empty Source.
type Cycle struct {
	source Source
}

// NewCycle wraps source so that it restarts from the beginning every
// time it reaches end-of-stream.
func NewCycle(source Source) *Cycle {
	return &Cycle{source: source}
}

// ChannelCount returns the wrapped Source's channel count.
func (c *Cycle) ChannelCount() ChannelCount { return c.source.ChannelCount() }

// SampleRate returns the wrapped Source's sample rate.
func (c *Cycle) SampleRate() SampleRate { return c.source.SampleRate() }

// WriteSamples delegates to the upstream Source, resetting and
// continuing to fill from the short-read point whenever the upstream
// signals end-of-stream.
func (c *Cycle) WriteSamples(out []Sample) int {
	written := c.source.WriteSamples(out)
	for written != len(out) {
		c.source.Reset()
		n := c.source.WriteSamples(out[written:])
		if n == 0 {
			return written
		}
		written += n
	}
	return len(out)
}

// Reset rewinds the wrapped Source.
func (c *Cycle) Reset() { c.source.Reset() }
