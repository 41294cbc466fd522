package sonora

// Rechanneler adapts an upstream Source's channel count to a different
// target channel count.
//
// Mixing strategy, deliberately naive and deterministic:
//   - if the source and target channel counts match, this is a pure
//     pass-through.
//   - otherwise, each input frame (one sample per source channel) is
//     averaged to a single value, which is then written to every
//     channel of the corresponding output frame.
//
// A real surround downmix would use per-channel coefficients; this
// mandates the well-defined mean policy instead, for determinism.
type Rechanneler struct {
	source  Source
	from    ChannelCount
	to      ChannelCount
	scratch []Sample
}

// NewRechanneler wraps source, converting its output to the given
// target channel count.
func NewRechanneler(source Source, to ChannelCount) *Rechanneler {
	return &Rechanneler{source: source, from: source.ChannelCount(), to: to}
}

// ChannelCount returns the target channel count.
func (r *Rechanneler) ChannelCount() ChannelCount { return r.to }

// SampleRate returns the wrapped Source's sample rate (unchanged).
func (r *Rechanneler) SampleRate() SampleRate { return r.source.SampleRate() }

// WriteSamples fills out with rechanneled samples. See Rechanneler for
// the mixing policy.
func (r *Rechanneler) WriteSamples(out []Sample) int {
	if r.from == r.to {
		return r.source.WriteSamples(out)
	}

	from := int(r.from)
	to := int(r.to)

	needed := len(out) * from / to
	if cap(r.scratch) < needed {
		r.scratch = make([]Sample, needed)
	} else {
		r.scratch = r.scratch[:needed]
	}

	written := r.source.WriteSamples(r.scratch)
	frames := written / from

	for f := 0; f < frames; f++ {
		inFrame := r.scratch[f*from : f*from+from]
		var sum Sample
		for _, s := range inFrame {
			sum += s
		}
		mean := sum / Sample(from)

		outFrame := out[f*to : f*to+to]
		for i := range outFrame {
			outFrame[i] = mean
		}
	}

	return frames * to
}

// Reset rewinds the wrapped Source.
func (r *Rechanneler) Reset() { r.source.Reset() }
