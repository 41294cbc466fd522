// Package mixer provides a simple additive Source mixer that Sources
// can be added to dynamically while it is already playing.
package mixer

import (
	"errors"
	"sync/atomic"

	"github.com/agalue/sonora"
)

// initCapacity is the starting capacity of the mixer's active-source
// slice, sized to avoid a reallocation for small scenes.
const initCapacity = 16

// ErrMixerClosed is returned by Handle.Add once the Mixer it is
// attached to has been closed.
var ErrMixerClosed = errors.New("mixer: closed")

// Mixer is an additive Source: every active input is summed
// sample-by-sample into its output buffer. Construct one with New,
// which also returns the Handle used to feed it Sources.
//
// Mixer never changes the channel count or sample rate of the Sources
// it plays; all inputs must already share the Mixer's own rate and
// channel count, or be adapted first with resample.Resampler /
// sonora.Rechanneler.
type Mixer struct {
	channels   sonora.ChannelCount
	sampleRate sonora.SampleRate

	sources []playing
	scratch []sonora.Sample

	add    chan playing
	closed *atomic.Bool
}

type playing struct {
	source sonora.Source
	info   *soundInfo
}

// soundInfo is the shared state between a SoundHandle and the Mixer
// loop that owns the underlying Source.
type soundInfo struct {
	running atomic.Bool
	stop    atomic.Bool
}

// New constructs a Mixer fixed to the given output rate and channel
// count, plus the Handle used to add Sources to it.
func New(sampleRate sonora.SampleRate, channels sonora.ChannelCount) (*Mixer, *Handle) {
	closed := &atomic.Bool{}
	m := &Mixer{
		channels:   channels,
		sampleRate: sampleRate,
		sources:    make([]playing, 0, initCapacity),
		add:        make(chan playing, initCapacity),
		closed:     closed,
	}
	return m, &Handle{add: m.add, closed: closed}
}

// Close marks the Mixer as no longer accepting new Sources; every
// subsequent Handle.Add call returns ErrMixerClosed. Sources already
// attached keep playing until they reach end-of-stream or are stopped.
func (m *Mixer) Close() {
	m.closed.Store(true)
}

// ChannelCount returns the channel count fixed at construction.
func (m *Mixer) ChannelCount() sonora.ChannelCount { return m.channels }

// SampleRate returns the sample rate fixed at construction.
func (m *Mixer) SampleRate() sonora.SampleRate { return m.sampleRate }

// WriteSamples sums every active source into out and always reports
// out as fully written: the Mixer itself never runs dry, even with no
// sources attached, since a mix bus is expected to stay open for the
// lifetime of an output stream.
func (m *Mixer) WriteSamples(out []sonora.Sample) int {
	for i := range out {
		out[i] = 0
	}

	for {
		select {
		case p := <-m.add:
			m.sources = append(m.sources, p)
			continue
		default:
		}
		break
	}

	if cap(m.scratch) < len(out) {
		m.scratch = make([]sonora.Sample, len(out))
	}
	scratch := m.scratch[:len(out)]

	kept := m.sources[:0]
	for _, p := range m.sources {
		if p.info.stop.Load() {
			p.info.running.Store(false)
			continue
		}

		count := p.source.WriteSamples(scratch)
		for i := 0; i < count; i++ {
			out[i] += scratch[i]
		}

		running := count == len(scratch)
		p.info.running.Store(running)
		if running {
			kept = append(kept, p)
		}
	}
	m.sources = kept

	return len(out)
}

// Reset has no observable effect: a Mixer's lifetime is defined by its
// attached Sources coming and going through its Handle, not by
// restarting the bus itself.
func (m *Mixer) Reset() {}

// Handle is returned from New and used to add Sources to the Mixer it
// is permanently associated with.
type Handle struct {
	add    chan playing
	closed *atomic.Bool
}

// Add attaches source to the Mixer, to be played until it reports
// end-of-stream, at which point the Mixer discards it. The returned
// SoundHandle can be used to stop it early or poll whether it is still
// running. Add returns ErrMixerClosed if the Mixer has been closed.
func (h *Handle) Add(source sonora.Source) (*SoundHandle, error) {
	if h.closed.Load() {
		return nil, ErrMixerClosed
	}

	info := &soundInfo{}
	info.running.Store(true)

	h.add <- playing{source: source, info: info}
	return &SoundHandle{info: info}, nil
}

// SoundHandle observes and controls one Source previously attached to
// a Mixer via Handle.Add.
type SoundHandle struct {
	info *soundInfo
}

// IsRunning reports whether the Mixer is still playing this sound:
// false from the WriteSamples call in which the Mixer sees it reach
// end-of-stream, or the first WriteSamples call after Stop.
func (s *SoundHandle) IsRunning() bool { return s.info.running.Load() }

// Stop signals the Mixer to discard this sound on its next
// WriteSamples call, even if it has not reached end-of-stream.
func (s *SoundHandle) Stop() { s.info.stop.Store(true) }
