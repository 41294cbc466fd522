// Package sonora provides a modular, real-time audio playback pipeline.
//
// A graph is built by composing Source implementations: leaves that
// produce samples (Player, wav.Decoder) and stages that transform an
// upstream Source (Cycle, Rechanneler, resample.Resampler, mixer.Mixer,
// buffer.Buffer). The root of the graph is handed to an
// output.OutputStream, which pulls from it on the audio device's own
// callback thread.
package sonora

import "fmt"

// Sample is one 32-bit IEEE float PCM sample, nominally in [-1.0, +1.0]
// but not clamped.
type Sample = float32

// ChannelCount is the number of interleaved channels a Source produces.
// It must never be zero. NewPlayer returns an error rather than
// panicking if it is; NewRechanneler and mixer.New do not check the
// count they are given.
type ChannelCount uint16

// SampleRate is a sample rate in Hz. It must never be zero.
type SampleRate uint32

// Common channel counts.
const (
	ChannelMono   ChannelCount = 1
	ChannelStereo ChannelCount = 2
)

// Common sample rates, including DSD multiples.
const (
	SampleRate8000    SampleRate = 8000
	SampleRate11025   SampleRate = 11025
	SampleRate16000   SampleRate = 16000
	SampleRate22050   SampleRate = 22050
	SampleRate32000   SampleRate = 32000
	SampleRate37800   SampleRate = 37800
	SampleRate44056   SampleRate = 44056
	SampleRate44100   SampleRate = 44100
	SampleRate47250   SampleRate = 47250
	SampleRate48000   SampleRate = 48000
	SampleRate50000   SampleRate = 50000
	SampleRate50400   SampleRate = 50400
	SampleRate88200   SampleRate = 88200
	SampleRate96000   SampleRate = 96000
	SampleRate176400  SampleRate = 176400
	SampleRate192000  SampleRate = 192000
	SampleRate352800  SampleRate = 352800
	SampleRate2822400 SampleRate = 2822400
	SampleRate5644800 SampleRate = 5644800
)

// ErrInvalidChannelCount is returned by NewPlayer when asked to build a
// Source with a zero channel count.
var ErrInvalidChannelCount = fmt.Errorf("sonora: channel count must be non-zero")

// ErrInvalidSampleRate is returned by NewPlayer when asked to build a
// Source with a zero sample rate.
var ErrInvalidSampleRate = fmt.Errorf("sonora: sample rate must be non-zero")

// Source is the contract every node in the pipeline honours.
//
// WriteSamples writes up to len(out) samples starting at index 0 and
// returns the number written. A return value n < len(out) signals
// end-of-stream; every subsequent call must return 0 and write nothing
// until Reset is called. Samples are written contiguously from the
// start of out; out[n:] is left untouched and must not be assumed to be
// zeroed by the caller.
//
// ChannelCount and SampleRate must return the same value across the
// lifetime of a Source. Violating that invariant is undefined behaviour
// for every downstream node.
//
// Reset rewinds the Source to its start or to some other well-defined
// default state. It must be idempotent, but is not required to make the
// Source reproduce identical samples afterwards (a synthesizer may
// legitimately diverge). Sources with no meaningful notion of rewinding
// (e.g. mixer.Mixer) implement it as a no-op.
type Source interface {
	WriteSamples(out []Sample) int
	ChannelCount() ChannelCount
	SampleRate() SampleRate
	Reset()
}
