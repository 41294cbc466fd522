// Package resample provides a polyphase, Kaiser-windowed FIR sample
// rate converter usable as a sonora.Source stage wrapping an upstream
// Source.
package resample

import (
	"github.com/agalue/sonora"
)

// Resampler wraps a Source and re-samples its output to a different
// rate using a polyphase FIR built from a windowed-sinc lowpass
// prototype. srcRate/destRate is reduced to lowest terms L/M (L the
// input step, M the output step); the FIR is decomposed into M
// polyphase subfilters so that only one of them is evaluated per
// output sample, regardless of how large L and M are individually.
type Resampler struct {
	source   sonora.Source
	destRate sonora.SampleRate
	channels int

	l, m       int // reduced srcRate/gcd = l (input step), destRate/gcd = m (output step)
	leftOffset int // kaiserValueCount / 2, in per-channel taps

	// kaiserValues[k] holds the taps of polyphase subfilter k, stored in
	// reverse tap order so that a forward walk through the sample window
	// pairs correctly against it.
	kaiserValues [][]float32

	// filter1 and filter2 are a two-buffer scrolling window over the
	// upstream Source, each bufferSize samples (already multiplied by
	// channels). Roles swap every time the window scrolls past filter1.
	filter1, filter2 []sonora.Sample
	bufferSize       int // samples per half, filter1/filter2 each this long
	wholeFilterSize  int // 2 * bufferSize

	inputOffset int // samples discarded from the window so far
	outputCount int // total output samples produced so far

	hasLastSample bool
	lastSample    int // combined-window index where upstream ran dry
}

// NewResampler wraps source, converting its output to destRate.
// Construction eagerly fills both halves of the filter window from source, so
// the first WriteSamples call already has settled history to convolve
// against.
func NewResampler(source sonora.Source, destRate sonora.SampleRate) *Resampler {
	srcRate := uint32(source.SampleRate())
	dstRate := uint32(destRate)

	g := gcdU32(srcRate, dstRate)
	l := int(srcRate / g)
	m := int(dstRate / g)

	downscaleFactor := float64(l)
	if m > l {
		downscaleFactor = float64(m)
	}
	cutoff := 0.475 / downscaleFactor
	transitionWidth := 0.05 / downscaleFactor

	kaiserValueCount := kaiserOrder(transitionWidth) + 1
	leftOffset := kaiserValueCount / 2

	kaiserValues := make([][]float32, m)
	for k := 0; k < m; k++ {
		var taps []float32
		for i := k; i < kaiserValueCount; i += m {
			// Gain m makes each of the m subfilters sum to 1 (unity DC gain).
			taps = append(taps, float32(sincFilter(leftOffset, float64(m), cutoff, i)))
		}
		for i, j := 0, len(taps)-1; i < j; i, j = i+1, j-1 {
			taps[i], taps[j] = taps[j], taps[i]
		}
		kaiserValues[k] = taps
	}

	channels := int(source.ChannelCount())
	bufferSize := ((kaiserValueCount + m + m - 1) / m) * channels

	r := &Resampler{
		source:          source,
		destRate:        destRate,
		channels:        channels,
		l:               l,
		m:               m,
		leftOffset:      leftOffset,
		kaiserValues:    kaiserValues,
		filter1:         make([]sonora.Sample, bufferSize),
		filter2:         make([]sonora.Sample, bufferSize),
		bufferSize:      bufferSize,
		wholeFilterSize: bufferSize * 2,
	}

	n1 := source.WriteSamples(r.filter1)
	if n1 != bufferSize {
		r.hasLastSample = true
		r.lastSample = n1
	} else {
		n2 := source.WriteSamples(r.filter2)
		if n2 != bufferSize {
			r.hasLastSample = true
			r.lastSample = bufferSize + n2
		}
	}

	return r
}

// ChannelCount returns the wrapped Source's channel count, unchanged.
func (r *Resampler) ChannelCount() sonora.ChannelCount { return r.source.ChannelCount() }

// SampleRate returns the destination rate this Resampler converts to.
func (r *Resampler) SampleRate() sonora.SampleRate { return r.destRate }

// Reset rewinds the wrapped Source and re-primes the scrolling window,
// discarding any in-flight filter history.
func (r *Resampler) Reset() {
	r.source.Reset()
	r.inputOffset = 0
	r.outputCount = 0
	r.hasLastSample = false
	r.lastSample = 0

	n1 := r.source.WriteSamples(r.filter1)
	if n1 != r.bufferSize {
		r.hasLastSample = true
		r.lastSample = n1
		return
	}
	n2 := r.source.WriteSamples(r.filter2)
	if n2 != r.bufferSize {
		r.hasLastSample = true
		r.lastSample = r.bufferSize + n2
	}
}

// WriteSamples produces up to len(out) resampled samples. Each output
// sample is computed independently from the current scrolling window:
// the window is scrolled forward (pulling fresh samples from the
// wrapped Source and swapping buffer halves) until it covers the
// needed input position, then the appropriate polyphase subfilter is
// convolved against it.
func (r *Resampler) WriteSamples(out []sonora.Sample) int {
	channels := r.channels

	for i := range out {
		channel := r.outputCount % channels
		start := r.leftOffset + r.l*(r.outputCount/channels)
		kaiserIndex := start % r.m
		inputIndex := start / r.m
		sampleIndex := inputIndex*channels + channel - r.inputOffset

		for sampleIndex >= r.wholeFilterSize && !r.hasLastSample {
			n := r.source.WriteSamples(r.filter1)
			if n != r.bufferSize {
				r.hasLastSample = true
				r.lastSample = r.bufferSize + n
			}
			r.filter1, r.filter2 = r.filter2, r.filter1
			sampleIndex -= r.bufferSize
			r.inputOffset += r.bufferSize
		}

		if r.hasLastSample && sampleIndex+r.leftOffset*channels > r.lastSample {
			return i
		}

		out[i] = r.getSample(r.kaiserValues[kaiserIndex], channels, channel, sampleIndex)
		r.outputCount++
	}

	return len(out)
}

// getSample convolves subfilter kaiserValues against the scrolling
// window at the given sampleIndex (an index into the combined
// filter1++filter2 address space), selecting only samples on channel.
func (r *Resampler) getSample(kaiserValues []float32, channels, channel, sampleIndex int) sonora.Sample {
	klen := len(kaiserValues)

	var filterSkip1, kaiserSkip1 int
	if sampleIndex >= klen*channels {
		filterSkip1 = sampleIndex - klen*channels
		kaiserSkip1 = 0
	} else {
		filterSkip1 = channel
		kaiserSkip1 = klen - (sampleIndex/channels) - 1
	}

	var filterSkip2 int
	if sampleIndex >= klen*channels+r.bufferSize {
		filterSkip2 = sampleIndex - (klen*channels + r.bufferSize)
	} else {
		filterSkip2 = channel
	}

	var output sonora.Sample
	k := kaiserSkip1

	for f1 := filterSkip1; f1 < r.bufferSize && k < klen; f1 += channels {
		output += r.filter1[f1] * sonora.Sample(kaiserValues[k])
		k++
	}
	for f2 := filterSkip2; f2 < r.bufferSize && k < klen; f2 += channels {
		output += r.filter2[f2] * sonora.Sample(kaiserValues[k])
		k++
	}

	return output
}
