package sonora_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agalue/sonora"
)

func TestNewPlayerRejectsZeroChannelCount(t *testing.T) {
	_, err := sonora.NewPlayer([]sonora.Sample{0, 1}, 0, sonora.SampleRate48000)
	require.ErrorIs(t, err, sonora.ErrInvalidChannelCount)
}

func TestNewPlayerRejectsZeroSampleRate(t *testing.T) {
	_, err := sonora.NewPlayer([]sonora.Sample{0, 1}, sonora.ChannelMono, 0)
	require.ErrorIs(t, err, sonora.ErrInvalidSampleRate)
}

func TestPlayerWriteSamplesPassthrough(t *testing.T) {
	samples := []sonora.Sample{0.1, 0.2, 0.3, 0.4, 0.5}
	p, err := sonora.NewPlayer(samples, sonora.ChannelMono, sonora.SampleRate48000)
	require.NoError(t, err)

	out := make([]sonora.Sample, 3)
	n := p.WriteSamples(out)
	assert.Equal(t, 3, n)
	assert.Equal(t, samples[:3], out)

	out = make([]sonora.Sample, 3)
	n = p.WriteSamples(out)
	assert.Equal(t, 2, n)
	assert.Equal(t, samples[3:5], out[:2])

	n = p.WriteSamples(out)
	assert.Equal(t, 0, n)
}

func TestPlayerReset(t *testing.T) {
	samples := []sonora.Sample{1, 2, 3}
	p, err := sonora.NewPlayer(samples, sonora.ChannelMono, sonora.SampleRate44100)
	require.NoError(t, err)

	out := make([]sonora.Sample, 3)
	p.WriteSamples(out)
	assert.Equal(t, 0, p.WriteSamples(out))

	p.Reset()
	n := p.WriteSamples(out)
	assert.Equal(t, 3, n)
	assert.Equal(t, samples, out)
}
