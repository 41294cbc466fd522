package sonora_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agalue/sonora"
)

func TestRechannelerPassthroughWhenUnchanged(t *testing.T) {
	p, err := sonora.NewPlayer([]sonora.Sample{1, 2, 3}, sonora.ChannelStereo, sonora.SampleRate48000)
	require.NoError(t, err)

	r := sonora.NewRechanneler(p, sonora.ChannelStereo)
	out := make([]sonora.Sample, 3)
	n := r.WriteSamples(out)

	assert.Equal(t, 3, n)
	assert.Equal(t, []sonora.Sample{1, 2, 3}, out)
}

func TestRechannelerStereoToMonoAverages(t *testing.T) {
	// Two stereo frames: (1, 3) and (5, 7) -> mono means 2 and 6.
	p, err := sonora.NewPlayer([]sonora.Sample{1, 3, 5, 7}, sonora.ChannelStereo, sonora.SampleRate48000)
	require.NoError(t, err)

	r := sonora.NewRechanneler(p, sonora.ChannelMono)
	out := make([]sonora.Sample, 2)
	n := r.WriteSamples(out)

	assert.Equal(t, 2, n)
	assert.Equal(t, []sonora.Sample{2, 6}, out)
}

func TestRechannelerMonoToStereoBroadcasts(t *testing.T) {
	p, err := sonora.NewPlayer([]sonora.Sample{1, 2}, sonora.ChannelMono, sonora.SampleRate48000)
	require.NoError(t, err)

	r := sonora.NewRechanneler(p, sonora.ChannelStereo)
	out := make([]sonora.Sample, 4)
	n := r.WriteSamples(out)

	assert.Equal(t, 4, n)
	assert.Equal(t, []sonora.Sample{1, 1, 2, 2}, out)
}
