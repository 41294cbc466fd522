package mixer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agalue/sonora"
	"github.com/agalue/sonora/mixer"
)

func TestMixerSumsActiveSources(t *testing.T) {
	m, handle := mixer.New(sonora.SampleRate48000, sonora.ChannelMono)

	a, err := sonora.NewPlayer([]sonora.Sample{0.1, 0.2, 0.3}, sonora.ChannelMono, sonora.SampleRate48000)
	require.NoError(t, err)
	b, err := sonora.NewPlayer([]sonora.Sample{0.4, 0.5, 0.6}, sonora.ChannelMono, sonora.SampleRate48000)
	require.NoError(t, err)

	_, err = handle.Add(a)
	require.NoError(t, err)
	_, err = handle.Add(b)
	require.NoError(t, err)

	out := make([]sonora.Sample, 3)
	require.Eventually(t, func() bool {
		m.WriteSamples(out)
		return out[0] != 0
	}, time.Second, time.Millisecond)

	assert.InDelta(t, 0.5, out[0], 0.0001)
	assert.InDelta(t, 0.7, out[1], 0.0001)
	assert.InDelta(t, 0.9, out[2], 0.0001)
}

func TestMixerNeverRunsDry(t *testing.T) {
	m, _ := mixer.New(sonora.SampleRate48000, sonora.ChannelStereo)

	out := make([]sonora.Sample, 8)
	n := m.WriteSamples(out)
	assert.Equal(t, 8, n)
	for _, s := range out {
		assert.Equal(t, sonora.Sample(0), s)
	}
}

func TestMixerDropsSourcesAtEndOfStream(t *testing.T) {
	m, handle := mixer.New(sonora.SampleRate48000, sonora.ChannelMono)

	a, err := sonora.NewPlayer([]sonora.Sample{1, 1}, sonora.ChannelMono, sonora.SampleRate48000)
	require.NoError(t, err)
	sound, err := handle.Add(a)
	require.NoError(t, err)

	out := make([]sonora.Sample, 2)
	require.Eventually(t, func() bool {
		m.WriteSamples(out)
		return !sound.IsRunning()
	}, time.Second, time.Millisecond, "source never reported finished")
}

func TestMixerCloseRejectsFurtherAdds(t *testing.T) {
	m, handle := mixer.New(sonora.SampleRate48000, sonora.ChannelMono)
	m.Close()

	a, err := sonora.NewPlayer([]sonora.Sample{1}, sonora.ChannelMono, sonora.SampleRate48000)
	require.NoError(t, err)

	_, err = handle.Add(a)
	assert.ErrorIs(t, err, mixer.ErrMixerClosed)
}

func TestMixerSoundHandleStop(t *testing.T) {
	m, handle := mixer.New(sonora.SampleRate48000, sonora.ChannelMono)

	a, err := sonora.NewPlayer(make([]sonora.Sample, 10_000), sonora.ChannelMono, sonora.SampleRate48000)
	require.NoError(t, err)
	sound, err := handle.Add(a)
	require.NoError(t, err)

	out := make([]sonora.Sample, 16)
	m.WriteSamples(out) // let the Mixer pick the source up from its channel
	sound.Stop()

	require.Eventually(t, func() bool {
		m.WriteSamples(out)
		return !sound.IsRunning()
	}, time.Second, time.Millisecond)
}
