package sonora_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agalue/sonora"
)

func TestCycleLoopsOverUpstream(t *testing.T) {
	p, err := sonora.NewPlayer([]sonora.Sample{1, 2, 3}, sonora.ChannelMono, sonora.SampleRate48000)
	require.NoError(t, err)

	c := sonora.NewCycle(p)
	out := make([]sonora.Sample, 7)
	n := c.WriteSamples(out)

	assert.Equal(t, 7, n)
	assert.Equal(t, []sonora.Sample{1, 2, 3, 1, 2, 3, 1}, out)
}

func TestCycleGivesUpOnEmptySource(t *testing.T) {
	p, err := sonora.NewPlayer(nil, sonora.ChannelMono, sonora.SampleRate48000)
	require.NoError(t, err)

	c := sonora.NewCycle(p)
	out := make([]sonora.Sample, 4)
	n := c.WriteSamples(out)

	assert.Equal(t, 0, n)
}
