package buffer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agalue/sonora"
	"github.com/agalue/sonora/buffer"
)

func TestBufferDeliversAllSamplesThenEOS(t *testing.T) {
	samples := make([]sonora.Sample, 500)
	for i := range samples {
		samples[i] = sonora.Sample(i)
	}

	p, err := sonora.NewPlayer(samples, sonora.ChannelMono, sonora.SampleRate48000)
	require.NoError(t, err)

	b := buffer.NewWithCapacity(p, 64)

	got := make([]sonora.Sample, 0, 500)
	out := make([]sonora.Sample, 37) // deliberately not a divisor of 500
	deadline := time.After(5 * time.Second)
	for len(got) < 500 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for buffer to deliver all samples")
		default:
		}
		n := b.WriteSamples(out)
		got = append(got, out[:n]...)
		if n == 0 {
			break
		}
	}

	assert.Equal(t, samples, got)
	assert.Equal(t, 0, b.WriteSamples(out))
}

func TestBufferCloseUnblocksReader(t *testing.T) {
	p, err := sonora.NewPlayer(make([]sonora.Sample, 1_000_000), sonora.ChannelMono, sonora.SampleRate48000)
	require.NoError(t, err)

	b := buffer.NewWithCapacity(p, 64)
	b.Close()

	done := make(chan struct{})
	go func() {
		out := make([]sonora.Sample, 1024)
		for {
			if b.WriteSamples(out) == 0 {
				close(done)
				return
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not unblock the reader")
	}
}
