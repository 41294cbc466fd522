// Command sonora-play plays a WAV file through the default output
// device, resampling and rechanneling it to match the device if
// necessary.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/agalue/sonora"
	"github.com/agalue/sonora/buffer"
	"github.com/agalue/sonora/output"
	"github.com/agalue/sonora/resample"
	"github.com/agalue/sonora/wav"
)

// config holds all configuration for sonora-play. Populated from CLI
// flags or defaults.
type config struct {
	path       string
	api        string
	loop       bool
	bufferSize int
	listAPIs   bool
}

func defaultConfig() *config {
	return &config{
		api:        "",
		bufferSize: buffer.DefaultCapacity,
	}
}

func parseFlags() (*config, error) {
	cfg := defaultConfig()

	flag.StringVar(&cfg.path, "file", cfg.path, "Path to a WAV file to play")
	flag.StringVar(&cfg.api, "api", cfg.api, "Native backend to use, by its exact -list-apis name (e.g. ALSA, PulseAudio, Core Audio, WASAPI); empty auto-selects")
	flag.BoolVar(&cfg.loop, "loop", cfg.loop, "Loop playback indefinitely")
	flag.IntVar(&cfg.bufferSize, "buffer-size", cfg.bufferSize, "Internal ring buffer size in samples")
	flag.BoolVar(&cfg.listAPIs, "list-apis", cfg.listAPIs, "List known native backend names and exit")
	flag.Parse()

	if !cfg.listAPIs && cfg.path == "" {
		return nil, fmt.Errorf("-file is required")
	}
	return cfg, nil
}

func apiByName(name string) (output.Api, bool) {
	for _, api := range output.AvailableAPIs() {
		if api.String() == name {
			return api, true
		}
	}
	return 0, false
}

func main() {
	cfg, err := parseFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	if cfg.listAPIs {
		for _, api := range output.AvailableAPIs() {
			fmt.Println(api)
		}
		return
	}

	if err := run(cfg); err != nil {
		log.Fatalf("🔇 %v", err)
	}
}

func run(cfg *config) error {
	data, err := os.ReadFile(cfg.path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", cfg.path, err)
	}

	decoder, err := wav.Decode(data)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", cfg.path, err)
	}
	log.Printf("🎵 %s: %d Hz, %d channel(s), %d samples", cfg.path, decoder.SampleRate(), decoder.ChannelCount(), decoder.Length())

	var source sonora.Source = decoder
	if cfg.loop {
		source = sonora.NewCycle(source)
	}

	api := output.APIAuto
	if cfg.api != "" {
		found, ok := apiByName(cfg.api)
		if !ok {
			return fmt.Errorf("unknown api %q", cfg.api)
		}
		api = found
	}

	session, err := output.NewSession(api)
	if err != nil {
		return fmt.Errorf("opening session: %w", err)
	}
	defer session.Close()
	log.Printf("🔊 Using backend: %s", session.Api())

	device, err := session.DefaultOutputDevice()
	if err != nil {
		return fmt.Errorf("finding output device: %w", err)
	}
	log.Printf("🔈 Output device: %s (%d Hz, %d channel(s))", device.Name(), device.SampleRate(), device.ChannelCount())

	if source.SampleRate() != device.SampleRate() {
		source = resample.NewResampler(source, device.SampleRate())
	}
	if source.ChannelCount() != device.ChannelCount() {
		source = sonora.NewRechanneler(source, device.ChannelCount())
	}
	source = buffer.NewWithCapacity(source, cfg.bufferSize)

	stream, err := session.OpenOutputStream(device, source)
	if err != nil {
		return fmt.Errorf("opening output stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Play(); err != nil {
		return fmt.Errorf("starting playback: %w", err)
	}

	frameMs := float64(decoder.Length()) / float64(decoder.ChannelCount()) / float64(decoder.SampleRate()) * 1000
	wait := time.Duration(frameMs) * time.Millisecond
	if cfg.loop || wait <= 0 {
		select {} // run until killed
	}
	time.Sleep(wait + 500*time.Millisecond)
	return nil
}
