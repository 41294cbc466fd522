// Package output provides a native-backend façade on top of
// github.com/gen2brain/malgo (miniaudio bindings) for driving a
// sonora.Source out to real audio hardware.
package output

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gen2brain/malgo"

	"github.com/agalue/sonora"
)

// Errors returned by Session and OutputStream operations.
var (
	// ErrDeviceNotAvailable means the requested Device no longer exists
	// (disabled or unplugged since it was acquired).
	ErrDeviceNotAvailable = errors.New("output: device not available")

	// ErrDeviceNotUsable means the device doesn't support any playback
	// configuration this package can drive.
	ErrDeviceNotUsable = errors.New("output: device not usable")

	// ErrNoOutputDevice means the host reported no output device at all.
	ErrNoOutputDevice = errors.New("output: no output device available")

	// ErrAPINotAvailable means the requested Api is not supported on this
	// platform/build.
	ErrAPINotAvailable = errors.New("output: api not available")

	// ErrUnknown wraps a host error this package doesn't otherwise
	// classify.
	ErrUnknown = errors.New("output: unknown host error")
)

// Api identifies a native backend that a Session can be opened
// against, one-to-one with malgo's ma_backend enum.
type Api malgo.Backend

// Recognised native backends. Not every value is available on every
// platform; NewSession returns ErrAPINotAvailable for one that isn't.
// APIAuto is not a real backend: passing it to NewSession lets
// miniaudio probe the host and pick its own priority-ordered backend,
// which is the right default for most callers.
const APIAuto Api = -1

const (
	APIWASAPI     = Api(malgo.BackendWasapi)
	APIDSound     = Api(malgo.BackendDsound)
	APIWinMM      = Api(malgo.BackendWinmm)
	APICoreAudio  = Api(malgo.BackendCoreaudio)
	APISndio      = Api(malgo.BackendSndio)
	APIAudio4     = Api(malgo.BackendAudio4)
	APIOSS        = Api(malgo.BackendOss)
	APIPulseAudio = Api(malgo.BackendPulseaudio)
	APIAlsa       = Api(malgo.BackendAlsa)
	APIJack       = Api(malgo.BackendJack)
	APIAAudio     = Api(malgo.BackendAaudio)
	APIOpenSL     = Api(malgo.BackendOpensl)
	APIWebAudio   = Api(malgo.BackendWebaudio)
	APICustom     = Api(malgo.BackendCustom)
	APINull       = Api(malgo.BackendNull)
)

// String returns the backend's human-readable name.
func (a Api) String() string {
	switch a {
	case APIAuto:
		return "Auto"
	case APIWASAPI:
		return "WASAPI"
	case APIDSound:
		return "DirectSound"
	case APIWinMM:
		return "WinMM"
	case APICoreAudio:
		return "Core Audio"
	case APISndio:
		return "sndio"
	case APIAudio4:
		return "audio(4)"
	case APIOSS:
		return "OSS"
	case APIPulseAudio:
		return "PulseAudio"
	case APIAlsa:
		return "ALSA"
	case APIJack:
		return "JACK"
	case APIAAudio:
		return "AAudio"
	case APIOpenSL:
		return "OpenSL|ES"
	case APIWebAudio:
		return "Web Audio"
	case APICustom:
		return "Custom"
	case APINull:
		return "Null"
	default:
		return "Unknown"
	}
}

// AvailableAPIs returns every backend this package knows the name of.
// Availability at runtime still depends on the host and how malgo was
// built; NewSession is the authoritative check.
func AvailableAPIs() []Api {
	return []Api{
		APIWASAPI, APIDSound, APIWinMM, APICoreAudio, APISndio, APIAudio4,
		APIOSS, APIPulseAudio, APIAlsa, APIJack, APIAAudio, APIOpenSL,
		APIWebAudio, APICustom, APINull,
	}
}

// Session represents an audio session opened against one native
// backend. Acquire output Devices and OutputStreams from it.
type Session struct {
	ctx *malgo.AllocatedContext
	api Api
}

// NewSession opens a Session against the given Api. Pass APIAuto to
// let miniaudio pick the best backend for the host.
func NewSession(api Api) (*Session, error) {
	var backends []malgo.Backend
	if api != APIAuto {
		backends = []malgo.Backend{malgo.Backend(api)}
	}

	ctx, err := malgo.InitContext(backends, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAPINotAvailable, err)
	}
	return &Session{ctx: ctx, api: api}, nil
}

// Api returns the backend this Session was opened against.
func (s *Session) Api() Api { return s.api }

// Close releases the native backend context. Any Device or
// OutputStream acquired from this Session must not be used afterward.
func (s *Session) Close() error {
	if err := s.ctx.Uninit(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnknown, err)
	}
	return s.ctx.Free()
}

// Device is a handle to one native output device, acquired from a
// Session.
type Device struct {
	info malgo.DeviceInfo
}

// ChannelCount is the device's native output channel count.
func (d *Device) ChannelCount() sonora.ChannelCount {
	return sonora.ChannelCount(d.info.MaxChannels)
}

// SampleRate is the device's native output sample rate.
func (d *Device) SampleRate() sonora.SampleRate {
	return sonora.SampleRate(d.info.MaxSampleRate)
}

// Name is the device's host-reported display name.
func (d *Device) Name() string { return d.info.Name() }

// DefaultOutputDevice returns the host's default playback device, or the
// first playback device listed if none is flagged as the default.
func (s *Session) DefaultOutputDevice() (*Device, error) {
	infos, err := s.ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknown, err)
	}
	if len(infos) == 0 {
		return nil, ErrNoOutputDevice
	}
	for _, info := range infos {
		if info.IsDefault != 0 {
			return &Device{info: info}, nil
		}
	}
	return &Device{info: infos[0]}, nil
}

// OutputDevices lists every playback device the host reports.
func (s *Session) OutputDevices() ([]*Device, error) {
	infos, err := s.ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknown, err)
	}
	devices := make([]*Device, len(infos))
	for i, info := range infos {
		devices[i] = &Device{info: info}
	}
	return devices, nil
}

// OutputStream drives a sonora.Source to a native output device, pulling
// samples from it in the device's real-time callback.
type OutputStream struct {
	device  *malgo.Device
	source  sonora.Source
	scratch []sonora.Sample
}

// OpenOutputStream opens device for playback of source. source's
// channel count and sample rate must already match device (use
// sonora.Rechanneler / resample.Resampler upstream to adapt it); this
// package does not adapt on device's behalf.
func (s *Session) OpenOutputStream(device *Device, source sonora.Source) (*OutputStream, error) {
	if device.info.MaxChannels == 0 {
		return nil, ErrDeviceNotUsable
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatF32
	cfg.Playback.Channels = uint32(source.ChannelCount())
	cfg.SampleRate = uint32(source.SampleRate())
	cfg.Playback.DeviceID = device.info.ID.Pointer()

	stream := &OutputStream{source: source}

	callbacks := malgo.DeviceCallbacks{
		Data: stream.onSendFrames,
	}

	dev, err := malgo.InitDevice(s.ctx.Context, cfg, callbacks)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceNotAvailable, err)
	}
	stream.device = dev

	return stream, nil
}

// onSendFrames is the malgo data callback: it pulls framecount frames
// (across all channels) from source and writes them little-endian
// IEEE-float into the host-provided buffer. Frames past end-of-stream
// are filled with silence, keeping the stream open rather than
// underrunning.
func (o *OutputStream) onSendFrames(outputSamples, _ []byte, framecount uint32) {
	channels := int(o.source.ChannelCount())
	needed := int(framecount) * channels

	if cap(o.scratch) < needed {
		o.scratch = make([]sonora.Sample, needed)
	}
	pull := o.scratch[:needed]

	n := o.source.WriteSamples(pull)
	for i := n; i < needed; i++ {
		pull[i] = 0
	}

	for i, s := range pull {
		binary.LittleEndian.PutUint32(outputSamples[i*4:], math.Float32bits(float32(s)))
	}
}

// Play starts the stream's real-time output callback.
func (o *OutputStream) Play() error {
	if err := o.device.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnknown, err)
	}
	return nil
}

// Close stops playback and releases the device.
func (o *OutputStream) Close() error {
	if err := o.device.Stop(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnknown, err)
	}
	o.device.Uninit()
	return nil
}
