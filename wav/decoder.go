// Package wav decodes RIFF/WAVE PCM and IEEE-float audio files into
// sonora.Source leaves.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/agalue/sonora"
)

// Format identifies the sample encoding recognised in the data chunk.
type Format int

// Recognised sample formats.
const (
	FormatU8 Format = iota
	FormatI16
	FormatI24
	FormatI32
	FormatF32
)

// Decoder errors, returned synchronously from Decode.
var (
	// ErrInvalidFile means the byte stream is not a RIFF/WAVE file, or
	// is missing a required chunk.
	ErrInvalidFile = errors.New("wav: not a valid RIFF/WAVE file")

	// ErrMalformedData means the declared data chunk length exceeds the
	// bytes actually present in the file.
	ErrMalformedData = errors.New("wav: data chunk length exceeds file size")

	// ErrUnknownFormat means the fmt chunk describes an audio format tag
	// or bit depth this decoder does not support.
	ErrUnknownFormat = errors.New("wav: unsupported audio format")
)

// Decoder is a Source that decodes PCM samples from an in-memory
// RIFF/WAVE byte stream.
//
// The decoded bytes are held as a single []byte, parsed once at
// construction. Go slices already share their backing array by
// reference, so Clone is a cheap way to get an independent read cursor
// over the same immutable bytes without copying them — there is no
// need for an explicit atomic refcount the way an owned-byte-buffer
// language would require.
type Decoder struct {
	file       []byte
	channels   sonora.ChannelCount
	rate       sonora.SampleRate
	format     Format
	sampleSize int // bytes per sample
	dataStart  int
	cursor     int
	length     int // total sample count across all channels
}

// Decode parses a RIFF/WAVE byte stream and returns a ready-to-play
// Decoder. file is retained (not copied); callers must not mutate it
// afterwards.
func Decode(file []byte) (*Decoder, error) {
	if len(file) < 12 || string(file[0:4]) != "RIFF" || string(file[8:12]) != "WAVE" {
		return nil, ErrInvalidFile
	}

	fmtStart, fmtLen, err := findChunk(file, "fmt ")
	if err != nil {
		return nil, err
	}
	if fmtLen < 16 || fmtStart+fmtLen > len(file) {
		return nil, ErrInvalidFile
	}
	fmtChunk := file[fmtStart : fmtStart+fmtLen]

	audioFormat := binary.LittleEndian.Uint16(fmtChunk[0:2])
	channels := binary.LittleEndian.Uint16(fmtChunk[2:4])
	sampleRate := binary.LittleEndian.Uint32(fmtChunk[4:8])
	bitsPerSample := binary.LittleEndian.Uint16(fmtChunk[14:16])

	if channels == 0 || sampleRate == 0 {
		return nil, ErrUnknownFormat
	}

	format, sampleSize, err := resolveFormat(audioFormat, bitsPerSample)
	if err != nil {
		return nil, err
	}

	dataStart, dataLen, err := findChunk(file, "data")
	if err != nil {
		return nil, err
	}

	if dataStart+dataLen > len(file) {
		return nil, ErrMalformedData
	}
	file = file[:dataStart+dataLen]

	return &Decoder{
		file:       file,
		channels:   sonora.ChannelCount(channels),
		rate:       sonora.SampleRate(sampleRate),
		format:     format,
		sampleSize: sampleSize,
		dataStart:  dataStart,
		cursor:     dataStart,
		length:     dataLen / sampleSize,
	}, nil
}

// findChunk scans RIFF chunks starting at offset 12 for one whose
// 4-byte tag matches name, skipping any chunk that doesn't by its
// declared length. Returns the chunk's data offset and declared length.
func findChunk(data []byte, name string) (offset, length int, err error) {
	pos := 12
	for {
		if len(data) < pos+8 {
			return 0, 0, ErrInvalidFile
		}
		tag := string(data[pos : pos+4])
		chunkLen := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		pos += 8
		if tag == name {
			return pos, chunkLen, nil
		}
		pos += chunkLen
	}
}

func resolveFormat(tag, bits uint16) (Format, int, error) {
	switch {
	case tag == 1 && bits == 8:
		return FormatU8, 1, nil
	case tag == 1 && bits == 16:
		return FormatI16, 2, nil
	case tag == 1 && bits == 24:
		return FormatI24, 3, nil
	case tag == 1 && bits == 32:
		return FormatI32, 4, nil
	case tag == 3 && bits == 32:
		return FormatF32, 4, nil
	default:
		return 0, 0, fmt.Errorf("%w: tag=%d bits=%d", ErrUnknownFormat, tag, bits)
	}
}

// Length returns the total number of samples (across all channels) in
// the decoded file.
func (d *Decoder) Length() int { return d.length }

// Clone returns an independent Decoder sharing the same underlying
// bytes, reset to the start of the data chunk.
func (d *Decoder) Clone() *Decoder {
	clone := *d
	clone.cursor = clone.dataStart
	return &clone
}

// ChannelCount returns the channel count declared in the fmt chunk.
func (d *Decoder) ChannelCount() sonora.ChannelCount { return d.channels }

// SampleRate returns the sample rate declared in the fmt chunk.
func (d *Decoder) SampleRate() sonora.SampleRate { return d.rate }

// Reset rewinds the read cursor to the start of the data chunk.
func (d *Decoder) Reset() { d.cursor = d.dataStart }

// WriteSamples decodes up to len(out) samples starting at the current
// cursor, converting each stored integer to a float32 nominally in
// [-1, +1] and not clamped (u8 biased by -128 and divided by 127, so 0
// decodes slightly below -1; i24 normalized by 2^23), and advances the cursor by
// the number of bytes consumed.
func (d *Decoder) WriteSamples(out []sonora.Sample) int {
	remaining := (len(d.file) - d.cursor) / d.sampleSize
	n := len(out)
	if remaining < n {
		n = remaining
	}

	switch d.format {
	case FormatU8:
		for i := 0; i < n; i++ {
			b := d.file[d.cursor+i]
			out[i] = float32(int16(b)-0x80) / float32(127)
		}
	case FormatI16:
		for i := 0; i < n; i++ {
			off := d.cursor + i*2
			v := int16(binary.LittleEndian.Uint16(d.file[off : off+2]))
			out[i] = float32(v) / float32(32767)
		}
	case FormatI24:
		for i := 0; i < n; i++ {
			off := d.cursor + i*3
			b := d.file[off : off+3]
			v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
			if v&0x800000 != 0 {
				v |= -1 << 24 // sign-extend 24 -> 32 bits
			}
			out[i] = float32(v) / 8388608.0 // 2^23
		}
	case FormatI32:
		for i := 0; i < n; i++ {
			off := d.cursor + i*4
			v := int32(binary.LittleEndian.Uint32(d.file[off : off+4]))
			out[i] = float32(float64(v) / float64(2147483647))
		}
	case FormatF32:
		for i := 0; i < n; i++ {
			off := d.cursor + i*4
			bits := binary.LittleEndian.Uint32(d.file[off : off+4])
			out[i] = math.Float32frombits(bits)
		}
	}

	d.cursor += n * d.sampleSize
	return n
}
