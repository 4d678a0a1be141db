// Package source decodes audio files into stereo frames in 16-bit scale, the
// form an emulation core hands to the mixer.
package source

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"

	"github.com/tphakala/go-audio-mixer/internal/granule"
)

// Errors returned by the decoders.
var (
	// ErrUnsupportedFormat indicates a file type no decoder handles.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrInvalidFile indicates the data is not a valid file of the expected type.
	ErrInvalidFile = errors.New("invalid audio file")

	// ErrUnsupportedLayout indicates a bit depth or channel count that cannot be converted.
	ErrUnsupportedLayout = errors.New("unsupported sample layout")
)

// Sample format constants
const (
	bitsPerSample8  = 8
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	monoChannels   = 1
	stereoChannels = 2

	// Full scale of a 16-bit sample, used to scale float decoders
	fullScale16 = 32767.0

	// Zero level of unsigned 8-bit PCM
	unsigned8Offset = 128
)

// Clip is a fully decoded audio file.
type Clip struct {
	Frames     []granule.RawFrame
	SampleRate int

	// Channels is the channel count of the file. Mono is duplicated to both
	// sides and channels beyond the second are dropped.
	Channels int

	// Format names the container: wav, aiff, ogg or mp3.
	Format string
}

// Open decodes the file at path, choosing a decoder by extension.
func Open(path string) (clip *Clip, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = closeErr
		}
	}()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav", ".wave":
		return DecodeWAV(f)
	case ".aif", ".aiff":
		return DecodeAIFF(f)
	case ".ogg", ".oga":
		return DecodeOgg(f)
	case ".mp3":
		return DecodeMP3(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	if c.SampleRate == 0 {
		return 0
	}
	return float64(len(c.Frames)) / float64(c.SampleRate)
}

// framesFromInts converts an interleaved integer PCM buffer into stereo
// frames in 16-bit scale. unsigned8 marks 8-bit data stored with a 128
// offset, as in WAV.
func framesFromInts(buf *audio.IntBuffer, bitDepth int, unsigned8 bool) ([]granule.RawFrame, error) {
	if buf == nil || buf.Format == nil {
		return nil, fmt.Errorf("%w: missing PCM format", ErrInvalidFile)
	}
	channels := buf.Format.NumChannels
	if channels < monoChannels {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedLayout, channels)
	}

	var up, down, offset int
	switch bitDepth {
	case bitsPerSample8:
		up = bitsPerSample16 - bitsPerSample8
		if unsigned8 {
			offset = unsigned8Offset
		}
	case bitsPerSample16:
	case bitsPerSample24:
		down = bitsPerSample24 - bitsPerSample16
	case bitsPerSample32:
		down = bitsPerSample32 - bitsPerSample16
	default:
		return nil, fmt.Errorf("%w: %d-bit PCM", ErrUnsupportedLayout, bitDepth)
	}
	conv := func(v int) int32 {
		return int32(((v - offset) << up) >> down)
	}

	n := len(buf.Data) / channels
	frames := make([]granule.RawFrame, n)
	for i := range n {
		base := i * channels
		l := conv(buf.Data[base])
		r := l
		if channels >= stereoChannels {
			r = conv(buf.Data[base+1])
		}
		frames[i] = granule.RawFrame{L: l, R: r}
	}
	return frames, nil
}

// framesFromFloats converts interleaved samples into stereo frames in 16-bit
// scale. Samples outside [-1, 1] are clipped.
func framesFromFloats(data []float32, channels int) ([]granule.RawFrame, error) {
	if channels < monoChannels {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedLayout, channels)
	}

	n := len(data) / channels
	frames := make([]granule.RawFrame, n)
	for i := range n {
		base := i * channels
		l := toInt16Scale(data[base])
		r := l
		if channels >= stereoChannels {
			r = toInt16Scale(data[base+1])
		}
		frames[i] = granule.RawFrame{L: l, R: r}
	}
	return frames, nil
}

func toInt16Scale(v float32) int32 {
	s := math.Max(-1, math.Min(1, float64(v))) * fullScale16
	if s >= 0 {
		return int32(s + 0.5)
	}
	return int32(s - 0.5)
}
