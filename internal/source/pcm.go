package source

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Frames read per PCMBuffer call
const readChunkFrames = 4096

// DecodeWAV decodes a PCM WAV stream of 8, 16, 24 or 32 bits.
func DecodeWAV(r io.ReadSeeker) (*Clip, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not a WAV file", ErrInvalidFile)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	frames, err := framesFromInts(buf, int(dec.BitDepth), true)
	if err != nil {
		return nil, err
	}
	return &Clip{
		Frames:     frames,
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
		Format:     "wav",
	}, nil
}

// DecodeAIFF decodes a PCM AIFF stream of 8, 16, 24 or 32 bits.
func DecodeAIFF(r io.ReadSeeker) (*Clip, error) {
	dec := aiff.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not an AIFF file", ErrInvalidFile)
	}
	dec.ReadInfo()

	format := dec.Format()
	if format == nil || format.NumChannels < monoChannels {
		return nil, fmt.Errorf("%w: missing AIFF format", ErrInvalidFile)
	}

	chunk := &audio.IntBuffer{Data: make([]int, readChunkFrames*format.NumChannels), Format: format}
	buf := &audio.IntBuffer{Format: format}
	for {
		n, err := dec.PCMBuffer(chunk)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read audio data: %w", err)
		}
		if n == 0 {
			break
		}
		buf.Data = append(buf.Data, chunk.Data[:n]...)
	}

	frames, err := framesFromInts(buf, int(dec.BitDepth), false)
	if err != nil {
		return nil, err
	}
	return &Clip{
		Frames:     frames,
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
		Format:     "aiff",
	}, nil
}
