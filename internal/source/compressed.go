package source

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"

	"github.com/tphakala/go-audio-mixer/internal/granule"
)

// go-mp3 always decodes to 16-bit little-endian stereo.
const mp3BytesPerFrame = stereoChannels * 2

// DecodeOgg decodes an Ogg Vorbis stream.
func DecodeOgg(r io.Reader) (*Clip, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	frames, err := framesFromFloats(data, format.Channels)
	if err != nil {
		return nil, err
	}
	return &Clip{
		Frames:     frames,
		SampleRate: format.SampleRate,
		Channels:   format.Channels,
		Format:     "ogg",
	}, nil
}

// DecodeMP3 decodes an MPEG-1/2 Layer III stream.
func DecodeMP3(r io.Reader) (*Clip, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	pcm, err := io.ReadAll(dec)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	return &Clip{
		Frames:     framesFromPCM16(pcm),
		SampleRate: dec.SampleRate(),
		Channels:   stereoChannels,
		Format:     "mp3",
	}, nil
}

// framesFromPCM16 converts interleaved 16-bit little-endian stereo bytes.
// A trailing partial frame is dropped.
func framesFromPCM16(pcm []byte) []granule.RawFrame {
	frames := make([]granule.RawFrame, len(pcm)/mp3BytesPerFrame)
	for i := range frames {
		o := i * mp3BytesPerFrame
		frames[i] = granule.RawFrame{
			L: int32(int16(binary.LittleEndian.Uint16(pcm[o:]))),
			R: int32(int16(binary.LittleEndian.Uint16(pcm[o+2:]))),
		}
	}
	return frames
}
