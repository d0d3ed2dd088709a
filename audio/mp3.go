package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

// DecodeMP3 reads an MP3 stream, downmixes it to mono and resamples it to
// sampleRate.
func DecodeMP3(r io.Reader, sampleRate int) (*Track, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("audio: invalid sample rate %d", sampleRate)
	}
	d, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("audio: invalid mp3: %w", err)
	}
	pcm, err := io.ReadAll(d)
	if err != nil {
		return nil, fmt.Errorf("audio: decode mp3: %w", err)
	}

	// the decoder always yields 16-bit little-endian stereo
	frames := len(pcm) / 4
	if frames == 0 {
		return nil, ErrEmpty
	}
	mono := make([]float32, frames)
	for i := range mono {
		l := int16(binary.LittleEndian.Uint16(pcm[4*i:]))
		r := int16(binary.LittleEndian.Uint16(pcm[4*i+2:]))
		mono[i] = float32((float64(l) + float64(r)) / 2 / 32768)
	}

	samples, err := Resample(mono, d.SampleRate(), sampleRate)
	if err != nil {
		return nil, err
	}
	return &Track{Samples: samples, SampleRate: sampleRate}, nil
}

// sniffMP3 reports whether the stream starts with an ID3v2 tag or an MPEG
// audio frame sync. r is rewound either way.
func sniffMP3(r io.ReadSeeker) bool {
	head := make([]byte, 3)
	n, _ := io.ReadFull(r, head)
	r.Seek(0, io.SeekStart)
	if n < 3 {
		return false
	}
	if bytes.Equal(head, []byte("ID3")) {
		return true
	}
	return head[0] == 0xFF && head[1]&0xE0 == 0xE0
}
