package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/riff"
	"github.com/go-audio/wav"
)

// ErrEmpty is returned for audio that decodes to zero samples.
var ErrEmpty = errors.New("audio: no samples")

// Load decodes a PCM WAV or MP3 file into a mono track at the given sample
// rate. The container is detected from the file header.
func Load(path string, sampleRate int) (*Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var t *Track
	if sniffMP3(f) {
		t, err = DecodeMP3(f, sampleRate)
	} else {
		t, err = Decode(f, sampleRate)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t.Source = path
	return t, nil
}

// Decode reads a PCM WAV stream, downmixes it to mono and resamples it to
// sampleRate.
func Decode(r io.ReadSeeker, sampleRate int) (*Track, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("audio: invalid sample rate %d", sampleRate)
	}
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		if err := d.Err(); err != nil {
			return nil, fmt.Errorf("audio: invalid wav: %w", err)
		}
		return nil, fmt.Errorf("audio: invalid wav: %w", ErrEmpty)
	}
	if err := checkPCM(r, d.WavAudioFormat); err != nil {
		return nil, err
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("audio: decode pcm: %w", err)
	}
	mono := downmix(buf)
	if len(mono) == 0 {
		return nil, ErrEmpty
	}

	samples, err := Resample(mono, buf.Format.SampleRate, sampleRate)
	if err != nil {
		return nil, err
	}
	return &Track{Samples: samples, SampleRate: sampleRate}, nil
}

const (
	formatPCM        = 0x0001
	formatExtensible = 0xFFFE
)

// checkPCM accepts plain PCM and WAVE_FORMAT_EXTENSIBLE with a PCM sub-format.
// It leaves r positioned where it found it.
func checkPCM(r io.ReadSeeker, format uint16) error {
	switch format {
	case formatPCM:
		return nil
	case formatExtensible:
		pos, err := r.Seek(0, io.SeekCurrent)
		if err != nil {
			return err
		}
		sub, err := extensibleSubFormat(r)
		if _, serr := r.Seek(pos, io.SeekStart); serr != nil {
			return serr
		}
		if err != nil {
			return fmt.Errorf("audio: read wav sub-format: %w", err)
		}
		if sub != formatPCM {
			return fmt.Errorf("audio: unsupported wav sub-format %#04x (want PCM)", sub)
		}
		return nil
	}
	return fmt.Errorf("audio: unsupported wav format %#04x (want PCM)", format)
}

// extensibleSubFormat reads the format code at the head of the SubFormat GUID
// in the fmt chunk.
func extensibleSubFormat(r io.ReadSeeker) (uint16, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	p := riff.New(r)
	if err := p.ParseHeaders(); err != nil {
		return 0, err
	}
	for {
		ch, err := p.NextChunk()
		if err != nil {
			return 0, err
		}
		if ch.ID != riff.FmtID {
			ch.Drain()
			continue
		}
		body := make([]byte, ch.Size)
		if _, err := io.ReadFull(ch, body); err != nil {
			return 0, err
		}
		// format(2) channels(2) rate(4) bytes/s(4) align(2) bits(2)
		// cbSize(2) validBits(2) channelMask(4) SubFormat(16)
		if len(body) < 26 {
			return 0, fmt.Errorf("fmt chunk of %d bytes has no sub-format", len(body))
		}
		return binary.LittleEndian.Uint16(body[24:26]), nil
	}
}

// downmix averages interleaved channels into normalised mono samples.
func downmix(buf *goaudio.IntBuffer) []float32 {
	chans := buf.Format.NumChannels
	if chans < 1 {
		chans = 1
	}
	depth := buf.SourceBitDepth
	scale := float64(int64(1) << uint(depth-1))
	var bias float64
	if depth == 8 {
		// 8-bit PCM is unsigned
		bias = 128
		scale = 128
	}

	frames := len(buf.Data) / chans
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < chans; c++ {
			sum += (float64(buf.Data[i*chans+c]) - bias) / scale
		}
		out[i] = float32(sum / float64(chans))
	}
	return out
}

// Encode writes the track as 16-bit mono PCM WAV.
func Encode(w io.WriteSeeker, t *Track) error {
	enc := wav.NewEncoder(w, t.SampleRate, 16, 1, 1)
	data := make([]int, len(t.Samples))
	for i, s := range t.Samples {
		data[i] = toInt16(s)
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: t.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("audio: encode wav: %w", err)
	}
	return enc.Close()
}

// WriteFile encodes the track to a WAV file at path.
func WriteFile(path string, t *Track) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func toInt16(s float32) int {
	switch {
	case s >= 1:
		return 32767
	case s <= -1:
		return -32768
	}
	return int(s * 32767)
}
