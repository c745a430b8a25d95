package audio

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-audio/wav"
)

var (
	// ErrInvalidWav is returned when the input is not a decodable WAV file.
	ErrInvalidWav = errors.New("not a valid WAV file")
	// ErrUnsupportedChannels is returned for anything but mono or stereo input.
	ErrUnsupportedChannels = errors.New("unsupported channel count: only mono/stereo supported")
)

// ReadWavAsFloat64 decodes a PCM WAV file and returns mono samples scaled to
// [-1,1] plus the sample rate. Stereo input is downmixed by averaging the
// channels.
func ReadWavAsFloat64(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, ErrInvalidWav
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decoding PCM data: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, 0, errors.New("empty data chunk")
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(dec.BitDepth)
	}
	scale := 1.0 / math.Pow(2, float64(bitDepth-1))

	var samples []float64
	switch buf.Format.NumChannels {
	case 1:
		samples = make([]float64, len(buf.Data))
		for i, s := range buf.Data {
			samples[i] = float64(s) * scale
		}
	case 2:
		frames := len(buf.Data) / 2
		samples = make([]float64, frames)
		for i := 0; i < frames; i++ {
			l := float64(buf.Data[2*i]) * scale
			r := float64(buf.Data[2*i+1]) * scale
			samples[i] = (l + r) * 0.5
		}
	default:
		return nil, 0, ErrUnsupportedChannels
	}

	return samples, buf.Format.SampleRate, nil
}
