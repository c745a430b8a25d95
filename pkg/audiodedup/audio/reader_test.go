package audio

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeTestWav encodes PCM data to a WAV file under the test's temp dir.
func writeTestWav(t *testing.T, name string, data []int, numChannels, sampleRate, bitDepth int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test WAV: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, bitDepth, numChannels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: numChannels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("Failed to write test WAV: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Failed to close encoder: %v", err)
	}
	return path
}

func TestReadWavMono(t *testing.T) {
	path := writeTestWav(t, "mono.wav", []int{0, 16384, -16384, 32767}, 1, 22050, 16)

	samples, rate, err := ReadWavAsFloat64(path)
	if err != nil {
		t.Fatalf("ReadWavAsFloat64 failed: %v", err)
	}

	if rate != 22050 {
		t.Errorf("Expected sample rate 22050, got %d", rate)
	}
	if len(samples) != 4 {
		t.Fatalf("Expected 4 samples, got %d", len(samples))
	}

	expected := []float64{0, 0.5, -0.5, 32767.0 / 32768.0}
	for i := range expected {
		if math.Abs(samples[i]-expected[i]) > 1e-9 {
			t.Errorf("Sample %d: expected %v, got %v", i, expected[i], samples[i])
		}
	}
}

func TestReadWavStereoDownmix(t *testing.T) {
	// Interleaved L/R frames: (16384, 0) and (-16384, -16384).
	path := writeTestWav(t, "stereo.wav", []int{16384, 0, -16384, -16384}, 2, 44100, 16)

	samples, rate, err := ReadWavAsFloat64(path)
	if err != nil {
		t.Fatalf("ReadWavAsFloat64 failed: %v", err)
	}

	if rate != 44100 {
		t.Errorf("Expected sample rate 44100, got %d", rate)
	}
	if len(samples) != 2 {
		t.Fatalf("Expected 2 downmixed samples, got %d", len(samples))
	}
	if math.Abs(samples[0]-0.25) > 1e-9 {
		t.Errorf("Expected averaged sample 0.25, got %v", samples[0])
	}
	if math.Abs(samples[1]+0.5) > 1e-9 {
		t.Errorf("Expected averaged sample -0.5, got %v", samples[1])
	}
}

func TestReadWavInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not_audio.wav")
	if err := os.WriteFile(path, []byte("this is not a wav file"), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if _, _, err := ReadWavAsFloat64(path); !errors.Is(err, ErrInvalidWav) {
		t.Errorf("Expected ErrInvalidWav, got %v", err)
	}
}

func TestReadWavMissingFile(t *testing.T) {
	if _, _, err := ReadWavAsFloat64(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("Expected error for missing file")
	}
}
