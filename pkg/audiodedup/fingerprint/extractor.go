package fingerprint

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// Fingerprint is a normalized, flattened MFCC matrix: for each coefficient
// channel, its per-frame values in time order (channel-major). Its length is
// NumCoefficients * frameCount, so it grows with the audio's duration.
type Fingerprint []float64

var (
	// ErrTooShort is returned when the signal does not cover one analysis window.
	ErrTooShort = errors.New("audio too short for analysis window")
	// ErrDegenerateSignal is returned when a coefficient channel has zero
	// variance across frames (silence, DC) and cannot be normalized.
	ErrDegenerateSignal = errors.New("degenerate signal: zero variance in coefficient channel")
)

// Config holds the analysis parameters. All of them participate in the
// fingerprint's semantics: fingerprints produced under different configs are
// not comparable.
type Config struct {
	NumCoefficients int // MFCC coefficients per frame
	NumMelBands     int // triangular mel filters
	WindowSize      int // STFT window, samples
	HopSize         int // STFT hop, samples
}

func DefaultConfig() Config {
	return Config{
		NumCoefficients: 40,
		NumMelBands:     128,
		WindowSize:      1024,
		HopSize:         256,
	}
}

// Extractor converts decoded waveforms into fingerprints. It is stateless
// apart from a cached window and filterbank, and safe for concurrent use
// after construction.
type Extractor struct {
	cfg    Config
	window []float64

	// filterbank depends on the sample rate, cached since the pipeline pins
	// one rate.
	mu       sync.Mutex
	bankRate int
	bank     [][]float64
}

func NewExtractor(cfg Config) (*Extractor, error) {
	if cfg.NumCoefficients <= 0 || cfg.NumMelBands <= 0 {
		return nil, errors.New("coefficient and mel band counts must be positive")
	}
	if cfg.WindowSize <= 0 || cfg.HopSize <= 0 {
		return nil, errors.New("window and hop sizes must be positive")
	}
	if cfg.NumCoefficients > cfg.NumMelBands {
		return nil, errors.New("cannot take more coefficients than mel bands")
	}
	return &Extractor{
		cfg:    cfg,
		window: Hamming(cfg.WindowSize),
	}, nil
}

func (e *Extractor) Config() Config {
	return e.cfg
}

// Extract computes the fingerprint of a mono waveform. The result is fully
// deterministic: the same samples at the same rate always yield the identical
// vector. Normalization statistics are computed from this input alone.
func (e *Extractor) Extract(samples []float64, sampleRate int) (Fingerprint, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}

	spec, err := STFT(samples, e.cfg.WindowSize, e.cfg.HopSize, e.window)
	if err != nil {
		return nil, err
	}

	bank := e.filterbank(sampleRate)

	// coefficients[frame][coef]
	frames := len(spec)
	coefficients := make([][]float64, frames)
	for t, magnitude := range spec {
		coefficients[t] = DCT2(melLogEnergies(magnitude, bank), e.cfg.NumCoefficients)
	}

	return normalizeAndFlatten(coefficients, e.cfg.NumCoefficients)
}

func (e *Extractor) filterbank(sampleRate int) [][]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.bank == nil || e.bankRate != sampleRate {
		e.bank = MelFilterbank(e.cfg.NumMelBands, e.cfg.WindowSize/2, e.cfg.WindowSize, sampleRate)
		e.bankRate = sampleRate
	}
	return e.bank
}

// normalizeAndFlatten z-normalizes each coefficient channel across frames and
// flattens channel-major: all frames of coefficient 0, then coefficient 1, ...
func normalizeAndFlatten(coefficients [][]float64, numCoefficients int) (Fingerprint, error) {
	frames := len(coefficients)
	if frames == 0 {
		return nil, ErrTooShort
	}

	fp := make(Fingerprint, numCoefficients*frames)
	for c := 0; c < numCoefficients; c++ {
		var mean float64
		for t := 0; t < frames; t++ {
			mean += coefficients[t][c]
		}
		mean /= float64(frames)

		var variance float64
		for t := 0; t < frames; t++ {
			d := coefficients[t][c] - mean
			variance += d * d
		}
		variance /= float64(frames)

		if variance == 0 {
			return nil, fmt.Errorf("%w (coefficient %d)", ErrDegenerateSignal, c)
		}

		std := math.Sqrt(variance)
		for t := 0; t < frames; t++ {
			fp[c*frames+t] = (coefficients[t][c] - mean) / std
		}
	}
	return fp, nil
}
