package similarity

import (
	"errors"
	"math"

	"github.com/ReshikaSuresh433/audio-copyright-detection/pkg/audiodedup/fingerprint"
)

var (
	// ErrLengthMismatch is returned when two fingerprints have different
	// lengths. Fingerprint length tracks audio duration, so assets of
	// different duration are never comparable; they are skipped, not truncated.
	ErrLengthMismatch = errors.New("fingerprint length mismatch")
	// ErrIndeterminate is returned when the score cannot be computed (zero
	// vector, non-finite values). Callers treat it as "no similarity signal".
	ErrIndeterminate = errors.New("similarity score indeterminate")
)

// Config holds the scoring policy. The blend weights and both thresholds are
// tuning knobs, not algorithm structure; changing them must not require
// touching the scorer.
type Config struct {
	// CosineWeight and DistanceWeight blend cosine similarity with a
	// reciprocal-transformed Euclidean distance:
	//   score = CosineWeight*cos + DistanceWeight*(1/(1+dist))
	CosineWeight   float64
	DistanceWeight float64

	// MatchThreshold is the minimum score for the detector to flag a
	// candidate as a duplicate of a corpus entry.
	MatchThreshold float64

	// RejectThreshold is the stricter bar at which the admission policy
	// refuses a candidate. A candidate can be duplicate-flagged yet still
	// admitted if its score sits between the two thresholds.
	RejectThreshold float64
}

func DefaultConfig() Config {
	return Config{
		CosineWeight:    0.6,
		DistanceWeight:  0.4,
		MatchThreshold:  0.50,
		RejectThreshold: 0.75,
	}
}

// Scorer computes blended similarity scores between equal-length fingerprints.
// The result sits in [0,1] for well-formed inputs; identical fingerprints
// score 1.0. The blend is not a metric distance.
type Scorer struct {
	cfg Config
}

func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

func (s *Scorer) Config() Config {
	return s.cfg
}

// Score returns the blended similarity of a and b. It fails closed: any
// numerically undefined case yields ErrIndeterminate rather than NaN.
func (s *Scorer) Score(a, b fingerprint.Fingerprint) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrLengthMismatch
	}
	if len(a) == 0 {
		return 0, ErrIndeterminate
	}

	var dot, normA, normB, sumSq float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
		d := a[i] - b[i]
		sumSq += d * d
	}

	if normA == 0 || normB == 0 {
		return 0, ErrIndeterminate
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	dist := math.Sqrt(sumSq)
	score := s.cfg.CosineWeight*cos + s.cfg.DistanceWeight*(1.0/(1.0+dist))

	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, ErrIndeterminate
	}
	return score, nil
}
