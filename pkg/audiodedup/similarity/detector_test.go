package similarity

import (
	"math"
	"testing"

	"github.com/ReshikaSuresh433/audio-copyright-detection/pkg/audiodedup/fingerprint"
)

// quietLogger discards detector logging in tests.
type quietLogger struct{}

func (quietLogger) Debugf(format string, args ...any) {}
func (quietLogger) Warnf(format string, args ...any)  {}

func newTestDetector(t *testing.T) *Detector {
	t.Helper()
	return NewDetector(NewScorer(DefaultConfig()), quietLogger{})
}

// rotated returns a unit vector at the given angle from (1,0); paired with
// candidate (1,0) it produces a controllable similarity score.
func rotated(angleDeg float64) fingerprint.Fingerprint {
	rad := angleDeg * math.Pi / 180
	return fingerprint.Fingerprint{math.Cos(rad), math.Sin(rad)}
}

func TestCheckEmptyCorpus(t *testing.T) {
	detector := newTestDetector(t)

	verdict := detector.Check(fingerprint.Fingerprint{1, 0}, nil)
	if verdict.Duplicate {
		t.Error("Empty corpus must never produce a duplicate verdict")
	}
	if verdict.Score != 0 || verdict.MatchedID != "" {
		t.Errorf("Expected zero verdict, got %+v", verdict)
	}
}

func TestCheckNoMatchBelowThreshold(t *testing.T) {
	detector := newTestDetector(t)

	candidate := fingerprint.Fingerprint{1, 0}
	corpus := []CorpusEntry{
		{Identifier: "far", Fingerprint: rotated(180)}, // cosine -1
	}

	verdict := detector.Check(candidate, corpus)
	if verdict.Duplicate {
		t.Errorf("Expected no duplicate, got match on %s with score %v", verdict.MatchedID, verdict.Score)
	}
}

func TestCheckFirstMatchPolicy(t *testing.T) {
	detector := newTestDetector(t)

	candidate := fingerprint.Fingerprint{1, 0}
	// The moderate match (~0.60) precedes the perfect match (1.0) in scan
	// order; the detector must report the moderate one, not the maximum.
	corpus := []CorpusEntry{
		{Identifier: "below", Fingerprint: rotated(120)},
		{Identifier: "moderate", Fingerprint: rotated(50)},
		{Identifier: "perfect", Fingerprint: candidate},
	}

	verdict := detector.Check(candidate, corpus)
	if !verdict.Duplicate {
		t.Fatal("Expected a duplicate verdict")
	}
	if verdict.MatchedID != "moderate" {
		t.Errorf("Expected first qualifying match 'moderate', got '%s'", verdict.MatchedID)
	}
	if verdict.Score >= 0.99 {
		t.Errorf("Reported score %v looks like the best match, not the first match", verdict.Score)
	}

	scorer := NewScorer(DefaultConfig())
	expected, err := scorer.Score(candidate, corpus[1].Fingerprint)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if math.Abs(verdict.Score-expected) > 1e-12 {
		t.Errorf("Expected score %v, got %v", expected, verdict.Score)
	}
}

func TestCheckSkipsLengthMismatch(t *testing.T) {
	detector := newTestDetector(t)

	candidate := fingerprint.Fingerprint{1, 0}
	corpus := []CorpusEntry{
		{Identifier: "longer", Fingerprint: fingerprint.Fingerprint{1, 0, 0}},
		{Identifier: "same", Fingerprint: candidate},
	}

	verdict := detector.Check(candidate, corpus)
	if !verdict.Duplicate {
		t.Fatal("Scan must continue past incomparable entries")
	}
	if verdict.MatchedID != "same" {
		t.Errorf("Expected match on 'same', got '%s'", verdict.MatchedID)
	}
}

func TestCheckSkipsIndeterminate(t *testing.T) {
	detector := newTestDetector(t)

	candidate := fingerprint.Fingerprint{1, 0}
	corpus := []CorpusEntry{
		{Identifier: "zero", Fingerprint: fingerprint.Fingerprint{0, 0}},
		{Identifier: "same", Fingerprint: candidate},
	}

	verdict := detector.Check(candidate, corpus)
	if !verdict.Duplicate || verdict.MatchedID != "same" {
		t.Errorf("Expected match on 'same' after skipping zero vector, got %+v", verdict)
	}
}

func TestCheckAllEntriesIncomparable(t *testing.T) {
	detector := newTestDetector(t)

	candidate := fingerprint.Fingerprint{1, 0}
	corpus := []CorpusEntry{
		{Identifier: "a", Fingerprint: fingerprint.Fingerprint{1}},
		{Identifier: "b", Fingerprint: fingerprint.Fingerprint{1, 2, 3}},
	}

	verdict := detector.Check(candidate, corpus)
	if verdict.Duplicate {
		t.Errorf("Expected no duplicate when every entry is incomparable, got %+v", verdict)
	}
}

func TestCheckThresholdBoundary(t *testing.T) {
	candidate := fingerprint.Fingerprint{1, 0}
	entry := rotated(50)

	cfg := DefaultConfig()
	score, err := NewScorer(cfg).Score(candidate, entry)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	// Pin the threshold to the exact score: >= must qualify.
	cfg.MatchThreshold = score
	detector := NewDetector(NewScorer(cfg), quietLogger{})

	verdict := detector.Check(candidate, []CorpusEntry{{Identifier: "edge", Fingerprint: entry}})
	if !verdict.Duplicate {
		t.Errorf("Score exactly at the match threshold must qualify, got %+v", verdict)
	}

	// Nudge the threshold above the score: must no longer qualify.
	cfg.MatchThreshold = math.Nextafter(score, 2)
	detector = NewDetector(NewScorer(cfg), quietLogger{})

	verdict = detector.Check(candidate, []CorpusEntry{{Identifier: "edge", Fingerprint: entry}})
	if verdict.Duplicate {
		t.Errorf("Score below the match threshold must not qualify, got %+v", verdict)
	}
}
