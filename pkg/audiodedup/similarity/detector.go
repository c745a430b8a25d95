package similarity

import (
	"github.com/ReshikaSuresh433/audio-copyright-detection/pkg/audiodedup/fingerprint"
	"github.com/ReshikaSuresh433/audio-copyright-detection/pkg/logger"
)

// CorpusEntry is one stored fingerprint available for comparison.
type CorpusEntry struct {
	Identifier  string
	Fingerprint fingerprint.Fingerprint
}

// Verdict is the outcome of a corpus scan.
type Verdict struct {
	Duplicate bool
	Score     float64
	MatchedID string
}

// Logger is the subset of logging the detector needs.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

// Detector scans a fingerprint corpus linearly and reports the FIRST entry
// whose score reaches the match threshold. This is a first-match policy, not
// best-match: the reported score depends on scan order and is not necessarily
// the corpus maximum. Entries that cannot be scored are skipped, never fatal.
type Detector struct {
	scorer         *Scorer
	matchThreshold float64
	log            Logger
}

func NewDetector(scorer *Scorer, log Logger) *Detector {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Detector{
		scorer:         scorer,
		matchThreshold: scorer.Config().MatchThreshold,
		log:            log,
	}
}

// Check scans corpus in the given order and short-circuits on the first entry
// scoring at or above the match threshold. An empty corpus is never a
// duplicate.
func (d *Detector) Check(candidate fingerprint.Fingerprint, corpus []CorpusEntry) Verdict {
	for _, entry := range corpus {
		score, err := d.scorer.Score(candidate, entry.Fingerprint)
		if err != nil {
			// A per-entry comparison failure contributes no signal; the
			// scan must go on.
			switch err {
			case ErrLengthMismatch:
				d.log.Debugf("skipping %s: length %d vs candidate %d",
					entry.Identifier, len(entry.Fingerprint), len(candidate))
			default:
				d.log.Warnf("skipping %s: %v", entry.Identifier, err)
			}
			continue
		}
		if score >= d.matchThreshold {
			return Verdict{Duplicate: true, Score: score, MatchedID: entry.Identifier}
		}
	}
	return Verdict{}
}
