package audiodedup

import (
	"time"

	"github.com/ReshikaSuresh433/audio-copyright-detection/pkg/audiodedup/fingerprint"
)

// AudioRecord is a registered asset as seen by callers.
type AudioRecord struct {
	Identifier  string                  // unique, derived from the original filename
	Fingerprint fingerprint.Fingerprint // normalized MFCC vector
	IPFSHash    string                  // opaque content-storage reference
	LedgerTx    string                  // opaque ledger transaction reference
	CreatedAt   time.Time
}

// CheckResult is the outcome of a dry-run duplicate check.
type CheckResult struct {
	Duplicate bool    // first corpus entry reached the match threshold
	Score     float64 // that entry's score (order-dependent, not the corpus max)
	MatchedID string
}

// SubmitResult is the outcome of a full submission. A candidate can be
// duplicate-flagged yet admitted when its score sits below the rejection
// threshold.
type SubmitResult struct {
	Identifier string
	Admitted   bool
	Duplicate  bool
	Score      float64
	MatchedID  string
	IPFSHash   string
	LedgerTx   string
}
