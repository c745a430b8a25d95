package audiodedup

import (
	"context"

	"github.com/ReshikaSuresh433/audio-copyright-detection/pkg/audiodedup/fingerprint"
	"github.com/ReshikaSuresh433/audio-copyright-detection/pkg/audiodedup/similarity"
)

type Service interface {
	// Submit runs the full admission pipeline: transcode, extract, scan,
	// policy, and on admission upload + ledger registration + persistence.
	Submit(ctx context.Context, audioPath, originalName string) (*SubmitResult, error)
	// Check runs extraction and the corpus scan without registering anything.
	Check(ctx context.Context, audioPath string) (*CheckResult, error)
	List() ([]AudioRecord, error)
	Get(identifier string) (*AudioRecord, error)
	Delete(identifier string) error
	Close() error
}

// FingerprintStore persists (identifier, fingerprint, external refs) records.
// LoadAll must return entries in a stable order; the detector's first-match
// policy depends on it. Upsert replaces any prior record with the same
// identifier (delete-then-insert, never a partial update).
type FingerprintStore interface {
	LoadAll() ([]similarity.CorpusEntry, error)
	Upsert(identifier string, fp fingerprint.Fingerprint, ipfsHash, ledgerTx string) error
	List() ([]AudioRecord, error)
	Get(identifier string) (*AudioRecord, error)
	Delete(identifier string) error
	Count() (int64, error)
	Close() error
}

// ContentStore uploads an asset to content-addressed storage and returns an
// opaque reference.
type ContentStore interface {
	Add(ctx context.Context, path string) (string, error)
}

// Registrar records an accepted asset on the external ledger and returns an
// opaque transaction identifier.
type Registrar interface {
	Register(ctx context.Context, identifier, contentRef string) (string, error)
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
