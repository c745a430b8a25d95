package audiodedup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ReshikaSuresh433/audio-copyright-detection/pkg/audiodedup/audio"
	"github.com/ReshikaSuresh433/audio-copyright-detection/pkg/audiodedup/fingerprint"
	"github.com/ReshikaSuresh433/audio-copyright-detection/pkg/audiodedup/ipfs"
	"github.com/ReshikaSuresh433/audio-copyright-detection/pkg/audiodedup/ledger"
	"github.com/ReshikaSuresh433/audio-copyright-detection/pkg/audiodedup/similarity"
	"github.com/ReshikaSuresh433/audio-copyright-detection/pkg/logger"
	"github.com/ReshikaSuresh433/audio-copyright-detection/pkg/utils"
)

// dedupService is the default implementation of the Service interface.
type dedupService struct {
	store     FingerprintStore
	content   ContentStore
	ledger    Registrar
	extractor *fingerprint.Extractor
	detector  *similarity.Detector
	config    *Config
	log       Logger
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}

	var store FingerprintStore
	var err error
	if cfg.Store != nil {
		store = cfg.Store
	} else {
		store, err = NewSQLiteStore(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create store: %w", err)
		}
	}

	content := cfg.ContentStore
	if content == nil {
		content = ipfs.NewClient()
	}

	registrar := cfg.Registrar
	if registrar == nil {
		registrar = ledger.NewDisabled()
	}

	extractor, err := fingerprint.NewExtractor(cfg.Fingerprint)
	if err != nil {
		return nil, fmt.Errorf("invalid fingerprint config: %w", err)
	}

	scorer := similarity.NewScorer(cfg.Similarity)

	return &dedupService{
		store:     store,
		content:   content,
		ledger:    registrar,
		extractor: extractor,
		detector:  similarity.NewDetector(scorer, cfg.Logger),
		config:    cfg,
		log:       cfg.Logger,
	}, nil
}

// extractFromFile transcodes an audio file to the pinned mono format, decodes
// it, and computes its fingerprint. The converted copy is removed afterwards.
func (s *dedupService) extractFromFile(ctx context.Context, audioPath string) (fingerprint.Fingerprint, error) {
	convertDir := filepath.Join(s.config.TempDir, "converted")
	wavPath, err := audio.ConvertToMonoWAV(ctx, audioPath, convertDir, audio.ConvertWAVConfig{
		SampleRate: s.config.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("audio conversion failed: %w", err)
	}
	defer os.Remove(wavPath)

	samples, sampleRate, err := audio.ReadWavAsFloat64(wavPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read WAV file: %w", err)
	}

	fp, err := s.extractor.Extract(samples, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("fingerprint extraction failed: %w", err)
	}
	return fp, nil
}

// scan loads the stored corpus and runs the first-match duplicate check.
func (s *dedupService) scan(fp fingerprint.Fingerprint) (similarity.Verdict, error) {
	corpus, err := s.store.LoadAll()
	if err != nil {
		return similarity.Verdict{}, fmt.Errorf("failed to load corpus: %w", err)
	}
	s.log.Debugf("Scanning %d stored fingerprints", len(corpus))
	return s.detector.Check(fp, corpus), nil
}

// Check runs extraction and the corpus scan without registering anything.
func (s *dedupService) Check(ctx context.Context, audioPath string) (*CheckResult, error) {
	fp, err := s.extractFromFile(ctx, audioPath)
	if err != nil {
		return nil, err
	}

	verdict, err := s.scan(fp)
	if err != nil {
		return nil, err
	}

	return &CheckResult{
		Duplicate: verdict.Duplicate,
		Score:     verdict.Score,
		MatchedID: verdict.MatchedID,
	}, nil
}

// Submit runs the full admission pipeline. On rejection the result reports
// the score and matched identifier and nothing is registered. On admission
// the asset is uploaded, registered on the ledger, then persisted locally, in
// that order; a persistence failure after registration is surfaced but the
// completed external steps are not rolled back.
func (s *dedupService) Submit(ctx context.Context, audioPath, originalName string) (*SubmitResult, error) {
	identifier := utils.UniqueIdentifier(originalName)
	s.log.Infof("Processing submission %s", identifier)

	fp, err := s.extractFromFile(ctx, audioPath)
	if err != nil {
		return nil, err
	}

	return s.admit(ctx, identifier, fp, audioPath)
}

// admit applies the two-threshold admission policy to an extracted
// fingerprint and, on acceptance, runs the upload → register → persist saga.
func (s *dedupService) admit(ctx context.Context, identifier string, fp fingerprint.Fingerprint, audioPath string) (*SubmitResult, error) {
	verdict, err := s.scan(fp)
	if err != nil {
		return nil, err
	}

	result := &SubmitResult{
		Identifier: identifier,
		Duplicate:  verdict.Duplicate,
		Score:      verdict.Score,
		MatchedID:  verdict.MatchedID,
	}

	if verdict.Duplicate && verdict.Score >= s.config.Similarity.RejectThreshold {
		s.log.Infof("Rejected %s: %.1f%% similar to %s", identifier, verdict.Score*100, verdict.MatchedID)
		return result, nil
	}
	if verdict.Duplicate {
		s.log.Warnf("Admitting %s despite %.1f%% similarity to %s (below rejection bar)",
			identifier, verdict.Score*100, verdict.MatchedID)
	}

	ipfsHash, err := s.content.Add(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("content upload failed: %w", err)
	}
	result.IPFSHash = ipfsHash
	s.log.Infof("Uploaded %s to content storage: %s", identifier, ipfsHash)

	ledgerTx, err := s.ledger.Register(ctx, identifier, ipfsHash)
	if err != nil {
		return nil, fmt.Errorf("ledger registration failed: %w", err)
	}
	result.LedgerTx = ledgerTx
	if ledgerTx != "" {
		s.log.Infof("Registered %s on ledger: %s", identifier, ledgerTx)
	}

	if err := s.store.Upsert(identifier, fp, ipfsHash, ledgerTx); err != nil {
		// Upload and registration already happened; the local record can be
		// reconciled later, so the error is surfaced without undoing them.
		return result, fmt.Errorf("failed to persist record %s: %w", identifier, err)
	}

	result.Admitted = true
	s.log.Infof("Admitted %s", identifier)
	return result, nil
}

func (s *dedupService) List() ([]AudioRecord, error) {
	return s.store.List()
}

func (s *dedupService) Get(identifier string) (*AudioRecord, error) {
	return s.store.Get(identifier)
}

func (s *dedupService) Delete(identifier string) error {
	return s.store.Delete(identifier)
}

func (s *dedupService) Close() error {
	return s.store.Close()
}
