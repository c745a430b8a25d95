package audiodedup

import (
	"errors"

	"github.com/ReshikaSuresh433/audio-copyright-detection/pkg/audiodedup/fingerprint"
	"github.com/ReshikaSuresh433/audio-copyright-detection/pkg/audiodedup/similarity"
	"github.com/ReshikaSuresh433/audio-copyright-detection/pkg/audiodedup/storage"
)

// ErrNotFound is returned when no record exists for an identifier.
var ErrNotFound = errors.New("audio record not found")

// storageAdapter adapts storage.DBClient to the FingerprintStore interface,
// translating row types to domain records.
type storageAdapter struct {
	db *storage.DBClient
}

// NewSQLiteStore creates the default SQLite-backed fingerprint store.
func NewSQLiteStore(dbPath string) (FingerprintStore, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return &storageAdapter{db: db}, nil
}

func (s *storageAdapter) LoadAll() ([]similarity.CorpusEntry, error) {
	return s.db.LoadAll()
}

func (s *storageAdapter) Upsert(identifier string, fp fingerprint.Fingerprint, ipfsHash, ledgerTx string) error {
	return s.db.Upsert(identifier, fp, ipfsHash, ledgerTx)
}

func (s *storageAdapter) List() ([]AudioRecord, error) {
	rows, err := s.db.List()
	if err != nil {
		return nil, err
	}
	records := make([]AudioRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := toDomainRecord(&row)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, nil
}

func (s *storageAdapter) Get(identifier string) (*AudioRecord, error) {
	row, err := s.db.GetByIdentifier(identifier)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainRecord(row)
}

func (s *storageAdapter) Delete(identifier string) error {
	err := s.db.DeleteByIdentifier(identifier)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *storageAdapter) Count() (int64, error) {
	return s.db.Count()
}

func (s *storageAdapter) Close() error {
	return s.db.Close()
}

func toDomainRecord(row *storage.AudioRecord) (*AudioRecord, error) {
	fp, err := storage.DecodeFingerprint(row.Fingerprint)
	if err != nil {
		return nil, err
	}
	return &AudioRecord{
		Identifier:  row.Identifier,
		Fingerprint: fp,
		IPFSHash:    row.IPFSHash,
		LedgerTx:    row.LedgerTx,
		CreatedAt:   row.CreatedAt,
	}, nil
}
