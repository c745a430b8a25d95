package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ReshikaSuresh433/audio-copyright-detection/pkg/audiodedup/fingerprint"
	"github.com/ReshikaSuresh433/audio-copyright-detection/pkg/audiodedup/similarity"
)

const DefaultDBFile = "audioregistry.sqlite3"
const errDBClientNil = "db client is nil"

// ErrNotFound is returned when no record exists for an identifier.
var ErrNotFound = errors.New("audio record not found")

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

// AudioRecord is the persisted registration row. The fingerprint is stored as
// a JSON array of float64 so a round trip reproduces the identical vector.
// At most one row exists per identifier; resubmission replaces the row.
type AudioRecord struct {
	Identifier  string `gorm:"primaryKey;type:varchar(255)" json:"identifier"`
	Fingerprint string `json:"fingerprint"`
	IPFSHash    string `gorm:"index:idx_ipfs_hash" json:"ipfs_hash"`
	LedgerTx    string `gorm:"index:idx_ledger_tx" json:"ledger_tx"`
	CreatedAt   time.Time
}

func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("AUDIODEDUP_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !os.IsExist(err) {
		if filepath.Dir(dbPath) != "." {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&AudioRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// EncodeFingerprint serializes a fingerprint for storage.
func EncodeFingerprint(fp fingerprint.Fingerprint) (string, error) {
	raw, err := json.Marshal([]float64(fp))
	if err != nil {
		return "", fmt.Errorf("encoding fingerprint: %w", err)
	}
	return string(raw), nil
}

// DecodeFingerprint deserializes a stored fingerprint.
func DecodeFingerprint(s string) (fingerprint.Fingerprint, error) {
	var vec []float64
	if err := json.Unmarshal([]byte(s), &vec); err != nil {
		return nil, fmt.Errorf("decoding fingerprint: %w", err)
	}
	return fingerprint.Fingerprint(vec), nil
}

// Upsert persists a record, replacing any prior row with the same identifier.
// Replacement is delete-then-insert inside one transaction, never a partial
// update.
func (c *DBClient) Upsert(identifier string, fp fingerprint.Fingerprint, ipfsHash, ledgerTx string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}

	encoded, err := EncodeFingerprint(fp)
	if err != nil {
		return err
	}

	return c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("identifier = ?", identifier).Delete(&AudioRecord{}).Error; err != nil {
			return fmt.Errorf("deleting prior record: %w", err)
		}
		rec := AudioRecord{
			Identifier:  identifier,
			Fingerprint: encoded,
			IPFSHash:    ipfsHash,
			LedgerTx:    ledgerTx,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("inserting record: %w", err)
		}
		return nil
	})
}

// LoadAll returns every stored fingerprint in a stable scan order (creation
// time, then identifier). The duplicate detector's first-match policy makes
// this order part of the system's observable behavior.
func (c *DBClient) LoadAll() ([]similarity.CorpusEntry, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var rows []AudioRecord
	if err := c.DB.Order("created_at, identifier").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("loading fingerprints: %w", err)
	}

	entries := make([]similarity.CorpusEntry, 0, len(rows))
	for _, row := range rows {
		fp, err := DecodeFingerprint(row.Fingerprint)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", row.Identifier, err)
		}
		entries = append(entries, similarity.CorpusEntry{
			Identifier:  row.Identifier,
			Fingerprint: fp,
		})
	}
	return entries, nil
}

// List returns all records ordered by creation time, fingerprints included.
func (c *DBClient) List() ([]AudioRecord, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var rows []AudioRecord
	if err := c.DB.Order("created_at, identifier").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	return rows, nil
}

func (c *DBClient) GetByIdentifier(identifier string) (*AudioRecord, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var row AudioRecord
	err := c.DB.Where("identifier = ?", identifier).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying record: %w", err)
	}
	return &row, nil
}

func (c *DBClient) DeleteByIdentifier(identifier string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	res := c.DB.Where("identifier = ?", identifier).Delete(&AudioRecord{})
	if res.Error != nil {
		return fmt.Errorf("deleting record: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *DBClient) Count() (int64, error) {
	if c == nil || c.DB == nil {
		return 0, errors.New(errDBClientNil)
	}
	var n int64
	if err := c.DB.Model(&AudioRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}
