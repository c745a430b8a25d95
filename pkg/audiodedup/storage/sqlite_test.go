package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ReshikaSuresh433/audio-copyright-detection/pkg/audiodedup/fingerprint"
)

// Helper function to create a temporary test database
func setupTestDB(t *testing.T) *DBClient {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test_registry.sqlite3")
	client, err := NewDBClientWithPath(dbPath)
	if err != nil {
		t.Fatalf("Failed to create test DB client: %v", err)
	}

	t.Cleanup(func() {
		client.Close()
	})

	return client
}

func testFingerprint(seed float64, n int) fingerprint.Fingerprint {
	fp := make(fingerprint.Fingerprint, n)
	for i := range fp {
		fp[i] = seed + float64(i)*0.25
	}
	return fp
}

func TestNewDBClientFromEnv(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "env_registry.sqlite3")

	oldPath := os.Getenv("AUDIODEDUP_DB_PATH")
	os.Setenv("AUDIODEDUP_DB_PATH", dbPath)
	t.Cleanup(func() {
		if oldPath == "" {
			os.Unsetenv("AUDIODEDUP_DB_PATH")
		} else {
			os.Setenv("AUDIODEDUP_DB_PATH", oldPath)
		}
	})

	client, err := NewDBClient()
	if err != nil {
		t.Fatalf("Failed to create DB client from env: %v", err)
	}
	defer client.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("Database file was not created at %s", dbPath)
	}
}

func TestEncodeDecodeFingerprintRoundTrip(t *testing.T) {
	fp := fingerprint.Fingerprint{0, -1.5, 3.25, 1e-17, -2.5e300, 0.1}

	encoded, err := EncodeFingerprint(fp)
	if err != nil {
		t.Fatalf("EncodeFingerprint failed: %v", err)
	}

	decoded, err := DecodeFingerprint(encoded)
	if err != nil {
		t.Fatalf("DecodeFingerprint failed: %v", err)
	}

	if len(decoded) != len(fp) {
		t.Fatalf("Expected length %d, got %d", len(fp), len(decoded))
	}
	for i := range fp {
		if decoded[i] != fp[i] {
			t.Errorf("Index %d: expected %v, got %v", i, fp[i], decoded[i])
		}
	}
}

func TestDecodeFingerprintInvalid(t *testing.T) {
	if _, err := DecodeFingerprint("not json"); err == nil {
		t.Error("Expected error for invalid fingerprint encoding")
	}
}

func TestUpsertAndGet(t *testing.T) {
	client := setupTestDB(t)
	fp := testFingerprint(1.0, 8)

	if err := client.Upsert("song-a", fp, "QmHashA", "0xTxA"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	rec, err := client.GetByIdentifier("song-a")
	if err != nil {
		t.Fatalf("GetByIdentifier failed: %v", err)
	}
	if rec.IPFSHash != "QmHashA" {
		t.Errorf("Expected IPFS hash 'QmHashA', got '%s'", rec.IPFSHash)
	}
	if rec.LedgerTx != "0xTxA" {
		t.Errorf("Expected ledger tx '0xTxA', got '%s'", rec.LedgerTx)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}

	decoded, err := DecodeFingerprint(rec.Fingerprint)
	if err != nil {
		t.Fatalf("DecodeFingerprint failed: %v", err)
	}
	for i := range fp {
		if decoded[i] != fp[i] {
			t.Fatalf("Stored fingerprint differs at index %d", i)
		}
	}
}

func TestUpsertIdempotence(t *testing.T) {
	client := setupTestDB(t)
	fp := testFingerprint(2.0, 8)

	if err := client.Upsert("song-a", fp, "QmHashA", "0xTxA"); err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}
	if err := client.Upsert("song-a", fp, "QmHashA", "0xTxA"); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	count, err := client.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected exactly one record after duplicate upsert, got %d", count)
	}
}

func TestUpsertReplaces(t *testing.T) {
	client := setupTestDB(t)

	if err := client.Upsert("song-a", testFingerprint(1.0, 8), "QmOld", "0xOld"); err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}
	newFp := testFingerprint(9.0, 10)
	if err := client.Upsert("song-a", newFp, "QmNew", "0xNew"); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	count, err := client.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected one record after replacement, got %d", count)
	}

	rec, err := client.GetByIdentifier("song-a")
	if err != nil {
		t.Fatalf("GetByIdentifier failed: %v", err)
	}
	if rec.IPFSHash != "QmNew" {
		t.Errorf("Expected replaced IPFS hash 'QmNew', got '%s'", rec.IPFSHash)
	}

	decoded, err := DecodeFingerprint(rec.Fingerprint)
	if err != nil {
		t.Fatalf("DecodeFingerprint failed: %v", err)
	}
	if len(decoded) != len(newFp) {
		t.Errorf("Expected replaced fingerprint length %d, got %d", len(newFp), len(decoded))
	}
}

func TestLoadAllRoundTrip(t *testing.T) {
	client := setupTestDB(t)

	fpA := testFingerprint(1.0, 6)
	fpB := testFingerprint(-3.0, 9)
	if err := client.Upsert("song-a", fpA, "QmA", "0xA"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := client.Upsert("song-b", fpB, "QmB", "0xB"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	entries, err := client.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}

	byID := make(map[string]int)
	for i, e := range entries {
		byID[e.Identifier] = i
	}
	for i, fp := range map[string]fingerprint.Fingerprint{"song-a": fpA, "song-b": fpB} {
		idx, ok := byID[i]
		if !ok {
			t.Fatalf("Entry %s missing from LoadAll", i)
		}
		got := entries[idx].Fingerprint
		if len(got) != len(fp) {
			t.Fatalf("Entry %s: expected length %d, got %d", i, len(fp), len(got))
		}
		for j := range fp {
			if got[j] != fp[j] {
				t.Fatalf("Entry %s differs at index %d", i, j)
			}
		}
	}
}

func TestLoadAllStableOrder(t *testing.T) {
	client := setupTestDB(t)

	if err := client.Upsert("zed", testFingerprint(1.0, 4), "QmZ", ""); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := client.Upsert("alpha", testFingerprint(2.0, 4), "QmA", ""); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	// Pin distinct creation times so scan order is creation order.
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := client.DB.Model(&AudioRecord{}).Where("identifier = ?", "zed").
		Update("created_at", base).Error; err != nil {
		t.Fatalf("Failed to pin created_at: %v", err)
	}
	if err := client.DB.Model(&AudioRecord{}).Where("identifier = ?", "alpha").
		Update("created_at", base.Add(time.Hour)).Error; err != nil {
		t.Fatalf("Failed to pin created_at: %v", err)
	}

	entries, err := client.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Identifier != "zed" || entries[1].Identifier != "alpha" {
		t.Errorf("Expected creation order [zed alpha], got [%s %s]",
			entries[0].Identifier, entries[1].Identifier)
	}
}

func TestLoadAllEmpty(t *testing.T) {
	client := setupTestDB(t)

	entries, err := client.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty corpus, got %d entries", len(entries))
	}
}

func TestGetByIdentifierNotFound(t *testing.T) {
	client := setupTestDB(t)

	if _, err := client.GetByIdentifier("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestDeleteByIdentifier(t *testing.T) {
	client := setupTestDB(t)

	if err := client.Upsert("song-a", testFingerprint(1.0, 4), "QmA", ""); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := client.DeleteByIdentifier("song-a"); err != nil {
		t.Fatalf("DeleteByIdentifier failed: %v", err)
	}
	if _, err := client.GetByIdentifier("song-a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := client.DeleteByIdentifier("song-a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for second delete, got %v", err)
	}
}

func TestList(t *testing.T) {
	client := setupTestDB(t)

	if err := client.Upsert("song-a", testFingerprint(1.0, 4), "QmA", "0xA"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := client.Upsert("song-b", testFingerprint(2.0, 4), "QmB", "0xB"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	rows, err := client.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("Expected 2 rows, got %d", len(rows))
	}
}

func TestNilClient(t *testing.T) {
	var client *DBClient

	if err := client.Close(); err != nil {
		t.Errorf("Close on nil client should be a no-op, got %v", err)
	}
	if _, err := client.LoadAll(); err == nil {
		t.Error("Expected error from LoadAll on nil client")
	}
	if err := client.Upsert("x", testFingerprint(1, 2), "", ""); err == nil {
		t.Error("Expected error from Upsert on nil client")
	}
}
