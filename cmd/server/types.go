package main

import "time"

// MaxUploadBytes bounds multipart audio payloads (decode time is bounded by
// the request context, not by the core).
const MaxUploadBytes = 50 << 20

// SubmitResponse is the response for POST /api/audios.
type SubmitResponse struct {
	Message    string  `json:"message"`
	Identifier string  `json:"identifier"`
	Duplicate  bool    `json:"duplicate"`
	Similarity float64 `json:"similarity"` // percentage, 0-100
	MatchedID  string  `json:"matched_id,omitempty"`
	IPFSHash   string  `json:"ipfs_hash,omitempty"`
	LedgerTx   string  `json:"ledger_tx,omitempty"`
}

// CheckResponse is the response for POST /api/check.
type CheckResponse struct {
	Duplicate  bool    `json:"duplicate"`
	Similarity float64 `json:"similarity"` // percentage, 0-100
	MatchedID  string  `json:"matched_id,omitempty"`
}

// AudioDTO represents a registered asset in API responses.
type AudioDTO struct {
	Identifier string    `json:"identifier"`
	IPFSHash   string    `json:"ipfs_hash"`
	LedgerTx   string    `json:"ledger_tx,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ListAudiosResponse is the response for GET /api/audios.
type ListAudiosResponse struct {
	Audios []AudioDTO `json:"audios"`
	Count  int        `json:"count"`
}

// DeleteAudioResponse is the response for DELETE /api/audios/{id}.
type DeleteAudioResponse struct {
	Message    string `json:"message"`
	Identifier string `json:"identifier"`
}

// MetricsResponse provides server health and database metrics.
type MetricsResponse struct {
	Status       string `json:"status"`
	DatabasePath string `json:"database_path"`
	RecordCount  int64  `json:"record_count"`
	SampleRate   int    `json:"sample_rate"`
	LedgerRPC    string `json:"ledger_rpc,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
