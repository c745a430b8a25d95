package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// DefaultMethod is the registry node's registration RPC. The node answers
// with the transaction hash of the on-chain registration; this client never
// interprets that hash.
const DefaultMethod = "registry_registerAudio"

// ErrNoEndpoint is returned by Registrar when constructed without a node URL.
var ErrNoEndpoint = errors.New("ledger endpoint not configured")

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result string    `json:"result"`
	Error  *rpcError `json:"error"`
}

// Registrar registers accepted assets against a registry node over JSON-RPC.
type Registrar struct {
	Endpoint string
	Method   string
	Client   *http.Client
}

func NewRegistrar(endpoint string) *Registrar {
	return &Registrar{
		Endpoint: endpoint,
		Method:   DefaultMethod,
		Client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Register submits (identifier, contentRef) to the registry and returns the
// transaction identifier.
func (r *Registrar) Register(ctx context.Context, identifier, contentRef string) (string, error) {
	if r.Endpoint == "" {
		return "", ErrNoEndpoint
	}

	method := r.Method
	if method == "" {
		method = DefaultMethod
	}

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  []any{identifier, contentRef},
	})
	if err != nil {
		return "", fmt.Errorf("encoding rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ledger registration failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ledger node returned status %d", resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return "", fmt.Errorf("decoding rpc response: %w", err)
	}
	if rpcResp.Error != nil {
		return "", fmt.Errorf("ledger node error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if rpcResp.Result == "" {
		return "", errors.New("ledger node returned empty transaction id")
	}

	return rpcResp.Result, nil
}

// Disabled is a registrar for installs without a registry node. It returns an
// empty transaction id so records carry no ledger reference.
type Disabled struct{}

func NewDisabled() Disabled { return Disabled{} }

func (Disabled) Register(ctx context.Context, identifier, contentRef string) (string, error) {
	return "", nil
}
