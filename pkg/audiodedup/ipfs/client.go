package ipfs

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Client adds files to IPFS through the local ipfs CLI, mirroring how the
// transcoder shells out to ffmpeg. The returned hash is an opaque
// content-address handle; nothing downstream interprets it.
type Client struct {
	Binary string
}

func NewClient() *Client {
	return &Client{Binary: "ipfs"}
}

// Add pins a file and returns its content hash (`ipfs add -Q`).
func (c *Client) Add(ctx context.Context, path string) (string, error) {
	// Defensive timeout
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 60*time.Second)
		defer cancel()
	}

	bin := c.Binary
	if bin == "" {
		bin = "ipfs"
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "add", "-Q", path)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("ipfs add failed: %v (%s)", err, strings.TrimSpace(stderr.String()))
	}

	hash := strings.TrimSpace(stdout.String())
	if hash == "" {
		return "", fmt.Errorf("ipfs add returned no hash for %s", path)
	}
	return hash, nil
}
