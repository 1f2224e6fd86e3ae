// Package memory provides an in-memory pin gateway for tests and local
// runs. Content lives in a map keyed by its SHA-256 digest, and failures
// can be injected to exercise the best-effort unpin paths.
package memory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sync"

	"github.com/zeroten/pindex/pkg/metadata"
)

// Gateway is an in-memory metadata.PinGateway. The zero value is ready to
// use. All methods are safe for concurrent use.
type Gateway struct {
	mu      sync.Mutex
	content map[metadata.ContentHandle][]byte

	// PinErr and UnpinErr, when set, are returned by the corresponding
	// operation instead of touching the map. Tests use these to simulate
	// an unavailable upstream.
	PinErr   error
	UnpinErr error

	unpinCalls int
}

// Pin stores content and returns its SHA-256 digest as the handle.
func (g *Gateway) Pin(ctx context.Context, name string, content io.Reader) (metadata.ContentHandle, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.PinErr != nil {
		return "", g.PinErr
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}

	sum := sha256.Sum256(data)
	handle := metadata.ContentHandle(hex.EncodeToString(sum[:]))

	if g.content == nil {
		g.content = make(map[metadata.ContentHandle][]byte)
	}
	g.content[handle] = data
	return handle, nil
}

// Unpin removes the content behind handle. Unknown handles are not an
// error.
func (g *Gateway) Unpin(ctx context.Context, handle metadata.ContentHandle) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.unpinCalls++
	if g.UnpinErr != nil {
		return g.UnpinErr
	}
	delete(g.content, handle)
	return nil
}

// Pinned reports whether handle currently has content stored.
func (g *Gateway) Pinned(handle metadata.ContentHandle) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.content[handle]
	return ok
}

// UnpinCalls returns how many times Unpin was invoked, including failed
// attempts.
func (g *Gateway) UnpinCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.unpinCalls
}
