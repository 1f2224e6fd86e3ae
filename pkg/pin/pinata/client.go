// Package pinata implements the pin gateway against the Pinata pinning
// service. Content is pinned to IPFS via pinFileToIPFS and released via the
// unpin endpoint; the returned CID is the content handle.
package pinata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/zeroten/pindex/internal/logger"
	"github.com/zeroten/pindex/pkg/metadata"
)

const defaultBaseURL = "https://api.pinata.cloud"

// Gateway is a Pinata-backed metadata.PinGateway.
//
// Pin authenticates with the api key pair, Unpin with the JWT; that split
// mirrors how Pinata scopes the two endpoints.
type Gateway struct {
	baseURL   string
	apiKey    string
	apiSecret string
	jwt       string
	client    *http.Client
}

// Config contains the Pinata credentials and connection settings.
type Config struct {
	// BaseURL overrides the Pinata API endpoint. Empty means production.
	BaseURL string

	// APIKey and APISecret authenticate pin requests
	APIKey    string
	APISecret string

	// JWT authenticates unpin requests
	JWT string

	// Timeout bounds each HTTP request (default: 30s)
	Timeout time.Duration
}

// New creates a Pinata gateway from config.
func New(cfg Config) (*Gateway, error) {
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("pinata api key and secret are required")
	}
	if cfg.JWT == "" {
		return nil, fmt.Errorf("pinata jwt is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Gateway{
		baseURL:   baseURL,
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		jwt:       cfg.JWT,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

// Pin uploads content under name and returns the resulting CID.
func (g *Gateway) Pin(ctx context.Context, name string, content io.Reader) (metadata.ContentHandle, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", name)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, content); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/pinning/pinFileToIPFS", pr)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("pinata_api_key", g.apiKey)
	req.Header.Set("pinata_secret_api_key", g.apiSecret)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("pinata pin request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("pinata pin returned status %d: %s", resp.StatusCode, body)
	}

	var result struct {
		IpfsHash  string `json:"IpfsHash"`
		PinSize   int64  `json:"PinSize"`
		Timestamp string `json:"Timestamp"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode pinata response: %w", err)
	}
	if result.IpfsHash == "" {
		return "", fmt.Errorf("pinata response missing IpfsHash")
	}

	logger.Debug("pinned %s as %s (%d bytes)", name, result.IpfsHash, result.PinSize)
	return metadata.ContentHandle(result.IpfsHash), nil
}

// Unpin releases the content behind handle. Unpinning a CID Pinata no
// longer knows is treated as success.
func (g *Gateway) Unpin(ctx context.Context, handle metadata.ContentHandle) error {
	url := g.baseURL + "/pinning/unpin/" + string(handle)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+g.jwt)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("pinata unpin request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNotFound:
		return nil
	default:
		return fmt.Errorf("pinata unpin returned status %d", resp.StatusCode)
	}
}
