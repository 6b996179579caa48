// Package fetch downloads inbound message media from the messaging provider.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultContentType = "application/octet-stream"

// maxMediaBytes bounds a single download.
const maxMediaBytes = 32 << 20

type Media struct {
	ContentType string
	Data        []byte
}

// Fetcher authenticates with HTTP basic auth using the provider account.
type Fetcher struct {
	client    *http.Client
	accountID string
	authToken string
}

type Option func(*Fetcher)

func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

func New(accountID, authToken string, timeout time.Duration, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{Timeout: timeout},
		accountID: accountID,
		authToken: authToken,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fetcher) Fetch(ctx context.Context, mediaURL string) (*Media, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build media request: %w", err)
	}
	req.SetBasicAuth(f.accountID, f.authToken)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("download media: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read media body: %w", err)
	}
	if len(data) > maxMediaBytes {
		return nil, fmt.Errorf("download media: body exceeds %d bytes", maxMediaBytes)
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = defaultContentType
	}
	return &Media{ContentType: ct, Data: data}, nil
}
