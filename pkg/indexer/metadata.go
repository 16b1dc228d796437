package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/openlaunch/launchpad-indexer/internal/metrics"
	"github.com/openlaunch/launchpad-indexer/pkg/launch"
)

const maxMetadataBytes = 1 << 20 // 1 MiB

// MetadataFetcher loads the off-chain metadata document referenced by a
// token's metadata URI. Fetching is best-effort: the token row is written
// either way, and a failure only costs the metadata snapshot.
type MetadataFetcher struct {
	client *http.Client
	logger *zap.Logger
}

// NewMetadataFetcher creates a fetcher with a bounded per-request timeout.
func NewMetadataFetcher(timeout time.Duration, logger *zap.Logger) *MetadataFetcher {
	return &MetadataFetcher{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Fetch returns the parsed metadata document, or nil when the URI is
// unreachable or malformed.
func (m *MetadataFetcher) Fetch(ctx context.Context, uri string) *launch.TokenMetadata {
	meta, err := m.fetch(ctx, uri)
	if err != nil {
		metrics.MetadataFetches.WithLabelValues("error").Inc()
		m.logger.Warn("Failed to fetch token metadata",
			zap.String("uri", uri),
			zap.Error(err))
		return nil
	}
	metrics.MetadataFetches.WithLabelValues("ok").Inc()
	return meta
}

func (m *MetadataFetcher) fetch(ctx context.Context, uri string) (*launch.TokenMetadata, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid metadata URI: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported metadata URI scheme %q", parsed.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metadata request returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxMetadataBytes))
	if err != nil {
		return nil, err
	}

	var meta launch.TokenMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata JSON: %w", err)
	}
	return &meta, nil
}
