// Package indexer fetches optional secondary data (coin metadata, address
// labels, protocol names) for a transaction from an indexing API.
package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/brojonat/suiscope/service/metrics"
	"github.com/brojonat/suiscope/service/translate"
)

// Client is the HTTP client for the indexing API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewClient creates an indexer client. A nil httpClient gets a 10s timeout.
func NewClient(baseURL, apiKey string, httpClient *http.Client, m *metrics.Metrics, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
		metrics:    m,
		logger:     logger,
	}
}

type transactionResponse struct {
	Digest   string `json:"digest"`
	Protocol string `json:"protocol"`
	Coins    []struct {
		CoinType string `json:"coin_type"`
		Symbol   string `json:"symbol"`
		Decimals *int   `json:"decimals"`
	} `json:"coins"`
	Labels []struct {
		Address string `json:"address"`
		Label   string `json:"label"`
	} `json:"labels"`
}

// GetEnrichment returns secondary data for a digest. An unknown digest
// yields (nil, nil); any other failure is an error the caller may ignore.
func (c *Client) GetEnrichment(ctx context.Context, digest string) (*translate.Enrichment, error) {
	u := fmt.Sprintf("%s/v1/transactions/%s", c.baseURL, url.PathEscape(digest))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.fail()
		return nil, fmt.Errorf("indexer request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		c.logger.DebugContext(ctx, "indexer has no record", "digest", digest)
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		c.fail()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("indexer returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var body transactionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.fail()
		return nil, fmt.Errorf("failed to decode indexer response: %w", err)
	}

	return toEnrichment(&body), nil
}

func toEnrichment(body *transactionResponse) *translate.Enrichment {
	e := &translate.Enrichment{Protocol: body.Protocol}
	for _, coin := range body.Coins {
		if coin.CoinType == "" {
			continue
		}
		if e.Coins == nil {
			e.Coins = make(map[string]translate.CoinInfo)
		}
		info := translate.CoinInfo{Symbol: coin.Symbol}
		if coin.Decimals != nil {
			info.Decimals = *coin.Decimals
		}
		e.Coins[coin.CoinType] = info
	}
	for _, l := range body.Labels {
		if l.Address == "" || l.Label == "" {
			continue
		}
		if e.Labels == nil {
			e.Labels = make(map[string]string)
		}
		e.Labels[l.Address] = l.Label
	}
	return e
}

func (c *Client) fail() {
	if c.metrics != nil {
		c.metrics.RecordEnrichmentFailure("indexer")
	}
}
