package sui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/brojonat/suiscope/service/metrics"
)

// RetryPolicy controls how transient RPC failures are retried.
type RetryPolicy struct {
	Attempts uint
	Delay    time.Duration
}

// DefaultRetryPolicy is used when a zero policy is supplied.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, Delay: 500 * time.Millisecond}

// Client fetches raw transactions from a Sui full node.
type Client struct {
	rpc      RPCClient
	logger   *slog.Logger
	metrics  *metrics.Metrics
	endpoint string // metrics label, e.g. "mainnet" or the RPC host
	retry    RetryPolicy
}

// NewClient creates a new Sui client. If m is nil no metrics are recorded.
func NewClient(rpcClient RPCClient, endpoint string, policy RetryPolicy, m *metrics.Metrics, logger *slog.Logger) *Client {
	if policy.Attempts == 0 {
		policy = DefaultRetryPolicy
	}
	return &Client{
		rpc:      rpcClient,
		logger:   logger,
		metrics:  m,
		endpoint: endpoint,
		retry:    policy,
	}
}

// GetTransaction fetches and parses one transaction block. The digest must
// already be normalized. Not-found is never retried.
func (c *Client) GetTransaction(ctx context.Context, digest string) (*RawTransaction, error) {
	payload, err := c.GetTransactionPayload(ctx, digest)
	if err != nil {
		return nil, err
	}
	tx, err := ParseTransactionBlock(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if tx.Digest == "" {
		tx.Digest = digest
	}
	return tx, nil
}

// GetTransactionPayload returns the raw JSON result of
// sui_getTransactionBlock, for callers that archive it before parsing.
func (c *Client) GetTransactionPayload(ctx context.Context, digest string) (json.RawMessage, error) {
	payload, err := retry.DoWithData(
		func() (json.RawMessage, error) {
			start := time.Now()
			res, err := c.rpc.GetTransactionBlock(ctx, digest)
			err = classifyRPCError(res, err)

			status := "success"
			if err != nil {
				status = "error"
			}
			if c.metrics != nil {
				c.metrics.RecordRPCCall("sui_getTransactionBlock", status, c.endpoint, time.Since(start).Seconds())
			}
			return res, err
		},
		retry.Context(ctx),
		retry.Attempts(c.retry.Attempts),
		retry.Delay(c.retry.Delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, ErrTransactionNotFound)
		}),
		retry.OnRetry(func(attempt uint, err error) {
			c.logger.WarnContext(ctx, "retrying sui_getTransactionBlock",
				"digest", digest,
				"attempt", attempt+1,
				"error", err,
			)
			if c.metrics != nil {
				c.metrics.RecordRPCRetry("sui_getTransactionBlock", retryReason(err))
			}
		}),
	)
	if err != nil {
		if !errors.Is(err, ErrTransactionNotFound) && !errors.Is(err, ErrUpstream) {
			err = fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		c.logger.ErrorContext(ctx, "failed to fetch transaction", "digest", digest, "error", err)
		return nil, err
	}

	c.logger.DebugContext(ctx, "fetched transaction", "digest", digest, "bytes", len(payload))
	return payload, nil
}

// GetCoinMetadata returns display metadata for a coin type. A single attempt
// is made; callers treat failure as missing metadata.
func (c *Client) GetCoinMetadata(ctx context.Context, coinType string) (*CoinMetadata, error) {
	start := time.Now()
	res, err := c.rpc.GetCoinMetadata(ctx, coinType)
	status := "success"
	if err != nil {
		status = "error"
	}
	if c.metrics != nil {
		c.metrics.RecordRPCCall("suix_getCoinMetadata", status, c.endpoint, time.Since(start).Seconds())
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if isNull(res) {
		return nil, fmt.Errorf("no metadata for %s", coinType)
	}

	var wire struct {
		Symbol   string `json:"symbol"`
		Name     string `json:"name"`
		Decimals int    `json:"decimals"`
	}
	if err := json.Unmarshal(res, &wire); err != nil {
		return nil, fmt.Errorf("failed to decode coin metadata: %w", err)
	}
	return &CoinMetadata{
		CoinType: coinType,
		Symbol:   wire.Symbol,
		Name:     wire.Name,
		Decimals: wire.Decimals,
	}, nil
}

// classifyRPCError maps node responses onto the package sentinels.
func classifyRPCError(res json.RawMessage, err error) error {
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "could not find") || strings.Contains(msg, "not found") {
			return fmt.Errorf("%w: %v", ErrTransactionNotFound, err)
		}
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if isNull(res) {
		return ErrTransactionNotFound
	}
	return nil
}

func retryReason(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "429"):
		return "rate_limit"
	case strings.Contains(strings.ToLower(msg), "timeout"), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}

func isNull(b json.RawMessage) bool {
	t := bytes.TrimSpace(b)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}
