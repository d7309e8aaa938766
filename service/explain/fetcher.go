package explain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/brojonat/suiscope/service/db"
	"github.com/brojonat/suiscope/service/sui"
)

// RawFetcher returns the decoded raw transaction for a canonical digest.
type RawFetcher interface {
	GetTransaction(ctx context.Context, digest string) (*sui.RawTransaction, error)
}

// PayloadSource fetches undecoded RPC payloads. *sui.Client implements it.
type PayloadSource interface {
	GetTransactionPayload(ctx context.Context, digest string) (json.RawMessage, error)
}

// Archive is the subset of *db.Store used for read-through caching.
type Archive interface {
	GetRawTransaction(ctx context.Context, digest string) (*db.RawTransaction, error)
	UpsertRawTransaction(ctx context.Context, params db.UpsertRawTransactionParams) (*db.RawTransaction, error)
}

// ArchiveFetcher serves raw transactions from the archive and falls back to
// the RPC node, archiving what it fetched. Archive failures never fail a fetch.
type ArchiveFetcher struct {
	archive Archive
	source  PayloadSource
	logger  *slog.Logger
}

// NewArchiveFetcher creates a read-through fetcher.
func NewArchiveFetcher(archive Archive, source PayloadSource, logger *slog.Logger) *ArchiveFetcher {
	return &ArchiveFetcher{archive: archive, source: source, logger: logger}
}

// GetTransaction implements RawFetcher.
func (f *ArchiveFetcher) GetTransaction(ctx context.Context, digest string) (*sui.RawTransaction, error) {
	row, err := f.archive.GetRawTransaction(ctx, digest)
	switch {
	case err == nil:
		raw, perr := sui.ParseTransactionBlock(row.Payload)
		if perr == nil {
			if raw.Digest == "" {
				raw.Digest = digest
			}
			f.logger.DebugContext(ctx, "raw transaction served from archive", "digest", digest)
			return raw, nil
		}
		f.logger.WarnContext(ctx, "archived payload unreadable, refetching", "digest", digest, "error", perr)
	case !errors.Is(err, db.ErrNotFound):
		f.logger.WarnContext(ctx, "archive lookup failed", "digest", digest, "error", err)
	}

	payload, err := f.source.GetTransactionPayload(ctx, digest)
	if err != nil {
		return nil, err
	}
	raw, err := sui.ParseTransactionBlock(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sui.ErrUpstream, err)
	}
	if raw.Digest == "" {
		raw.Digest = digest
	}

	_, err = f.archive.UpsertRawTransaction(ctx, db.UpsertRawTransactionParams{
		Digest:     digest,
		Checkpoint: raw.Checkpoint,
		Sender:     raw.Sender,
		Payload:    payload,
	})
	if err != nil {
		f.logger.WarnContext(ctx, "failed to archive raw transaction", "digest", digest, "error", err)
	}
	return raw, nil
}
