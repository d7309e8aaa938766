// Package explain is the boundary between callers and the translation core:
// it normalizes identifiers, fetches and enriches raw data, runs the
// translator and optionally asks the LLM for a narrative.
package explain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/brojonat/suiscope/service/llm"
	"github.com/brojonat/suiscope/service/metrics"
	natspkg "github.com/brojonat/suiscope/service/nats"
	"github.com/brojonat/suiscope/service/sui"
	"github.com/brojonat/suiscope/service/translate"
	"golang.org/x/sync/errgroup"
)

// Enricher returns optional secondary data. (nil, nil) means nothing known.
type Enricher interface {
	GetEnrichment(ctx context.Context, digest string) (*translate.Enrichment, error)
}

// CoinMetadataSource looks up display metadata for coin types.
type CoinMetadataSource interface {
	GetCoinMetadata(ctx context.Context, coinType string) (*sui.CoinMetadata, error)
}

// Cache stores translations by translator fingerprint and digest.
type Cache interface {
	Get(ctx context.Context, fingerprint, digest string) (*translate.TranslatedTransaction, bool, error)
	Set(ctx context.Context, fingerprint string, tx *translate.TranslatedTransaction) error
	Delete(ctx context.Context, fingerprint, digest string) error
}

// Explainer produces LLM narratives.
type Explainer interface {
	ExplainTransaction(ctx context.Context, tx *translate.TranslatedTransaction, mode llm.Mode) (*llm.Explanation, error)
}

// Deps are the collaborators of a Service. Only Fetcher and Translator are
// required; every other field may be nil to disable that feature.
type Deps struct {
	Fetcher    RawFetcher
	Translator *translate.Translator
	Enricher   Enricher
	Coins      CoinMetadataSource
	Cache      Cache
	Explainer  Explainer
	Publisher  natspkg.Publisher
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

// Service explains transactions.
type Service struct {
	deps Deps
}

// NewService creates a Service.
func NewService(deps Deps) *Service {
	return &Service{deps: deps}
}

// Request is one explain call.
type Request struct {
	Identifier         string
	IncludeExplanation bool
	Mode               llm.Mode
	SkipCache          bool
}

// Result is the translated transaction plus the optional narrative. When an
// explanation was requested but could not be produced, ExplanationError
// says why and Explanation is nil.
type Result struct {
	Transaction      *translate.TranslatedTransaction `json:"transaction"`
	Explanation      *llm.Explanation                 `json:"explanation,omitempty"`
	ExplanationError string                           `json:"explanation_error,omitempty"`
	Cached           bool                             `json:"cached"`
}

const maxMetadataLookups = 4

// Translate returns the translation of identifier without an LLM call.
func (s *Service) Translate(ctx context.Context, identifier string) (*translate.TranslatedTransaction, error) {
	res, err := s.Explain(ctx, Request{Identifier: identifier})
	if err != nil {
		return nil, err
	}
	return res.Transaction, nil
}

// Explain runs the full pipeline. Returned errors are *Error values.
func (s *Service) Explain(ctx context.Context, req Request) (*Result, error) {
	logger := s.deps.Logger

	digest, err := sui.NormalizeDigest(req.Identifier)
	if err != nil {
		return nil, newError(KindInvalidInput, err)
	}

	res := &Result{}
	if tx, ok := s.cached(ctx, digest, req.SkipCache); ok {
		res.Transaction = tx
		res.Cached = true
	} else {
		tx, err := s.translate(ctx, digest)
		if err != nil {
			return nil, err
		}
		res.Transaction = tx
		s.store(ctx, tx)
		s.publish(ctx, tx)
	}

	if req.IncludeExplanation {
		mode := req.Mode
		if mode == "" {
			mode = llm.ModeFull
		}
		res.Explanation, res.ExplanationError = s.explain(ctx, res.Transaction, mode)
	}

	logger.InfoContext(ctx, "transaction explained",
		"digest", digest,
		"type", res.Transaction.Type,
		"cached", res.Cached,
		"explanation", res.Explanation != nil,
	)
	return res, nil
}

// cached looks digest up. Skipping the cache also evicts any entry so the
// fresh translation replaces it.
func (s *Service) cached(ctx context.Context, digest string, skip bool) (*translate.TranslatedTransaction, bool) {
	if s.deps.Cache == nil {
		return nil, false
	}
	fingerprint := s.deps.Translator.Fingerprint()
	if skip {
		if err := s.deps.Cache.Delete(ctx, fingerprint, digest); err != nil {
			s.deps.Logger.WarnContext(ctx, "translation cache eviction failed", "digest", digest, "error", err)
		}
		return nil, false
	}
	tx, ok, err := s.deps.Cache.Get(ctx, fingerprint, digest)
	if err != nil {
		s.deps.Logger.WarnContext(ctx, "translation cache lookup failed", "digest", digest, "error", err)
		return nil, false
	}
	return tx, ok
}

// translate fetches the raw transaction and secondary data concurrently and
// runs the core.
func (s *Service) translate(ctx context.Context, digest string) (*translate.TranslatedTransaction, error) {
	var (
		raw        *sui.RawTransaction
		enrichment *translate.Enrichment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		raw, err = s.deps.Fetcher.GetTransaction(gctx, digest)
		return err
	})
	if s.deps.Enricher != nil {
		g.Go(func() error {
			e, err := s.deps.Enricher.GetEnrichment(gctx, digest)
			if err != nil {
				s.enrichmentFailed(gctx, "indexer", digest, err)
				return nil
			}
			enrichment = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		kind := KindOf(err)
		if kind == KindInternal && errors.Is(err, context.DeadlineExceeded) {
			kind = KindUpstream
		}
		return nil, newError(kind, err)
	}
	if raw == nil {
		return nil, newError(KindNotFound, sui.ErrTransactionNotFound)
	}

	enrichment = s.addCoinMetadata(ctx, raw, enrichment)

	start := time.Now()
	tx := s.deps.Translator.Translate(raw, enrichment)
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordTranslation(string(tx.Type), tx.Status, time.Since(start).Seconds())
	}
	return tx, nil
}

// addCoinMetadata fills symbols and decimals the indexer did not supply.
func (s *Service) addCoinMetadata(ctx context.Context, raw *sui.RawTransaction, enrichment *translate.Enrichment) *translate.Enrichment {
	if s.deps.Coins == nil {
		return enrichment
	}

	var missing []string
	seen := make(map[string]bool)
	for _, bc := range raw.BalanceChanges {
		if bc.CoinType == sui.NativeCoinType || seen[bc.CoinType] {
			continue
		}
		seen[bc.CoinType] = true
		if enrichment != nil {
			if _, ok := enrichment.Coins[bc.CoinType]; ok {
				continue
			}
		}
		missing = append(missing, bc.CoinType)
	}
	if len(missing) == 0 {
		return enrichment
	}

	found := make([]*sui.CoinMetadata, len(missing))
	var g errgroup.Group
	g.SetLimit(maxMetadataLookups)
	for i, coinType := range missing {
		g.Go(func() error {
			md, err := s.deps.Coins.GetCoinMetadata(ctx, coinType)
			if err != nil {
				s.enrichmentFailed(ctx, "coin_metadata", raw.Digest, err)
				return nil
			}
			found[i] = md
			return nil
		})
	}
	_ = g.Wait()

	for _, md := range found {
		if md == nil {
			continue
		}
		if enrichment == nil {
			enrichment = &translate.Enrichment{}
		}
		if enrichment.Coins == nil {
			enrichment.Coins = make(map[string]translate.CoinInfo)
		}
		enrichment.Coins[md.CoinType] = translate.CoinInfo{Symbol: md.Symbol, Decimals: md.Decimals}
	}
	return enrichment
}

func (s *Service) store(ctx context.Context, tx *translate.TranslatedTransaction) {
	if s.deps.Cache == nil {
		return
	}
	if err := s.deps.Cache.Set(ctx, s.deps.Translator.Fingerprint(), tx); err != nil {
		s.deps.Logger.WarnContext(ctx, "failed to cache translation", "digest", tx.Digest, "error", err)
	}
}

func (s *Service) publish(ctx context.Context, tx *translate.TranslatedTransaction) {
	if s.deps.Publisher == nil {
		return
	}
	if err := s.deps.Publisher.PublishExplained(ctx, natspkg.FromTranslation(tx)); err != nil {
		s.deps.Logger.WarnContext(ctx, "failed to publish explained event", "digest", tx.Digest, "error", err)
	}
}

func (s *Service) explain(ctx context.Context, tx *translate.TranslatedTransaction, mode llm.Mode) (*llm.Explanation, string) {
	if s.deps.Explainer == nil {
		return nil, "explanations are not configured on this server"
	}
	e, err := s.deps.Explainer.ExplainTransaction(ctx, tx, mode)
	if err != nil {
		s.enrichmentFailed(ctx, "llm", tx.Digest, err)
		return nil, fmt.Sprintf("%s %s", Message(KindEnrichment), Remedy(KindEnrichment))
	}
	return e, ""
}

func (s *Service) enrichmentFailed(ctx context.Context, source, digest string, err error) {
	s.deps.Logger.WarnContext(ctx, "enrichment failed",
		"source", source,
		"digest", digest,
		"error", err,
	)
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordEnrichmentFailure(source)
	}
}
