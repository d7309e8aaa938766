package explain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brojonat/suiscope/service/cache"
	"github.com/brojonat/suiscope/service/config"
	"github.com/brojonat/suiscope/service/db"
	"github.com/brojonat/suiscope/service/indexer"
	"github.com/brojonat/suiscope/service/llm"
	"github.com/brojonat/suiscope/service/metrics"
	natspkg "github.com/brojonat/suiscope/service/nats"
	"github.com/brojonat/suiscope/service/sui"
	"github.com/brojonat/suiscope/service/translate"
)

// Stack is a fully wired Service plus the collaborators binaries share with
// the Temporal worker. Optional collaborators are nil when not configured.
type Stack struct {
	Service    *Service
	Translator *translate.Translator
	Sui        *sui.Client
	Fetcher    RawFetcher
	Enricher   Enricher
	Explainer  Explainer
	Publisher  natspkg.Publisher
	Store      *db.Store

	closers []func()
}

// Build connects every collaborator cfg enables. Only the Sui RPC client is
// mandatory; each optional backend is skipped when its URL or key is empty.
func Build(ctx context.Context, cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) (*Stack, error) {
	s := &Stack{}

	s.Sui = sui.NewClient(
		sui.NewRPCClient(cfg.SuiRPCURL),
		sui.EndpointLabel(cfg.SuiRPCURL),
		sui.RetryPolicy{Attempts: uint(cfg.RPCMaxAttempts), Delay: cfg.RPCRetryDelay},
		m,
		logger,
	)
	s.Fetcher = s.Sui
	logger.Info("initialized sui RPC client", "url", cfg.SuiRPCURL, "network", cfg.SuiNetwork)

	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, pool.Close)
		s.Store = db.NewStore(pool, m)
		if err := s.Store.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		s.Fetcher = NewArchiveFetcher(s.Store, s.Sui, logger)
		logger.Info("raw transaction archive enabled")
	}

	if cfg.IndexerURL != "" {
		s.Enricher = indexer.NewClient(cfg.IndexerURL, cfg.IndexerAPIKey, nil, m, logger)
		logger.Info("indexer enrichment enabled", "url", cfg.IndexerURL)
	}

	if cfg.LLMEnabled() {
		s.Explainer = llm.NewClient(llm.Config{
			APIKey:  cfg.LLMAPIKey,
			BaseURL: cfg.LLMBaseURL,
			Model:   cfg.LLMModel,
			Timeout: cfg.LLMTimeout,
		}, m, logger)
		logger.Info("LLM explanations enabled", "model", cfg.LLMModel)
	}

	var translationCache Cache
	if cfg.RedisURL != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = rdb.Close() })
		translationCache = cache.NewTranslationCache(rdb, cfg.CacheTTL, m)
		logger.Info("translation cache enabled", "ttl", cfg.CacheTTL)
	}

	if cfg.NATSURL != "" {
		pub, err := natspkg.NewPublisher(cfg.NATSURL, m, logger)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
		}
		s.closers = append(s.closers, func() { _ = pub.Close() })
		s.Publisher = pub
		logger.Info("connected to NATS", "url", cfg.NATSURL)
	}

	s.Translator = translate.New(translate.Options{
		SUIPriceUSD:   cfg.SUIPriceUSD,
		BuySellPolicy: cfg.BuySellPolicy,
	})

	s.Service = NewService(Deps{
		Fetcher:    s.Fetcher,
		Translator: s.Translator,
		Enricher:   s.Enricher,
		Coins:      s.Sui,
		Cache:      translationCache,
		Explainer:  s.Explainer,
		Publisher:  s.Publisher,
		Metrics:    m,
		Logger:     logger,
	})
	return s, nil
}

// Close releases connections in reverse order of acquisition.
func (s *Stack) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
