package temporal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/brojonat/suiscope/service/explain"
	"github.com/brojonat/suiscope/service/llm"
	"github.com/brojonat/suiscope/service/metrics"
	natspkg "github.com/brojonat/suiscope/service/nats"
	"github.com/brojonat/suiscope/service/sui"
	"github.com/brojonat/suiscope/service/translate"
	temporalsdk "go.temporal.io/sdk/temporal"
)

// Non-retryable application error types.
const (
	ErrTypeNotFound     = "NotFound"
	ErrTypeInvalidInput = "InvalidInput"
)

// FetchTransactionInput contains parameters for the FetchTransaction activity.
type FetchTransactionInput struct {
	Digest string `json:"digest"`
}

// FetchTransactionResult carries the raw transaction and any secondary data.
type FetchTransactionResult struct {
	Raw        *sui.RawTransaction   `json:"raw"`
	Enrichment *translate.Enrichment `json:"enrichment,omitempty"`
}

// GenerateExplanationInput contains parameters for the GenerateExplanation activity.
type GenerateExplanationInput struct {
	Transaction *translate.TranslatedTransaction `json:"transaction"`
	Mode        llm.Mode                         `json:"mode"`
}

// PublishExplainedInput contains parameters for the PublishExplained activity.
type PublishExplainedInput struct {
	Transaction *translate.TranslatedTransaction `json:"transaction"`
}

// PublishExplainedResult reports whether an event was sent.
type PublishExplainedResult struct {
	Published bool   `json:"published"`
	Subject   string `json:"subject,omitempty"`
}

// Activities holds the dependencies needed by Temporal activities. Enricher,
// Explainer and Publisher may be nil.
type Activities struct {
	fetcher   explain.RawFetcher
	enricher  explain.Enricher
	explainer explain.Explainer
	publisher natspkg.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewActivities creates a new Activities instance with explicit dependencies.
// If metrics is nil, no metrics will be recorded.
func NewActivities(
	fetcher explain.RawFetcher,
	enricher explain.Enricher,
	explainer explain.Explainer,
	publisher natspkg.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Activities {
	if logger == nil {
		logger = slog.Default()
	}
	return &Activities{
		fetcher:   fetcher,
		enricher:  enricher,
		explainer: explainer,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

func (a *Activities) observe(activity string, start time.Time, errp *error) {
	if a.metrics == nil {
		return
	}
	status := "success"
	if *errp != nil {
		status = "error"
	}
	a.metrics.RecordActivityDuration(activity, status, time.Since(start).Seconds())
}

// FetchTransaction loads the raw transaction and, best-effort, secondary
// enrichment. Not-found and invalid digests are not retried.
func (a *Activities) FetchTransaction(ctx context.Context, input FetchTransactionInput) (result *FetchTransactionResult, err error) {
	defer a.observe("FetchTransaction", time.Now(), &err)

	a.logger.DebugContext(ctx, "fetching transaction", "digest", input.Digest)

	raw, err := a.fetcher.GetTransaction(ctx, input.Digest)
	if err != nil {
		switch {
		case errors.Is(err, sui.ErrTransactionNotFound):
			return nil, temporalsdk.NewNonRetryableApplicationError(err.Error(), ErrTypeNotFound, err)
		case errors.Is(err, sui.ErrInvalidIdentifier):
			return nil, temporalsdk.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidInput, err)
		}
		a.logger.ErrorContext(ctx, "failed to fetch transaction", "digest", input.Digest, "error", err)
		return nil, fmt.Errorf("failed to fetch transaction: %w", err)
	}
	if raw == nil {
		return nil, temporalsdk.NewNonRetryableApplicationError("transaction not found", ErrTypeNotFound, sui.ErrTransactionNotFound)
	}

	result = &FetchTransactionResult{Raw: raw}
	if a.enricher != nil {
		e, err := a.enricher.GetEnrichment(ctx, input.Digest)
		if err != nil {
			a.logger.WarnContext(ctx, "enrichment failed", "digest", input.Digest, "error", err)
			if a.metrics != nil {
				a.metrics.RecordEnrichmentFailure("indexer")
			}
		} else {
			result.Enrichment = e
		}
	}
	return result, nil
}

// GenerateExplanation asks the LLM for a narrative of a translated transaction.
func (a *Activities) GenerateExplanation(ctx context.Context, input GenerateExplanationInput) (result *llm.Explanation, err error) {
	defer a.observe("GenerateExplanation", time.Now(), &err)

	if a.explainer == nil {
		return nil, temporalsdk.NewNonRetryableApplicationError("explanations are not configured", "NotConfigured", nil)
	}
	if input.Transaction == nil {
		return nil, temporalsdk.NewNonRetryableApplicationError("transaction is required", ErrTypeInvalidInput, nil)
	}

	result, err = a.explainer.ExplainTransaction(ctx, input.Transaction, input.Mode)
	if err != nil {
		a.logger.WarnContext(ctx, "explanation failed", "digest", input.Transaction.Digest, "error", err)
		return nil, fmt.Errorf("failed to generate explanation: %w", err)
	}
	return result, nil
}

// PublishExplained sends the explained-transaction event, if a publisher is configured.
func (a *Activities) PublishExplained(ctx context.Context, input PublishExplainedInput) (result *PublishExplainedResult, err error) {
	defer a.observe("PublishExplained", time.Now(), &err)

	if a.publisher == nil || input.Transaction == nil {
		return &PublishExplainedResult{}, nil
	}

	event := natspkg.FromTranslation(input.Transaction)
	if err := a.publisher.PublishExplained(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to publish explained event: %w", err)
	}
	return &PublishExplainedResult{Published: true, Subject: event.Subject()}, nil
}
