package temporal

import (
	"fmt"
	"time"

	"github.com/brojonat/suiscope/service/llm"
	"github.com/brojonat/suiscope/service/translate"
	temporalsdk "go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

var a *Activities // for type-safe activity invocation

// ExplainWorkflowName is the registered name of ExplainTransactionWorkflow.
const ExplainWorkflowName = "ExplainTransactionWorkflow"

// ExplainInput is the input to ExplainTransactionWorkflow. Digest must
// already be canonical.
type ExplainInput struct {
	Digest             string                  `json:"digest"`
	IncludeExplanation bool                    `json:"include_explanation"`
	Mode               llm.Mode                `json:"mode"`
	SUIPriceUSD        float64                 `json:"sui_price_usd"`
	BuySellPolicy      translate.BuySellPolicy `json:"buy_sell_policy"`
}

// ExplainResult is the output of ExplainTransactionWorkflow.
type ExplainResult struct {
	Digest           string                           `json:"digest"`
	Transaction      *translate.TranslatedTransaction `json:"transaction,omitempty"`
	Explanation      *llm.Explanation                 `json:"explanation,omitempty"`
	ExplanationError string                           `json:"explanation_error,omitempty"`
	Published        bool                             `json:"published"`
	Error            *string                          `json:"error,omitempty"`
}

// ExplainTransactionWorkflow fetches, translates and optionally explains a
// single transaction.
//
// The workflow performs these steps:
// 1. Fetch the raw transaction and enrichment (FetchTransaction activity)
// 2. Translate it inline; translation is pure so replay is deterministic
// 3. Publish the explained event (PublishExplained activity, best-effort)
// 4. Ask the LLM for a narrative (GenerateExplanation activity, optional)
//
// Only a failed fetch fails the workflow.
func ExplainTransactionWorkflow(ctx workflow.Context, input ExplainInput) (*ExplainResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("ExplainTransactionWorkflow started", "digest", input.Digest)

	result := &ExplainResult{Digest: input.Digest}

	fetchCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 60 * time.Second,
		RetryPolicy: &temporalsdk.RetryPolicy{
			InitialInterval:        time.Second,
			BackoffCoefficient:     2.0,
			MaximumInterval:        30 * time.Second,
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{ErrTypeNotFound, ErrTypeInvalidInput},
		},
	})

	// Step 1: Fetch
	var fetched *FetchTransactionResult
	err := workflow.ExecuteActivity(fetchCtx, a.FetchTransaction, FetchTransactionInput{Digest: input.Digest}).Get(ctx, &fetched)
	if err != nil {
		logger.Error("failed to fetch transaction", "digest", input.Digest, "error", err)
		errMsg := fmt.Sprintf("failed to fetch transaction: %v", err)
		result.Error = &errMsg
		return result, fmt.Errorf("failed to fetch transaction: %w", err)
	}

	// Step 2: Translate
	tx := translate.New(translate.Options{
		SUIPriceUSD:   input.SUIPriceUSD,
		BuySellPolicy: input.BuySellPolicy,
	}).Translate(fetched.Raw, fetched.Enrichment)
	result.Transaction = tx

	logger.Info("translated transaction",
		"digest", input.Digest,
		"type", tx.Type,
		"status", tx.Status,
	)

	// Step 3: Publish
	publishCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporalsdk.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumAttempts:    3,
		},
	})
	var published *PublishExplainedResult
	err = workflow.ExecuteActivity(publishCtx, a.PublishExplained, PublishExplainedInput{Transaction: tx}).Get(ctx, &published)
	if err != nil {
		logger.Warn("failed to publish explained event", "digest", input.Digest, "error", err)
	} else if published != nil {
		result.Published = published.Published
	}

	// Step 4: Explain
	if input.IncludeExplanation {
		llmCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
			StartToCloseTimeout: 2 * time.Minute,
			RetryPolicy: &temporalsdk.RetryPolicy{
				InitialInterval:        2 * time.Second,
				BackoffCoefficient:     2.0,
				MaximumAttempts:        2,
				NonRetryableErrorTypes: []string{"NotConfigured", ErrTypeInvalidInput},
			},
		})
		var explanation *llm.Explanation
		err = workflow.ExecuteActivity(llmCtx, a.GenerateExplanation, GenerateExplanationInput{
			Transaction: tx,
			Mode:        input.Mode,
		}).Get(ctx, &explanation)
		if err != nil {
			logger.Warn("explanation unavailable", "digest", input.Digest, "error", err)
			result.ExplanationError = err.Error()
		} else {
			result.Explanation = explanation
		}
	}

	logger.Info("ExplainTransactionWorkflow completed",
		"digest", input.Digest,
		"published", result.Published,
		"explained", result.Explanation != nil,
	)

	return result, nil
}
