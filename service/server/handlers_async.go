package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/brojonat/suiscope/service/explain"
	"github.com/brojonat/suiscope/service/llm"
	"github.com/brojonat/suiscope/service/sui"
	"github.com/brojonat/suiscope/service/temporal"
	"github.com/brojonat/suiscope/service/translate"
)

type asyncExplainRequest struct {
	Identifier         string `json:"identifier"`
	IncludeExplanation bool   `json:"include_explanation"`
	Mode               string `json:"mode"`
}

type asyncExplainResponse struct {
	WorkflowID string `json:"workflow_id"`
	Digest     string `json:"digest"`
	StatusURL  string `json:"status_url"`
}

// handleStartAsyncExplain returns a handler that starts an explain workflow
// and responds immediately with its ID.
// POST /api/v1/explain/async
func handleStartAsyncExplain(runner temporal.Runner, opts translate.Options, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req asyncExplainRequest
		if !decodeBody(w, r, &req, logger) {
			return
		}

		if err := validateIdentifier(req.Identifier); err != nil {
			writeValidationError(w, err)
			return
		}
		digest, err := sui.NormalizeDigest(req.Identifier)
		if err != nil {
			writeKindError(w, r, &explain.Error{Kind: explain.KindInvalidInput, Err: err}, logger)
			return
		}

		mode, err := llm.ParseMode(req.Mode)
		if err != nil {
			writeValidationError(w, errorf("%v", err))
			return
		}

		id, err := runner.StartExplain(r.Context(), temporal.ExplainInput{
			Digest:             digest,
			IncludeExplanation: req.IncludeExplanation,
			Mode:               mode,
			SUIPriceUSD:        opts.SUIPriceUSD,
			BuySellPolicy:      opts.BuySellPolicy,
		})
		if err != nil {
			logger.Error("failed to start explain workflow", "digest", digest, "error", err)
			writeError(w, "failed to start explain workflow", http.StatusInternalServerError)
			return
		}

		logger.Info("explain workflow started", "digest", digest, "workflow_id", id)
		writeJSON(w, asyncExplainResponse{
			WorkflowID: id,
			Digest:     digest,
			StatusURL:  "/api/v1/explain/async/" + id,
		}, http.StatusAccepted)
	})
}

// handleGetAsyncExplain returns a handler that reports workflow status and,
// once completed, its result.
// GET /api/v1/explain/async/{workflow_id}
func handleGetAsyncExplain(runner temporal.Runner, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("workflow_id")
		if id == "" {
			writeValidationError(w, errorf("workflow_id is required"))
			return
		}

		st, err := runner.GetExplainStatus(r.Context(), id)
		if err != nil {
			if errors.Is(err, temporal.ErrWorkflowNotFound) {
				writeError(w, "workflow not found", http.StatusNotFound)
				return
			}
			logger.Error("failed to get workflow status", "workflow_id", id, "error", err)
			writeError(w, "failed to get workflow status", http.StatusInternalServerError)
			return
		}

		writeJSON(w, st, http.StatusOK)
	})
}
