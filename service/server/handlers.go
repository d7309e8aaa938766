package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/brojonat/suiscope/service/explain"
	"github.com/brojonat/suiscope/service/llm"
	"github.com/brojonat/suiscope/service/translate"
)

const (
	maxRequestBodySize  = 64 << 10 // identifiers and a few flags
	maxIdentifierLength = 512      // explorer URLs carry a path prefix
)

type explainRequest struct {
	Identifier         string `json:"identifier"`
	IncludeExplanation bool   `json:"include_explanation"`
	Mode               string `json:"mode"`
	SkipCache          bool   `json:"skip_cache"`
}

// handleExplain returns a handler that explains a transaction.
// POST /api/v1/explain
func handleExplain(svc Explainer, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req explainRequest
		if !decodeBody(w, r, &req, logger) {
			return
		}

		if err := validateIdentifier(req.Identifier); err != nil {
			logger.Debug("invalid identifier", "identifier", req.Identifier, "error", err)
			writeValidationError(w, err)
			return
		}

		mode, err := llm.ParseMode(req.Mode)
		if err != nil {
			writeValidationError(w, errorf("%v", err))
			return
		}

		res, err := svc.Explain(r.Context(), explain.Request{
			Identifier:         req.Identifier,
			IncludeExplanation: req.IncludeExplanation,
			Mode:               mode,
			SkipCache:          req.SkipCache,
		})
		if err != nil {
			writeKindError(w, r, err, logger)
			return
		}

		setCacheHeader(w, res.Cached)
		writeJSON(w, res, http.StatusOK)
	})
}

// handleGetTransaction returns a handler that translates a transaction
// without an LLM call.
// GET /api/v1/transactions/{digest}?skip_cache={bool}
func handleGetTransaction(svc Explainer, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, ok := translateFromPath(w, r, svc, logger)
		if !ok {
			return
		}
		writeJSON(w, res.Transaction, http.StatusOK)
	})
}

type flowResponse struct {
	Digest    string                    `json:"digest"`
	Type      translate.TransactionType `json:"type"`
	Flow      translate.FlowGraph       `json:"flow"`
	Steps     []translate.Step          `json:"steps"`
	Execution *translate.ExecutionFlow  `json:"execution,omitempty"`
}

// handleGetFlow returns a handler that serves only the visualization data
// of a transaction: flow graph, steps and execution flow.
// GET /api/v1/transactions/{digest}/flow
func handleGetFlow(svc Explainer, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, ok := translateFromPath(w, r, svc, logger)
		if !ok {
			return
		}
		tx := res.Transaction
		writeJSON(w, flowResponse{
			Digest:    tx.Digest,
			Type:      tx.Type,
			Flow:      tx.Flow,
			Steps:     tx.Steps,
			Execution: tx.Execution,
		}, http.StatusOK)
	})
}

func translateFromPath(w http.ResponseWriter, r *http.Request, svc Explainer, logger *slog.Logger) (*explain.Result, bool) {
	identifier := r.PathValue("digest")
	if err := validateIdentifier(identifier); err != nil {
		writeValidationError(w, err)
		return nil, false
	}

	skipCache := false
	if v := r.URL.Query().Get("skip_cache"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeValidationError(w, errorf("invalid skip_cache: must be true or false"))
			return nil, false
		}
		skipCache = b
	}

	res, err := svc.Explain(r.Context(), explain.Request{Identifier: identifier, SkipCache: skipCache})
	if err != nil {
		writeKindError(w, r, err, logger)
		return nil, false
	}
	setCacheHeader(w, res.Cached)
	return res, true
}

func setCacheHeader(w http.ResponseWriter, cached bool) {
	if cached {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
}

// decodeBody reads a size-limited JSON body into v, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}, logger *slog.Logger) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeValidationError(w, errorf("request body too large: maximum size is %d bytes", maxRequestBodySize))
			return false
		}
		logger.Debug("invalid request body", "error", err)
		writeValidationError(w, errorf("invalid request body"))
		return false
	}
	return true
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error     string       `json:"error"`
	Kind      explain.Kind `json:"kind"`
	Remedy    string       `json:"remedy"`
	RequestID string       `json:"request_id,omitempty"`
}

// statusForKind maps an error kind to its HTTP status.
func statusForKind(kind explain.Kind) int {
	switch kind {
	case explain.KindInvalidInput:
		return http.StatusBadRequest
	case explain.KindNotFound:
		return http.StatusNotFound
	case explain.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeKindError classifies err and writes the user-facing message and remedy.
// Causes are logged, never returned to the client.
func writeKindError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	kind := explain.KindOf(err)
	status := statusForKind(kind)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "kind", kind, "request_id", RequestID(r.Context()), "error", err)
	} else {
		logger.DebugContext(r.Context(), "request rejected", "kind", kind, "error", err)
	}
	writeJSON(w, errorResponse{
		Error:     explain.Message(kind),
		Kind:      kind,
		Remedy:    explain.Remedy(kind),
		RequestID: RequestID(r.Context()),
	}, status)
}

// writeValidationError writes a 400 with the validation message.
func writeValidationError(w http.ResponseWriter, err error) {
	writeJSON(w, errorResponse{
		Error:  err.Error(),
		Kind:   explain.KindInvalidInput,
		Remedy: explain.Remedy(explain.KindInvalidInput),
	}, http.StatusBadRequest)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response without a kind.
func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// validateIdentifier performs cheap checks before the identifier reaches
// digest normalization.
func validateIdentifier(identifier string) error {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return errorf("identifier is required")
	}

	if len(identifier) > maxIdentifierLength {
		return errorf("identifier too long: maximum length is %d characters", maxIdentifierLength)
	}

	for _, r := range identifier {
		if r == 0 || unicode.IsControl(r) {
			return errorf("invalid characters in identifier: control characters not allowed")
		}
	}

	return nil
}

// errorf is a helper to format error strings.
func errorf(format string, args ...interface{}) error {
	return &validationError{msg: strings.TrimSpace(fmt.Sprintf(format, args...))}
}

type validationError struct {
	msg string
}

func (e *validationError) Error() string {
	return e.msg
}
