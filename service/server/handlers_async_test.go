package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/brojonat/suiscope/service/llm"
	"github.com/brojonat/suiscope/service/temporal"
	"github.com/brojonat/suiscope/service/translate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartAsyncExplain(t *testing.T) {
	opts := translate.Options{SUIPriceUSD: 3.5, BuySellPolicy: translate.PolicySenderNet}

	t.Run("starts workflow with canonical digest", func(t *testing.T) {
		runner := temporal.NewMockRunner()
		handler := handleStartAsyncExplain(runner, opts, discardLogger)

		body := `{"identifier":"https://suiscan.xyz/mainnet/tx/` + validDigest + `","include_explanation":true}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/explain/async", strings.NewReader(body))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusAccepted, w.Code)
		var resp asyncExplainResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, validDigest, resp.Digest)
		assert.Equal(t, "/api/v1/explain/async/"+resp.WorkflowID, resp.StatusURL)

		in, ok := runner.Input(resp.WorkflowID)
		require.True(t, ok)
		assert.Equal(t, validDigest, in.Digest)
		assert.True(t, in.IncludeExplanation)
		assert.Equal(t, llm.ModeFull, in.Mode)
		assert.Equal(t, 3.5, in.SUIPriceUSD)
		assert.Equal(t, translate.PolicySenderNet, in.BuySellPolicy)
	})

	t.Run("rejects invalid digest", func(t *testing.T) {
		runner := temporal.NewMockRunner()
		handler := handleStartAsyncExplain(runner, opts, discardLogger)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/explain/async", strings.NewReader(`{"identifier":"not-a-digest"}`))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid_input", string(decodeError(t, w.Body).Kind))
	})

	t.Run("runner failure", func(t *testing.T) {
		runner := temporal.NewMockRunner()
		runner.SetStartError(errors.New("temporal unavailable"))
		handler := handleStartAsyncExplain(runner, opts, discardLogger)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/explain/async", strings.NewReader(`{"identifier":"`+validDigest+`"}`))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestGetAsyncExplain(t *testing.T) {
	runner := temporal.NewMockRunner()
	mux := http.NewServeMux()
	mux.Handle("GET /api/v1/explain/async/{workflow_id}", handleGetAsyncExplain(runner, discardLogger))

	id, err := runner.StartExplain(context.Background(), temporal.ExplainInput{Digest: validDigest})
	require.NoError(t, err)

	get := func(id string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/explain/async/"+id, nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		return w
	}

	t.Run("running", func(t *testing.T) {
		w := get(id)
		require.Equal(t, http.StatusOK, w.Code)
		var st temporal.ExplainStatus
		require.NoError(t, json.NewDecoder(w.Body).Decode(&st))
		assert.Equal(t, temporal.StatusRunning, st.Status)
		assert.Nil(t, st.Result)
	})

	t.Run("completed", func(t *testing.T) {
		runner.Complete(id, &temporal.ExplainResult{Digest: validDigest, Published: true})

		w := get(id)
		require.Equal(t, http.StatusOK, w.Code)
		var st temporal.ExplainStatus
		require.NoError(t, json.NewDecoder(w.Body).Decode(&st))
		assert.Equal(t, temporal.StatusCompleted, st.Status)
		require.NotNil(t, st.Result)
		assert.Equal(t, validDigest, st.Result.Digest)
	})

	t.Run("unknown workflow", func(t *testing.T) {
		w := get("explain-unknown")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
