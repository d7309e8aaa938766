package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brojonat/suiscope/service/translate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const digest = "4wBqpZM9xaSheZzJSMawUKKwhdpChKbZ5eu5ky4Vigw"

func TestExplain_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/api/v1/explain", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req ExplainRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, digest, req.Identifier)
		assert.True(t, req.IncludeExplanation)
		assert.Equal(t, "simple", req.Mode)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"transaction": map[string]interface{}{"digest": digest, "type": "transfer", "status": "success"},
			"explanation": map[string]interface{}{"mode": "simple", "overview": "Sent 1 SUI."},
			"cached":      true,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil)
	resp, err := client.Explain(context.Background(), ExplainRequest{Identifier: digest, IncludeExplanation: true, Mode: "simple"})

	require.NoError(t, err)
	require.NotNil(t, resp.Transaction)
	assert.Equal(t, translate.TypeTransfer, resp.Transaction.Type)
	require.NotNil(t, resp.Explanation)
	assert.Equal(t, "Sent 1 SUI.", resp.Explanation.Overview)
	assert.True(t, resp.Cached)
}

func TestExplain_KindError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Request-ID", "req-1")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{
			"error":  "No transaction with this digest exists on the network.",
			"kind":   "not_found",
			"remedy": "Check the network.",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil)
	_, err := client.Explain(context.Background(), ExplainRequest{Identifier: digest})

	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "not_found", apiErr.Kind)
	assert.Equal(t, "Check the network.", apiErr.Remedy)
	assert.Equal(t, "req-1", apiErr.RequestID)
	assert.Contains(t, err.Error(), "not_found")
}

func TestExplain_PlainTextError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil)
	_, err := client.Explain(context.Background(), ExplainRequest{Identifier: digest})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "bad gateway", apiErr.Message)
	assert.Empty(t, apiErr.Kind)
}

func TestGetTransaction_SkipCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/api/v1/transactions/"+digest, r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("skip_cache"))
		json.NewEncoder(w).Encode(map[string]string{"digest": digest, "type": "swap"})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil)
	tx, err := client.GetTransaction(context.Background(), digest, true)

	require.NoError(t, err)
	assert.Equal(t, translate.TypeSwap, tx.Type)
}

func TestGetFlow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/transactions/"+digest+"/flow", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"digest": digest,
			"type":   "transfer",
			"flow":   map[string]interface{}{"nodes": []map[string]string{{"id": "start"}}, "edges": []interface{}{}},
			"steps":  []map[string]string{{"id": "input-0"}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil)
	flow, err := client.GetFlow(context.Background(), digest)

	require.NoError(t, err)
	assert.Len(t, flow.Flow.Nodes, 1)
	assert.Len(t, flow.Steps, 1)
}

func TestStartAsync(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/explain/async", r.URL.Path)
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(AsyncJob{WorkflowID: "explain-" + digest + "-1", Digest: digest})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil)
	job, err := client.StartAsync(context.Background(), ExplainRequest{Identifier: digest})

	require.NoError(t, err)
	assert.Equal(t, "explain-"+digest+"-1", job.WorkflowID)
}

func TestAwaitAsync_PollsUntilDone(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/explain/async/wf-1", r.URL.Path)
		st := AsyncStatus{WorkflowID: "wf-1", Status: "running"}
		if atomic.AddInt32(&calls, 1) >= 3 {
			st.Status = "completed"
			st.Result = &AsyncResult{Digest: digest, Published: true}
		}
		json.NewEncoder(w).Encode(st)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	st, err := client.AwaitAsync(ctx, "wf-1", 10*time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, "completed", st.Status)
	require.NotNil(t, st.Result)
	assert.True(t, st.Result.Published)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestAwaitAsync_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(AsyncStatus{WorkflowID: "wf-1", Status: "running"})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.AwaitAsync(ctx, "wf-1", 10*time.Millisecond)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHealthAndVersion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.Write([]byte("OK"))
		case "/version":
			json.NewEncoder(w).Encode(map[string]string{"version": "v1.2.3"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil)
	require.NoError(t, client.Health(context.Background()))

	v, err := client.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v1.2.3", v)
}
