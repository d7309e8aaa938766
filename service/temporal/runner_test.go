package temporal

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockRunner_Lifecycle(t *testing.T) {
	ctx := context.Background()
	r := NewMockRunner()

	id, err := r.StartExplain(ctx, ExplainInput{Digest: testDigest, IncludeExplanation: true})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "explain-"+testDigest+"-"))

	st, err := r.GetExplainStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, st.Status)

	in, ok := r.Input(id)
	require.True(t, ok)
	assert.True(t, in.IncludeExplanation)

	r.Complete(id, &ExplainResult{Digest: testDigest, Published: true})
	st, err = r.GetExplainStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, st.Status)
	require.NotNil(t, st.Result)
	assert.True(t, st.Result.Published)
}

func TestMockRunner_Errors(t *testing.T) {
	ctx := context.Background()
	r := NewMockRunner()

	_, err := r.GetExplainStatus(ctx, "explain-missing")
	assert.ErrorIs(t, err, ErrWorkflowNotFound)

	r.SetStartError(errors.New("temporal unavailable"))
	_, err = r.StartExplain(ctx, ExplainInput{Digest: testDigest})
	assert.Error(t, err)
}

func TestWorkflowID(t *testing.T) {
	assert.Equal(t, "explain-ABC-1", workflowID("ABC", "1"))
	assert.NotEqual(t, workflowID("ABC", "1"), workflowID("ABC", "2"))
}
