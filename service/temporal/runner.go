package temporal

import (
	"context"
	"errors"
	"time"
)

// ErrWorkflowNotFound is returned when no explain workflow has the given ID.
var ErrWorkflowNotFound = errors.New("workflow not found")

// Workflow states reported by ExplainStatus.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ExplainStatus describes an asynchronous explain run.
type ExplainStatus struct {
	WorkflowID string         `json:"workflow_id"`
	Status     string         `json:"status"`
	StartedAt  *time.Time     `json:"started_at,omitempty"`
	Result     *ExplainResult `json:"result,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// Runner starts and inspects ExplainTransactionWorkflow executions.
type Runner interface {
	// StartExplain starts a workflow and returns its ID without waiting.
	StartExplain(ctx context.Context, input ExplainInput) (string, error)

	// GetExplainStatus reports the state of a workflow, including its
	// result once completed. Unknown IDs return ErrWorkflowNotFound.
	GetExplainStatus(ctx context.Context, workflowID string) (*ExplainStatus, error)
}

// workflowID returns a fresh workflow ID for a digest.
func workflowID(digest, suffix string) string {
	return "explain-" + digest + "-" + suffix
}
