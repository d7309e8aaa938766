package temporal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
)

// Client is a production implementation of Runner that talks to Temporal.
type Client struct {
	client    client.Client
	taskQueue string
	logger    *slog.Logger
}

var _ Runner = (*Client)(nil)

// NewClient creates a new Temporal client.
func NewClient(host, namespace, taskQueue string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("connecting to temporal",
		"host", host,
		"namespace", namespace,
		"task_queue", taskQueue,
	)

	c, err := client.Dial(client.Options{
		HostPort:  host,
		Namespace: namespace,
		Logger:    newTemporalLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Temporal: %w", err)
	}

	logger.Info("connected to temporal successfully")

	return &Client{
		client:    c,
		taskQueue: taskQueue,
		logger:    logger,
	}, nil
}

// StartExplain starts ExplainTransactionWorkflow for a canonical digest.
func (c *Client) StartExplain(ctx context.Context, input ExplainInput) (string, error) {
	if input.Digest == "" {
		return "", fmt.Errorf("digest is required")
	}

	opts := client.StartWorkflowOptions{
		ID:        workflowID(input.Digest, uuid.NewString()),
		TaskQueue: c.taskQueue,
		Memo: map[string]interface{}{
			"digest":     input.Digest,
			"created_by": "suiscope",
		},
	}

	run, err := c.client.ExecuteWorkflow(ctx, opts, ExplainTransactionWorkflow, input)
	if err != nil {
		c.logger.Error("failed to start explain workflow", "digest", input.Digest, "error", err)
		return "", fmt.Errorf("failed to start workflow for %s: %w", input.Digest, err)
	}

	c.logger.Info("explain workflow started",
		"digest", input.Digest,
		"workflow_id", run.GetID(),
		"run_id", run.GetRunID(),
	)
	return run.GetID(), nil
}

// GetExplainStatus describes the latest run of a workflow and, when it has
// finished, decodes its result.
func (c *Client) GetExplainStatus(ctx context.Context, id string) (*ExplainStatus, error) {
	desc, err := c.client.DescribeWorkflowExecution(ctx, id, "")
	if err != nil {
		var notFound *serviceerror.NotFound
		if errors.As(err, &notFound) {
			return nil, ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("failed to describe workflow %q: %w", id, err)
	}

	st := &ExplainStatus{WorkflowID: id}
	info := desc.GetWorkflowExecutionInfo()
	if ts := info.GetStartTime(); ts != nil {
		t := ts.AsTime()
		st.StartedAt = &t
	}

	switch info.GetStatus() {
	case enumspb.WORKFLOW_EXECUTION_STATUS_RUNNING:
		st.Status = StatusRunning
		return st, nil
	case enumspb.WORKFLOW_EXECUTION_STATUS_COMPLETED:
		var result ExplainResult
		if err := c.client.GetWorkflow(ctx, id, "").Get(ctx, &result); err != nil {
			return nil, fmt.Errorf("failed to read workflow result %q: %w", id, err)
		}
		st.Status = StatusCompleted
		st.Result = &result
		return st, nil
	default:
		st.Status = StatusFailed
		if err := c.client.GetWorkflow(ctx, id, "").Get(ctx, nil); err != nil {
			st.Error = err.Error()
		} else {
			st.Error = info.GetStatus().String()
		}
		return st, nil
	}
}

// TaskQueue returns the configured task queue for this client.
func (c *Client) TaskQueue() string {
	return c.taskQueue
}

// Close closes the Temporal client connection.
func (c *Client) Close() {
	c.logger.Info("closing temporal client")
	c.client.Close()
}

// temporalLogger adapts slog.Logger to Temporal's logger interface.
type temporalLogger struct {
	logger *slog.Logger
}

func newTemporalLogger(logger *slog.Logger) *temporalLogger {
	return &temporalLogger{logger: logger}
}

func (l *temporalLogger) Debug(msg string, keyvals ...interface{}) {
	l.logger.Debug(msg, keyvals...)
}

func (l *temporalLogger) Info(msg string, keyvals ...interface{}) {
	l.logger.Info(msg, keyvals...)
}

func (l *temporalLogger) Warn(msg string, keyvals ...interface{}) {
	l.logger.Warn(msg, keyvals...)
}

func (l *temporalLogger) Error(msg string, keyvals ...interface{}) {
	l.logger.Error(msg, keyvals...)
}
