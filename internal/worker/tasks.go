package worker

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// TypeMappingReconcile is the asynq task type for queued pipeline runs.
const TypeMappingReconcile = "mapping:reconcile"

type ReconcilePayload struct {
	RunID   int64  `json:"run_id"`
	RunCode string `json:"run_code"`
}

// NewReconcileTask builds the task for a queued run.
func NewReconcileTask(runID int64, runCode string) (*asynq.Task, error) {
	payload, err := json.Marshal(ReconcilePayload{RunID: runID, RunCode: runCode})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeMappingReconcile, payload,
		asynq.MaxRetry(3),
		asynq.Timeout(5*time.Minute),
		asynq.TaskID(runCode),
	), nil
}
