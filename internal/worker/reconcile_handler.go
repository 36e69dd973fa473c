package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"cash-ai/internal/service"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// RunProcessor executes one queued run.
type RunProcessor interface {
	Process(ctx context.Context, runID int64) error
}

type ReconcileTaskHandler struct {
	runs   RunProcessor
	logger *logrus.Logger
}

func NewReconcileTaskHandler(runs RunProcessor, logger *logrus.Logger) *ReconcileTaskHandler {
	return &ReconcileTaskHandler{runs: runs, logger: logger}
}

func (h *ReconcileTaskHandler) Handle(ctx context.Context, task *asynq.Task) error {
	var payload ReconcilePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	log := h.logger.WithFields(logrus.Fields{
		"run_id":   payload.RunID,
		"run_code": payload.RunCode,
	})
	log.Info("Starting mapping run")

	if err := h.runs.Process(ctx, payload.RunID); err != nil {
		if service.IsValidationError(err) {
			log.WithError(err).Warn("Mapping run rejected")
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		log.WithError(err).Error("Mapping run failed")
		return err
	}
	return nil
}
