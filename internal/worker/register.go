package worker

import (
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

func RegisterHandlers(mux *asynq.ServeMux, runs RunProcessor, logger *logrus.Logger) {
	reconcileHandler := NewReconcileTaskHandler(runs, logger)

	// Register task handlers
	mux.HandleFunc(TypeMappingReconcile, reconcileHandler.Handle)
}
