package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/nimada80/plusp/internal/models"
	"go.uber.org/zap"
)

// ReconcileRunner defines the interface for the relation reconciliation pass
type ReconcileRunner interface {
	// Run executes a reconciliation request
	//
	// "payload" parameter restricts the pass to one channel name when its ChannelName is set.
	//
	// If the channels cannot be listed, the error will be returned together with "nil" value.
	Run(ctx context.Context, payload *models.ReconcileTaskPayload) (*models.ReconcileReport, error)
}

// Worker handles task processing
type Worker struct {
	logger     *zap.Logger
	reconciler ReconcileRunner
}

// NewWorker creates a new worker instance
func NewWorker(logger *zap.Logger, reconciler ReconcileRunner) *Worker {
	return &Worker{
		logger:     logger,
		reconciler: reconciler,
	}
}

// HandleReconcileTask processes a reconcile:relations task
func (w *Worker) HandleReconcileTask(ctx context.Context, t *asynq.Task) error {
	var payload models.ReconcileTaskPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			w.logger.Error("Failed to unmarshal task payload", zap.Error(err))
			return fmt.Errorf("failed to unmarshal payload: %w: %w", err, asynq.SkipRetry)
		}
	}

	w.logger.Info("Processing reconciliation task", zap.String("channel", payload.ChannelName))

	report, err := w.reconciler.Run(ctx, &payload)
	if err != nil {
		w.logger.Error("Reconciliation failed", zap.String("channel", payload.ChannelName), zap.Error(err))
		return err
	}

	if len(report.Failures) > 0 {
		w.logger.Warn("Reconciliation finished with failures",
			zap.Int("channelsScanned", report.ChannelsScanned),
			zap.Int("usersUpdated", report.UsersUpdated),
			zap.Int("failures", len(report.Failures)),
		)
		return nil
	}

	w.logger.Info("Reconciliation task completed",
		zap.Int("channelsScanned", report.ChannelsScanned),
		zap.Int("usersUpdated", report.UsersUpdated),
	)
	return nil
}
