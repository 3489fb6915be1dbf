package main

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// enqueueTimeout bounds one enqueue call against Redis
const enqueueTimeout = 10 * time.Second

// ReconcileEnqueuer defines the interface for scheduling a reconciliation pass
type ReconcileEnqueuer interface {
	// Enqueue puts a reconciliation task on the queue and returns its ID
	//
	// An empty "channelName" reconciles every channel.
	Enqueue(ctx context.Context, channelName string) (string, error)
}

// Scheduler enqueues reconciliation passes on a cron schedule
type Scheduler struct {
	cron     *cron.Cron
	enqueuer ReconcileEnqueuer
	logger   *zap.Logger
	schedule string
}

// NewScheduler creates a new scheduler instance.
// "schedule" accepts standard five-field cron expressions and descriptors such as "@every 1h".
func NewScheduler(enqueuer ReconcileEnqueuer, logger *zap.Logger, schedule string) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		enqueuer: enqueuer,
		logger:   logger,
		schedule: schedule,
	}
	if _, err := s.cron.AddFunc(schedule, s.enqueue); err != nil {
		return nil, fmt.Errorf("invalid reconcile schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started", zap.String("schedule", s.schedule))
}

// Stop stops the scheduler and waits for a running enqueue to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// enqueue schedules a full reconciliation pass
func (s *Scheduler) enqueue() {
	ctx, cancel := context.WithTimeout(context.Background(), enqueueTimeout)
	defer cancel()

	taskID, err := s.enqueuer.Enqueue(ctx, "")
	if err != nil {
		s.logger.Error("Failed to enqueue reconciliation", zap.Error(err))
		return
	}
	s.logger.Debug("Reconciliation enqueued", zap.String("task_id", taskID))
}
