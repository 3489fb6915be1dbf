package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/nimada80/plusp/internal/models"
	"go.uber.org/zap"
)

// ReconcileChannelRepository lists channels for a reconciliation pass
type ReconcileChannelRepository interface {
	GetAll(ctx context.Context) ([]models.Channel, error)
	GetByName(ctx context.Context, name string) ([]models.Channel, error)
}

// TaskEnqueuer puts tasks on the background queue; *asynq.Client satisfies it
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// reconcileService repairs one-sided user/channel links, treating Channel.authorized_users as
// authoritative: every listed user missing the channel in its own list gets it added back.
type reconcileService struct {
	channelRepo ReconcileChannelRepository
	sync        RelationSyncer
	queue       TaskEnqueuer
	logger      *zap.Logger
}

// NewReconcileService creates a new reconcile service.
// "queue" may be nil for callers that only reconcile inline.
func NewReconcileService(channelRepo ReconcileChannelRepository, sync RelationSyncer, queue TaskEnqueuer, logger *zap.Logger) *reconcileService {
	return &reconcileService{
		channelRepo: channelRepo,
		sync:        sync,
		queue:       queue,
		logger:      logger,
	}
}

// ReconcileAll repairs every channel
func (s *reconcileService) ReconcileAll(ctx context.Context) (*models.ReconcileReport, error) {
	channels, err := s.channelRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.reconcile(ctx, channels), nil
}

// ReconcileChannel repairs the channels named name
func (s *reconcileService) ReconcileChannel(ctx context.Context, name string) (*models.ReconcileReport, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: channel name is required", models.ErrIncompleteData)
	}
	channels, err := s.channelRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(channels) == 0 {
		return nil, fmt.Errorf("channel %q %w", name, models.ErrNotFound)
	}
	return s.reconcile(ctx, channels), nil
}

// Run executes a queued reconciliation request
func (s *reconcileService) Run(ctx context.Context, payload *models.ReconcileTaskPayload) (*models.ReconcileReport, error) {
	if payload.ChannelName != "" {
		return s.ReconcileChannel(ctx, payload.ChannelName)
	}
	return s.ReconcileAll(ctx)
}

// Enqueue schedules a reconciliation pass on the background queue and returns the task ID
func (s *reconcileService) Enqueue(ctx context.Context, channelName string) (string, error) {
	if s.queue == nil {
		return "", fmt.Errorf("reconciliation queue is not configured")
	}
	payload, err := json.Marshal(models.ReconcileTaskPayload{ChannelName: strings.TrimSpace(channelName)})
	if err != nil {
		return "", fmt.Errorf("failed to marshal task payload: %w", err)
	}

	info, err := s.queue.EnqueueContext(ctx, asynq.NewTask(models.ReconcileTaskType, payload), asynq.Queue("default"), asynq.MaxRetry(0))
	if err != nil {
		return "", fmt.Errorf("failed to enqueue reconciliation: %w", err)
	}
	s.logger.Info("reconciliation enqueued", zap.String("taskID", info.ID), zap.String("channel", channelName))
	return info.ID, nil
}

func (s *reconcileService) reconcile(ctx context.Context, channels []models.Channel) *models.ReconcileReport {
	report := &models.ReconcileReport{}
	for _, channel := range channels {
		report.ChannelsScanned++
		if len(channel.AuthorizedUsers) == 0 {
			report.ChannelsSkipped++
			continue
		}

		syncReport, err := s.sync.SyncAdd(ctx, models.EntityChannel, channel.ID, channel.AuthorizedUsers)
		if syncReport != nil {
			report.UsersUpdated += syncReport.Added
			report.Failures = append(report.Failures, syncReport.Failed...)
		}
		if err != nil {
			s.logger.Warn("channel not fully reconciled", zap.String("channelID", channel.ID.String()), zap.String("name", channel.Name), zap.Error(err))
		}
	}

	s.logger.Info("reconciliation finished",
		zap.Int("channelsScanned", report.ChannelsScanned),
		zap.Int("usersUpdated", report.UsersUpdated),
		zap.Int("failures", len(report.Failures)),
	)
	return report
}
