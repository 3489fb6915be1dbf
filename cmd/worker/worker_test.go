package main

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/nimada80/plusp/internal/models"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

type mockReconcileRunner struct {
	payloads []models.ReconcileTaskPayload
	report   *models.ReconcileReport
	err      error
}

func (m *mockReconcileRunner) Run(ctx context.Context, payload *models.ReconcileTaskPayload) (*models.ReconcileReport, error) {
	m.payloads = append(m.payloads, *payload)
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

func TestWorker_HandleReconcileTask(t *testing.T) {
	tests := []struct {
		name            string
		payload         []byte
		runErr          error
		report          *models.ReconcileReport
		expectedChannel string
		expectRun       bool
		expectErr       bool
		expectSkipRetry bool
	}{
		{name: "all channels", payload: nil, report: &models.ReconcileReport{ChannelsScanned: 3}, expectRun: true},
		{name: "one channel", payload: []byte(`{"channel_name":"ops"}`), report: &models.ReconcileReport{ChannelsScanned: 1}, expectedChannel: "ops", expectRun: true},
		{name: "failures are not retried", payload: []byte(`{}`), report: &models.ReconcileReport{Failures: []uuid.UUID{uuid.New()}}, expectRun: true},
		{name: "run error", payload: []byte(`{}`), runErr: errors.New("store down"), expectRun: true, expectErr: true},
		{name: "malformed payload", payload: []byte(`{`), expectErr: true, expectSkipRetry: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockReconcileRunner{report: tt.report, err: tt.runErr}
			worker := NewWorker(zaptest.NewLogger(t), runner)

			err := worker.HandleReconcileTask(context.Background(), asynq.NewTask(models.ReconcileTaskType, tt.payload))

			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expectSkipRetry, errors.Is(err, asynq.SkipRetry))
			if tt.expectRun {
				assert.Len(t, runner.payloads, 1)
				assert.Equal(t, tt.expectedChannel, runner.payloads[0].ChannelName)
			} else {
				assert.Empty(t, runner.payloads)
			}
		})
	}
}
