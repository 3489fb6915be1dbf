package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nimada80/plusp/internal/models"
	"github.com/nimada80/plusp/internal/store"
	"go.uber.org/zap"
)

const channelsTable = "channels"

type channelRow struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name"`
	AuthorizedUsers []uuid.UUID `json:"authorized_users"`
	CreatedAt       *time.Time  `json:"created_at,omitempty"`
}

func (r *channelRow) toModel() *models.Channel {
	return &models.Channel{
		ID:              r.ID,
		Name:            r.Name,
		AuthorizedUsers: nonNil(r.AuthorizedUsers),
		CreatedAt:       r.CreatedAt,
	}
}

// channelRepository implements the channel repositories of the services package on top of the record store
type channelRepository struct {
	client *store.Client
	logger *zap.Logger
}

// NewChannelRepository creates a new channel repository
func NewChannelRepository(client *store.Client, logger *zap.Logger) *channelRepository {
	return &channelRepository{
		client: client,
		logger: logger,
	}
}

// GetAll retrieves every channel ordered by creation time
func (r *channelRepository) GetAll(ctx context.Context) ([]models.Channel, error) {
	return r.list(ctx, store.Order("created_at"))
}

// GetByName retrieves the channels with the given name
func (r *channelRepository) GetByName(ctx context.Context, name string) ([]models.Channel, error) {
	return r.list(ctx, store.Eq("name", name), store.Order("created_at"))
}

func (r *channelRepository) list(ctx context.Context, filters ...store.Filter) ([]models.Channel, error) {
	result, err := r.client.Select(ctx, channelsTable, filters...)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}

	var rows []channelRow
	if err := result.Decode(&rows); err != nil {
		return nil, err
	}

	channels := make([]models.Channel, 0, len(rows))
	for i := range rows {
		channels = append(channels, *rows[i].toModel())
	}
	return channels, nil
}

// GetByID retrieves a channel by ID
func (r *channelRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Channel, error) {
	result, err := r.client.Select(ctx, channelsTable, store.Eq("id", id), store.Limit(1))
	if err != nil {
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}

	var row channelRow
	found, err := result.DecodeFirst(&row)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("channel %w", models.ErrNotFound)
	}
	return row.toModel(), nil
}

// ExistsByID checks if a channel with the given ID exists
func (r *channelRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.client.Select(ctx, channelsTable, store.Eq("id", id), store.Select("id"), store.Limit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check channel existence: %w", err)
	}
	return result.HasRecords(), nil
}

// Create inserts a channel with a caller-chosen ID
func (r *channelRepository) Create(ctx context.Context, channel *models.Channel) error {
	row := channelRow{
		ID:              channel.ID,
		Name:            channel.Name,
		AuthorizedUsers: nonNil(channel.AuthorizedUsers),
	}

	result, err := r.client.Insert(ctx, channelsTable, row)
	if err != nil {
		r.logger.Error("failed to create channel", zap.Error(err), zap.String("name", channel.Name))
		return fmt.Errorf("failed to create channel: %w", err)
	}

	var stored channelRow
	if found, err := result.DecodeFirst(&stored); err == nil && found {
		channel.CreatedAt = stored.CreatedAt
	}
	channel.AuthorizedUsers = row.AuthorizedUsers
	return nil
}

// Update writes the non-nil fields of patch and returns the stored channel
func (r *channelRepository) Update(ctx context.Context, id uuid.UUID, patch *models.ChannelPatch) (*models.Channel, error) {
	body := map[string]any{}
	if patch.Name != nil {
		body["name"] = *patch.Name
	}
	if patch.AuthorizedUsers != nil {
		body["authorized_users"] = nonNil(*patch.AuthorizedUsers)
	}
	if len(body) == 0 {
		return r.GetByID(ctx, id)
	}

	result, err := r.client.Update(ctx, channelsTable, body, store.Eq("id", id))
	if err != nil {
		r.logger.Error("failed to update channel", zap.Error(err), zap.String("channelID", id.String()))
		return nil, fmt.Errorf("failed to update channel: %w", err)
	}

	if result.Kind == store.ResultEmpty {
		return r.GetByID(ctx, id)
	}

	var row channelRow
	found, err := result.DecodeFirst(&row)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("channel %w", models.ErrNotFound)
	}
	return row.toModel(), nil
}

// Delete deletes a channel by ID
func (r *channelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.client.Delete(ctx, channelsTable, store.Eq("id", id)); err != nil {
		r.logger.Error("failed to delete channel", zap.Error(err), zap.String("channelID", id.String()))
		return fmt.Errorf("failed to delete channel: %w", err)
	}
	return nil
}

// GetRelations returns the user IDs authorised for a channel
func (r *channelRepository) GetRelations(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	channel, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return channel.AuthorizedUsers, nil
}

// SetRelations replaces the user IDs authorised for a channel
func (r *channelRepository) SetRelations(ctx context.Context, id uuid.UUID, ids []uuid.UUID) error {
	if _, err := r.client.Update(ctx, channelsTable, map[string]any{"authorized_users": nonNil(ids)}, store.Eq("id", id)); err != nil {
		return fmt.Errorf("failed to update channel authorized users: %w", err)
	}
	return nil
}
