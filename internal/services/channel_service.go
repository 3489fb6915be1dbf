package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/nimada80/plusp/internal/models"
	"go.uber.org/zap"
)

// maxIDAttempts bounds the search for an unused channel ID
const maxIDAttempts = 5

// ChannelRepository is the interface that wraps methods for channels table data access
type ChannelRepository interface {
	// Method GetAll retrieves every channel.
	//
	// If some error occurs, the error will be returned together with nil.
	GetAll(ctx context.Context) ([]models.Channel, error)
	// Method GetByID retrieves a channel by ID.
	//
	// "id" parameter is used to specify the channel.
	//
	// If the channel does not exist, an error wrapping models.ErrNotFound will be returned together with nil.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Channel, error)
	// Method ExistsByID checks if a channel with such ID exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
	// Method Create inserts a channel with its ID already set.
	//
	// If some error occurs, the error will be returned.
	Create(ctx context.Context, channel *models.Channel) error
	// Method Update writes the non-nil fields of patch.
	//
	// "id" parameter is used to specify the channel.
	// "patch" parameter contains the fields to update.
	//
	// The stored channel is returned after the update.
	Update(ctx context.Context, id uuid.UUID, patch *models.ChannelPatch) (*models.Channel, error)
	// Method Delete deletes a channel by ID.
	//
	// If some error occurs, the error will be returned.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ExistenceChecker reports whether a record of the other relation side exists
type ExistenceChecker interface {
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
}

// RelationSyncer is the interface that wraps the relationship sync engine
type RelationSyncer interface {
	// Method SyncAdd adds ownerID to the relation list of each counterpart.
	SyncAdd(ctx context.Context, owner models.EntityKind, ownerID uuid.UUID, counterpartIDs []uuid.UUID) (*models.SyncReport, error)
	// Method SyncRemove removes ownerID from the relation list of each counterpart.
	SyncRemove(ctx context.Context, owner models.EntityKind, ownerID uuid.UUID, counterpartIDs []uuid.UUID) (*models.SyncReport, error)
	// Method DiffAndSync propagates a change of the owner's list from oldIDs to newIDs.
	DiffAndSync(ctx context.Context, owner models.EntityKind, ownerID uuid.UUID, oldIDs, newIDs []uuid.UUID) (*models.SyncReport, error)
}

// channelService implements the channel operations of the console
type channelService struct {
	channelRepo ChannelRepository
	userRepo    ExistenceChecker
	sync        RelationSyncer
	logger      *zap.Logger
	newID       func() uuid.UUID
}

// NewChannelService creates a new channel service
func NewChannelService(
	channelRepo ChannelRepository,
	userRepo ExistenceChecker,
	sync RelationSyncer,
	logger *zap.Logger,
) *channelService {
	return &channelService{
		channelRepo: channelRepo,
		userRepo:    userRepo,
		sync:        sync,
		logger:      logger,
		newID:       uuid.New,
	}
}

// ListChannels retrieves every channel
func (s *channelService) ListChannels(ctx context.Context) ([]models.Channel, error) {
	return s.channelRepo.GetAll(ctx)
}

// GetChannel retrieves a channel by ID
func (s *channelService) GetChannel(ctx context.Context, id uuid.UUID) (*models.Channel, error) {
	return s.channelRepo.GetByID(ctx, id)
}

// CreateChannel creates a channel and adds it to the channel list of each authorised user
func (s *channelService) CreateChannel(ctx context.Context, req *models.CreateChannelRequest) (*models.Channel, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", models.ErrIncompleteData)
	}

	users, err := filterExisting(ctx, s.userRepo, req.AuthorizedUsers, models.EntityUser, s.logger)
	if err != nil {
		return nil, err
	}

	id, err := s.unusedID(ctx)
	if err != nil {
		return nil, err
	}

	channel := &models.Channel{
		ID:              id,
		Name:            name,
		AuthorizedUsers: users,
	}
	if err := s.channelRepo.Create(ctx, channel); err != nil {
		return nil, err
	}

	if len(users) > 0 {
		if _, err := s.sync.SyncAdd(ctx, models.EntityChannel, channel.ID, users); err != nil {
			s.logger.Warn("channel created with incomplete user sync", zap.String("channelID", channel.ID.String()), zap.Error(err))
		}
	}

	return channel, nil
}

// UpdateChannel applies a partial update and mirrors authorised-user changes onto the users
func (s *channelService) UpdateChannel(ctx context.Context, id uuid.UUID, req *models.UpdateChannelRequest) (*models.Channel, error) {
	current, err := s.channelRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch := &models.ChannelPatch{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", models.ErrInvalidInput)
		}
		patch.Name = &name
	}
	if req.AuthorizedUsers != nil {
		users, err := filterExisting(ctx, s.userRepo, *req.AuthorizedUsers, models.EntityUser, s.logger)
		if err != nil {
			return nil, err
		}
		patch.AuthorizedUsers = &users
	}
	if patch.Empty() {
		return current, nil
	}

	updated, err := s.channelRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	if patch.AuthorizedUsers != nil {
		if _, err := s.sync.DiffAndSync(ctx, models.EntityChannel, id, current.AuthorizedUsers, *patch.AuthorizedUsers); err != nil {
			s.logger.Warn("channel updated with incomplete user sync", zap.String("channelID", id.String()), zap.Error(err))
		}
	}

	return updated, nil
}

// DeleteChannel removes the channel from its users' lists and then deletes it
func (s *channelService) DeleteChannel(ctx context.Context, id uuid.UUID) error {
	current, err := s.channelRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if len(current.AuthorizedUsers) > 0 {
		if _, err := s.sync.SyncRemove(ctx, models.EntityChannel, id, current.AuthorizedUsers); err != nil {
			s.logger.Warn("channel removal not mirrored on every user", zap.String("channelID", id.String()), zap.Error(err))
		}
	}

	return s.channelRepo.Delete(ctx, id)
}

// unusedID generates channel IDs until one is not present in the store
func (s *channelService) unusedID(ctx context.Context) (uuid.UUID, error) {
	for range maxIDAttempts {
		id := s.newID()
		exists, err := s.channelRepo.ExistsByID(ctx, id)
		if err != nil {
			return uuid.Nil, err
		}
		if !exists {
			return id, nil
		}
		s.logger.Warn("generated channel id already in use", zap.String("channelID", id.String()))
	}
	return uuid.Nil, errors.New("failed to generate an unused channel id")
}

// filterExisting keeps the IDs whose record exists, dropping unknown ones with a warning.
// Duplicates are removed; a store failure aborts the filter.
func filterExisting(ctx context.Context, repo ExistenceChecker, ids []uuid.UUID, kind models.EntityKind, logger *zap.Logger) ([]uuid.UUID, error) {
	valid := make([]uuid.UUID, 0, len(ids))
	for _, id := range uniqueIDs(ids) {
		exists, err := repo.ExistsByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to validate %s %s: %w", kind, id, err)
		}
		if !exists {
			logger.Warn("dropping unknown relation id", zap.Stringer("kind", kind), zap.String("id", id.String()))
			continue
		}
		valid = append(valid, id)
	}
	return valid, nil
}
