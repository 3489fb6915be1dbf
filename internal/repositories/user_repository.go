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

const usersTable = "users"

// userRow is the users table representation
type userRow struct {
	ID           uuid.UUID   `json:"id"`
	Username     string      `json:"username"`
	PasswordHash string      `json:"password_hash,omitempty"`
	Role         models.Role `json:"role"`
	Active       bool        `json:"active"`
	Channels     []uuid.UUID `json:"channels"`
	CreatedAt    *time.Time  `json:"created_at,omitempty"`
}

func (r *userRow) toModel() *models.User {
	channels := r.Channels
	if channels == nil {
		channels = []uuid.UUID{}
	}
	return &models.User{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		Role:         r.Role,
		Active:       r.Active,
		Channels:     channels,
		CreatedAt:    r.CreatedAt,
	}
}

// userRepository implements the user repositories of the services package on top of the record store
type userRepository struct {
	client *store.Client
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(client *store.Client, logger *zap.Logger) *userRepository {
	return &userRepository{
		client: client,
		logger: logger,
	}
}

// GetAll retrieves every user ordered by creation time
func (r *userRepository) GetAll(ctx context.Context) ([]models.User, error) {
	result, err := r.client.Select(ctx, usersTable, store.Order("created_at"))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	var rows []userRow
	if err := result.Decode(&rows); err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(rows))
	for i := range rows {
		users = append(users, *rows[i].toModel())
	}
	return users, nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, store.Eq("id", id))
}

// GetByUsername retrieves a user by username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, store.Eq("username", username))
}

func (r *userRepository) getOne(ctx context.Context, filter store.Filter) (*models.User, error) {
	result, err := r.client.Select(ctx, usersTable, filter, store.Limit(1))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var row userRow
	found, err := result.DecodeFirst(&row)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("user %w", models.ErrNotFound)
	}
	return row.toModel(), nil
}

// ExistsByID checks if a user with the given ID exists
func (r *userRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, store.Eq("id", id))
}

// ExistsByUsername checks if a user with the given username exists
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, store.Eq("username", username))
}

func (r *userRepository) exists(ctx context.Context, filter store.Filter) (bool, error) {
	result, err := r.client.Select(ctx, usersTable, filter, store.Select("id"), store.Limit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return result.HasRecords(), nil
}

// Create inserts a user profile. The ID must already be set by the auth provider.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	channels := user.Channels
	if channels == nil {
		channels = []uuid.UUID{}
	}
	row := userRow{
		ID:           user.ID,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		Role:         user.Role,
		Active:       user.Active,
		Channels:     channels,
	}

	result, err := r.client.Insert(ctx, usersTable, row)
	if err != nil {
		r.logger.Error("failed to create user", zap.Error(err), zap.String("username", user.Username))
		return fmt.Errorf("failed to create user: %w", err)
	}

	var stored userRow
	if found, err := result.DecodeFirst(&stored); err == nil && found {
		user.CreatedAt = stored.CreatedAt
	}
	user.Channels = channels
	return nil
}

// Update writes the non-nil fields of patch and returns the stored user
func (r *userRepository) Update(ctx context.Context, id uuid.UUID, patch *models.UserPatch) (*models.User, error) {
	body := map[string]any{}
	if patch.Username != nil {
		body["username"] = *patch.Username
	}
	if patch.PasswordHash != nil {
		body["password_hash"] = *patch.PasswordHash
	}
	if patch.Role != nil {
		body["role"] = *patch.Role
	}
	if patch.Active != nil {
		body["active"] = *patch.Active
	}
	if patch.Channels != nil {
		body["channels"] = nonNil(*patch.Channels)
	}
	if len(body) == 0 {
		return r.GetByID(ctx, id)
	}

	result, err := r.client.Update(ctx, usersTable, body, store.Eq("id", id))
	if err != nil {
		r.logger.Error("failed to update user", zap.Error(err), zap.String("userID", id.String()))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	// The store accepted the write without echoing the row
	if result.Kind == store.ResultEmpty {
		return r.GetByID(ctx, id)
	}

	var row userRow
	found, err := result.DecodeFirst(&row)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("user %w", models.ErrNotFound)
	}
	return row.toModel(), nil
}

// Delete deletes a user profile by ID
func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.client.Delete(ctx, usersTable, store.Eq("id", id)); err != nil {
		r.logger.Error("failed to delete user", zap.Error(err), zap.String("userID", id.String()))
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// GetRelations returns the channel IDs held by a user
func (r *userRepository) GetRelations(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Channels, nil
}

// SetRelations replaces the channel IDs held by a user
func (r *userRepository) SetRelations(ctx context.Context, id uuid.UUID, ids []uuid.UUID) error {
	if _, err := r.client.Update(ctx, usersTable, map[string]any{"channels": nonNil(ids)}, store.Eq("id", id)); err != nil {
		return fmt.Errorf("failed to update user channels: %w", err)
	}
	return nil
}

func nonNil(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}
