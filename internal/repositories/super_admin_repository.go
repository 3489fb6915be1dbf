package repositories

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/nimada80/plusp/internal/models"
	"github.com/nimada80/plusp/internal/store"
	"go.uber.org/zap"
)

const superAdminsTable = "super_admins"

type superAdminRow struct {
	ID           int64      `json:"id,omitempty"`
	Username     string     `json:"admin_super_user"`
	PasswordHash string     `json:"admin_super_password"`
	UserLimit    int        `json:"user_limit"`
	UserCount    int        `json:"user_count"`
	CreatedBy    string     `json:"created_by,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

func (r *superAdminRow) toModel() *models.SuperAdmin {
	return &models.SuperAdmin{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		UserLimit:    r.UserLimit,
		UserCount:    r.UserCount,
		CreatedBy:    r.CreatedBy,
		CreatedAt:    r.CreatedAt,
	}
}

// superAdminRepository stores console operators in the super_admins table
type superAdminRepository struct {
	client *store.Client
	logger *zap.Logger
}

// NewSuperAdminRepository creates a new super admin repository
func NewSuperAdminRepository(client *store.Client, logger *zap.Logger) *superAdminRepository {
	return &superAdminRepository{
		client: client,
		logger: logger,
	}
}

// GetByUsername retrieves a super admin by login name
func (r *superAdminRepository) GetByUsername(ctx context.Context, username string) (*models.SuperAdmin, error) {
	result, err := r.client.Select(ctx, superAdminsTable, store.Eq("admin_super_user", username), store.Limit(1))
	if err != nil {
		return nil, fmt.Errorf("failed to get super admin: %w", err)
	}

	var row superAdminRow
	found, err := result.DecodeFirst(&row)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("super admin %w", models.ErrNotFound)
	}
	return row.toModel(), nil
}

// ExistsByUsername checks if a super admin with the given login name exists
func (r *superAdminRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	result, err := r.client.Select(ctx, superAdminsTable, store.Eq("admin_super_user", username), store.Select("id"), store.Limit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check super admin existence: %w", err)
	}
	return result.HasRecords(), nil
}

// Create inserts a super admin and sets its store-assigned ID
func (r *superAdminRepository) Create(ctx context.Context, admin *models.SuperAdmin) error {
	row := superAdminRow{
		Username:     admin.Username,
		PasswordHash: admin.PasswordHash,
		UserLimit:    admin.UserLimit,
		UserCount:    admin.UserCount,
		CreatedBy:    admin.CreatedBy,
	}

	result, err := r.client.Insert(ctx, superAdminsTable, row)
	if err != nil {
		if store.StatusOf(err) == http.StatusConflict {
			return fmt.Errorf("super admin %w", models.ErrAlreadyExists)
		}
		r.logger.Error("failed to create super admin", zap.Error(err), zap.String("username", admin.Username))
		return fmt.Errorf("failed to create super admin: %w", err)
	}

	var stored superAdminRow
	found, err := result.DecodeFirst(&stored)
	if err != nil {
		return err
	}
	if found {
		admin.ID = stored.ID
		admin.CreatedAt = stored.CreatedAt
	}
	return nil
}

// UpdateUserCount stores a new user counter for a super admin
func (r *superAdminRepository) UpdateUserCount(ctx context.Context, id int64, count int) error {
	if _, err := r.client.Update(ctx, superAdminsTable, map[string]any{"user_count": count}, store.Eq("id", id)); err != nil {
		return fmt.Errorf("failed to update super admin user count: %w", err)
	}
	return nil
}
