package repositories

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/nimada80/plusp/internal/models"
	"github.com/nimada80/plusp/internal/store"
	"go.uber.org/zap"
)

const (
	tokenPath      = "/auth/v1/token?grant_type=password"
	adminUsersPath = "/auth/v1/admin/users"
)

// authProviderRepository manages accounts of the auth provider that fronts the record store
type authProviderRepository struct {
	client *store.Client
	logger *zap.Logger
}

// NewAuthProviderRepository creates a new auth provider repository
func NewAuthProviderRepository(client *store.Client, logger *zap.Logger) *authProviderRepository {
	return &authProviderRepository{
		client: client,
		logger: logger,
	}
}

type passwordGrant struct {
	AccessToken string `json:"access_token"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// SignInWithPassword exchanges an e-mail and password for the account identity.
// A rejected grant is reported as models.ErrInvalidCredentials.
func (r *authProviderRepository) SignInWithPassword(ctx context.Context, email, password string) (*models.AuthIdentity, error) {
	result, err := r.client.Request(ctx, http.MethodPost, tokenPath, map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		switch store.StatusOf(err) {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusUnprocessableEntity:
			return nil, models.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}

	var grant passwordGrant
	if err := result.Decode(&grant); err != nil {
		return nil, err
	}
	if grant.AccessToken == "" {
		return nil, models.ErrInvalidCredentials
	}
	if grant.User.ID == "" {
		return nil, errors.New("auth provider returned no user id")
	}
	userID, err := uuid.Parse(grant.User.ID)
	if err != nil {
		return nil, fmt.Errorf("auth provider returned an invalid user id: %w", err)
	}

	return &models.AuthIdentity{
		AccessToken: grant.AccessToken,
		UserID:      userID,
		Email:       grant.User.Email,
	}, nil
}

// CreateUser registers a confirmed account and returns its ID
func (r *authProviderRepository) CreateUser(ctx context.Context, email, password string) (uuid.UUID, error) {
	result, err := r.client.Request(ctx, http.MethodPost, adminUsersPath, map[string]any{
		"email":         email,
		"password":      password,
		"email_confirm": true,
	})
	if err != nil {
		if status := store.StatusOf(err); status == http.StatusUnprocessableEntity || status == http.StatusConflict {
			return uuid.Nil, fmt.Errorf("auth account %w", models.ErrAlreadyExists)
		}
		r.logger.Error("failed to create auth account", zap.Error(err), zap.String("email", email))
		return uuid.Nil, fmt.Errorf("failed to create auth account: %w", err)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := result.Decode(&created); err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(created.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("auth provider returned an invalid user id: %w", err)
	}
	return id, nil
}

// UpdateUser changes the e-mail and/or password of an account; empty fields are left untouched
func (r *authProviderRepository) UpdateUser(ctx context.Context, id uuid.UUID, attrs models.AuthUserAttributes) error {
	if attrs.Email == "" && attrs.Password == "" {
		return nil
	}
	if _, err := r.client.Request(ctx, http.MethodPut, adminUsersPath+"/"+id.String(), attrs); err != nil {
		if store.StatusOf(err) == http.StatusNotFound {
			return fmt.Errorf("auth account %w", models.ErrNotFound)
		}
		return fmt.Errorf("failed to update auth account: %w", err)
	}
	return nil
}

// DeleteUser removes an account; a missing account is not an error
func (r *authProviderRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := r.client.Request(ctx, http.MethodDelete, adminUsersPath+"/"+id.String(), nil); err != nil {
		if store.StatusOf(err) == http.StatusNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete auth account: %w", err)
	}
	return nil
}
