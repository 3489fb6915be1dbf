package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/nimada80/plusp/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the interface that wraps methods for users table data access
type UserRepository interface {
	// Method GetAll retrieves every user.
	//
	// If some error occurs, the error will be returned together with nil.
	GetAll(ctx context.Context) ([]models.User, error)
	// Method GetByID retrieves a user by ID.
	//
	// "id" parameter is used to specify the user.
	//
	// If the user does not exist, an error wrapping models.ErrNotFound will be returned together with nil.
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// Method ExistsByUsername checks if a user with such username exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// Method Create inserts a user whose ID was assigned by the auth provider.
	//
	// If some error occurs, the error will be returned.
	Create(ctx context.Context, user *models.User) error
	// Method Update writes the non-nil fields of patch and returns the stored user.
	Update(ctx context.Context, id uuid.UUID, patch *models.UserPatch) (*models.User, error)
	// Method Delete deletes a user by ID.
	Delete(ctx context.Context, id uuid.UUID) error
}

// AuthAccountRepository is the interface that wraps account management of the auth provider
type AuthAccountRepository interface {
	// Method CreateUser registers a confirmed account and returns its ID.
	//
	// If the e-mail is taken, an error wrapping models.ErrAlreadyExists will be returned.
	CreateUser(ctx context.Context, email, password string) (uuid.UUID, error)
	// Method UpdateUser changes the e-mail and/or password of an account.
	UpdateUser(ctx context.Context, id uuid.UUID, attrs models.AuthUserAttributes) error
	// Method DeleteUser removes an account. A missing account is not an error.
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// QuotaRepository is the interface that wraps the user counters of super admins
type QuotaRepository interface {
	GetByUsername(ctx context.Context, username string) (*models.SuperAdmin, error)
	UpdateUserCount(ctx context.Context, id int64, count int) error
}

// emailRegex validates email format
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// normalizeUsername trims and lower-cases a login name; users and super admins are stored this way
func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// minPasswordLength is the shortest password the auth provider accepts from the console
const minPasswordLength = 8

// userService implements the user operations of the console
type userService struct {
	userRepo    UserRepository
	channelRepo ExistenceChecker
	accounts    AuthAccountRepository
	quotas      QuotaRepository
	sync        RelationSyncer
	logger      *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo UserRepository,
	channelRepo ExistenceChecker,
	accounts AuthAccountRepository,
	quotas QuotaRepository,
	sync RelationSyncer,
	logger *zap.Logger,
) *userService {
	return &userService{
		userRepo:    userRepo,
		channelRepo: channelRepo,
		accounts:    accounts,
		quotas:      quotas,
		sync:        sync,
		logger:      logger,
	}
}

// ListUsers retrieves every user
func (s *userService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.GetAll(ctx)
}

// GetUser retrieves a user by ID
func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// CreateUser registers the account with the auth provider, stores the profile and adds the
// user to the authorised list of each of its channels
func (s *userService) CreateUser(ctx context.Context, actor string, req *models.CreateUserRequest) (*models.User, error) {
	username := normalizeUsername(req.Username)
	if username == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", models.ErrIncompleteData)
	}

	role := req.Role
	if role == "" {
		role = models.RoleRegular
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", models.ErrInvalidInput, role)
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	if err := s.checkCredentials(ctx, username, req.Password); err != nil {
		return nil, err
	}

	quota, err := s.quotaFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	if quota != nil && quota.QuotaReached() {
		return nil, fmt.Errorf("%w: user limit reached (%d)", models.ErrInvalidInput, quota.UserLimit)
	}

	channels, err := filterExisting(ctx, s.channelRepo, req.Channels, models.EntityChannel, s.logger)
	if err != nil {
		return nil, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := s.accounts.CreateUser(ctx, username, req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           id,
		Username:     username,
		PasswordHash: string(passwordHash),
		Role:         role,
		Active:       active,
		Channels:     channels,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Roll back the account so the username can be reused
		if delErr := s.accounts.DeleteUser(ctx, id); delErr != nil {
			s.logger.Error("failed to roll back auth account", zap.String("userID", id.String()), zap.Error(delErr))
		}
		return nil, err
	}

	if quota != nil {
		if err := s.quotas.UpdateUserCount(ctx, quota.ID, quota.UserCount+1); err != nil {
			s.logger.Warn("failed to increment user count", zap.String("admin", actor), zap.Error(err))
		}
	}

	if len(channels) > 0 {
		if _, err := s.sync.SyncAdd(ctx, models.EntityUser, user.ID, channels); err != nil {
			s.logger.Warn("user created with incomplete channel sync", zap.String("userID", user.ID.String()), zap.Error(err))
		}
	}

	return user, nil
}

// UpdateUser applies a partial update and mirrors channel-list changes onto the channels
func (s *userService) UpdateUser(ctx context.Context, id uuid.UUID, req *models.UpdateUserRequest) (*models.User, error) {
	current, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch := &models.UserPatch{}
	attrs := models.AuthUserAttributes{}

	if req.Username != nil {
		username := normalizeUsername(*req.Username)
		if username != current.Username {
			if err := s.checkUsername(ctx, username); err != nil {
				return nil, err
			}
			patch.Username = &username
			attrs.Email = username
		}
	}
	if req.Password != nil {
		if err := checkPassword(*req.Password); err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		passwordHash := string(hash)
		patch.PasswordHash = &passwordHash
		attrs.Password = *req.Password
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, fmt.Errorf("%w: unknown role %q", models.ErrInvalidInput, *req.Role)
		}
		patch.Role = req.Role
	}
	if req.Active != nil {
		patch.Active = req.Active
	}
	if req.Channels != nil {
		channels, err := filterExisting(ctx, s.channelRepo, *req.Channels, models.EntityChannel, s.logger)
		if err != nil {
			return nil, err
		}
		patch.Channels = &channels
	}
	if patch.Empty() {
		return current, nil
	}

	if attrs.Email != "" || attrs.Password != "" {
		if err := s.accounts.UpdateUser(ctx, id, attrs); err != nil {
			return nil, err
		}
	}

	updated, err := s.userRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	if patch.Channels != nil {
		if _, err := s.sync.DiffAndSync(ctx, models.EntityUser, id, current.Channels, *patch.Channels); err != nil {
			s.logger.Warn("user updated with incomplete channel sync", zap.String("userID", id.String()), zap.Error(err))
		}
	}

	return updated, nil
}

// DeleteUser removes the user from its channels, deletes the profile and then the auth account
func (s *userService) DeleteUser(ctx context.Context, actor string, id uuid.UUID) error {
	current, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if len(current.Channels) > 0 {
		if _, err := s.sync.SyncRemove(ctx, models.EntityUser, id, current.Channels); err != nil {
			s.logger.Warn("user removal not mirrored on every channel", zap.String("userID", id.String()), zap.Error(err))
		}
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.accounts.DeleteUser(ctx, id); err != nil {
		s.logger.Warn("failed to delete auth account", zap.String("userID", id.String()), zap.Error(err))
	}

	quota, err := s.quotaFor(ctx, actor)
	if err != nil {
		s.logger.Warn("failed to load user quota", zap.String("admin", actor), zap.Error(err))
		return nil
	}
	if quota != nil && quota.UserCount > 0 {
		if err := s.quotas.UpdateUserCount(ctx, quota.ID, quota.UserCount-1); err != nil {
			s.logger.Warn("failed to decrement user count", zap.String("admin", actor), zap.Error(err))
		}
	}

	return nil
}

// quotaFor returns the super admin record of actor, or nil when actor is not a super admin
func (s *userService) quotaFor(ctx context.Context, actor string) (*models.SuperAdmin, error) {
	if actor == "" {
		return nil, nil
	}
	admin, err := s.quotas.GetByUsername(ctx, actor)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return admin, nil
}

// checkCredentials validates the password and the username (format and uniqueness) in parallel
func (s *userService) checkCredentials(ctx context.Context, username, password string) error {
	validationErrors := make(chan error, 2)

	go func() {
		validationErrors <- checkPassword(password)
	}()

	go func() {
		validationErrors <- s.checkUsername(ctx, username)
	}()

	var firstErr error
	for range 2 {
		if err := <-validationErrors; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// checkUsername validates the login e-mail and its uniqueness
func (s *userService) checkUsername(ctx context.Context, username string) error {
	if username == "" {
		return fmt.Errorf("%w: username cannot be empty", models.ErrInvalidInput)
	}
	if !emailRegex.MatchString(username) {
		return fmt.Errorf("%w: username must be a valid email address", models.ErrInvalidInput)
	}
	exists, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return fmt.Errorf("username %w", models.ErrAlreadyExists)
	}
	return nil
}

func checkPassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters long", models.ErrInvalidInput, minPasswordLength)
	}
	return nil
}
