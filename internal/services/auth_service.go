package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nimada80/plusp/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// SessionRepository is the interface that wraps session storage
type SessionRepository interface {
	// Method Create stores a session until its expiry.
	//
	// If some error occurs, the error will be returned.
	Create(ctx context.Context, session *models.Session) error
	// Method Get retrieves a live session.
	//
	// If the session does not exist or expired, an error wrapping models.ErrNotFound will be returned together with nil.
	Get(ctx context.Context, id string) (*models.Session, error)
	// Method Delete removes a session. Deleting a missing session succeeds.
	Delete(ctx context.Context, id string) error
}

// OperatorRepository looks up console operators that are not super admins
type OperatorRepository interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// SuperAdminRepository is the interface that wraps methods for super_admins table data access
type SuperAdminRepository interface {
	// Method GetByUsername retrieves a super admin by login name.
	//
	// If the super admin does not exist, an error wrapping models.ErrNotFound will be returned together with nil.
	GetByUsername(ctx context.Context, username string) (*models.SuperAdmin, error)
	// Method ExistsByUsername checks if a super admin with such login name exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// Method Create inserts a super admin and sets its ID.
	Create(ctx context.Context, admin *models.SuperAdmin) error
}

// dummyHash is compared against on unknown usernames so both failure paths cost one bcrypt run
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("console-dummy-password"), bcrypt.DefaultCost)

// authService implements console login with server-side sessions
type authService struct {
	superAdminRepo SuperAdminRepository
	operatorRepo   OperatorRepository
	sessionRepo    SessionRepository
	sessionTTL     time.Duration
	logger         *zap.Logger
	now            func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	superAdminRepo SuperAdminRepository,
	operatorRepo OperatorRepository,
	sessionRepo SessionRepository,
	sessionTTL time.Duration,
	logger *zap.Logger,
) *authService {
	return &authService{
		superAdminRepo: superAdminRepo,
		operatorRepo:   operatorRepo,
		sessionRepo:    sessionRepo,
		sessionTTL:     sessionTTL,
		logger:         logger,
		now:            time.Now,
	}
}

// Login checks the credentials of a super admin, or of an active admin user, and opens a session.
// Unknown usernames and wrong passwords both yield models.ErrInvalidCredentials.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.Session, error) {
	username := normalizeUsername(req.Username)
	if username == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", models.ErrIncompleteData)
	}

	session := &models.Session{Username: username}
	passwordHash := ""

	admin, err := s.superAdminRepo.GetByUsername(ctx, username)
	switch {
	case err == nil:
		passwordHash = admin.PasswordHash
		session.Role = models.RoleSuperAdmin
		session.SuperAdminID = admin.ID
	case errors.Is(err, models.ErrNotFound):
		user, err := s.operatorRepo.GetByUsername(ctx, username)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		if err == nil && user.Active && user.Role.CanOperate() && user.PasswordHash != "" {
			passwordHash = user.PasswordHash
			session.Role = user.Role
			session.Username = user.Username
		}
	default:
		return nil, err
	}

	if passwordHash == "" {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
		s.logger.Info("login rejected", zap.String("username", username))
		return nil, models.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
		s.logger.Info("login rejected", zap.String("username", username))
		return nil, models.ErrInvalidCredentials
	}

	now := s.now()
	session.ID = uuid.NewString()
	session.CreatedAt = now
	session.ExpiresAt = now.Add(s.sessionTTL)
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("operator logged in", zap.String("username", session.Username), zap.String("role", string(session.Role)))
	return session, nil
}

// Logout ends a session. An unknown session ID is not an error.
func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessionRepo.Delete(ctx, sessionID)
}

// Authenticate resolves a session ID into a live session
func (s *authService) Authenticate(ctx context.Context, sessionID string) (*models.Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session %w", models.ErrNotFound)
	}
	session, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.ExpiresAt.IsZero() && s.now().After(session.ExpiresAt) {
		return nil, fmt.Errorf("session %w", models.ErrNotFound)
	}
	if session.IsSuperAdmin() {
		return session, nil
	}

	// Operator sessions end as soon as the user row is removed, deactivated or demoted
	user, err := s.operatorRepo.GetByUsername(ctx, session.Username)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	if err != nil || !user.Active || !user.Role.CanOperate() {
		s.logger.Info("operator session revoked", zap.String("username", session.Username))
		if delErr := s.sessionRepo.Delete(ctx, sessionID); delErr != nil {
			s.logger.Warn("failed to delete revoked session", zap.Error(delErr))
		}
		return nil, fmt.Errorf("session %w", models.ErrNotFound)
	}
	session.Role = user.Role
	return session, nil
}

// CurrentUser describes the owner of a session, including the quota of super admins
func (s *authService) CurrentUser(ctx context.Context, session *models.Session) (*models.CurrentUserResponse, error) {
	resp := &models.CurrentUserResponse{
		Username:        session.Username,
		Role:            session.Role,
		IsAuthenticated: true,
	}
	if !session.IsSuperAdmin() {
		return resp, nil
	}

	admin, err := s.superAdminRepo.GetByUsername(ctx, session.Username)
	if err != nil {
		return nil, err
	}
	resp.ID = admin.ID
	resp.Role = models.RoleSuperAdmin
	resp.UserLimit = &admin.UserLimit
	resp.UserCount = &admin.UserCount
	return resp, nil
}
