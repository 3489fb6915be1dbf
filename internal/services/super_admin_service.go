package services

import (
	"context"
	"fmt"

	"github.com/nimada80/plusp/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// superAdminService manages console operator accounts
type superAdminService struct {
	superAdminRepo SuperAdminRepository
	logger         *zap.Logger
}

// NewSuperAdminService creates a new super admin service
func NewSuperAdminService(superAdminRepo SuperAdminRepository, logger *zap.Logger) *superAdminService {
	return &superAdminService{
		superAdminRepo: superAdminRepo,
		logger:         logger,
	}
}

// CreateSuperAdmin creates an operator account on behalf of actor
func (s *superAdminService) CreateSuperAdmin(ctx context.Context, actor string, req *models.CreateSuperAdminRequest) (*models.SuperAdmin, error) {
	username := normalizeUsername(req.Username)
	if username == "" || req.Password == "" || req.UserLimit == nil {
		return nil, fmt.Errorf("%w: admin_super_user, admin_super_password and user_limit are required", models.ErrIncompleteData)
	}
	if *req.UserLimit < 0 {
		return nil, fmt.Errorf("%w: user_limit cannot be negative", models.ErrInvalidInput)
	}
	if err := checkPassword(req.Password); err != nil {
		return nil, err
	}

	exists, err := s.superAdminRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("super admin %w", models.ErrAlreadyExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.SuperAdmin{
		Username:     username,
		PasswordHash: string(hash),
		UserLimit:    *req.UserLimit,
		CreatedBy:    actor,
	}
	if err := s.superAdminRepo.Create(ctx, admin); err != nil {
		return nil, err
	}

	s.logger.Info("super admin created", zap.String("username", username), zap.String("createdBy", actor))
	return admin, nil
}
