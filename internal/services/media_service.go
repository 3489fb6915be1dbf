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

// PasswordAuthenticator is the interface that wraps the password grant of the auth provider
type PasswordAuthenticator interface {
	// Method SignInWithPassword exchanges credentials for the account identity.
	//
	// A rejected grant is reported as models.ErrInvalidCredentials.
	SignInWithPassword(ctx context.Context, email, password string) (*models.AuthIdentity, error)
}

// MediaUserRepository reads user profiles for token issuance
type MediaUserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// MediaChannelRepository reads channels for token issuance
type MediaChannelRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Channel, error)
}

// RoomTokenGenerator signs room tokens
type RoomTokenGenerator interface {
	GenerateRoomToken(identity, name, room, tokenID string) (string, error)
}

// mediaService issues room tokens to media clients
type mediaService struct {
	authenticator    PasswordAuthenticator
	userRepo         MediaUserRepository
	channelRepo      MediaChannelRepository
	tokenGenerator   RoomTokenGenerator
	defaultServerURL string
	logger           *zap.Logger
}

// NewMediaService creates a new media service
func NewMediaService(
	authenticator PasswordAuthenticator,
	userRepo MediaUserRepository,
	channelRepo MediaChannelRepository,
	tokenGenerator RoomTokenGenerator,
	defaultServerURL string,
	logger *zap.Logger,
) *mediaService {
	return &mediaService{
		authenticator:    authenticator,
		userRepo:         userRepo,
		channelRepo:      channelRepo,
		tokenGenerator:   tokenGenerator,
		defaultServerURL: defaultServerURL,
		logger:           logger,
	}
}

// IssueTokens authenticates a media client and returns one room token per authorised channel.
// Inactive users and users without channels are refused before any token is signed.
func (s *mediaService) IssueTokens(ctx context.Context, req *models.ClientAuthRequest) (*models.ClientAuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", models.ErrIncompleteData)
	}

	identity, err := s.authenticator.SignInWithPassword(ctx, username, req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		s.logger.Info("token request from inactive user", zap.String("userID", user.ID.String()))
		return nil, fmt.Errorf("%w: user account is inactive", models.ErrForbidden)
	}
	if len(user.Channels) == 0 {
		return nil, fmt.Errorf("%w: user has no channel access", models.ErrForbidden)
	}

	channels := make([]models.Channel, 0, len(user.Channels))
	for _, channelID := range uniqueIDs(user.Channels) {
		channel, err := s.channelRepo.GetByID(ctx, channelID)
		if err != nil {
			if !errors.Is(err, models.ErrNotFound) {
				s.logger.Warn("failed to load channel for token", zap.String("channelID", channelID.String()), zap.Error(err))
			}
			channels = append(channels, models.PlaceholderChannel(channelID))
			continue
		}
		channels = append(channels, *channel)
	}

	tokens := make(map[string]models.MediaToken, len(channels))
	for _, channel := range channels {
		room := channel.RoomName()
		token, err := s.tokenGenerator.GenerateRoomToken(user.Username, user.Username, room, fmt.Sprintf("%s-%s", user.Username, channel.ID))
		if err != nil {
			return nil, err
		}
		tokens[channel.ID.String()] = models.MediaToken{
			Token: token,
			Room:  room,
			Name:  channel.Name,
		}
	}

	serverURL := strings.TrimSpace(req.ServerURL)
	if serverURL == "" {
		serverURL = s.defaultServerURL
	}

	s.logger.Info("media tokens issued", zap.String("userID", user.ID.String()), zap.Int("channels", len(channels)))
	return &models.ClientAuthResponse{
		Success:   true,
		UserID:    user.ID,
		Username:  user.Username,
		Channels:  channels,
		Tokens:    tokens,
		ServerURL: serverURL,
	}, nil
}
