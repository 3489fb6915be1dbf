package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/nimada80/plusp/internal/auth/middleware"
	"github.com/nimada80/plusp/internal/models"
)

// mockAuthService is a mock implementation of AuthService and MediaTokenService
type mockAuthService struct {
	session    *models.Session
	loginErr   error
	loggedOut  []string
	logoutErr  error
	current    *models.CurrentUserResponse
	currentErr error
	tokens     *models.ClientAuthResponse
	tokensErr  error
}

func (m *mockAuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.Session, error) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return m.session, nil
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	m.loggedOut = append(m.loggedOut, sessionID)
	return m.logoutErr
}

func (m *mockAuthService) CurrentUser(ctx context.Context, session *models.Session) (*models.CurrentUserResponse, error) {
	if m.currentErr != nil {
		return nil, m.currentErr
	}
	return m.current, nil
}

func (m *mockAuthService) IssueTokens(ctx context.Context, req *models.ClientAuthRequest) (*models.ClientAuthResponse, error) {
	if m.tokensErr != nil {
		return nil, m.tokensErr
	}
	return m.tokens, nil
}

// mockChannelService is a mock implementation of ChannelService
type mockChannelService struct {
	channels  []models.Channel
	channel   *models.Channel
	err       error
	createReq *models.CreateChannelRequest
	updateReq *models.UpdateChannelRequest
	deleted   []uuid.UUID
}

func (m *mockChannelService) ListChannels(ctx context.Context) ([]models.Channel, error) {
	return m.channels, m.err
}

func (m *mockChannelService) GetChannel(ctx context.Context, id uuid.UUID) (*models.Channel, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.channel, nil
}

func (m *mockChannelService) CreateChannel(ctx context.Context, req *models.CreateChannelRequest) (*models.Channel, error) {
	m.createReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.channel, nil
}

func (m *mockChannelService) UpdateChannel(ctx context.Context, id uuid.UUID, req *models.UpdateChannelRequest) (*models.Channel, error) {
	m.updateReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.channel, nil
}

func (m *mockChannelService) DeleteChannel(ctx context.Context, id uuid.UUID) error {
	m.deleted = append(m.deleted, id)
	return m.err
}

// mockUserService is a mock implementation of UserService
type mockUserService struct {
	users     []models.User
	user      *models.User
	err       error
	actors    []string
	createReq *models.CreateUserRequest
	updateReq *models.UpdateUserRequest
}

func (m *mockUserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return m.users, m.err
}

func (m *mockUserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func (m *mockUserService) CreateUser(ctx context.Context, actor string, req *models.CreateUserRequest) (*models.User, error) {
	m.actors = append(m.actors, actor)
	m.createReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func (m *mockUserService) UpdateUser(ctx context.Context, id uuid.UUID, req *models.UpdateUserRequest) (*models.User, error) {
	m.updateReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func (m *mockUserService) DeleteUser(ctx context.Context, actor string, id uuid.UUID) error {
	m.actors = append(m.actors, actor)
	return m.err
}

// mockSuperAdminService is a mock implementation of SuperAdminService
type mockSuperAdminService struct {
	admin  *models.SuperAdmin
	err    error
	actors []string
}

func (m *mockSuperAdminService) CreateSuperAdmin(ctx context.Context, actor string, req *models.CreateSuperAdminRequest) (*models.SuperAdmin, error) {
	m.actors = append(m.actors, actor)
	if m.err != nil {
		return nil, m.err
	}
	return m.admin, nil
}

// mockReconcileEnqueuer is a mock implementation of ReconcileEnqueuer
type mockReconcileEnqueuer struct {
	channels []string
	err      error
}

func (m *mockReconcileEnqueuer) Enqueue(ctx context.Context, channelName string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.channels = append(m.channels, channelName)
	return "task-1", nil
}

// withSession injects session into every request, standing in for the session middleware
func withSession(session *models.Session) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if session != nil {
				r = r.WithContext(middleware.WithSession(r.Context(), session))
			}
			next.ServeHTTP(w, r)
		})
	}
}
