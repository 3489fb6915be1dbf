package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/nimada80/plusp/internal/models"
)

var errStore = errors.New("store unavailable")

// mockUserRepository is an in-memory implementation of the user repositories
type mockUserRepository struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*models.User
	failGet   map[uuid.UUID]bool
	failSet   map[uuid.UUID]bool
	createErr error
	err       error
	sets      int
}

func newMockUserRepository(users ...*models.User) *mockUserRepository {
	m := &mockUserRepository{
		users:   make(map[uuid.UUID]*models.User),
		failGet: make(map[uuid.UUID]bool),
		failSet: make(map[uuid.UUID]bool),
	}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepository) GetAll(ctx context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %w", models.ErrNotFound)
	}
	c := *u
	c.Channels = slices.Clone(u.Channels)
	return &c, nil
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, fmt.Errorf("user %w", models.ErrNotFound)
}

func (m *mockUserRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.users[id]
	return ok, nil
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	for _, u := range m.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	c := *user
	c.Channels = slices.Clone(user.Channels)
	m.users[user.ID] = &c
	return nil
}

func (m *mockUserRepository) Update(ctx context.Context, id uuid.UUID, patch *models.UserPatch) (*models.User, error) {
	m.mu.Lock()
	u, ok := m.users[id]
	if !ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("user %w", models.ErrNotFound)
	}
	if patch.Username != nil {
		u.Username = *patch.Username
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if patch.Active != nil {
		u.Active = *patch.Active
	}
	if patch.Channels != nil {
		u.Channels = slices.Clone(*patch.Channels)
	}
	m.mu.Unlock()
	return m.GetByID(ctx, id)
}

func (m *mockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

func (m *mockUserRepository) GetRelations(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	if m.failGet[id] {
		return nil, errStore
	}
	u, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Channels, nil
}

func (m *mockUserRepository) SetRelations(ctx context.Context, id uuid.UUID, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet[id] {
		return errStore
	}
	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("user %w", models.ErrNotFound)
	}
	u.Channels = slices.Clone(ids)
	m.sets++
	return nil
}

func (m *mockUserRepository) channelsOf(id uuid.UUID) []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return slices.Clone(u.Channels)
	}
	return nil
}

// mockChannelRepository is an in-memory implementation of the channel repositories
type mockChannelRepository struct {
	mu       sync.Mutex
	channels map[uuid.UUID]*models.Channel
	failGet  map[uuid.UUID]bool
	failSet  map[uuid.UUID]bool
	err      error
	sets     int
}

func newMockChannelRepository(channels ...*models.Channel) *mockChannelRepository {
	m := &mockChannelRepository{
		channels: make(map[uuid.UUID]*models.Channel),
		failGet:  make(map[uuid.UUID]bool),
		failSet:  make(map[uuid.UUID]bool),
	}
	for _, c := range channels {
		m.channels[c.ID] = c
	}
	return m
}

func (m *mockChannelRepository) GetAll(ctx context.Context) ([]models.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.Channel, 0, len(m.channels))
	for _, c := range m.channels {
		cc := *c
		cc.AuthorizedUsers = slices.Clone(c.AuthorizedUsers)
		out = append(out, cc)
	}
	return out, nil
}

func (m *mockChannelRepository) GetByName(ctx context.Context, name string) ([]models.Channel, error) {
	all, err := m.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Channel, 0)
	for _, c := range all {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockChannelRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.channels[id]
	if !ok {
		return nil, fmt.Errorf("channel %w", models.ErrNotFound)
	}
	cc := *c
	cc.AuthorizedUsers = slices.Clone(c.AuthorizedUsers)
	return &cc, nil
}

func (m *mockChannelRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.channels[id]
	return ok, nil
}

func (m *mockChannelRepository) Create(ctx context.Context, channel *models.Channel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	c := *channel
	c.AuthorizedUsers = slices.Clone(channel.AuthorizedUsers)
	m.channels[channel.ID] = &c
	return nil
}

func (m *mockChannelRepository) Update(ctx context.Context, id uuid.UUID, patch *models.ChannelPatch) (*models.Channel, error) {
	m.mu.Lock()
	c, ok := m.channels[id]
	if !ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("channel %w", models.ErrNotFound)
	}
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.AuthorizedUsers != nil {
		c.AuthorizedUsers = slices.Clone(*patch.AuthorizedUsers)
	}
	m.mu.Unlock()
	return m.GetByID(ctx, id)
}

func (m *mockChannelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.channels, id)
	return nil
}

func (m *mockChannelRepository) GetRelations(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	if m.failGet[id] {
		return nil, errStore
	}
	c, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.AuthorizedUsers, nil
}

func (m *mockChannelRepository) SetRelations(ctx context.Context, id uuid.UUID, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet[id] {
		return errStore
	}
	c, ok := m.channels[id]
	if !ok {
		return fmt.Errorf("channel %w", models.ErrNotFound)
	}
	c.AuthorizedUsers = slices.Clone(ids)
	m.sets++
	return nil
}

func (m *mockChannelRepository) usersOf(id uuid.UUID) []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.channels[id]; ok {
		return slices.Clone(c.AuthorizedUsers)
	}
	return nil
}

// mockAccountRepository is a mock implementation of the auth provider
type mockAccountRepository struct {
	created   []string
	deleted   []uuid.UUID
	updated   []models.AuthUserAttributes
	nextID    uuid.UUID
	createErr error
	updateErr error
	deleteErr error
	identity  *models.AuthIdentity
	signInErr error
}

func (m *mockAccountRepository) CreateUser(ctx context.Context, email, password string) (uuid.UUID, error) {
	if m.createErr != nil {
		return uuid.Nil, m.createErr
	}
	m.created = append(m.created, email)
	if m.nextID != uuid.Nil {
		return m.nextID, nil
	}
	return uuid.New(), nil
}

func (m *mockAccountRepository) UpdateUser(ctx context.Context, id uuid.UUID, attrs models.AuthUserAttributes) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated = append(m.updated, attrs)
	return nil
}

func (m *mockAccountRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	m.deleted = append(m.deleted, id)
	return m.deleteErr
}

func (m *mockAccountRepository) SignInWithPassword(ctx context.Context, email, password string) (*models.AuthIdentity, error) {
	if m.signInErr != nil {
		return nil, m.signInErr
	}
	return m.identity, nil
}

// mockSuperAdminRepository is a mock implementation of the super admin repositories
type mockSuperAdminRepository struct {
	admins    map[string]*models.SuperAdmin
	err       error
	createErr error
	countErr  error
}

func newMockSuperAdminRepository(admins ...*models.SuperAdmin) *mockSuperAdminRepository {
	m := &mockSuperAdminRepository{admins: make(map[string]*models.SuperAdmin)}
	for _, a := range admins {
		m.admins[a.Username] = a
	}
	return m
}

func (m *mockSuperAdminRepository) GetByUsername(ctx context.Context, username string) (*models.SuperAdmin, error) {
	if m.err != nil {
		return nil, m.err
	}
	a, ok := m.admins[username]
	if !ok {
		return nil, fmt.Errorf("super admin %w", models.ErrNotFound)
	}
	c := *a
	return &c, nil
}

func (m *mockSuperAdminRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.admins[username]
	return ok, nil
}

func (m *mockSuperAdminRepository) Create(ctx context.Context, admin *models.SuperAdmin) error {
	if m.createErr != nil {
		return m.createErr
	}
	admin.ID = int64(len(m.admins) + 1)
	c := *admin
	m.admins[admin.Username] = &c
	return nil
}

func (m *mockSuperAdminRepository) UpdateUserCount(ctx context.Context, id int64, count int) error {
	if m.countErr != nil {
		return m.countErr
	}
	for _, a := range m.admins {
		if a.ID == id {
			a.UserCount = count
			return nil
		}
	}
	return fmt.Errorf("super admin %w", models.ErrNotFound)
}

// mockSessionRepository is an in-memory session store
type mockSessionRepository struct {
	sessions map[string]*models.Session
	err      error
}

func newMockSessionRepository() *mockSessionRepository {
	return &mockSessionRepository{sessions: make(map[string]*models.Session)}
}

func (m *mockSessionRepository) Create(ctx context.Context, session *models.Session) error {
	if m.err != nil {
		return m.err
	}
	c := *session
	m.sessions[session.ID] = &c
	return nil
}

func (m *mockSessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %w", models.ErrNotFound)
	}
	c := *s
	return &c, nil
}

func (m *mockSessionRepository) Delete(ctx context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

// mockTokenGenerator records signed room tokens
type mockTokenGenerator struct {
	calls int
	err   error
}

func (m *mockTokenGenerator) GenerateRoomToken(identity, name, room, tokenID string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.calls++
	return fmt.Sprintf("token:%s:%s", identity, room), nil
}

// mockEnqueuer records enqueued tasks
type mockEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (m *mockEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.tasks = append(m.tasks, task)
	return &asynq.TaskInfo{ID: fmt.Sprintf("task-%d", len(m.tasks)), Type: task.Type()}, nil
}
