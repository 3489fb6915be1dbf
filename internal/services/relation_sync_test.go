package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/nimada80/plusp/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// relationFixture holds three users, one channel and a sync engine over them
type relationFixture struct {
	users    *mockUserRepository
	channels *mockChannelRepository
	sync     *relationSync
	u1       uuid.UUID
	u2       uuid.UUID
	u3       uuid.UUID
	channel  uuid.UUID
}

func newRelationFixture(t *testing.T) *relationFixture {
	t.Helper()
	f := &relationFixture{u1: uuid.New(), u2: uuid.New(), u3: uuid.New(), channel: uuid.New()}
	f.users = newMockUserRepository(
		&models.User{ID: f.u1, Username: "u1@example.com", Active: true, Channels: []uuid.UUID{f.channel}},
		&models.User{ID: f.u2, Username: "u2@example.com", Active: true, Channels: []uuid.UUID{f.channel}},
		&models.User{ID: f.u3, Username: "u3@example.com", Active: true, Channels: []uuid.UUID{}},
	)
	f.channels = newMockChannelRepository(
		&models.Channel{ID: f.channel, Name: "ops", AuthorizedUsers: []uuid.UUID{f.u1, f.u2}},
	)
	f.sync = NewRelationSync(f.users, f.channels, zaptest.NewLogger(t))
	return f
}

func TestRelationSync_SyncAdd(t *testing.T) {
	f := newRelationFixture(t)
	ctx := context.Background()
	other := uuid.New()

	report, err := f.sync.SyncAdd(ctx, models.EntityChannel, other, []uuid.UUID{f.u1, f.u3, f.u1})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Added)
	assert.Equal(t, []uuid.UUID{f.channel, other}, f.users.channelsOf(f.u1))
	assert.Equal(t, []uuid.UUID{other}, f.users.channelsOf(f.u3))
	assert.Equal(t, []uuid.UUID{f.channel}, f.users.channelsOf(f.u2))

	// Already listed counterparts are not rewritten
	sets := f.users.sets
	report, err = f.sync.SyncAdd(ctx, models.EntityChannel, other, []uuid.UUID{f.u1, f.u3})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Added)
	assert.Equal(t, 2, report.Unchanged)
	assert.Equal(t, sets, f.users.sets)
}

func TestRelationSync_SyncRemove(t *testing.T) {
	f := newRelationFixture(t)
	ctx := context.Background()

	report, err := f.sync.SyncRemove(ctx, models.EntityUser, f.u1, []uuid.UUID{f.channel})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Removed)
	assert.Equal(t, []uuid.UUID{f.u2}, f.channels.usersOf(f.channel))

	report, err = f.sync.SyncRemove(ctx, models.EntityUser, f.u1, []uuid.UUID{f.channel})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Removed)
	assert.Equal(t, 1, report.Unchanged)
}

func TestRelationSync_DiffAndSync(t *testing.T) {
	f := newRelationFixture(t)
	ctx := context.Background()

	// Channel authorised users change from [u1, u2] to [u2, u3]
	oldIDs := []uuid.UUID{f.u1, f.u2}
	newIDs := []uuid.UUID{f.u2, f.u3}

	report, err := f.sync.DiffAndSync(ctx, models.EntityChannel, f.channel, oldIDs, newIDs)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Removed)
	assert.Equal(t, 1, report.Added)
	assert.Empty(t, f.users.channelsOf(f.u1))
	assert.Equal(t, []uuid.UUID{f.channel}, f.users.channelsOf(f.u2))
	assert.Equal(t, []uuid.UUID{f.channel}, f.users.channelsOf(f.u3))

	// Second run leaves the store unchanged
	sets := f.users.sets
	report, err = f.sync.DiffAndSync(ctx, models.EntityChannel, f.channel, oldIDs, newIDs)
	require.NoError(t, err)
	assert.Equal(t, sets, f.users.sets)
	assert.Equal(t, 2, report.Unchanged)
	assert.Empty(t, f.users.channelsOf(f.u1))
	assert.Equal(t, []uuid.UUID{f.channel}, f.users.channelsOf(f.u3))
}

func TestRelationSync_PartialFailure(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *relationFixture)
	}{
		{
			name:  "counterpart read fails",
			setup: func(f *relationFixture) { f.users.failGet[f.u1] = true },
		},
		{
			name:  "counterpart write fails",
			setup: func(f *relationFixture) { f.users.failSet[f.u1] = true },
		},
		{
			name:  "counterpart missing",
			setup: func(f *relationFixture) { delete(f.users.users, f.u1) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRelationFixture(t)
			tt.setup(f)
			other := uuid.New()

			report, err := f.sync.SyncAdd(context.Background(), models.EntityChannel, other, []uuid.UUID{f.u1, f.u3})

			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrPartialSync))
			assert.Equal(t, []uuid.UUID{f.u1}, report.Failed)
			assert.Equal(t, 1, report.Added)
			assert.Equal(t, []uuid.UUID{other}, f.users.channelsOf(f.u3))
		})
	}
}

func TestRelationSync_UnknownOwner(t *testing.T) {
	f := newRelationFixture(t)

	_, err := f.sync.SyncAdd(context.Background(), models.EntityKind(99), uuid.New(), []uuid.UUID{f.u1})

	assert.True(t, errors.Is(err, models.ErrInvalidInput))
}

func TestDiffIDs(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	tests := []struct {
		name            string
		oldIDs          []uuid.UUID
		newIDs          []uuid.UUID
		expectedRemoved []uuid.UUID
		expectedAdded   []uuid.UUID
	}{
		{name: "swap", oldIDs: []uuid.UUID{a, b}, newIDs: []uuid.UUID{b, c}, expectedRemoved: []uuid.UUID{a}, expectedAdded: []uuid.UUID{c}},
		{name: "no change", oldIDs: []uuid.UUID{a}, newIDs: []uuid.UUID{a}},
		{name: "clear", oldIDs: []uuid.UUID{a, b}, newIDs: nil, expectedRemoved: []uuid.UUID{a, b}},
		{name: "from empty with duplicates", oldIDs: nil, newIDs: []uuid.UUID{c, c}, expectedAdded: []uuid.UUID{c}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			removed, added := diffIDs(tt.oldIDs, tt.newIDs)
			assert.Equal(t, tt.expectedRemoved, removed)
			assert.Equal(t, tt.expectedAdded, added)
		})
	}
}
