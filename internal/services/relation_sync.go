package services

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/nimada80/plusp/internal/models"
	"go.uber.org/zap"
)

// RelationRepository is the interface that wraps access to one side of the user/channel relation
type RelationRepository interface {
	// Method GetRelations returns the relation list held by a record.
	//
	// "id" parameter is used to specify the record.
	//
	// If the record does not exist, an error wrapping models.ErrNotFound will be returned together with nil.
	GetRelations(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
	// Method SetRelations replaces the relation list held by a record.
	//
	// "id" parameter is used to specify the record.
	// "ids" parameter is the complete new list.
	//
	// If some error occurs, the error will be returned.
	SetRelations(ctx context.Context, id uuid.UUID, ids []uuid.UUID) error
}

// relationSync keeps User.channels and Channel.authorized_users mirrored after a write to one side.
//
// Counterparts are visited one at a time with a fetch and at most one write each. A counterpart
// that cannot be read or written is logged and skipped; the remaining ones are still processed
// and the returned error wraps models.ErrPartialSync. Writes happen only when the counterpart's
// list actually changes, so every call is idempotent.
type relationSync struct {
	userRelations    RelationRepository
	channelRelations RelationRepository
	logger           *zap.Logger
}

// NewRelationSync creates a new relation sync engine.
// "userRelations" gives access to User.channels, "channelRelations" to Channel.authorized_users.
func NewRelationSync(userRelations, channelRelations RelationRepository, logger *zap.Logger) *relationSync {
	return &relationSync{
		userRelations:    userRelations,
		channelRelations: channelRelations,
		logger:           logger,
	}
}

// counterparts returns the repository holding the mirror list of owner
func (s *relationSync) counterparts(owner models.EntityKind) (RelationRepository, error) {
	switch owner {
	case models.EntityUser:
		return s.channelRelations, nil
	case models.EntityChannel:
		return s.userRelations, nil
	default:
		return nil, fmt.Errorf("%w: unknown entity kind %d", models.ErrInvalidInput, owner)
	}
}

// SyncAdd ensures ownerID is listed by every counterpart in counterpartIDs
func (s *relationSync) SyncAdd(ctx context.Context, owner models.EntityKind, ownerID uuid.UUID, counterpartIDs []uuid.UUID) (*models.SyncReport, error) {
	return s.apply(ctx, owner, ownerID, counterpartIDs, true)
}

// SyncRemove ensures ownerID is not listed by any counterpart in counterpartIDs
func (s *relationSync) SyncRemove(ctx context.Context, owner models.EntityKind, ownerID uuid.UUID, counterpartIDs []uuid.UUID) (*models.SyncReport, error) {
	return s.apply(ctx, owner, ownerID, counterpartIDs, false)
}

// DiffAndSync propagates the change of an owner's relation list from oldIDs to newIDs.
// Removals run before additions.
func (s *relationSync) DiffAndSync(ctx context.Context, owner models.EntityKind, ownerID uuid.UUID, oldIDs, newIDs []uuid.UUID) (*models.SyncReport, error) {
	removed, added := diffIDs(oldIDs, newIDs)
	report := &models.SyncReport{}

	removeReport, removeErr := s.SyncRemove(ctx, owner, ownerID, removed)
	report.Merge(removeReport)

	addReport, addErr := s.SyncAdd(ctx, owner, ownerID, added)
	report.Merge(addReport)

	if removeErr != nil || addErr != nil {
		if len(report.Failed) > 0 {
			return report, fmt.Errorf("%w: %d of %d counterparts of %s %s not updated",
				models.ErrPartialSync, len(report.Failed), len(removed)+len(added), owner, ownerID)
		}
		if removeErr != nil {
			return report, removeErr
		}
		return report, addErr
	}
	return report, nil
}

func (s *relationSync) apply(ctx context.Context, owner models.EntityKind, ownerID uuid.UUID, counterpartIDs []uuid.UUID, add bool) (*models.SyncReport, error) {
	repo, err := s.counterparts(owner)
	if err != nil {
		return nil, err
	}

	report := &models.SyncReport{}
	ids := uniqueIDs(counterpartIDs)
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		current, err := repo.GetRelations(ctx, id)
		if err != nil {
			s.logger.Warn("failed to read relation counterpart",
				zap.Stringer("owner", owner),
				zap.String("ownerID", ownerID.String()),
				zap.String("counterpartID", id.String()),
				zap.Error(err),
			)
			report.Failed = append(report.Failed, id)
			continue
		}

		listed := slices.Contains(current, ownerID)
		var next []uuid.UUID
		switch {
		case add && !listed:
			next = append(slices.Clone(current), ownerID)
		case !add && listed:
			next = slices.DeleteFunc(slices.Clone(current), func(v uuid.UUID) bool { return v == ownerID })
		default:
			report.Unchanged++
			continue
		}

		if err := repo.SetRelations(ctx, id, next); err != nil {
			s.logger.Warn("failed to write relation counterpart",
				zap.Stringer("owner", owner),
				zap.String("ownerID", ownerID.String()),
				zap.String("counterpartID", id.String()),
				zap.Bool("add", add),
				zap.Error(err),
			)
			report.Failed = append(report.Failed, id)
			continue
		}

		if add {
			report.Added++
		} else {
			report.Removed++
		}
	}

	if len(report.Failed) > 0 {
		return report, fmt.Errorf("%w: %d of %d counterparts of %s %s not updated",
			models.ErrPartialSync, len(report.Failed), len(ids), owner, ownerID)
	}
	return report, nil
}

// diffIDs returns the IDs only in oldIDs and the IDs only in newIDs, in input order
func diffIDs(oldIDs, newIDs []uuid.UUID) (removed, added []uuid.UUID) {
	for _, id := range uniqueIDs(oldIDs) {
		if !slices.Contains(newIDs, id) {
			removed = append(removed, id)
		}
	}
	for _, id := range uniqueIDs(newIDs) {
		if !slices.Contains(oldIDs, id) {
			added = append(added, id)
		}
	}
	return removed, added
}

// uniqueIDs drops duplicates and nil IDs keeping first occurrences
func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}
