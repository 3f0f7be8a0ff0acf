// internal/store/store.go
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/bettersnoozing/hack-mcwics/internal/models"
)

// Errors surfaced by record store implementations.
var (
	ErrNotFound    = errors.New("record not found")
	ErrUnavailable = errors.New("store unavailable")
)

// IDKind discriminates between a document's primary key and the historical
// alternate identifiers some records still carry.
type IDKind int

const (
	IDPrimary IDKind = iota
	IDAlternate
)

// RecordID is an identifier resolved once at the adapter boundary instead of
// re-guessed at each call site.
type RecordID struct {
	Kind  IDKind
	Value string
}

// ParseRecordID classifies an identifier: UUID-shaped values address the
// primary key, everything else is looked up through alternate identifiers.
func ParseRecordID(s string) RecordID {
	if _, err := uuid.Parse(s); err == nil {
		return RecordID{Kind: IDPrimary, Value: s}
	}
	return RecordID{Kind: IDAlternate, Value: s}
}

// UpdateResult reports the outcome of a partial-field application update.
type UpdateResult struct {
	Modified    bool
	Application *models.Application
}

// StatusUpdate is the partial-field write applied to one application.
type StatusUpdate struct {
	Status        models.ApplicationStatus
	LastUpdatedBy string
}

// RecordStore is the narrow read/write contract the chat core depends on.
// Implementations return canonical shapes; all legacy field-name variants are
// folded in before records leave this boundary.
type RecordStore interface {
	// UserByEmail returns the registered user for an email, or (nil, nil)
	// when no such user exists.
	UserByEmail(ctx context.Context, email string) (*models.User, error)

	// ClubsByAdmin returns clubs linked to the caller through any accepted
	// cross-reference form: direct club email, membership of the club's
	// admin list, or the user's adminClub reference.
	ClubsByAdmin(ctx context.Context, email, userID, adminClubID string) ([]models.Club, error)

	// ClubsByName returns clubs whose name matches the pattern,
	// case-insensitive, partial.
	ClubsByName(ctx context.Context, pattern string) ([]models.Club, error)

	// ClubByID resolves one club by document id. Returns ErrNotFound when
	// no such club exists.
	ClubByID(ctx context.Context, id string) (*models.Club, error)

	// OpenRolesByClubs returns the open roles belonging to any of the clubs.
	OpenRolesByClubs(ctx context.Context, clubIDs []string) ([]models.OpenRole, error)

	// ApplicationsByRoles returns applications targeting any of the roles.
	ApplicationsByRoles(ctx context.Context, roleIDs []string, limit int) ([]models.Application, error)

	// ApplicationsByClubs returns applications referencing a club directly,
	// for records predating the role reference.
	ApplicationsByClubs(ctx context.Context, clubIDs []string, limit int) ([]models.Application, error)

	// Applications returns up to limit applications, unscoped.
	Applications(ctx context.Context, limit int) ([]models.Application, error)

	// ApplicationByID resolves one application by primary or alternate
	// identifier. Returns ErrNotFound when nothing matches.
	ApplicationByID(ctx context.Context, id RecordID) (*models.Application, error)

	// UpdateApplicationStatus applies the partial update to one application
	// and reports whether the store modified the document, along with the
	// post-update record.
	UpdateApplicationStatus(ctx context.Context, id RecordID, upd StatusUpdate) (*UpdateResult, error)
}
