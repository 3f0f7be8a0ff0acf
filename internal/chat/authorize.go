// internal/chat/authorize.go
package chat

import (
	"context"
	"strings"

	"github.com/bettersnoozing/hack-mcwics/internal/common/config"
	errs "github.com/bettersnoozing/hack-mcwics/internal/common/errors"
	"github.com/bettersnoozing/hack-mcwics/internal/models"
	"github.com/bettersnoozing/hack-mcwics/internal/store"
)

// Gate re-derives authorization right before a write, independently of the
// candidate pool the interpreter saw. Club scoping already happened when the
// pool was built; this gate rejects callers with no privilege at all.
type Gate struct {
	store    store.RecordStore
	fallback map[string]config.FallbackAdmin
}

func NewGate(rs store.RecordStore, fallbackAdmins []config.FallbackAdmin) *Gate {
	fallback := make(map[string]config.FallbackAdmin, len(fallbackAdmins))
	for _, fa := range fallbackAdmins {
		fallback[strings.ToLower(fa.Email)] = fa
	}
	return &Gate{store: rs, fallback: fallback}
}

// Authorize returns nil when the caller is a registered user with an elevated
// role or a recognized fallback admin. A store failure surfaces as
// StoreUnavailable: the gate fails closed, never silently open.
func (g *Gate) Authorize(ctx context.Context, callerEmail string, _ *models.Application) error {
	email := strings.ToLower(strings.TrimSpace(callerEmail))
	if email == "" {
		return errs.NewUnauthorizedError("no caller identity")
	}

	if _, ok := g.fallback[email]; ok {
		return nil
	}

	user, err := g.store.UserByEmail(ctx, email)
	if err != nil {
		return errs.NewStoreUnavailableError("users", err)
	}
	if user == nil || !user.HasElevatedRole() {
		return errs.NewUnauthorizedError("caller " + email + " has no elevated role")
	}

	return nil
}
