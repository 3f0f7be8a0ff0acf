// internal/chat/scope.go
package chat

import (
	"context"
	"strings"

	"github.com/bettersnoozing/hack-mcwics/internal/common/config"
	"github.com/bettersnoozing/hack-mcwics/internal/common/logger"
	"github.com/bettersnoozing/hack-mcwics/internal/models"
	"github.com/bettersnoozing/hack-mcwics/internal/store"
)

// ScopeKind classifies what a caller is allowed to see.
type ScopeKind int

const (
	// ScopeAnonymous callers see nothing and every write attempt fails.
	ScopeAnonymous ScopeKind = iota
	// ScopeClubAdmin callers see the applications of the clubs they administer.
	ScopeClubAdmin
	// ScopeGlobalAdmin callers carry an elevated role but no club; they see
	// all applications, bounded by the pool limit.
	ScopeGlobalAdmin
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeClubAdmin:
		return "club_admin"
	case ScopeGlobalAdmin:
		return "global_admin"
	default:
		return "anonymous"
	}
}

// Scope is the caller's resolved visibility for one message. It is recomputed
// on every message; admin rights can change between messages.
type Scope struct {
	Kind        ScopeKind
	CallerEmail string
	Clubs       []models.Club
	Pool        []models.Application
}

// Resolver derives a caller's scope and candidate application pool.
type Resolver struct {
	store     store.RecordStore
	fallback  map[string]config.FallbackAdmin
	poolLimit int
	logger    logger.Logger
}

func NewResolver(rs store.RecordStore, fallbackAdmins []config.FallbackAdmin, poolLimit int, log logger.Logger) *Resolver {
	fallback := make(map[string]config.FallbackAdmin, len(fallbackAdmins))
	for _, fa := range fallbackAdmins {
		fallback[strings.ToLower(fa.Email)] = fa
	}
	if poolLimit <= 0 {
		poolLimit = 100
	}
	return &Resolver{
		store:     rs,
		fallback:  fallback,
		poolLimit: poolLimit,
		logger:    log.WithFields(map[string]interface{}{"component": "scope-resolver"}),
	}
}

// Resolve computes the caller's scope. It never fails: a backing-store error
// degrades to Anonymous so the rest of the pipeline always receives a
// well-defined, possibly empty, pool.
func (r *Resolver) Resolve(ctx context.Context, callerEmail string) Scope {
	email := strings.ToLower(strings.TrimSpace(callerEmail))
	if email == "" {
		return Scope{Kind: ScopeAnonymous}
	}

	user, err := r.store.UserByEmail(ctx, email)
	if err != nil {
		r.logger.Warn("user lookup failed, degrading to anonymous scope", map[string]interface{}{
			"caller": email,
			"error":  err.Error(),
		})
		return Scope{Kind: ScopeAnonymous, CallerEmail: email}
	}

	if user != nil && user.HasElevatedRole() {
		return r.resolveRegistered(ctx, email, user)
	}

	if fa, ok := r.fallback[email]; ok {
		return r.resolveFallback(ctx, email, fa)
	}

	return Scope{Kind: ScopeAnonymous, CallerEmail: email}
}

func (r *Resolver) resolveRegistered(ctx context.Context, email string, user *models.User) Scope {
	clubs, err := r.store.ClubsByAdmin(ctx, email, user.ID, user.AdminClubID)
	if err != nil {
		r.logger.Warn("club lookup failed, degrading to anonymous scope", map[string]interface{}{
			"caller": email,
			"error":  err.Error(),
		})
		return Scope{Kind: ScopeAnonymous, CallerEmail: email}
	}

	if len(clubs) == 0 {
		// Elevated role with no resolvable club: global admin.
		pool, err := r.store.Applications(ctx, r.poolLimit)
		if err != nil {
			r.logger.Warn("application pool lookup failed", map[string]interface{}{
				"caller": email,
				"error":  err.Error(),
			})
			return Scope{Kind: ScopeAnonymous, CallerEmail: email}
		}
		return Scope{Kind: ScopeGlobalAdmin, CallerEmail: email, Pool: pool}
	}

	pool := r.buildClubPool(ctx, email, clubs)
	return Scope{Kind: ScopeClubAdmin, CallerEmail: email, Clubs: clubs, Pool: pool}
}

func (r *Resolver) resolveFallback(ctx context.Context, email string, fa config.FallbackAdmin) Scope {
	scope := Scope{Kind: ScopeClubAdmin, CallerEmail: email}

	if fa.Club != "" {
		clubs, err := r.store.ClubsByName(ctx, fa.Club)
		if err != nil {
			r.logger.Warn("fallback admin club lookup failed", map[string]interface{}{
				"caller": email,
				"club":   fa.Club,
				"error":  err.Error(),
			})
			return scope
		}
		scope.Clubs = clubs
	}

	scope.Pool = r.buildClubPool(ctx, email, scope.Clubs)
	return scope
}

// buildClubPool collects the applications visible to a set of clubs: first
// those targeting the clubs' open roles, then any legacy records referencing
// a club directly.
func (r *Resolver) buildClubPool(ctx context.Context, email string, clubs []models.Club) []models.Application {
	if len(clubs) == 0 {
		return nil
	}

	clubIDs := make([]string, 0, len(clubs))
	roleIDs := make([]string, 0)
	for _, c := range clubs {
		clubIDs = append(clubIDs, c.ID)
		roleIDs = append(roleIDs, c.OpenRoleIDs...)
	}

	roles, err := r.store.OpenRolesByClubs(ctx, clubIDs)
	if err != nil {
		r.logger.Warn("open role lookup failed, pool will be empty", map[string]interface{}{
			"caller": email,
			"error":  err.Error(),
		})
		return nil
	}
	for _, role := range roles {
		roleIDs = append(roleIDs, role.ID)
	}

	var pool []models.Application
	seen := make(map[string]bool)

	if len(roleIDs) > 0 {
		apps, err := r.store.ApplicationsByRoles(ctx, dedupe(roleIDs), r.poolLimit)
		if err != nil {
			r.logger.Warn("application lookup by role failed", map[string]interface{}{
				"caller": email,
				"error":  err.Error(),
			})
		} else {
			for _, app := range apps {
				if !seen[app.ID] {
					seen[app.ID] = true
					pool = append(pool, app)
				}
			}
		}
	}

	apps, err := r.store.ApplicationsByClubs(ctx, clubIDs, r.poolLimit)
	if err != nil {
		r.logger.Warn("application lookup by club failed", map[string]interface{}{
			"caller": email,
			"error":  err.Error(),
		})
		return pool
	}
	for _, app := range apps {
		if !seen[app.ID] {
			seen[app.ID] = true
			pool = append(pool, app)
		}
	}

	if len(pool) > r.poolLimit {
		pool = pool[:r.poolLimit]
	}
	return pool
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
