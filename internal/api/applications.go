// internal/api/applications.go
package api

import (
	"errors"
	"net/http"
	"sort"

	errs "github.com/bettersnoozing/hack-mcwics/internal/common/errors"
	"github.com/bettersnoozing/hack-mcwics/internal/models"
	"github.com/bettersnoozing/hack-mcwics/internal/store"
)

// applicationPageSize bounds the admin review listing.
const applicationPageSize = 200

type statusPatchRequest struct {
	Status string `json:"status"`
}

// handlePatchApplicationStatus is the direct REST counterpart of the chat
// command: same authorization gate, same executor, same idempotence contract.
func (s *Server) handlePatchApplicationStatus(w http.ResponseWriter, r *http.Request) {
	caller := CallerEmail(r.Context())
	if caller == "" {
		writeError(w, errs.NewUnauthorizedError("authentication required"))
		return
	}

	if err := s.gate.Authorize(r.Context(), caller, nil); err != nil {
		writeError(w, err)
		return
	}

	var req statusPatchRequest
	if err := decodeValidated(r, statusPatchSchema, &req); err != nil {
		writeError(w, err)
		return
	}

	outcome, err := s.executor.ApplyStatus(r.Context(), r.PathValue("id"), req.Status, caller)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"outcome":     string(outcome.Outcome),
		"application": outcome.Application,
	})
}

// handleListClubApplications serves the admin review listing: every
// application targeting one of the club's open roles, newest first, with
// optional open_role_id and status filters.
func (s *Server) handleListClubApplications(w http.ResponseWriter, r *http.Request) {
	caller := CallerEmail(r.Context())
	if caller == "" {
		writeError(w, errs.NewUnauthorizedError("authentication required"))
		return
	}
	if err := s.gate.Authorize(r.Context(), caller, nil); err != nil {
		writeError(w, err)
		return
	}

	clubID := r.PathValue("id")
	club, err := s.records.ClubByID(r.Context(), clubID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, errs.NewClubNotFoundError(clubID))
		} else {
			writeError(w, errs.NewStoreUnavailableError("clubs", err))
		}
		return
	}

	apps, err := s.clubApplications(r, club)
	if err != nil {
		writeError(w, errs.NewStoreUnavailableError("applications", err))
		return
	}

	// Unknown status values are ignored rather than rejected, matching the
	// other listing filters.
	if raw := r.URL.Query().Get("status"); raw != "" {
		if status, ok := models.NormalizeStatus(raw); ok {
			filtered := apps[:0]
			for _, app := range apps {
				if app.Status == status {
					filtered = append(filtered, app)
				}
			}
			apps = filtered
		}
	}

	sort.SliceStable(apps, func(i, j int) bool {
		return apps[i].SubmittedAt.After(apps[j].SubmittedAt)
	})

	if apps == nil {
		apps = []models.Application{}
	}
	writeJSON(w, http.StatusOK, apps)
}

// clubApplications collects the club's applications the same way the chat
// pipeline builds its candidate pool: by open-role reference first, then the
// legacy direct club reference. An open_role_id filter narrows to that role.
func (s *Server) clubApplications(r *http.Request, club *models.Club) ([]models.Application, error) {
	ctx := r.Context()

	if roleID := r.URL.Query().Get("open_role_id"); roleID != "" {
		return s.records.ApplicationsByRoles(ctx, []string{roleID}, applicationPageSize)
	}

	roleIDs := append([]string{}, club.OpenRoleIDs...)
	roles, err := s.records.OpenRolesByClubs(ctx, []string{club.ID})
	if err != nil {
		return nil, err
	}
	for _, role := range roles {
		roleIDs = append(roleIDs, role.ID)
	}

	var apps []models.Application
	seen := make(map[string]bool)
	if len(roleIDs) > 0 {
		byRole, err := s.records.ApplicationsByRoles(ctx, roleIDs, applicationPageSize)
		if err != nil {
			return nil, err
		}
		for _, app := range byRole {
			if !seen[app.ID] {
				seen[app.ID] = true
				apps = append(apps, app)
			}
		}
	}

	byClub, err := s.records.ApplicationsByClubs(ctx, []string{club.ID}, applicationPageSize)
	if err != nil {
		return nil, err
	}
	for _, app := range byClub {
		if !seen[app.ID] {
			seen[app.ID] = true
			apps = append(apps, app)
		}
	}
	return apps, nil
}

// handleGetApplication serves one application by primary or alternate id.
func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	caller := CallerEmail(r.Context())
	if caller == "" {
		writeError(w, errs.NewUnauthorizedError("authentication required"))
		return
	}

	id := r.PathValue("id")
	app, err := s.records.ApplicationByID(r.Context(), store.ParseRecordID(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, errs.NewNotFoundError(id))
		} else {
			writeError(w, errs.NewStoreUnavailableError("applications", err))
		}
		return
	}
	writeJSON(w, http.StatusOK, app)
}
