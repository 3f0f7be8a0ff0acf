package chat

import (
	"context"

	"github.com/bettersnoozing/hack-mcwics/internal/models"
	"github.com/bettersnoozing/hack-mcwics/internal/store"
)

// ==========================
// Test Helper Functions
// ==========================

// fakeRecordStore is an in-memory RecordStore for pipeline tests. Unset
// fields behave as empty result sets; error fields force a failure per call.
type fakeRecordStore struct {
	users        map[string]*models.User
	clubs        []models.Club
	openRoles    []models.OpenRole
	applications []models.Application

	userErr   error
	clubErr   error
	roleErr   error
	appErr    error
	updateErr error

	// updates records every write that reached the store.
	updates []recordedUpdate
	// updateResult, when set, is returned from UpdateApplicationStatus.
	updateResult *store.UpdateResult
}

type recordedUpdate struct {
	id  store.RecordID
	upd store.StatusUpdate
}

func (f *fakeRecordStore) UserByEmail(_ context.Context, email string) (*models.User, error) {
	if f.userErr != nil {
		return nil, f.userErr
	}
	return f.users[email], nil
}

func (f *fakeRecordStore) ClubsByAdmin(_ context.Context, email, userID, adminClubID string) ([]models.Club, error) {
	if f.clubErr != nil {
		return nil, f.clubErr
	}
	var out []models.Club
	for _, c := range f.clubs {
		if c.Email == email || c.ID == adminClubID {
			out = append(out, c)
			continue
		}
		for _, id := range c.AdminIDs {
			if id == userID && userID != "" {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeRecordStore) ClubsByName(_ context.Context, pattern string) ([]models.Club, error) {
	if f.clubErr != nil {
		return nil, f.clubErr
	}
	var out []models.Club
	for _, c := range f.clubs {
		if c.Name == pattern {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRecordStore) ClubByID(_ context.Context, id string) (*models.Club, error) {
	if f.clubErr != nil {
		return nil, f.clubErr
	}
	for i := range f.clubs {
		if f.clubs[i].ID == id {
			return &f.clubs[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeRecordStore) OpenRolesByClubs(_ context.Context, clubIDs []string) ([]models.OpenRole, error) {
	if f.roleErr != nil {
		return nil, f.roleErr
	}
	var out []models.OpenRole
	for _, role := range f.openRoles {
		for _, id := range clubIDs {
			if role.ClubID == id {
				out = append(out, role)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeRecordStore) ApplicationsByRoles(_ context.Context, roleIDs []string, limit int) ([]models.Application, error) {
	if f.appErr != nil {
		return nil, f.appErr
	}
	var out []models.Application
	for _, app := range f.applications {
		for _, id := range roleIDs {
			if app.RoleID == id {
				out = append(out, app)
				break
			}
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeRecordStore) ApplicationsByClubs(_ context.Context, clubIDs []string, limit int) ([]models.Application, error) {
	if f.appErr != nil {
		return nil, f.appErr
	}
	var out []models.Application
	for _, app := range f.applications {
		for _, id := range clubIDs {
			if app.ClubID == id {
				out = append(out, app)
				break
			}
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeRecordStore) Applications(_ context.Context, limit int) ([]models.Application, error) {
	if f.appErr != nil {
		return nil, f.appErr
	}
	if len(f.applications) > limit {
		return f.applications[:limit], nil
	}
	return f.applications, nil
}

func (f *fakeRecordStore) ApplicationByID(_ context.Context, id store.RecordID) (*models.Application, error) {
	if f.appErr != nil {
		return nil, f.appErr
	}
	for i := range f.applications {
		if f.applications[i].ID == id.Value {
			return &f.applications[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeRecordStore) UpdateApplicationStatus(_ context.Context, id store.RecordID, upd store.StatusUpdate) (*store.UpdateResult, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updates = append(f.updates, recordedUpdate{id: id, upd: upd})

	if f.updateResult != nil {
		return f.updateResult, nil
	}

	for i := range f.applications {
		if f.applications[i].ID == id.Value {
			modified := f.applications[i].Status != upd.Status
			f.applications[i].Status = upd.Status
			f.applications[i].LastUpdatedBy = upd.LastUpdatedBy
			return &store.UpdateResult{Modified: modified, Application: &f.applications[i]}, nil
		}
	}
	return nil, store.ErrNotFound
}
