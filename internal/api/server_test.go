package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bettersnoozing/hack-mcwics/internal/chat"
	"github.com/bettersnoozing/hack-mcwics/internal/common/config"
	"github.com/bettersnoozing/hack-mcwics/internal/common/logger"
	"github.com/bettersnoozing/hack-mcwics/internal/models"
	"github.com/bettersnoozing/hack-mcwics/internal/store"
)

// ==========================
// Test Helper Functions
// ==========================

const testJWTSecret = "test-secret"

// stubRecordStore serves the chat pipeline in handler tests: one club led by
// leader@example.edu with one pending application from Jane Doe. The leader's
// stored password hash is set per test when login is exercised.
type stubRecordStore struct {
	updates      []store.StatusUpdate
	app          models.Application
	passwordHash string
}

func newStubRecordStore() *stubRecordStore {
	return &stubRecordStore{
		app: models.Application{
			ID:     "a1",
			RoleID: "r1",
			Status: models.StatusPending,
			Applicant: models.Applicant{
				Name:  "Jane Doe",
				Email: "jane@example.edu",
			},
		},
	}
}

func (s *stubRecordStore) UserByEmail(_ context.Context, email string) (*models.User, error) {
	if email == "leader@example.edu" {
		return &models.User{
			ID:           "u1",
			Email:        email,
			Roles:        []string{models.RoleClubLeader},
			PasswordHash: s.passwordHash,
		}, nil
	}
	return nil, nil
}

func (s *stubRecordStore) ClubByID(_ context.Context, id string) (*models.Club, error) {
	if id == "c1" {
		return &models.Club{ID: "c1", Name: "Robotics Club", OpenRoleIDs: []string{"r1"}}, nil
	}
	return nil, store.ErrNotFound
}

func (s *stubRecordStore) ClubsByAdmin(_ context.Context, email, _, _ string) ([]models.Club, error) {
	if email == "leader@example.edu" {
		return []models.Club{{ID: "c1", Name: "Robotics Club", OpenRoleIDs: []string{"r1"}}}, nil
	}
	return nil, nil
}

func (s *stubRecordStore) ClubsByName(_ context.Context, _ string) ([]models.Club, error) {
	return nil, nil
}

func (s *stubRecordStore) OpenRolesByClubs(_ context.Context, _ []string) ([]models.OpenRole, error) {
	return nil, nil
}

func (s *stubRecordStore) ApplicationsByRoles(_ context.Context, roleIDs []string, _ int) ([]models.Application, error) {
	for _, id := range roleIDs {
		if id == s.app.RoleID {
			return []models.Application{s.app}, nil
		}
	}
	return nil, nil
}

func (s *stubRecordStore) ApplicationsByClubs(_ context.Context, _ []string, _ int) ([]models.Application, error) {
	return nil, nil
}

func (s *stubRecordStore) Applications(_ context.Context, _ int) ([]models.Application, error) {
	return []models.Application{s.app}, nil
}

func (s *stubRecordStore) ApplicationByID(_ context.Context, id store.RecordID) (*models.Application, error) {
	if s.app.HasID(id.Value) {
		return &s.app, nil
	}
	return nil, store.ErrNotFound
}

func (s *stubRecordStore) UpdateApplicationStatus(_ context.Context, id store.RecordID, upd store.StatusUpdate) (*store.UpdateResult, error) {
	if !s.app.HasID(id.Value) {
		return nil, store.ErrNotFound
	}
	s.updates = append(s.updates, upd)
	modified := s.app.Status != upd.Status
	s.app.Status = upd.Status
	s.app.LastUpdatedBy = upd.LastUpdatedBy
	return &store.UpdateResult{Modified: modified, Application: &s.app}, nil
}

func newTestServer(t *testing.T) (*Server, *stubRecordStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.NewTestLogger(t)
	records := newStubRecordStore()
	directory := store.NewDirectory(db, log)

	resolver := chat.NewResolver(records, nil, 10, log)
	gate := chat.NewGate(records, nil)
	executor := chat.NewExecutor(records, log)
	engine := chat.NewEngine(resolver, gate, executor, chat.NewMemorySessionStore(10), nil, log)

	cfg := &config.Config{}
	cfg.Auth.JWTSecret = testJWTSecret
	cfg.Auth.AllowHeaderIdentity = true
	cfg.HTTP.AllowedOrigins = []string{"http://localhost:3000"}

	return NewServer(engine, gate, executor, records, directory, cfg, log), records, mock
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func signToken(t *testing.T, secret, email string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

// ==========================
// Auth Endpoint Tests
// ==========================

func TestLoginEndpoint_IssuedTokenCarriesIdentity(t *testing.T) {
	server, records, _ := newTestServer(t)
	handler := server.Handler()

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	records.passwordHash = string(hash)

	rec := doJSON(t, handler, http.MethodPost, "/auth/login",
		map[string]interface{}{"email": "leader@example.edu", "password": "hunter2"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, "leader@example.edu", resp.User.Email)
	// The stored hash never serializes outward.
	assert.NotContains(t, rec.Body.String(), string(hash))

	// The issued token authenticates a follow-up command.
	chatRec := doJSON(t, handler, http.MethodPost, "/chat",
		map[string]interface{}{"message": "accept Jane Doe"},
		map[string]string{"Authorization": "Bearer " + resp.Token})
	require.Equal(t, http.StatusOK, chatRec.Code)
	require.Len(t, records.updates, 1)
}

func TestLoginEndpoint_WrongPassword(t *testing.T) {
	server, records, _ := newTestServer(t)
	handler := server.Handler()

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	records.passwordHash = string(hash)

	rec := doJSON(t, handler, http.MethodPost, "/auth/login",
		map[string]interface{}{"email": "leader@example.edu", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotContains(t, rec.Body.String(), "token")
}

func TestLoginEndpoint_UnknownUser(t *testing.T) {
	server, _, _ := newTestServer(t)
	handler := server.Handler()

	rec := doJSON(t, handler, http.MethodPost, "/auth/login",
		map[string]interface{}{"email": "ghost@example.edu", "password": "hunter2"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginEndpoint_RejectsInvalidPayload(t *testing.T) {
	server, _, _ := newTestServer(t)
	handler := server.Handler()

	rec := doJSON(t, handler, http.MethodPost, "/auth/login",
		map[string]interface{}{"email": "leader@example.edu"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
}

// ==========================
// Chat Endpoint Tests
// ==========================

func TestChatEndpoint_CommandWithHeaderIdentity(t *testing.T) {
	server, records, _ := newTestServer(t)
	handler := server.Handler()

	rec := doJSON(t, handler, http.MethodPost, "/chat",
		map[string]interface{}{"message": "accept Jane Doe"},
		map[string]string{"X-Admin-Email": "leader@example.edu"})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.CommandApplied)
	assert.NotEmpty(t, resp.SessionID)
	assert.Contains(t, resp.Reply, "Jane Doe")

	require.Len(t, records.updates, 1)
	assert.Equal(t, models.StatusAccepted, records.updates[0].Status)
	assert.Equal(t, "leader@example.edu", records.updates[0].LastUpdatedBy)
}

func TestChatEndpoint_CommandWithJWT(t *testing.T) {
	server, records, _ := newTestServer(t)
	handler := server.Handler()

	token := signToken(t, testJWTSecret, "leader@example.edu")
	rec := doJSON(t, handler, http.MethodPost, "/chat",
		map[string]interface{}{"message": "accept Jane Doe"},
		map[string]string{"Authorization": "Bearer " + token})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, records.updates, 1)
}

func TestChatEndpoint_BadTokenFallsBackToAnonymous(t *testing.T) {
	server, records, _ := newTestServer(t)
	handler := server.Handler()

	token := signToken(t, "wrong-secret", "leader@example.edu")
	rec := doJSON(t, handler, http.MethodPost, "/chat",
		map[string]interface{}{"message": "accept Jane Doe"},
		map[string]string{"Authorization": "Bearer " + token})

	// The chat itself succeeds but no command runs for an anonymous caller.
	require.Equal(t, http.StatusOK, rec.Code)
	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.CommandApplied)
	assert.Empty(t, records.updates)
}

func TestChatEndpoint_RejectsInvalidPayload(t *testing.T) {
	server, _, _ := newTestServer(t)
	handler := server.Handler()

	rec := doJSON(t, handler, http.MethodPost, "/chat",
		map[string]interface{}{"text": "wrong field"}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
}

func TestChatEndpoint_SessionCarriesAcrossTurns(t *testing.T) {
	server, _, _ := newTestServer(t)
	handler := server.Handler()

	first := doJSON(t, handler, http.MethodPost, "/chat",
		map[string]interface{}{"message": "hello"}, nil)
	require.Equal(t, http.StatusOK, first.Code)

	var resp chatResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)

	second := doJSON(t, handler, http.MethodPost, "/chat",
		map[string]interface{}{"sessionId": resp.SessionID, "message": "still there?"}, nil)
	require.Equal(t, http.StatusOK, second.Code)

	var resp2 chatResponse
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp2))
	assert.Equal(t, resp.SessionID, resp2.SessionID)
}

func TestChatResetEndpoint(t *testing.T) {
	server, _, _ := newTestServer(t)
	handler := server.Handler()

	rec := doJSON(t, handler, http.MethodPost, "/chat/reset",
		map[string]interface{}{"sessionId": "s1"}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// ==========================
// Application Status Endpoint Tests
// ==========================

func TestPatchStatus_RequiresIdentity(t *testing.T) {
	server, records, _ := newTestServer(t)
	handler := server.Handler()

	rec := doJSON(t, handler, http.MethodPatch, "/applications/a1/status",
		map[string]interface{}{"status": "accepted"}, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, records.updates)
}

func TestPatchStatus_AppliesUpdate(t *testing.T) {
	server, records, _ := newTestServer(t)
	handler := server.Handler()

	rec := doJSON(t, handler, http.MethodPatch, "/applications/a1/status",
		map[string]interface{}{"status": "under review"},
		map[string]string{"X-Admin-Email": "leader@example.edu"})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, records.updates, 1)
	assert.Equal(t, models.StatusUnderReview, records.updates[0].Status)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "applied", resp["outcome"])
}

func TestPatchStatus_InvalidStatus(t *testing.T) {
	server, _, _ := newTestServer(t)
	handler := server.Handler()

	rec := doJSON(t, handler, http.MethodPatch, "/applications/a1/status",
		map[string]interface{}{"status": "banana"},
		map[string]string{"X-Admin-Email": "leader@example.edu"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_STATUS")
}

func TestPatchStatus_NotFound(t *testing.T) {
	server, _, _ := newTestServer(t)
	handler := server.Handler()

	rec := doJSON(t, handler, http.MethodPatch, "/applications/ghost/status",
		map[string]interface{}{"status": "accepted"},
		map[string]string{"X-Admin-Email": "leader@example.edu"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ==========================
// Application Review Endpoint Tests
// ==========================

func TestListClubApplications_ReturnsClubPool(t *testing.T) {
	server, _, _ := newTestServer(t)
	handler := server.Handler()

	rec := doJSON(t, handler, http.MethodGet, "/clubs/c1/applications", nil,
		map[string]string{"X-Admin-Email": "leader@example.edu"})
	require.Equal(t, http.StatusOK, rec.Code)

	var apps []models.Application
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apps))
	require.Len(t, apps, 1)
	assert.Equal(t, "Jane Doe", apps[0].Applicant.Name)
}

func TestListClubApplications_StatusFilter(t *testing.T) {
	server, _, _ := newTestServer(t)
	handler := server.Handler()

	rec := doJSON(t, handler, http.MethodGet, "/clubs/c1/applications?status=accepted", nil,
		map[string]string{"X-Admin-Email": "leader@example.edu"})
	require.Equal(t, http.StatusOK, rec.Code)

	var apps []models.Application
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apps))
	assert.Empty(t, apps)
}

func TestListClubApplications_OpenRoleFilter(t *testing.T) {
	server, _, _ := newTestServer(t)
	handler := server.Handler()

	rec := doJSON(t, handler, http.MethodGet, "/clubs/c1/applications?open_role_id=r1", nil,
		map[string]string{"X-Admin-Email": "leader@example.edu"})
	require.Equal(t, http.StatusOK, rec.Code)

	var apps []models.Application
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apps))
	require.Len(t, apps, 1)

	rec = doJSON(t, handler, http.MethodGet, "/clubs/c1/applications?open_role_id=ghost", nil,
		map[string]string{"X-Admin-Email": "leader@example.edu"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apps))
	assert.Empty(t, apps)
}

func TestListClubApplications_UnknownClub(t *testing.T) {
	server, _, _ := newTestServer(t)
	handler := server.Handler()

	rec := doJSON(t, handler, http.MethodGet, "/clubs/ghost/applications", nil,
		map[string]string{"X-Admin-Email": "leader@example.edu"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "CLUB_NOT_FOUND")
}

func TestListClubApplications_RequiresIdentity(t *testing.T) {
	server, _, _ := newTestServer(t)
	handler := server.Handler()

	rec := doJSON(t, handler, http.MethodGet, "/clubs/c1/applications", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetApplicationEndpoint(t *testing.T) {
	server, _, _ := newTestServer(t)
	handler := server.Handler()

	rec := doJSON(t, handler, http.MethodGet, "/applications/a1", nil,
		map[string]string{"X-Admin-Email": "leader@example.edu"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Jane Doe")
}

func TestGetApplicationEndpoint_NotFound(t *testing.T) {
	server, _, _ := newTestServer(t)
	handler := server.Handler()

	rec := doJSON(t, handler, http.MethodGet, "/applications/ghost", nil,
		map[string]string{"X-Admin-Email": "leader@example.edu"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetApplicationEndpoint_RequiresIdentity(t *testing.T) {
	server, _, _ := newTestServer(t)
	handler := server.Handler()

	rec := doJSON(t, handler, http.MethodGet, "/applications/a1", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ==========================
// Directory Endpoint Tests
// ==========================

func TestListClubsEndpoint(t *testing.T) {
	server, _, mock := newTestServer(t)
	handler := server.Handler()

	mock.ExpectQuery("FROM clubs").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "slug", "name", "description", "tags", "member_count", "is_recruiting", "created_at",
		}).AddRow("c1", "robotics", "Robotics Club", "builds robots", "stem", 42, true, time.Now()))

	rec := doJSON(t, handler, http.MethodGet, "/clubs", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Robotics Club")
}

func TestGetClubEndpoint_NotFound(t *testing.T) {
	server, _, mock := newTestServer(t)
	handler := server.Handler()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE slug = $1")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "slug", "name", "description", "tags", "member_count", "is_recruiting", "created_at",
		}))

	rec := doJSON(t, handler, http.MethodGet, "/clubs/ghost", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "CLUB_NOT_FOUND")
}

func TestCreateClubEndpoint_RejectsInvalidPayload(t *testing.T) {
	server, _, _ := newTestServer(t)
	handler := server.Handler()

	rec := doJSON(t, handler, http.MethodPost, "/clubs",
		map[string]interface{}{"name": "No Slug Club"}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
}

func TestSearchEndpoint_RequiresQuery(t *testing.T) {
	server, _, _ := newTestServer(t)
	handler := server.Handler()

	rec := doJSON(t, handler, http.MethodGet, "/search", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecommendEndpoint_RejectsEmptyInterests(t *testing.T) {
	server, _, _ := newTestServer(t)
	handler := server.Handler()

	rec := doJSON(t, handler, http.MethodPost, "/recommend",
		map[string]interface{}{"interests": []string{}}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecommendEndpoint_QueryParamForm(t *testing.T) {
	server, _, mock := newTestServer(t)
	handler := server.Handler()

	mock.ExpectQuery("FROM clubs c WHERE").
		WithArgs("%robotics%", "%ai%").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "slug", "name", "description", "tags", "member_count", "is_recruiting", "created_at",
		}))
	mock.ExpectQuery("FROM positions p JOIN clubs c").
		WithArgs("%robotics%", "%ai%").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "club_id", "title", "description", "requirements", "deadline", "is_open", "applicant_count", "created_at",
		}))

	rec := doJSON(t, handler, http.MethodGet, "/recommend?interests=Robotics,%20AI", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// ==========================
// Infrastructure Tests
// ==========================

func TestHealthzEndpoint(t *testing.T) {
	server, _, _ := newTestServer(t)
	handler := server.Handler()

	rec := doJSON(t, handler, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestCORSPreflight(t *testing.T) {
	server, _, _ := newTestServer(t)
	handler := server.Handler()

	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_DisallowedOriginGetsNoHeader(t *testing.T) {
	server, _, _ := newTestServer(t)
	handler := server.Handler()

	rec := doJSON(t, handler, http.MethodGet, "/healthz", nil,
		map[string]string{"Origin": "http://evil.example.com"})

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
