// internal/store/elastic.go
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/bettersnoozing/hack-mcwics/internal/common/logger"
	"github.com/bettersnoozing/hack-mcwics/internal/common/metrics"
	"github.com/bettersnoozing/hack-mcwics/internal/models"
)

// Index names of the document store.
const (
	IndexUsers        = "users"
	IndexClubs        = "clubs"
	IndexOpenRoles    = "open_roles"
	IndexApplications = "applications"
)

const defaultPoolSize = 100

// ElasticStore implements RecordStore over the Elasticsearch document store.
type ElasticStore struct {
	client *elasticsearch.Client
	logger logger.Logger
}

func NewElasticStore(client *elasticsearch.Client, log logger.Logger) *ElasticStore {
	return &ElasticStore{
		client: client,
		logger: log.WithFields(map[string]interface{}{"store": "elasticsearch"}),
	}
}

type esHit struct {
	ID     string                 `json:"_id"`
	Source map[string]interface{} `json:"_source"`
}

type esSearchResponse struct {
	Hits struct {
		Hits []esHit `json:"hits"`
	} `json:"hits"`
}

func (s *ElasticStore) search(ctx context.Context, index string, query map[string]interface{}, size int) ([]esHit, error) {
	start := time.Now()
	defer func() {
		metrics.StoreOperationDuration.WithLabelValues("elasticsearch", "search").Observe(time.Since(start).Seconds())
	}()

	if size <= 0 {
		size = defaultPoolSize
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(map[string]interface{}{"query": query}); err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(index),
		s.client.Search.WithBody(&buf),
		s.client.Search.WithSize(size),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: search %s: %s", ErrUnavailable, index, res.Status())
	}

	var parsed esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %v", ErrUnavailable, err)
	}

	return parsed.Hits.Hits, nil
}

func (s *ElasticStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	hits, err := s.search(ctx, IndexUsers, map[string]interface{}{
		"term": map[string]interface{}{"email": email},
	}, 1)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}
	user := normalizeUser(hits[0].ID, hits[0].Source)
	return &user, nil
}

func (s *ElasticStore) ClubsByAdmin(ctx context.Context, email, userID, adminClubID string) ([]models.Club, error) {
	var should []map[string]interface{}
	if email != "" {
		should = append(should, map[string]interface{}{
			"term": map[string]interface{}{"email": email},
		})
	}
	if userID != "" {
		should = append(should, map[string]interface{}{
			"term": map[string]interface{}{"admins": userID},
		})
	}
	if adminClubID != "" {
		should = append(should, map[string]interface{}{
			"ids": map[string]interface{}{"values": []string{adminClubID}},
		})
	}
	if len(should) == 0 {
		return nil, nil
	}

	hits, err := s.search(ctx, IndexClubs, map[string]interface{}{
		"bool": map[string]interface{}{
			"should":               should,
			"minimum_should_match": 1,
		},
	}, defaultPoolSize)
	if err != nil {
		return nil, err
	}
	return normalizeClubs(hits), nil
}

func (s *ElasticStore) ClubsByName(ctx context.Context, pattern string) ([]models.Club, error) {
	if pattern == "" {
		return nil, nil
	}
	hits, err := s.search(ctx, IndexClubs, map[string]interface{}{
		"wildcard": map[string]interface{}{
			"name": map[string]interface{}{
				"value":            "*" + pattern + "*",
				"case_insensitive": true,
			},
		},
	}, defaultPoolSize)
	if err != nil {
		return nil, err
	}
	return normalizeClubs(hits), nil
}

func (s *ElasticStore) ClubByID(ctx context.Context, id string) (*models.Club, error) {
	hits, err := s.search(ctx, IndexClubs, map[string]interface{}{
		"ids": map[string]interface{}{"values": []string{id}},
	}, 1)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, fmt.Errorf("%w: club %s", ErrNotFound, id)
	}
	club := normalizeClub(hits[0].ID, hits[0].Source)
	return &club, nil
}

func (s *ElasticStore) OpenRolesByClubs(ctx context.Context, clubIDs []string) ([]models.OpenRole, error) {
	if len(clubIDs) == 0 {
		return nil, nil
	}
	hits, err := s.search(ctx, IndexOpenRoles, refTermsQuery(clubIDs, "club", "clubId"), defaultPoolSize)
	if err != nil {
		return nil, err
	}
	roles := make([]models.OpenRole, 0, len(hits))
	for _, hit := range hits {
		roles = append(roles, normalizeOpenRole(hit.ID, hit.Source))
	}
	return roles, nil
}

func (s *ElasticStore) ApplicationsByRoles(ctx context.Context, roleIDs []string, limit int) ([]models.Application, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}
	hits, err := s.search(ctx, IndexApplications, refTermsQuery(roleIDs, "openRole", "openRoleId", "roleId", "positionId"), limit)
	if err != nil {
		return nil, err
	}
	return normalizeApplications(hits), nil
}

func (s *ElasticStore) ApplicationsByClubs(ctx context.Context, clubIDs []string, limit int) ([]models.Application, error) {
	if len(clubIDs) == 0 {
		return nil, nil
	}
	hits, err := s.search(ctx, IndexApplications, refTermsQuery(clubIDs, "club", "clubId"), limit)
	if err != nil {
		return nil, err
	}
	return normalizeApplications(hits), nil
}

func (s *ElasticStore) Applications(ctx context.Context, limit int) ([]models.Application, error) {
	hits, err := s.search(ctx, IndexApplications, map[string]interface{}{"match_all": map[string]interface{}{}}, limit)
	if err != nil {
		return nil, err
	}
	return normalizeApplications(hits), nil
}

func (s *ElasticStore) ApplicationByID(ctx context.Context, id RecordID) (*models.Application, error) {
	if id.Kind == IDPrimary {
		return s.getApplication(ctx, id.Value)
	}

	hits, err := s.search(ctx, IndexApplications, map[string]interface{}{
		"bool": map[string]interface{}{
			"should": []map[string]interface{}{
				{"term": map[string]interface{}{"alternateIds": id.Value}},
				{"term": map[string]interface{}{"applicationId": id.Value}},
				{"term": map[string]interface{}{"legacyId": id.Value}},
			},
			"minimum_should_match": 1,
		},
	}, 1)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id.Value)
	}
	app := normalizeApplication(hits[0].ID, hits[0].Source)
	return &app, nil
}

func (s *ElasticStore) getApplication(ctx context.Context, docID string) (*models.Application, error) {
	start := time.Now()
	defer func() {
		metrics.StoreOperationDuration.WithLabelValues("elasticsearch", "get").Observe(time.Since(start).Seconds())
	}()

	res, err := s.client.Get(IndexApplications, docID, s.client.Get.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, docID)
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: get application: %s", ErrUnavailable, res.Status())
	}

	var parsed struct {
		ID     string                 `json:"_id"`
		Found  bool                   `json:"found"`
		Source map[string]interface{} `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode get response: %v", ErrUnavailable, err)
	}
	if !parsed.Found {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, docID)
	}

	app := normalizeApplication(parsed.ID, parsed.Source)
	return &app, nil
}

func (s *ElasticStore) UpdateApplicationStatus(ctx context.Context, id RecordID, upd StatusUpdate) (*UpdateResult, error) {
	docID := id.Value
	if id.Kind == IDAlternate {
		app, err := s.ApplicationByID(ctx, id)
		if err != nil {
			return nil, err
		}
		docID = app.ID
	}

	start := time.Now()
	body, err := json.Marshal(map[string]interface{}{
		"doc": map[string]interface{}{
			"status":        string(upd.Status),
			"lastUpdatedBy": upd.LastUpdatedBy,
			"lastUpdatedAt": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode update: %w", err)
	}

	res, err := s.client.Update(IndexApplications, docID, bytes.NewReader(body), s.client.Update.WithContext(ctx))
	metrics.StoreOperationDuration.WithLabelValues("elasticsearch", "update").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, docID)
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: update application: %s", ErrUnavailable, res.Status())
	}

	var parsed struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode update response: %v", ErrUnavailable, err)
	}

	app, err := s.getApplication(ctx, docID)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("application updated", map[string]interface{}{
		"applicationId": docID,
		"result":        parsed.Result,
		"status":        string(upd.Status),
	})

	return &UpdateResult{
		Modified:    parsed.Result == "updated",
		Application: app,
	}, nil
}

// refTermsQuery matches a reference field that drifted across names.
func refTermsQuery(values []string, fields ...string) map[string]interface{} {
	should := make([]map[string]interface{}, 0, len(fields))
	for _, field := range fields {
		should = append(should, map[string]interface{}{
			"terms": map[string]interface{}{field: values},
		})
	}
	return map[string]interface{}{
		"bool": map[string]interface{}{
			"should":               should,
			"minimum_should_match": 1,
		},
	}
}

func normalizeClubs(hits []esHit) []models.Club {
	clubs := make([]models.Club, 0, len(hits))
	for _, hit := range hits {
		clubs = append(clubs, normalizeClub(hit.ID, hit.Source))
	}
	return clubs
}

func normalizeApplications(hits []esHit) []models.Application {
	apps := make([]models.Application, 0, len(hits))
	for _, hit := range hits {
		apps = append(apps, normalizeApplication(hit.ID, hit.Source))
	}
	return apps
}
