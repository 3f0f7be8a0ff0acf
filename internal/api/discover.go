// internal/api/discover.go
package api

import (
	"net/http"
	"strings"

	errs "github.com/bettersnoozing/hack-mcwics/internal/common/errors"
)

func (s *Server) handleRecruitment(w http.ResponseWriter, r *http.Request) {
	entries, err := s.directory.Recruitment(r.Context())
	if err != nil {
		writeError(w, errs.NewStoreUnavailableError("recruitment", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"recruitment": entries})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, errs.NewValidationFailedError("query parameter q is required"))
		return
	}

	clubs, positions, err := s.directory.Search(r.Context(), q)
	if err != nil {
		writeError(w, errs.NewStoreUnavailableError("search", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":     q,
		"clubs":     clubs,
		"positions": positions,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.directory.GetStats(r.Context())
	if err != nil {
		writeError(w, errs.NewStoreUnavailableError("stats", err))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type recommendRequest struct {
	Interests []string `json:"interests"`
}

// handleRecommend accepts interests either as a comma-separated query
// parameter or as a JSON body.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if r.Method == http.MethodGet {
		for _, tag := range strings.Split(r.URL.Query().Get("interests"), ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				req.Interests = append(req.Interests, tag)
			}
		}
		if len(req.Interests) == 0 {
			writeError(w, errs.NewValidationFailedError("query parameter interests is required"))
			return
		}
	} else if err := decodeValidated(r, recommendSchema, &req); err != nil {
		writeError(w, err)
		return
	}

	clubs, positions, err := s.directory.Recommend(r.Context(), req.Interests)
	if err != nil {
		writeError(w, errs.NewStoreUnavailableError("recommend", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"interests": req.Interests,
		"clubs":     clubs,
		"positions": positions,
	})
}
