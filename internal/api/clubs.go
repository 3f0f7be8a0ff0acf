// internal/api/clubs.go
package api

import (
	"errors"
	"net/http"
	"strconv"

	errs "github.com/bettersnoozing/hack-mcwics/internal/common/errors"
	"github.com/bettersnoozing/hack-mcwics/internal/models"
	"github.com/bettersnoozing/hack-mcwics/internal/store"
)

func (s *Server) handleListClubs(w http.ResponseWriter, r *http.Request) {
	filter := store.ClubFilter{
		Tag: r.URL.Query().Get("tag"),
	}
	if v := r.URL.Query().Get("recruiting"); v != "" {
		recruiting := v == "true" || v == "1"
		filter.Recruiting = &recruiting
	}
	if v := r.URL.Query().Get("min_members"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.MinMembers = n
		}
	}

	clubs, err := s.directory.ListClubs(r.Context(), filter)
	if err != nil {
		writeError(w, errs.NewStoreUnavailableError("clubs", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"clubs": clubs})
}

func (s *Server) handleGetClub(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	club, err := s.directory.GetClub(r.Context(), slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, errs.NewClubNotFoundError(slug))
			return
		}
		writeError(w, errs.NewStoreUnavailableError("clubs", err))
		return
	}
	writeJSON(w, http.StatusOK, club)
}

func (s *Server) handleCreateClub(w http.ResponseWriter, r *http.Request) {
	var club models.ClubListing
	if err := decodeValidated(r, clubSchema, &club); err != nil {
		writeError(w, err)
		return
	}

	if err := s.directory.CreateClub(r.Context(), &club); err != nil {
		writeError(w, errs.NewStoreUnavailableError("clubs", err))
		return
	}
	writeJSON(w, http.StatusCreated, club)
}

func (s *Server) handleUpdateClub(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	var club models.ClubListing
	if err := decodeValidated(r, clubSchema, &club); err != nil {
		writeError(w, err)
		return
	}

	if err := s.directory.UpdateClub(r.Context(), slug, &club); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, errs.NewClubNotFoundError(slug))
			return
		}
		writeError(w, errs.NewStoreUnavailableError("clubs", err))
		return
	}
	writeJSON(w, http.StatusOK, club)
}

func (s *Server) handleDeleteClub(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if err := s.directory.DeleteClub(r.Context(), slug); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, errs.NewClubNotFoundError(slug))
			return
		}
		writeError(w, errs.NewStoreUnavailableError("clubs", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
