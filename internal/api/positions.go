// internal/api/positions.go
package api

import (
	"errors"
	"net/http"

	errs "github.com/bettersnoozing/hack-mcwics/internal/common/errors"
	"github.com/bettersnoozing/hack-mcwics/internal/models"
	"github.com/bettersnoozing/hack-mcwics/internal/store"
)

func (s *Server) handleListPositions(w http.ResponseWriter, r *http.Request) {
	filter := store.PositionFilter{
		ClubID: r.URL.Query().Get("club_id"),
	}
	if v := r.URL.Query().Get("is_open"); v != "" {
		open := v == "true" || v == "1"
		filter.IsOpen = &open
	}

	positions, err := s.directory.ListPositions(r.Context(), filter)
	if err != nil {
		writeError(w, errs.NewStoreUnavailableError("positions", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"positions": positions})
}

func (s *Server) handleGetPosition(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	position, err := s.directory.GetPosition(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, errs.NewPositionNotFoundError(id))
			return
		}
		writeError(w, errs.NewStoreUnavailableError("positions", err))
		return
	}
	writeJSON(w, http.StatusOK, position)
}

func (s *Server) handleCreatePosition(w http.ResponseWriter, r *http.Request) {
	var position models.Position
	if err := decodeValidated(r, positionSchema, &position); err != nil {
		writeError(w, err)
		return
	}

	if err := s.directory.CreatePosition(r.Context(), &position); err != nil {
		writeError(w, errs.NewStoreUnavailableError("positions", err))
		return
	}
	writeJSON(w, http.StatusCreated, position)
}

func (s *Server) handleDeletePosition(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.directory.DeletePosition(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, errs.NewPositionNotFoundError(id))
			return
		}
		writeError(w, errs.NewStoreUnavailableError("positions", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
