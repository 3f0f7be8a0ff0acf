// internal/api/chat.go
package api

import (
	"net/http"

	"github.com/google/uuid"
)

type chatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID      string `json:"sessionId"`
	Reply          string `json:"reply"`
	CommandApplied bool   `json:"commandApplied"`
}

// handleChat processes one conversational turn. A missing sessionId starts a
// fresh session; the generated id comes back in the response for the client
// to carry forward.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeValidated(r, chatRequestSchema, &req); err != nil {
		writeError(w, err)
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	reply, err := s.engine.Handle(r.Context(), sessionID, CallerEmail(r.Context()), req.Message)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID:      sessionID,
		Reply:          reply.Content,
		CommandApplied: reply.CommandApplied,
	})
}

type chatResetRequest struct {
	SessionID string `json:"sessionId"`
}

func (s *Server) handleChatReset(w http.ResponseWriter, r *http.Request) {
	var req chatResetRequest
	if err := decodeValidated(r, chatResetSchema, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := s.engine.Reset(r.Context(), req.SessionID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
