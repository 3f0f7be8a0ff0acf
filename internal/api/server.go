// internal/api/server.go
package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bettersnoozing/hack-mcwics/internal/chat"
	"github.com/bettersnoozing/hack-mcwics/internal/common/config"
	"github.com/bettersnoozing/hack-mcwics/internal/common/logger"
	"github.com/bettersnoozing/hack-mcwics/internal/store"
)

// Server is the HTTP surface: login, the chat endpoint, the application
// review endpoints, and the club/position directory.
type Server struct {
	engine    *chat.Engine
	gate      *chat.Gate
	executor  *chat.Executor
	records   store.RecordStore
	directory *store.Directory
	logger    logger.Logger

	jwtSecret           string
	allowHeaderIdentity bool
	allowedOrigins      []string
}

func NewServer(engine *chat.Engine, gate *chat.Gate, executor *chat.Executor, records store.RecordStore, directory *store.Directory, cfg *config.Config, log logger.Logger) *Server {
	return &Server{
		engine:              engine,
		gate:                gate,
		executor:            executor,
		records:             records,
		directory:           directory,
		logger:              log.WithFields(map[string]interface{}{"component": "api"}),
		jwtSecret:           cfg.Auth.JWTSecret,
		allowHeaderIdentity: cfg.Auth.AllowHeaderIdentity,
		allowedOrigins:      cfg.HTTP.AllowedOrigins,
	}
}

// Handler builds the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", s.handleLogin)

	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("POST /chat/reset", s.handleChatReset)

	mux.HandleFunc("GET /clubs/{id}/applications", s.handleListClubApplications)
	mux.HandleFunc("GET /applications/{id}", s.handleGetApplication)
	mux.HandleFunc("PATCH /applications/{id}/status", s.handlePatchApplicationStatus)

	mux.HandleFunc("GET /clubs", s.handleListClubs)
	mux.HandleFunc("POST /clubs", s.handleCreateClub)
	mux.HandleFunc("GET /clubs/{slug}", s.handleGetClub)
	mux.HandleFunc("PUT /clubs/{slug}", s.handleUpdateClub)
	mux.HandleFunc("DELETE /clubs/{slug}", s.handleDeleteClub)

	mux.HandleFunc("GET /positions", s.handleListPositions)
	mux.HandleFunc("POST /positions", s.handleCreatePosition)
	mux.HandleFunc("GET /positions/{id}", s.handleGetPosition)
	mux.HandleFunc("DELETE /positions/{id}", s.handleDeletePosition)

	mux.HandleFunc("GET /recruitment", s.handleRecruitment)
	mux.HandleFunc("GET /search", s.handleSearch)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /recommend", s.handleRecommend)
	mux.HandleFunc("POST /recommend", s.handleRecommend)

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	var handler http.Handler = mux
	handler = s.identityMiddleware(handler)
	handler = loggingMiddleware(s.logger, handler)
	handler = corsMiddleware(s.allowedOrigins, handler)
	return handler
}

// NewHTTPServer wraps the routed handler in an http.Server with the
// configured timeouts.
func (s *Server) NewHTTPServer(cfg config.HTTPConfig) *http.Server {
	return &http.Server{
		Addr:         cfg.Address,
		Handler:      s.Handler(),
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Millisecond,
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
