// internal/api/auth.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	errs "github.com/bettersnoozing/hack-mcwics/internal/common/errors"
	"github.com/bettersnoozing/hack-mcwics/internal/models"
)

// tokenLifetime is how long an issued login token stays valid.
const tokenLifetime = 24 * time.Hour

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// handleLogin verifies the stored bcrypt hash and issues the Bearer token the
// identity middleware consumes. Unknown users and wrong passwords are
// indistinguishable to the caller.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeValidated(r, loginSchema, &req); err != nil {
		writeError(w, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.records.UserByEmail(r.Context(), email)
	if err != nil {
		writeError(w, errs.NewStoreUnavailableError("users", err))
		return
	}
	if user == nil || user.PasswordHash == "" {
		writeError(w, errs.NewUnauthorizedError("invalid credentials"))
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, errs.NewUnauthorizedError("invalid credentials"))
		return
	}

	token, err := s.signToken(user)
	if err != nil {
		s.logger.Error("failed to sign login token", map[string]interface{}{
			"caller": email,
			"error":  err.Error(),
		})
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

func (s *Server) signToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"roles": user.Roles,
		"iat":   now.Unix(),
		"exp":   now.Add(tokenLifetime).Unix(),
	})
	return token.SignedString([]byte(s.jwtSecret))
}
