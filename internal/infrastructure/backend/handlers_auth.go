package backend

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/orderdesk/crm-console/internal/core/domain"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"fullName" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// tokenGrantResponse is the token pair handed out by login, register, and
// refresh.
type tokenGrantResponse struct {
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	TokenType    string          `json:"tokenType"`
	ExpiresIn    int64           `json:"expiresIn"`
	User         domain.Identity `json:"user"`
}

func (s *Server) grantFor(u *user) (*tokenGrantResponse, error) {
	access, err := mintAccessToken(s.opts.JWTSecret, u, s.opts.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh := s.store.issueRefreshToken(u.ID, s.opts.RefreshTTL)
	return &tokenGrantResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.opts.AccessTTL / time.Second),
		User: domain.Identity{
			ID:       u.ID,
			Email:    u.Email,
			FullName: u.FullName,
			Role:     u.Role,
		},
	}, nil
}

// Register creates an account with the VIEWER role. Elevated roles are
// assigned out of band, never self-service.
func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	u := &user{
		ID:           uuid.NewString(),
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: string(hash),
		Role:         domain.RoleViewer,
		CreatedAt:    time.Now().UTC(),
	}
	if !s.store.createUser(u) {
		return domain.ErrEmailTaken
	}

	grant, err := s.grantFor(u)
	if err != nil {
		return err
	}
	s.log.Info().Str("email", u.Email).Msg("user registered")
	return respond(c, http.StatusCreated, grant)
}

func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	u, ok := s.store.userByEmail(req.Email)
	if !ok {
		return domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return domain.ErrInvalidCredentials
	}

	grant, err := s.grantFor(u)
	if err != nil {
		return err
	}
	s.log.Info().Str("email", u.Email).Msg("user logged in")
	return respond(c, http.StatusOK, grant)
}

// handleRefresh exchanges a refresh token for a fresh pair. Tokens rotate:
// the presented token is revoked whether or not the exchange succeeds, so a
// replayed token is always rejected.
func (s *Server) handleRefresh(c echo.Context) error {
	var req refreshRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	userID, ok := s.store.consumeRefreshToken(req.RefreshToken)
	if !ok {
		return respondError(c, http.StatusUnauthorized, "invalid or expired refresh token", nil)
	}
	u, ok := s.store.userByID(userID)
	if !ok {
		return respondError(c, http.StatusUnauthorized, "invalid or expired refresh token", nil)
	}

	grant, err := s.grantFor(u)
	if err != nil {
		return err
	}
	s.log.Debug().Str("email", u.Email).Msg("token pair refreshed")
	return respond(c, http.StatusOK, grant)
}

// handleLogout revokes the presented refresh token. Revoking an unknown or
// already-revoked token still succeeds: logout is idempotent.
func (s *Server) handleLogout(c echo.Context) error {
	var req logoutRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid payload", nil)
	}
	if req.RefreshToken != "" {
		s.store.revokeRefreshToken(req.RefreshToken)
	}
	return respond(c, http.StatusOK, nil)
}
