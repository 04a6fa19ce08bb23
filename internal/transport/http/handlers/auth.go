package http_handlers

import (
	"mime"
	"net/http"

	"github.com/jiayou/auth-service/internal/application/auth"
	"github.com/jiayou/auth-service/internal/domain"
	"github.com/jiayou/auth-service/internal/logger"
	"github.com/jiayou/auth-service/internal/transport/http/dto"
	"github.com/jiayou/auth-service/internal/transport/http/middleware"
	"github.com/jiayou/auth-service/internal/transport/http/response"
)

type AuthHandler struct {
	svc *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Token handles POST /token. It accepts a JSON body {email,password} or the
// OAuth2 password grant form (username/password).
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	email, password, err := readCredentials(r)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Login(r.Context(), email, password)
	if err != nil {
		if domain.Is(err, "invalid_credentials") {
			middleware.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		} else {
			middleware.LoginAttemptsTotal.WithLabelValues("error").Inc()
			logger.WithCtx(r.Context()).Error().Err(err).Msg("login failed")
		}
		response.WriteError(w, r, err)
		return
	}
	middleware.LoginAttemptsTotal.WithLabelValues("success").Inc()

	logger.WithCtx(r.Context()).Info().
		Str("identity_id", res.Identity.ID).
		Msg("identity_logged_in")

	w.Header().Set("Cache-Control", "no-store")
	response.WriteJSON(w, http.StatusOK, dto.NewTokenResponse(res))
}

func readCredentials(r *http.Request) (string, string, error) {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mt {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(1 << 20); err != nil && err != http.ErrNotMultipart {
			return "", "", domain.ErrInvalidField("body", "malformed form")
		}
		if gt := r.PostForm.Get("grant_type"); gt != "" && gt != "password" {
			return "", "", domain.ErrInvalidField("grant_type", "only password is supported")
		}
		return r.PostForm.Get("username"), r.PostForm.Get("password"), nil
	default:
		var req dto.LoginRequest
		if err := response.DecodeJSON(r, &req); err != nil {
			return "", "", err
		}
		return req.Email, req.Password, nil
	}
}

// Register handles POST /auth/v1/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := dto.Validate(&req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	id, err := h.svc.Register(r.Context(), req.ToInput())
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	middleware.RegistrationsTotal.WithLabelValues(string(id.Role)).Inc()

	logger.WithCtx(r.Context()).Info().
		Str("identity_id", id.ID).
		Str("role", string(id.Role)).
		Msg("identity_registered")

	response.Created(w, dto.UserData{User: dto.NewIdentityView(id)})
}

// Logout handles POST /auth/v1/logout. The presented token stops working
// immediately.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	tok, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrUnauthorized())
		return
	}
	if err := h.svc.Logout(r.Context(), tok); err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.NoContent(w)
}

// Me handles GET /auth/v1/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrUnauthorized())
		return
	}
	response.OK(w, dto.UserData{User: dto.NewIdentityView(id)})
}

// UpdateMe handles PATCH /auth/v1/me.
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrUnauthorized())
		return
	}

	var req dto.UpdateMeRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := dto.Validate(&req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	updated, err := h.svc.UpdateProfile(r.Context(), id, req.ToDomain())
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.UserData{User: dto.NewIdentityView(updated)})
}

// Deactivate handles POST /auth/v1/me/deactivate.
func (h *AuthHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrUnauthorized())
		return
	}
	if err := h.svc.Deactivate(r.Context(), id); err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("identity_id", id.ID).
		Msg("identity_deactivated")

	response.NoContent(w)
}
