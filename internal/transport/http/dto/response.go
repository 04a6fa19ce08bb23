package dto

import (
	"time"

	"github.com/jiayou/auth-service/internal/application/auth"
	"github.com/jiayou/auth-service/internal/application/caregiver"
	"github.com/jiayou/auth-service/internal/application/documents"
	"github.com/jiayou/auth-service/internal/domain"
)

// IdentityView is the standard identity payload. The password hash never
// leaves the service.
type IdentityView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Language  string    `json:"language"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func NewIdentityView(id domain.Identity) IdentityView {
	return IdentityView{
		ID:        id.ID,
		Email:     id.Email,
		Role:      string(id.Role),
		Language:  id.Language,
		FirstName: id.FirstName,
		LastName:  id.LastName,
		Active:    id.Active,
		CreatedAt: id.CreatedAt,
	}
}

// UserData wraps an identity for register and /me responses.
type UserData struct {
	User IdentityView `json:"user"`
}

// TokenResponse follows the OAuth2 password grant response shape, so it is
// written without the data envelope.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func NewTokenResponse(res auth.LoginResult) TokenResponse {
	return TokenResponse{
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
		ExpiresIn:   res.ExpiresIn,
	}
}

type CaregiverProfileView struct {
	IdentityID string                  `json:"identity_id"`
	Profile    domain.CaregiverProfile `json:"profile"`
	Status     string                  `json:"background_check_status"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

func NewCaregiverProfileView(p caregiver.Profile) CaregiverProfileView {
	return CaregiverProfileView{
		IdentityID: p.IdentityID,
		Profile:    p.Profile,
		Status:     p.Status,
		UpdatedAt:  p.UpdatedAt,
	}
}

type BackgroundCheckView struct {
	Status string `json:"status"`
}

type UploadURLView struct {
	Document  domain.IdentityFile `json:"document"`
	URL       string              `json:"url"`
	Method    string              `json:"method"`
	Headers   map[string]string   `json:"headers,omitempty"`
	ExpiresAt time.Time           `json:"expires_at"`
}

func NewUploadURLView(t documents.UploadTicket) UploadURLView {
	return UploadURLView{
		Document:  t.Document,
		URL:       t.URL,
		Method:    t.Method,
		Headers:   t.Headers,
		ExpiresAt: t.ExpiresAt,
	}
}
