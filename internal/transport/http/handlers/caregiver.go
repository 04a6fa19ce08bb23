package http_handlers

import (
	"net/http"

	"github.com/jiayou/auth-service/internal/application/caregiver"
	"github.com/jiayou/auth-service/internal/domain"
	"github.com/jiayou/auth-service/internal/transport/http/dto"
	"github.com/jiayou/auth-service/internal/transport/http/middleware"
	"github.com/jiayou/auth-service/internal/transport/http/response"
)

// CaregiverHandler serves caregiver-only endpoints. The router puts
// RequireRole(caregiver) in front of it.
type CaregiverHandler struct {
	svc *caregiver.Service
}

func NewCaregiverHandler(svc *caregiver.Service) *CaregiverHandler {
	return &CaregiverHandler{svc: svc}
}

// SaveProfile handles POST /caregivers/v1/profile.
func (h *CaregiverHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrUnauthorized())
		return
	}

	var req dto.CaregiverProfileRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := dto.Validate(&req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	p, err := h.svc.SaveProfile(r.Context(), id, req.ToDomain())
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewCaregiverProfileView(p))
}

// StartBackgroundCheck handles POST /caregivers/v1/background-check.
func (h *CaregiverHandler) StartBackgroundCheck(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrUnauthorized())
		return
	}

	bc, err := h.svc.StartBackgroundCheck(r.Context(), id)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.Accepted(w, dto.BackgroundCheckView{Status: bc.Status})
}
