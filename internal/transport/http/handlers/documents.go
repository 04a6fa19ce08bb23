package http_handlers

import (
	"net/http"

	"github.com/jiayou/auth-service/internal/application/documents"
	"github.com/jiayou/auth-service/internal/domain"
	"github.com/jiayou/auth-service/internal/transport/http/dto"
	"github.com/jiayou/auth-service/internal/transport/http/middleware"
	"github.com/jiayou/auth-service/internal/transport/http/response"
)

type DocumentHandler struct {
	svc *documents.Service
}

func NewDocumentHandler(svc *documents.Service) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// UploadURL handles POST /documents/v1/upload-url.
func (h *DocumentHandler) UploadURL(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrUnauthorized())
		return
	}

	var req dto.UploadURLRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := dto.Validate(&req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	ticket, err := h.svc.RequestUpload(r.Context(), id, req.ToDomain())
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewUploadURLView(ticket))
}
