package documents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jiayou/auth-service/internal/domain"
)

// DefaultUploadTTL bounds how long a presigned URL stays usable.
const DefaultUploadTTL = 15 * time.Minute

const statusPendingUpload = "pending_upload"

// allowed upload types and the object suffix they get
var contentTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}

// ObjectStore signs direct-to-storage uploads.
type ObjectStore interface {
	PresignUpload(ctx context.Context, key, contentType string, ttl time.Duration) (PresignedUpload, error)
}

type PresignedUpload struct {
	URL     string
	Method  string
	Headers map[string]string
}

type UploadRequest struct {
	Type        string
	ContentType string
}

// UploadTicket is what the client needs to PUT the file, plus the document
// record describing it.
type UploadTicket struct {
	Document  domain.IdentityFile
	URL       string
	Method    string
	Headers   map[string]string
	ExpiresAt time.Time
}

type Service struct {
	store ObjectStore
	ttl   time.Duration
	now   func() time.Time
	newID func() string
}

// NewService returns a Service. A nil store makes every request fail with
// storage_unavailable.
func NewService(store ObjectStore, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultUploadTTL
	}
	return &Service{store: store, ttl: ttl, now: time.Now, newID: uuid.NewString}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// RequestUpload validates the requested document and returns a presigned URL
// scoped to the caller's identity prefix.
func (s *Service) RequestUpload(ctx context.Context, id domain.Identity, req UploadRequest) (UploadTicket, error) {
	ct := strings.ToLower(strings.TrimSpace(req.ContentType))
	doc := domain.IdentityFile{
		Type:        domain.IdentityFileType(strings.TrimSpace(req.Type)),
		ContentType: ct,
		Status:      statusPendingUpload,
	}
	if err := doc.Validate(); err != nil {
		return UploadTicket{}, err
	}
	ext, ok := contentTypes[ct]
	if !ok {
		return UploadTicket{}, domain.ErrInvalidField("content_type", "unsupported content type")
	}

	if s.store == nil {
		return UploadTicket{}, domain.ErrStorageUnavailable(fmt.Errorf("document storage not configured"))
	}

	doc.ObjectKey = fmt.Sprintf("identities/%s/%s/%s%s", id.ID, doc.Type, s.newID(), ext)

	expires := s.now().Add(s.ttl)
	signed, err := s.store.PresignUpload(ctx, doc.ObjectKey, ct, s.ttl)
	if err != nil {
		return UploadTicket{}, domain.ErrStorageUnavailable(err)
	}

	return UploadTicket{
		Document:  doc,
		URL:       signed.URL,
		Method:    signed.Method,
		Headers:   signed.Headers,
		ExpiresAt: expires,
	}, nil
}
