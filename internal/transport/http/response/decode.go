package response

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jiayou/auth-service/internal/domain"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

var (
	errEmptyBody    = errors.New("request body is empty")
	errBodyTooLarge = errors.New("request body too large")
	errTrailingData = errors.New("body must hold a single JSON value")
)

// DecodeJSON decodes exactly one JSON object from the request body into dst.
// Unknown fields are rejected so that clients cannot set fields they do not
// own. Every failure is invalid_json with the reason attached as cause.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return domain.ErrInvalidJSON(errEmptyBody)
	}

	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return domain.ErrInvalidJSON(decodeCause(err))
	}

	switch err := dec.Decode(&struct{}{}); {
	case errors.Is(err, io.EOF):
		return nil
	case err == nil:
		return domain.ErrInvalidJSON(errTrailingData)
	default:
		return domain.ErrInvalidJSON(decodeCause(err))
	}
}

func decodeCause(err error) error {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		return errEmptyBody
	case errors.As(err, &tooLarge):
		return errBodyTooLarge
	default:
		return err
	}
}
