package domain

import (
	"errors"
	"fmt"
)

// ErrKind groups errors by how the transport reports them.
type ErrKind string

const (
	KindValidation     ErrKind = "validation"     // 400
	KindAuth           ErrKind = "auth"           // 401
	KindForbidden      ErrKind = "forbidden"      // 403
	KindNotFound       ErrKind = "not_found"      // 404
	KindConflict       ErrKind = "conflict"       // 409
	KindRateLimited    ErrKind = "rate_limited"   // 429
	KindInfrastructure ErrKind = "infrastructure" // 503
	KindInternal       ErrKind = "internal"       // 500
)

// Error codes are part of the API contract; clients branch on them.
const (
	CodeInvalidJSON        = "invalid_json"
	CodeMissingField       = "missing_field"
	CodeInvalidField       = "invalid_field"
	CodeWeakPassword       = "weak_password"
	CodeInvalidRole        = "invalid_role"
	CodeInvalidDocument    = "invalid_document"
	CodeInvalidCredentials = "invalid_credentials"
	CodeUnauthorized       = "unauthorized"
	CodeForbidden          = "forbidden"
	CodeIdentityNotFound   = "identity_not_found"
	CodeEmailExists        = "email_already_exists"
	CodeRateLimited        = "rate_limited"
	CodeDBUnavailable      = "db_unavailable"
	CodeRedisUnavailable   = "redis_unavailable"
	CodeRabbitUnavailable  = "rabbit_unavailable"
	CodeStorageUnavailable = "storage_unavailable"
	CodeHashFailed         = "hash_failed"
	CodeTokenSignFailed    = "token_sign_failed"
	CodeInternal           = "internal_error"
)

// Error is what the application layer returns. Message and Meta are safe to
// show to clients; Cause is for logs only.
type Error struct {
	Kind    ErrKind
	Code    string
	Message string
	Meta    map[string]string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is match two domain errors by code, so
// errors.Is(err, ErrUnauthorized()) holds whatever the cause or meta.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// With returns e with one more meta entry.
func (e *Error) With(key, value string) *Error {
	if e.Meta == nil {
		e.Meta = make(map[string]string, 2)
	}
	e.Meta[key] = value
	return e
}

func New(kind ErrKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Wrap(kind ErrKind, code, msg string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Cause: cause}
}

// WithMeta replaces the meta map of err.
func WithMeta(err *Error, meta map[string]string) *Error {
	err.Meta = meta
	return err
}

// Is reports whether any domain error in err's chain has the given code.
func Is(err error, code string) bool {
	var de *Error
	return errors.As(err, &de) && de.Code == code
}

// KindOf returns the kind of a domain error, or KindInternal for anything else.
func KindOf(err error) ErrKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// 400

func ErrInvalidJSON(cause error) *Error {
	return Wrap(KindValidation, CodeInvalidJSON, "invalid JSON body", cause)
}

func ErrMissingField(field string) *Error {
	return New(KindValidation, CodeMissingField, "missing required field").With("field", field)
}

func ErrInvalidField(field, reason string) *Error {
	return New(KindValidation, CodeInvalidField, "invalid field").
		With("field", field).
		With("reason", reason)
}

func ErrWeakPassword(reason string) *Error {
	return New(KindValidation, CodeWeakPassword, "password does not meet requirements").With("reason", reason)
}

func ErrInvalidRole(role string) *Error {
	return New(KindValidation, CodeInvalidRole, "invalid role").With("role", role)
}

func ErrInvalidDocument(reason string) *Error {
	return New(KindValidation, CodeInvalidDocument, "invalid document").With("reason", reason)
}

// 401

// credentialsMessage is shared by every 401 so that login failures and token
// failures cannot be told apart by their body.
const credentialsMessage = "could not validate credentials"

// ErrInvalidCredentials is returned for every login failure (unknown email,
// wrong password, inactive account).
func ErrInvalidCredentials() *Error {
	return New(KindAuth, CodeInvalidCredentials, credentialsMessage)
}

// ErrUnauthorized covers every token problem and an identity that is gone
// or inactive.
func ErrUnauthorized() *Error {
	return New(KindAuth, CodeUnauthorized, credentialsMessage)
}

// ErrUnauthorizedCause keeps the precise rejection reason for logs.
func ErrUnauthorizedCause(cause error) *Error {
	return Wrap(KindAuth, CodeUnauthorized, credentialsMessage, cause)
}

// 403

func ErrForbidden() *Error {
	return New(KindForbidden, CodeForbidden, "forbidden")
}

func ErrInsufficientRole(required string) *Error {
	return ErrForbidden().With("required", required)
}

// 404 / 409 / 429

func ErrIdentityNotFound() *Error {
	return New(KindNotFound, CodeIdentityNotFound, "identity not found")
}

func ErrEmailAlreadyExists() *Error {
	return New(KindConflict, CodeEmailExists, "email already registered")
}

func ErrRateLimited(scope string) *Error {
	return New(KindRateLimited, CodeRateLimited, "too many requests").With("scope", scope)
}

// 5xx

func ErrDBUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, CodeDBUnavailable, "database unavailable", cause)
}

func ErrRedisUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, CodeRedisUnavailable, "cache unavailable", cause)
}

func ErrRabbitUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, CodeRabbitUnavailable, "message broker unavailable", cause)
}

func ErrStorageUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, CodeStorageUnavailable, "document storage unavailable", cause)
}

func ErrHashFailed(cause error) *Error {
	return Wrap(KindInternal, CodeHashFailed, "password hashing failed", cause)
}

func ErrTokenSignFailed(cause error) *Error {
	return Wrap(KindInternal, CodeTokenSignFailed, "token signing failed", cause)
}

func ErrInternal(cause error) *Error {
	return Wrap(KindInternal, CodeInternal, "internal error", cause)
}
