package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
	Readyz(w http.ResponseWriter, r *http.Request)
}

type AuthHandler interface {
	Token(w http.ResponseWriter, r *http.Request)
	Register(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
	UpdateMe(w http.ResponseWriter, r *http.Request)
	Deactivate(w http.ResponseWriter, r *http.Request)
}

type CaregiverHandler interface {
	SaveProfile(w http.ResponseWriter, r *http.Request)
	StartBackgroundCheck(w http.ResponseWriter, r *http.Request)
}

type DocumentHandler interface {
	UploadURL(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Health    HealthHandler
	Auth      AuthHandler
	Caregiver CaregiverHandler
	Documents DocumentHandler
	// Metrics serves /metrics; omitted when nil.
	Metrics http.Handler

	RequestIDMW func(http.Handler) http.Handler
	SecurityMW  func(http.Handler) http.Handler
	CORSMW      func(http.Handler) http.Handler
	MetricsMW   func(http.Handler) http.Handler
	AuthMW      func(http.Handler) http.Handler
	CaregiverMW func(http.Handler) http.Handler

	// Optional rate limiters; nil disables.
	RLLogin    func(http.Handler) http.Handler
	RLRegister func(http.Handler) http.Handler
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("nil Auth handler")
	}
	if deps.Caregiver == nil {
		return nil, fmt.Errorf("nil Caregiver handler")
	}
	if deps.Documents == nil {
		return nil, fmt.Errorf("nil Documents handler")
	}
	if deps.AuthMW == nil {
		return nil, fmt.Errorf("nil Auth middleware")
	}
	if deps.CaregiverMW == nil {
		return nil, fmt.Errorf("nil Caregiver middleware")
	}

	r := chi.NewRouter()
	if deps.RequestIDMW != nil {
		r.Use(deps.RequestIDMW)
	}
	if deps.SecurityMW != nil {
		r.Use(deps.SecurityMW)
	}
	// preflight requests are answered here, before routing
	if deps.CORSMW != nil {
		r.Use(deps.CORSMW)
	}
	if deps.MetricsMW != nil {
		r.Use(deps.MetricsMW)
	}
	r.Use(chimw.Recoverer)

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.With(optional(deps.RLLogin)...).Post("/token", deps.Auth.Token)

	r.Route("/auth/v1", func(r chi.Router) {
		r.With(optional(deps.RLRegister)...).Post("/register", deps.Auth.Register)

		r.Group(func(r chi.Router) {
			r.Use(deps.AuthMW)
			r.Post("/logout", deps.Auth.Logout)
			r.Get("/me", deps.Auth.Me)
			r.Patch("/me", deps.Auth.UpdateMe)
			r.Post("/me/deactivate", deps.Auth.Deactivate)
		})
	})

	r.Route("/caregivers/v1", func(r chi.Router) {
		r.Use(deps.AuthMW)
		r.Use(deps.CaregiverMW)
		r.Post("/profile", deps.Caregiver.SaveProfile)
		r.Post("/background-check", deps.Caregiver.StartBackgroundCheck)
	})

	r.Route("/documents/v1", func(r chi.Router) {
		r.Use(deps.AuthMW)
		r.Post("/upload-url", deps.Documents.UploadURL)
	})

	return r, nil
}

func optional(mws ...func(http.Handler) http.Handler) []func(http.Handler) http.Handler {
	out := mws[:0:0]
	for _, mw := range mws {
		if mw != nil {
			out = append(out, mw)
		}
	}
	return out
}
