package dto

import (
	"github.com/jiayou/auth-service/internal/application/auth"
	"github.com/jiayou/auth-service/internal/application/documents"
	"github.com/jiayou/auth-service/internal/domain"
)

// -------- Auth --------

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,max=256"`
	Role      string `json:"role" validate:"required,oneof=caregiver family"`
	Language  string `json:"language" validate:"omitempty,max=16"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
}

func (r *RegisterRequest) ToInput() auth.RegisterInput {
	return auth.RegisterInput{
		Email:     r.Email,
		Password:  r.Password,
		Role:      r.Role,
		Language:  r.Language,
		FirstName: r.FirstName,
		LastName:  r.LastName,
	}
}

// LoginRequest is the JSON form of POST /token. The form-encoded variant uses
// username/password fields and is parsed by the handler.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateMeRequest lists the only identity fields a caller may change.
type UpdateMeRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	Language  *string `json:"language" validate:"omitempty,max=16"`
}

func (r *UpdateMeRequest) ToDomain() domain.ProfileUpdate {
	return domain.ProfileUpdate{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Language:  r.Language,
	}
}

// -------- Caregivers --------

type LanguageSkill struct {
	Language string `json:"language" validate:"required,max=32"`
	Level    string `json:"level" validate:"max=32"`
}

type Rates struct {
	Hourly float64 `json:"hourly" validate:"gte=0"`
}

type CaregiverProfileRequest struct {
	Location   string          `json:"location" validate:"required,max=200"`
	Bio        string          `json:"bio" validate:"max=4000"`
	Experience int             `json:"experience" validate:"gte=0,lte=80"`
	Languages  []LanguageSkill `json:"languages" validate:"omitempty,max=20,dive"`
	Rates      Rates           `json:"rates"`
}

func (r *CaregiverProfileRequest) ToDomain() domain.CaregiverProfile {
	langs := make([]domain.LanguageSkill, 0, len(r.Languages))
	for _, l := range r.Languages {
		langs = append(langs, domain.LanguageSkill{Language: l.Language, Level: l.Level})
	}
	return domain.CaregiverProfile{
		Location:   r.Location,
		Bio:        r.Bio,
		Experience: r.Experience,
		Languages:  langs,
		Rates:      domain.Rates{Hourly: r.Rates.Hourly},
	}
}

// -------- Documents --------

type UploadURLRequest struct {
	Type        string `json:"type" validate:"required,oneof=id_card certification license"`
	ContentType string `json:"content_type" validate:"required"`
}

func (r *UploadURLRequest) ToDomain() documents.UploadRequest {
	return documents.UploadRequest{
		Type:        r.Type,
		ContentType: r.ContentType,
	}
}
