package domain

import (
	"encoding/json"
	"strings"
)

// DocumentKind names one of the document shapes collaborators exchange.
type DocumentKind string

const (
	DocCaregiverProfile DocumentKind = "caregiver_profile"
	DocBackgroundCheck  DocumentKind = "background_check"
	DocIdentityFile     DocumentKind = "identity_file"
)

// Document is a closed set of known document kinds plus OpaqueDocument for
// anything the service stores without interpreting.
type Document interface {
	Kind() DocumentKind
	Validate() error
	isDocument()
}

type LanguageSkill struct {
	Language string `json:"language"`
	Level    string `json:"level,omitempty"`
}

type Rates struct {
	Hourly float64 `json:"hourly"`
}

// CaregiverProfile is the public profile a caregiver publishes.
type CaregiverProfile struct {
	Location   string          `json:"location"`
	Bio        string          `json:"bio,omitempty"`
	Experience int             `json:"experience"` // years
	Languages  []LanguageSkill `json:"languages,omitempty"`
	Rates      Rates           `json:"rates"`
}

func (CaregiverProfile) Kind() DocumentKind { return DocCaregiverProfile }
func (CaregiverProfile) isDocument()        {}

func (p CaregiverProfile) Validate() error {
	if strings.TrimSpace(p.Location) == "" {
		return ErrMissingField("location")
	}
	if p.Experience < 0 {
		return ErrInvalidField("experience", "must be >= 0")
	}
	if p.Rates.Hourly < 0 {
		return ErrInvalidField("rates.hourly", "must be >= 0")
	}
	for _, l := range p.Languages {
		if strings.TrimSpace(l.Language) == "" {
			return ErrInvalidField("languages", "language must not be empty")
		}
	}
	return nil
}

// BackgroundCheck records a verification request handed to an external
// provider.
type BackgroundCheck struct {
	Status    string `json:"status"`
	Provider  string `json:"provider,omitempty"`
	Reference string `json:"reference,omitempty"`
}

func (BackgroundCheck) Kind() DocumentKind { return DocBackgroundCheck }
func (BackgroundCheck) isDocument()        {}

func (b BackgroundCheck) Validate() error {
	if strings.TrimSpace(b.Status) == "" {
		return ErrMissingField("status")
	}
	return nil
}

// IdentityFileType is the category of an uploaded file.
type IdentityFileType string

const (
	FileIDCard        IdentityFileType = "id_card"
	FileCertification IdentityFileType = "certification"
	FileLicense       IdentityFileType = "license"
)

// IdentityFile references an uploaded file held by external storage.
type IdentityFile struct {
	Type        IdentityFileType `json:"type"`
	ObjectKey   string           `json:"object_key"`
	ContentType string           `json:"content_type"`
	Status      string           `json:"status"`
}

func (IdentityFile) Kind() DocumentKind { return DocIdentityFile }
func (IdentityFile) isDocument()        {}

func (f IdentityFile) Validate() error {
	switch f.Type {
	case FileIDCard, FileCertification, FileLicense:
	default:
		return ErrInvalidField("type", "unknown file type")
	}
	if strings.TrimSpace(f.ContentType) == "" {
		return ErrMissingField("content_type")
	}
	return nil
}

// OpaqueDocument is the escape hatch: a kind the service does not model,
// carried as raw JSON.
type OpaqueDocument struct {
	Name    string
	Payload json.RawMessage
}

func (o OpaqueDocument) Kind() DocumentKind { return DocumentKind(o.Name) }
func (OpaqueDocument) isDocument()          {}

func (o OpaqueDocument) Validate() error {
	if strings.TrimSpace(o.Name) == "" {
		return ErrMissingField("kind")
	}
	if len(o.Payload) == 0 || !json.Valid(o.Payload) {
		return ErrInvalidDocument("payload must be valid JSON")
	}
	return nil
}

// DecodeDocument turns a kind tag plus raw JSON into a typed Document.
// Unknown kinds become OpaqueDocument.
func DecodeDocument(kind string, raw json.RawMessage) (Document, error) {
	var (
		doc Document
		err error
	)
	switch DocumentKind(kind) {
	case DocCaregiverProfile:
		var p CaregiverProfile
		err = json.Unmarshal(raw, &p)
		doc = p
	case DocBackgroundCheck:
		var b BackgroundCheck
		err = json.Unmarshal(raw, &b)
		doc = b
	case DocIdentityFile:
		var f IdentityFile
		err = json.Unmarshal(raw, &f)
		doc = f
	default:
		doc = OpaqueDocument{Name: kind, Payload: raw}
	}
	if err != nil {
		return nil, ErrInvalidDocument(err.Error())
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// EncodeDocument returns the JSON payload of doc.
func EncodeDocument(doc Document) (json.RawMessage, error) {
	if o, ok := doc.(OpaqueDocument); ok {
		return o.Payload, nil
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, ErrInternal(err)
	}
	return b, nil
}
