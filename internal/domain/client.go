package domain

// Default office and legal form for test clients
const (
	HeadOfficeID    = 1
	LegalFormPerson = 1
)

// CreateClientRequest registers a client that loans can be issued to
type CreateClientRequest struct {
	OfficeID       int64  `json:"officeId" validate:"required,gt=0"`
	LegalFormID    int    `json:"legalFormId" validate:"required"`
	Firstname      string `json:"firstname" validate:"required"`
	Lastname       string `json:"lastname" validate:"required"`
	Active         bool   `json:"active"`
	ActivationDate string `json:"activationDate,omitempty" validate:"required_if=Active true"`
	ExternalID     string `json:"externalId,omitempty"`
	DateFormat     string `json:"dateFormat" validate:"required"`
	Locale         string `json:"locale" validate:"required"`
}
