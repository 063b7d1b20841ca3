package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/meghan128/sportx-sub001/internal/verification"
)

// Account approval states driven by the verification verdict. Rejection is
// never set automatically; it requires a human reviewer.
const (
	AuthStatusPending  = "pending"
	AuthStatusApproved = "approved"
	AuthStatusRejected = "rejected"
)

// JSONStrings stores a string list as a jsonb column.
type JSONStrings []string

func (j JSONStrings) Value() (driver.Value, error) {
	if j == nil {
		j = JSONStrings{}
	}
	return json.Marshal(j)
}

func (j *JSONStrings) Scan(src any) error {
	return scanJSON(src, j)
}

// JSONNameMatches stores the per-candidate match results as jsonb.
type JSONNameMatches []verification.NameMatch

func (j JSONNameMatches) Value() (driver.Value, error) {
	if j == nil {
		j = JSONNameMatches{}
	}
	return json.Marshal(j)
}

func (j *JSONNameMatches) Scan(src any) error {
	return scanJSON(src, j)
}

func scanJSON(src, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	}
	return errors.New("unsupported column type for json scan")
}

// Users is a registered professional or student on the platform.
type Users struct {
	ID               uint        `gorm:"primaryKey" json:"id"`
	Email            string      `gorm:"uniqueIndex" json:"email"`
	FirstName        string      `json:"firstName"`
	LastName         string      `json:"lastName"`
	Profession       string      `json:"profession"`
	AlternativeNames JSONStrings `gorm:"type:jsonb" json:"alternativeNames"`
	AuthStatus       string      `gorm:"default:pending" json:"authStatus"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// FullName is the primary legal name used for document matching.
func (u Users) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// VerificationRecord persists one document-verification outcome alongside
// the uploaded document's hash. Issues and name matches are kept verbatim
// for the reviewer UI.
type VerificationRecord struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	UserID         uint   `gorm:"index" json:"user_id"`
	User           Users  `gorm:"foreignKey:UserID" json:"-"`
	DocumentType   string `json:"document_type"`
	DocumentSHA256 string `gorm:"index" json:"document_sha256"`
	FileName       string `json:"file_name"`

	IsValid     bool            `json:"is_valid"`
	Confidence  float64         `json:"confidence"`
	Issues      JSONStrings     `gorm:"type:jsonb" json:"issues"`
	NameMatches JSONNameMatches `gorm:"type:jsonb" json:"name_matches"`

	// Reviewer hints parsed out of the OCR text (best effort).
	ParsedHolderName  string  `json:"parsed_holder_name"`
	ParsedInstitution string  `json:"parsed_institution"`
	ParsedAwardDate   string  `json:"parsed_award_date"`
	InstitutionMatch  float64 `json:"institution_match"`

	AccreditedInstitutionID *uint  `json:"accredited_institution_id"`
	Status                  string `gorm:"default:pending" json:"status"`
	ReviewedBy              string `json:"reviewed_by"`
	ReviewedAt              *time.Time `json:"reviewed_at"`

	CreatedAt time.Time `json:"created_at"`
}

// AccreditedInstitution is an entry in the registry used to cross-check the
// institution name parsed from a document.
type AccreditedInstitution struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"uniqueIndex" json:"name"`
	Country           string    `json:"country"`
	AccreditationBody string    `json:"accreditation_body"`
	CreatedAt         time.Time `json:"created_at"`
}

// ParsedDocument holds the normalized fields parsed from OCR text for the
// manual-review payload.
type ParsedDocument struct {
	HolderName      string `json:"holder_name"`
	InstitutionName string `json:"institution_name"`
	AwardTitle      string `json:"award_title"`
	AwardDate       string `json:"award_date"`
}
