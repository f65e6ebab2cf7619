// Package patient holds the registered patient record and its stores.
package patient

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-intake/pkg/field"
)

var (
	// ErrNotFound is returned when no patient is linked to a user.
	ErrNotFound = errors.New("patient: not found")
	// ErrUserRequired is returned when a record is not linked to a user.
	ErrUserRequired = errors.New("patient: user id is required")
)

// Patient is the detailed registration linked to a directory user.
type Patient struct {
	ID                        string    `json:"$id"`
	UserID                    string    `json:"userId"`
	Name                      string    `json:"name"`
	Email                     string    `json:"email"`
	Phone                     string    `json:"phone"`
	BirthDate                 time.Time `json:"birthDate"`
	Gender                    string    `json:"gender"`
	Address                   string    `json:"address"`
	Occupation                string    `json:"occupation"`
	EmergencyContactName      string    `json:"emergencyContactName"`
	EmergencyContactNumber    string    `json:"emergencyContactNumber"`
	PrimaryPhysician          string    `json:"primaryPhysician"`
	InsuranceProvider         string    `json:"insuranceProvider"`
	InsurancePolicyNumber     string    `json:"insurancePolicyNumber"`
	Allergies                 string    `json:"allergies,omitempty"`
	CurrentMedications        string    `json:"currentMedications,omitempty"`
	FamilyMedicalHistory      string    `json:"familyMedicalHistory,omitempty"`
	PastMedicalHistory        string    `json:"pastMedicalHistory,omitempty"`
	IdentificationType        string    `json:"identificationType,omitempty"`
	IdentificationNumber      string    `json:"identificationNumber,omitempty"`
	IdentificationDocumentID  string    `json:"identificationDocumentId,omitempty"`
	IdentificationDocumentURL string    `json:"identificationDocumentUrl,omitempty"`
	TreatmentConsent          bool      `json:"treatmentConsent"`
	DisclosureConsent         bool      `json:"disclosureConsent"`
	PrivacyConsent            bool      `json:"privacyConsent"`
	CreatedAt                 time.Time `json:"$createdAt"`
}

// Store persists patient records. At most one record exists per user.
type Store interface {
	Create(ctx context.Context, p Patient) (*Patient, error)
	GetByUser(ctx context.Context, userID string) (*Patient, error)
}

// FromValues copies form state into a record linked to userID. Unknown keys
// and values of the wrong type are ignored.
func FromValues(userID string, values map[string]any) Patient {
	str := func(name string) string {
		s, _ := values[name].(string)
		return strings.TrimSpace(s)
	}
	flag := func(name string) bool {
		b, _ := values[name].(bool)
		return b
	}

	p := Patient{
		UserID:                 userID,
		Name:                   str("name"),
		Email:                  str("email"),
		Phone:                  str("phone"),
		Gender:                 str("gender"),
		Address:                str("address"),
		Occupation:             str("occupation"),
		EmergencyContactName:   str("emergencyContactName"),
		EmergencyContactNumber: str("emergencyContactNumber"),
		PrimaryPhysician:       str("primaryPhysician"),
		InsuranceProvider:      str("insuranceProvider"),
		InsurancePolicyNumber:  str("insurancePolicyNumber"),
		Allergies:              str("allergies"),
		CurrentMedications:     str("currentMedications"),
		FamilyMedicalHistory:   str("familyMedicalHistory"),
		PastMedicalHistory:     str("pastMedicalHistory"),
		IdentificationType:     str("identificationType"),
		IdentificationNumber:   str("identificationNumber"),
		TreatmentConsent:       flag("treatmentConsent"),
		DisclosureConsent:      flag("disclosureConsent"),
		PrivacyConsent:         flag("privacyConsent"),
	}
	if at, ok := values["birthDate"].(time.Time); ok {
		p.BirthDate = at
	}
	return p
}

// Document returns the identification document held in values, if any.
func Document(values map[string]any, name string) *field.Attachment {
	attachment, ok := values[name].(*field.Attachment)
	if !ok || attachment.Empty() {
		return nil
	}
	return attachment
}

// View flattens p into plain values for templates.
func (p Patient) View() map[string]any {
	view := map[string]any{
		"id":                        p.ID,
		"userId":                    p.UserID,
		"name":                      p.Name,
		"email":                     p.Email,
		"phone":                     p.Phone,
		"gender":                    p.Gender,
		"primaryPhysician":          p.PrimaryPhysician,
		"insuranceProvider":         p.InsuranceProvider,
		"insurancePolicyNumber":     p.InsurancePolicyNumber,
		"identificationType":        p.IdentificationType,
		"identificationDocumentUrl": p.IdentificationDocumentURL,
	}
	if !p.BirthDate.IsZero() {
		view["birthDate"] = p.BirthDate.Format(time.DateOnly)
	}
	return view
}
