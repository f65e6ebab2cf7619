package validation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-intake/pkg/field"
	"github.com/goliatone/go-intake/pkg/form"
	"github.com/goliatone/go-intake/pkg/validation"
)

func loadContract(t *testing.T) *validation.Contract {
	t.Helper()
	contract, err := validation.Default(context.Background())
	if err != nil {
		t.Fatalf("load contract: %v", err)
	}
	return contract
}

func validPatient() map[string]any {
	return map[string]any{
		"name":                   "Ann Example",
		"email":                  "ann@example.com",
		"phone":                  "+12125550100",
		"birthDate":              time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC),
		"gender":                 "Female",
		"address":                "14th Street 123, New York",
		"occupation":             "Engineer",
		"emergencyContactName":   "Bob Example",
		"emergencyContactNumber": "+12125550101",
		"primaryPhysician":       "John Green",
		"insuranceProvider":      "BlueCross",
		"insurancePolicyNumber":  "ABC1234567",
		"allergies":              "",
		"identificationType":     "Birth Certificate",
		"identificationDocument": &field.Attachment{FileName: "id.png", Data: []byte{1}},
		"treatmentConsent":       true,
		"disclosureConsent":      true,
		"privacyConsent":         true,
	}
}

func TestContractOperations(t *testing.T) {
	contract := loadContract(t)
	want := []string{validation.OperationCreateUser, validation.OperationRegisterPatient}
	if diff := cmp.Diff(want, contract.Operations()); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateUserRulesAcceptValidValues(t *testing.T) {
	contract := loadContract(t)
	issues, err := contract.Validate(validation.OperationCreateUser, map[string]any{
		"name":  "John Doe",
		"email": "john@example.com",
		"phone": "+12125550100",
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues)
	}
}

func TestCreateUserRulesReportFieldMessages(t *testing.T) {
	contract := loadContract(t)
	issues, err := contract.Validate(validation.OperationCreateUser, map[string]any{
		"name":  "J",
		"email": "not-an-email",
		"phone": nil,
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	want := []form.Issue{
		{Field: "email", Message: "Invalid email address"},
		{Field: "name", Message: "Name must be between 2 and 50 characters"},
		{Field: "phone", Message: "Invalid phone number"},
	}
	if diff := cmp.Diff(want, issues); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestRegisterPatientRules(t *testing.T) {
	contract := loadContract(t)
	rules, err := contract.Rules(validation.OperationRegisterPatient)
	if err != nil {
		t.Fatalf("rules: %v", err)
	}

	if issues := rules.Validate(validPatient()); len(issues) != 0 {
		t.Fatalf("expected valid patient, got %v", issues)
	}

	values := validPatient()
	values["privacyConsent"] = false
	values["birthDate"] = nil
	values["gender"] = "Unknown"
	want := []form.Issue{
		{Field: "birthDate", Message: "Date of birth is required"},
		{Field: "gender", Message: "Select a gender"},
		{Field: "privacyConsent", Message: "You must consent to privacy in order to proceed"},
	}
	if diff := cmp.Diff(want, rules.Validate(values)); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownOperation(t *testing.T) {
	contract := loadContract(t)
	if _, err := contract.Rules("bookAppointment"); !errors.Is(err, validation.ErrUnknownOperation) {
		t.Fatalf("expected ErrUnknownOperation, got %v", err)
	}
}

func TestLoadRejectsEmptyPayload(t *testing.T) {
	if _, err := validation.Load(context.Background(), nil); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}
