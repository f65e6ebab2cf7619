package forms_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-intake/forms"
	"github.com/goliatone/go-intake/pkg/field"
	"github.com/goliatone/go-intake/pkg/validation"
)

func TestDefaultCatalog(t *testing.T) {
	catalog, err := forms.Default()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{forms.Basic, forms.Register}, catalog.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}

	basic := catalog.MustGet(forms.Basic)
	if diff := cmp.Diff([]string{"name", "email", "phone"}, field.Names(basic.Fields)); diff != "" {
		t.Fatalf("basic fields mismatch (-want +got):\n%s", diff)
	}
	if basic.Operation != validation.OperationCreateUser {
		t.Fatalf("unexpected basic operation %q", basic.Operation)
	}
	if diff := cmp.Diff(map[string]any{"name": "", "email": "", "phone": ""}, basic.DefaultValues()); diff != "" {
		t.Fatalf("basic defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestRegisterFormWiring(t *testing.T) {
	catalog, err := forms.Default()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	def := catalog.MustGet(forms.Register)

	want := []string{
		"name", "email", "phone", "birthDate", "gender", "address", "occupation",
		"emergencyContactName", "emergencyContactNumber", "primaryPhysician",
		"insuranceProvider", "insurancePolicyNumber", "allergies", "currentMedications",
		"familyMedicalHistory", "pastMedicalHistory", "identificationType",
		"identificationNumber", "identificationDocument", "treatmentConsent",
		"disclosureConsent", "privacyConsent",
	}
	if diff := cmp.Diff(want, field.Names(def.Fields)); diff != "" {
		t.Fatalf("register fields mismatch (-want +got):\n%s", diff)
	}

	physician, _ := def.Field("primaryPhysician")
	if len(physician.Options) != 9 || physician.Options[0].Image == "" {
		t.Fatalf("expected physician directory options, got %+v", physician.Options)
	}

	gender, _ := def.Field("gender")
	if gender.Custom == nil || gender.Custom.Name != "genderRadio" {
		t.Fatalf("expected gender radio custom renderer, got %+v", gender.Custom)
	}
	document, _ := def.Field("identificationDocument")
	if document.Custom == nil || document.Custom.Bind == nil {
		t.Fatalf("expected uploader with binder, got %+v", document.Custom)
	}

	idType, _ := def.Field("identificationType")
	if idType.Options[0] != (field.Option{Value: "Birth Certificate", Label: "Birth Certificate"}) {
		t.Fatalf("expected labels to default to values, got %+v", idType.Options[0])
	}

	defaults := def.DefaultValues()
	if defaults["gender"] != "Male" || defaults["identificationType"] != "Birth Certificate" || defaults["privacyConsent"] != false {
		t.Fatalf("unexpected defaults %+v", defaults)
	}

	sections := def.Layout()
	if len(sections) != 4 || sections[3].Title != "Consent and Privacy" {
		t.Fatalf("unexpected sections %+v", sections)
	}
}

func TestOperationsExistInContract(t *testing.T) {
	contract, err := validation.Default(context.Background())
	if err != nil {
		t.Fatalf("contract: %v", err)
	}
	catalog, err := forms.Default()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, id := range catalog.IDs() {
		def := catalog.MustGet(id)
		if _, err := contract.Rules(def.Operation); err != nil {
			t.Errorf("form %q: %v", id, err)
		}
	}
}

func TestLoadFSErrors(t *testing.T) {
	cases := map[string]string{
		"unknown source": "id: a\nfields:\n  - kind: select\n    name: doc\n    optionsFrom: nowhere\n",
		"unknown custom": "id: a\nfields:\n  - kind: skeleton\n    name: doc\n    custom: nowhere\n",
		"duplicate name": "id: a\nfields:\n  - {kind: checkbox, name: x}\n  - {kind: checkbox, name: x}\n",
		"bad yaml":       "id: [",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			fsys := fstest.MapFS{"a.yaml": {Data: []byte(src)}}
			if _, err := forms.LoadFS(fsys); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadFSOptionSourceOverride(t *testing.T) {
	fsys := fstest.MapFS{
		"doctors.yml": {Data: []byte("fields:\n  - kind: select\n    name: doc\n    label: Doctor\n    optionsFrom: physicians\n")},
		"notes.txt":   {Data: []byte("ignored")},
	}

	catalog, err := forms.LoadFS(fsys, forms.WithOptionSource("physicians", func() ([]field.Option, error) {
		return []field.Option{{Value: "Dr. Who"}}, nil
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	def, ok := catalog.Get("doctors")
	if !ok {
		t.Fatalf("expected id from file name, got %v", catalog.IDs())
	}
	if diff := cmp.Diff([]field.Option{{Value: "Dr. Who", Label: "Dr. Who"}}, def.Fields[0].Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}

	failing := forms.WithOptionSource("physicians", func() ([]field.Option, error) {
		return nil, errors.New("offline")
	})
	if _, err := forms.LoadFS(fsys, failing); err == nil {
		t.Fatal("expected option source error")
	}
}
