// Package actions implements the remote operations the intake forms submit
// to. Failures are logged and reported as form.Failure results; callers
// never see the underlying error and do not navigate.
package actions

import (
	"bytes"
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-intake/pkg/field"
	"github.com/goliatone/go-intake/pkg/form"
	"github.com/goliatone/go-intake/pkg/identity"
	"github.com/goliatone/go-intake/pkg/patient"
	"github.com/goliatone/go-intake/pkg/storage"
)

// DocumentField names the form field carrying the identification document.
const DocumentField = "identificationDocument"

// CreateUserParams are the basic registration values.
type CreateUserParams struct {
	Name  string
	Email string
	Phone string
}

// RegisterPatientParams carry the detailed registration and the optional
// identification document.
type RegisterPatientParams struct {
	Patient  patient.Patient
	Document *field.Attachment
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for swallowed failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithIDGenerator overrides identity.NewID for user and document ids.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// Service binds the directory, the patient store and the document bucket.
type Service struct {
	users     identity.Users
	patients  patient.Store
	documents storage.Bucket
	logger    zerolog.Logger
	newID     func() string
}

// New wires a Service. documents may be nil, in which case uploaded
// documents are dropped with a warning.
func New(users identity.Users, patients patient.Store, documents storage.Bucket, opts ...Option) *Service {
	s := &Service{
		users:     users,
		patients:  patients,
		documents: documents,
		logger:    zerolog.Nop(),
		newID:     identity.NewID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateUser creates a directory user keyed by email. When the email is
// already registered the existing user is looked up and returned as a
// Conflict result, so repeated calls with one email yield one id.
func (s *Service) CreateUser(ctx context.Context, params CreateUserParams) form.Result {
	log := s.logger.With().Str("op", "createUser").Str("email", params.Email).Logger()

	user, err := s.users.Create(ctx, s.newID(), params.Email, params.Phone, params.Name)
	if err == nil {
		return form.Success(user.ID, user)
	}
	if !identity.IsConflict(err) {
		log.Error().Err(err).Msg("create user failed")
		return form.Failure("create user: %v", err)
	}

	matches, err := s.users.List(ctx, identity.Equal("$"+identity.AttrEmail, params.Email))
	if err != nil {
		log.Error().Err(err).Msg("lookup after conflict failed")
		return form.Failure("lookup user: %v", err)
	}
	switch len(matches) {
	case 0:
		log.Warn().Msg("conflict reported but no user matches the email")
		return form.Failure("no user found for %s", params.Email)
	case 1:
	default:
		log.Warn().Int("matches", len(matches)).Msg("several users share the email; using the first")
	}
	existing := matches[0]
	return form.Conflict(existing.ID, &existing)
}

// GetUser returns the user or nil; lookup errors are logged.
func (s *Service) GetUser(ctx context.Context, id string) *identity.User {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("op", "getUser").Str("user_id", id).Msg("get user failed")
		return nil
	}
	return user
}

// RegisterPatient uploads the identification document, when present, and
// stores the patient record linked to its user with the document id and URL.
func (s *Service) RegisterPatient(ctx context.Context, params RegisterPatientParams) form.Result {
	record := params.Patient
	log := s.logger.With().Str("op", "registerPatient").Str("user_id", record.UserID).Logger()

	if doc := params.Document; !doc.Empty() {
		switch {
		case s.documents == nil:
			log.Warn().Str("file", doc.FileName).Msg("no document bucket configured; document dropped")
		default:
			obj, err := s.documents.Put(ctx, s.newID(), doc.FileName, doc.ContentType, bytes.NewReader(doc.Data), doc.Size())
			if err != nil {
				log.Error().Err(err).Str("file", doc.FileName).Msg("document upload failed")
				return form.Failure("upload document: %v", err)
			}
			record.IdentificationDocumentID = obj.ID
			record.IdentificationDocumentURL = obj.URL
		}
	}

	created, err := s.patients.Create(ctx, record)
	if err != nil {
		log.Error().Err(err).Msg("create patient failed")
		return form.Failure("create patient: %v", err)
	}
	return form.Success(created.UserID, created)
}

// GetPatient returns the patient registered for userID or nil.
func (s *Service) GetPatient(ctx context.Context, userID string) *patient.Patient {
	p, err := s.patients.GetByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("op", "getPatient").Str("user_id", userID).Msg("get patient failed")
		return nil
	}
	return p
}

// CreateUserAction adapts CreateUser to a form action reading name, email
// and phone from the submitted values.
func (s *Service) CreateUserAction() form.Action {
	return func(ctx context.Context, values map[string]any) (form.Result, error) {
		return s.CreateUser(ctx, CreateUserParams{
			Name:  stringValue(values, "name"),
			Email: stringValue(values, "email"),
			Phone: stringValue(values, "phone"),
		}), nil
	}
}

// RegisterPatientAction adapts RegisterPatient to a form action for userID.
// The result id is the user id, which the register destination links to.
func (s *Service) RegisterPatientAction(userID string) form.Action {
	return func(ctx context.Context, values map[string]any) (form.Result, error) {
		return s.RegisterPatient(ctx, RegisterPatientParams{
			Patient:  patient.FromValues(userID, values),
			Document: patient.Document(values, DocumentField),
		}), nil
	}
}

func stringValue(values map[string]any, name string) string {
	s, _ := values[name].(string)
	return strings.TrimSpace(s)
}
