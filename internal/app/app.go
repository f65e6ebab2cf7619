// Package app wires configured backends into the intake services shared by
// the HTTP server and the terminal command.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-intake/forms"
	"github.com/goliatone/go-intake/internal/config"
	"github.com/goliatone/go-intake/internal/server"
	"github.com/goliatone/go-intake/internal/store/sqlite"
	"github.com/goliatone/go-intake/pkg/actions"
	"github.com/goliatone/go-intake/pkg/identity"
	"github.com/goliatone/go-intake/pkg/patient"
	"github.com/goliatone/go-intake/pkg/renderers/vanilla"
	"github.com/goliatone/go-intake/pkg/storage"
	"github.com/goliatone/go-intake/pkg/validation"
)

// DocumentsPath is where the server streams stored documents from.
const DocumentsPath = "/documents"

// App holds the services built from one Config.
type App struct {
	Config    *config.Config
	Logger    zerolog.Logger
	Actions   *actions.Service
	Forms     *forms.Catalog
	Contract  *validation.Contract
	HTML      *vanilla.Renderer
	Documents storage.Bucket

	closers []io.Closer
}

// NewLogger builds the process logger: JSON by default, console output in
// development.
func NewLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}
	if cfg.IsDev() {
		out = zerolog.ConsoleWriter{Out: out}
	}
	logger := zerolog.New(out).With().Timestamp().Logger()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}

// Build validates cfg and constructs every backend it selects.
func Build(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	a := &App{Config: cfg, Logger: logger}
	ok := false
	defer func() {
		if !ok {
			_ = a.Close()
		}
	}()

	users, patients, err := a.stores()
	if err != nil {
		return nil, err
	}

	documents, err := a.bucket(ctx)
	if err != nil {
		return nil, err
	}
	a.Documents = documents

	a.Contract, err = validation.Default(ctx)
	if err != nil {
		return nil, fmt.Errorf("app: load contract: %w", err)
	}
	a.Forms, err = forms.Default()
	if err != nil {
		return nil, fmt.Errorf("app: load forms: %w", err)
	}

	selection, err := vanilla.NewSelector(vanilla.DefaultThemeName, "", vanilla.DefaultManifest()).
		Select(cfg.Theme, cfg.ThemeVariant)
	if err != nil {
		return nil, fmt.Errorf("app: select theme: %w", err)
	}
	a.HTML, err = vanilla.New(
		vanilla.WithTheme(vanilla.RendererConfig(selection)),
		vanilla.WithTemplateEngine(cfg.TemplateEngine),
	)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	a.Actions = actions.New(users, patients, documents, actions.WithLogger(logger))
	ok = true
	return a, nil
}

// stores picks the user directory and patient store. Patients live next to
// users in SQLite; the memory and remote identity backends keep patients in
// memory.
func (a *App) stores() (identity.Users, patient.Store, error) {
	cfg := a.Config
	switch cfg.IdentityBackend {
	case config.IdentitySQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("app: open sqlite: %w", err)
		}
		a.closers = append(a.closers, db)
		return db, db.Patients(), nil
	case config.IdentityHTTP:
		opts := []identity.ClientOption{
			identity.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		}
		if cfg.IdentityAPIKey != "" {
			opts = append(opts, identity.WithAPIKey(cfg.IdentityAPIKey))
		}
		client, err := identity.NewClient(cfg.IdentityEndpoint, cfg.IdentityProject, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("app: %w", err)
		}
		return client, patient.NewMemory(), nil
	default:
		return identity.NewMemory(), patient.NewMemory(), nil
	}
}

func (a *App) bucket(ctx context.Context) (storage.Bucket, error) {
	cfg := a.Config
	if cfg.StorageBackend != config.StorageMinio {
		return storage.NewMemory(cfg.MinioBucket, DocumentsPath), nil
	}
	bucket, err := storage.NewMinio(ctx, storage.MinioConfig{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
		PublicURL: cfg.MinioPublicURL,
	})
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	return bucket, nil
}

// Server builds the HTTP server over the app services. CSRF checks are
// enabled outside development.
func (a *App) Server() (*server.Server, error) {
	return server.New(server.Deps{
		Actions:   a.Actions,
		Forms:     a.Forms,
		Contract:  a.Contract,
		HTML:      a.HTML,
		Documents: a.Documents,
		Logger:    a.Logger,
		CSRF:      !a.Config.IsDev(),
	})
}

// Close releases backends opened by Build.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}
