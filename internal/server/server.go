// Package server exposes the intake forms over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-intake/api"
	"github.com/goliatone/go-intake/components/physicians"
	"github.com/goliatone/go-intake/forms"
	"github.com/goliatone/go-intake/pkg/actions"
	"github.com/goliatone/go-intake/pkg/form"
	"github.com/goliatone/go-intake/pkg/render"
	"github.com/goliatone/go-intake/pkg/renderers/jsonview"
	"github.com/goliatone/go-intake/pkg/renderers/vanilla"
	"github.com/goliatone/go-intake/pkg/storage"
	"github.com/goliatone/go-intake/pkg/validation"
)

const (
	csrfField      = "_csrf"
	csrfContextKey = "csrf"
	// bodyLimit caps page request bodies: one document plus the form fields.
	bodyLimit = "12M"
)

// Deps are the collaborators the server routes to. Actions, Forms, Contract
// and HTML are required.
type Deps struct {
	Actions   *actions.Service
	Forms     *forms.Catalog
	Contract  *validation.Contract
	HTML      *vanilla.Renderer
	Documents storage.Bucket
	Logger    zerolog.Logger

	// Registry receives the server metrics and Gatherer serves /metrics.
	// Both default to a private registry.
	Registry prometheus.Registerer
	Gatherer prometheus.Gatherer

	// CSRF enables double-submit token checks on form posts.
	CSRF bool
}

// Server routes intake requests through echo.
type Server struct {
	echo      *echo.Echo
	actions   *actions.Service
	forms     *forms.Catalog
	contract  *validation.Contract
	html      *vanilla.Renderer
	renderers *render.Registry
	documents storage.Bucket
	logger    zerolog.Logger
	metrics   *metrics
	csrf      bool
}

// New validates deps and registers every route.
func New(deps Deps) (*Server, error) {
	switch {
	case deps.Actions == nil:
		return nil, errors.New("server: actions are required")
	case deps.Forms == nil:
		return nil, errors.New("server: form catalog is required")
	case deps.Contract == nil:
		return nil, errors.New("server: validation contract is required")
	case deps.HTML == nil:
		return nil, errors.New("server: html renderer is required")
	}

	if deps.Registry == nil {
		registry := prometheus.NewRegistry()
		deps.Registry = registry
		if deps.Gatherer == nil {
			deps.Gatherer = registry
		}
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	renderers := render.NewRegistry()
	if err := renderers.Register(deps.HTML); err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	if err := renderers.Register(jsonview.New(false)); err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	s := &Server{
		echo:      echo.New(),
		actions:   deps.Actions,
		forms:     deps.Forms,
		contract:  deps.Contract,
		html:      deps.HTML,
		renderers: renderers,
		documents: deps.Documents,
		logger:    deps.Logger,
		metrics:   newMetrics(deps.Registry),
		csrf:      deps.CSRF,
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.HTTPErrorHandler = s.handleError

	s.routes(deps.Gatherer)
	return s, nil
}

func (s *Server) routes(gatherer prometheus.Gatherer) {
	e := s.echo
	e.Use(Recovery(s.logger))
	e.Use(RequestID())
	e.Use(Logger(s.logger))
	e.Use(s.metrics.observe())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	e.GET("/openapi.yaml", func(c echo.Context) error {
		return c.Blob(http.StatusOK, "application/yaml", api.Contract)
	})
	e.StaticFS("/assets", vanilla.AssetsFS())

	directory := physicians.New()
	e.GET(directory.Path("/"), echo.WrapHandler(directory.Handler()))

	pages := e.Group("", echomw.BodyLimit(bodyLimit), SecurityHeaders())
	if s.csrf {
		pages.Use(echomw.CSRFWithConfig(echomw.CSRFConfig{
			TokenLookup:    "form:" + csrfField,
			ContextKey:     csrfContextKey,
			CookieName:     csrfField,
			CookiePath:     "/",
			CookieHTTPOnly: true,
			CookieSameSite: http.SameSiteStrictMode,
		}))
	}

	pages.GET("/", s.basicForm)
	pages.POST("/patients", s.createUser)
	pages.GET("/patients/:userId/register", s.registerForm)
	pages.POST("/patients/:userId/register", s.registerPatient)
	pages.GET("/patients/:userId/new-appointment", s.newAppointment)
	pages.GET("/documents/:id", s.document)
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown.
func (s *Server) Start(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("starting server")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		s.logger.Error().Err(err).Str("path", c.Request().URL.Path).Msg("unhandled error")
		he = echo.NewHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
	message := fmt.Sprint(he.Message)
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(he.Code)
		return
	}
	_ = c.JSON(he.Code, map[string]string{"error": message})
}

func outcomeLabel(result form.Result, err error) string {
	if err != nil {
		if form.IsValidationError(err) {
			return "invalid"
		}
		return "error"
	}
	return result.Outcome.String()
}
