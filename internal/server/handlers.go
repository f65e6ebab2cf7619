package server

import (
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/goliatone/go-intake/forms"
	"github.com/goliatone/go-intake/pkg/actions"
	"github.com/goliatone/go-intake/pkg/form"
	"github.com/goliatone/go-intake/pkg/render"
	"github.com/goliatone/go-intake/pkg/storage"
)

// submission carries everything one form post needs.
type submission struct {
	def         form.Definition
	action      form.Action
	actionPath  string
	destination form.Destination
	overrides   map[string]any
	transform   form.Transformer
}

func (s *Server) basicForm(c echo.Context) error {
	def := s.forms.MustGet(forms.Basic)
	ctrl := def.NewController(nil)
	return s.renderForm(c, http.StatusOK, def, "/patients", ctrl, render.ErrorMapping{})
}

func (s *Server) createUser(c echo.Context) error {
	return s.submit(c, submission{
		def:         s.forms.MustGet(forms.Basic),
		action:      s.actions.CreateUserAction(),
		actionPath:  "/patients",
		destination: actions.ToRegister,
	})
}

func (s *Server) registerForm(c echo.Context) error {
	userID := c.Param("userId")
	user := s.actions.GetUser(c.Request().Context(), userID)
	if user == nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	def := s.forms.MustGet(forms.Register)
	ctrl := def.NewController(map[string]any{
		"name":  user.Name,
		"email": user.Email,
		"phone": user.Phone,
	})
	return s.renderForm(c, http.StatusOK, def, actions.RegisterPath(userID), ctrl, render.ErrorMapping{})
}

func (s *Server) registerPatient(c echo.Context) error {
	userID := c.Param("userId")
	user := s.actions.GetUser(c.Request().Context(), userID)
	if user == nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	return s.submit(c, submission{
		def:         s.forms.MustGet(forms.Register),
		action:      s.actions.RegisterPatientAction(user.ID),
		actionPath:  actions.RegisterPath(user.ID),
		destination: actions.ToAppointment,
		overrides: map[string]any{
			"name":  user.Name,
			"email": user.Email,
			"phone": user.Phone,
		},
		transform: form.PackageAttachments(actions.DocumentField),
	})
}

// submit binds the posted body, runs the form's rules and action, and either
// redirects (303) or re-renders the form. Remote failures re-render the form
// without a message; they are only logged.
func (s *Server) submit(c echo.Context, sub submission) error {
	rules, err := s.contract.Rules(sub.def.Operation)
	if err != nil {
		return err
	}

	var target string
	opts := []form.Option{
		form.WithValidator(rules),
		form.WithLogger(s.logger),
		form.WithMountContext(c.Request().Context()),
		form.WithNavigator(func(destination string) { target = destination }, sub.destination),
	}
	if sub.transform != nil {
		opts = append(opts, form.WithTransformer(sub.transform))
	}
	ctrl := sub.def.NewController(sub.overrides, opts...)
	defer ctrl.Dispose()

	in, err := formInput(c)
	if err != nil {
		var he *echo.HTTPError
		if errors.Is(err, errFileTooLarge) || (errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge) {
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, errFileTooLarge.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := ctrl.Bind(in); err != nil {
		s.metrics.submission(sub.def.ID, outcomeLabel(form.Result{}, err))
		return s.renderForm(c, http.StatusUnprocessableEntity, sub.def, sub.actionPath, ctrl, render.MapError(sub.def, err))
	}

	result, err := ctrl.Submit(c.Request().Context(), sub.action)
	s.metrics.submission(sub.def.ID, outcomeLabel(result, err))
	if err != nil {
		if form.IsValidationError(err) {
			return s.renderForm(c, http.StatusUnprocessableEntity, sub.def, sub.actionPath, ctrl, render.MapError(sub.def, err))
		}
		return err
	}
	if target == "" {
		return s.renderForm(c, http.StatusOK, sub.def, sub.actionPath, ctrl, render.ErrorMapping{})
	}
	return c.Redirect(http.StatusSeeOther, target)
}

func (s *Server) renderForm(c echo.Context, status int, def form.Definition, action string, ctrl *form.Controller, errs render.ErrorMapping) error {
	renderer, err := s.renderers.Negotiate(c.Request().Header.Get(echo.HeaderAccept))
	if err != nil {
		return err
	}

	hidden := map[string]string{}
	if token, ok := c.Get(csrfContextKey).(string); ok && token != "" {
		hidden = render.MergeHiddenFields(hidden, render.CSRFToken(csrfField, token))
	}

	out, err := renderer.Render(c.Request().Context(), def, render.RenderOptions{
		Action:     action,
		Values:     ctrl.State().Values(),
		Errors:     errs.Fields,
		FormErrors: errs.Form,
		Hidden:     hidden,
		Loading:    ctrl.Loading(),
		OnChange:   ctrl.OnChange,
	})
	if err != nil {
		return err
	}
	return c.Blob(status, renderer.ContentType(), out)
}

func (s *Server) newAppointment(c echo.Context) error {
	p := s.actions.GetPatient(c.Request().Context(), c.Param("userId"))
	if p == nil {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}

	renderer, err := s.renderers.Negotiate(c.Request().Header.Get(echo.HeaderAccept))
	if err != nil {
		return err
	}
	if renderer.Name() != s.html.Name() {
		return c.JSON(http.StatusOK, p)
	}

	out, err := s.html.RenderView("Registration complete", "templates/patient.tmpl", map[string]any{
		"patient": p.View(),
	})
	if err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, out)
}

func (s *Server) document(c echo.Context) error {
	if s.documents == nil {
		return echo.NewHTTPError(http.StatusNotFound, "document storage is not configured")
	}
	body, obj, err := s.documents.Get(c.Request().Context(), c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "document not found")
	}
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }()

	if obj.Size > 0 {
		c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(obj.Size, 10))
	}
	if obj.Name != "" {
		c.Response().Header().Set(echo.HeaderContentDisposition, mime.FormatMediaType("inline", map[string]string{"filename": obj.Name}))
	}
	contentType := obj.ContentType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	return c.Stream(http.StatusOK, contentType, body)
}
