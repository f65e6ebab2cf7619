package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	intake "github.com/goliatone/go-intake"
	"github.com/goliatone/go-intake/forms"
	"github.com/goliatone/go-intake/internal/app"
	"github.com/goliatone/go-intake/internal/config"
	"github.com/goliatone/go-intake/pkg/actions"
	"github.com/goliatone/go-intake/pkg/form"
	"github.com/goliatone/go-intake/pkg/renderers/tui"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "intake",
		Short:         "Patient intake forms",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional env file read before the environment")

	load := func() (*config.Config, error) {
		return config.LoadFile(envFile)
	}

	root.AddCommand(serveCmd(load))
	root.AddCommand(registerCmd(load))
	root.AddCommand(renderCmd())
	return root
}

func serveCmd(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the intake web server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			logger := app.NewLogger(cfg, os.Stdout)

			a, err := app.Build(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			srv, err := a.Server()
			if err != nil {
				return err
			}

			errc := make(chan error, 1)
			go func() { errc <- srv.Start(cfg.Addr()) }()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errc:
				return err
			case <-quit:
			}

			logger.Info().Msg("shutting down server")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				return fmt.Errorf("server shutdown: %w", err)
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}
}

func registerCmd(load func() (*config.Config, error)) *cobra.Command {
	var detailed bool

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a patient from the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			logger := app.NewLogger(cfg, cmd.ErrOrStderr())

			a, err := app.Build(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			prompts := tui.New(
				tui.WithPromptDriver(tui.NewSurveyDriver(cmd.OutOrStdout())),
				tui.WithLogger(logger),
				tui.WithCustomPrompt("fileUploader", tui.FilePrompt(os.ReadFile)),
			)
			return runRegister(cmd.Context(), a, prompts, cmd.OutOrStdout(), detailed)
		},
	}
	cmd.Flags().BoolVar(&detailed, "detailed", false, "continue with the detailed registration form")
	return cmd
}

// runRegister fills the basic form, creates (or recovers) the user and,
// when detailed is set, fills and submits the detailed form for that user.
func runRegister(ctx context.Context, a *app.App, prompts *tui.Renderer, out io.Writer, detailed bool) error {
	var next string
	navigate := func(destination string) { next = destination }

	basic := a.Forms.MustGet(forms.Basic)
	result, err := fillAndSubmit(ctx, a, prompts, basic, nil, a.Actions.CreateUserAction(), form.WithNavigator(navigate, actions.ToRegister))
	if err != nil {
		return err
	}
	if next == "" {
		return errors.New("registration failed; see the log for details")
	}
	fmt.Fprintf(out, "User %s (%s). Continue at %s\n", result.ID, result.Outcome, next)
	if !detailed {
		return nil
	}

	user := a.Actions.GetUser(ctx, result.ID)
	if user == nil {
		return fmt.Errorf("user %q not found", result.ID)
	}
	next = ""
	register := a.Forms.MustGet(forms.Register)
	overrides := map[string]any{"name": user.Name, "email": user.Email, "phone": user.Phone}
	result, err = fillAndSubmit(ctx, a, prompts, register, overrides, a.Actions.RegisterPatientAction(user.ID),
		form.WithNavigator(navigate, actions.ToAppointment),
		form.WithTransformer(form.PackageAttachments(actions.DocumentField)),
	)
	if err != nil {
		return err
	}
	if next == "" {
		return errors.New("patient registration failed; see the log for details")
	}
	fmt.Fprintf(out, "Patient registered. Continue at %s\n", next)
	return nil
}

func fillAndSubmit(ctx context.Context, a *app.App, prompts *tui.Renderer, def form.Definition, overrides map[string]any, action form.Action, opts ...form.Option) (form.Result, error) {
	rules, err := a.Contract.Rules(def.Operation)
	if err != nil {
		return form.Result{}, err
	}
	all := append([]form.Option{
		form.WithValidator(rules),
		form.WithLogger(a.Logger),
		form.WithMountContext(ctx),
	}, opts...)
	ctrl := def.NewController(overrides, all...)
	defer ctrl.Dispose()

	if err := prompts.Fill(ctx, ctrl); err != nil {
		return form.Result{}, err
	}
	return ctrl.Submit(ctx, action)
}

func renderCmd() *cobra.Command {
	var (
		formID   string
		renderer string
		output   string
		action   string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a form definition to stdout or a file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := intake.GenerateForm(cmd.Context(), formID, renderer, action)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Form written to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVar(&formID, "form", forms.Basic, "form id to render")
	cmd.Flags().StringVar(&renderer, "renderer", "vanilla", "renderer to use (vanilla or json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&action, "action", "", "form action URL")
	return cmd
}
