// Package app wires configuration, datasets, searches and presentation
// together behind the parsearch command.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/agbru/parsearch/internal/calibration"
	"github.com/agbru/parsearch/internal/config"
	apperrors "github.com/agbru/parsearch/internal/errors"
	"github.com/agbru/parsearch/internal/logging"
	"github.com/agbru/parsearch/internal/search"
	"github.com/agbru/parsearch/internal/server"
	"github.com/agbru/parsearch/internal/ui"
)

// Version is set at build time with -ldflags "-X ...app.Version=...".
var Version = "dev"

// Application represents the parsearch application instance.
type Application struct {
	Config    config.AppConfig
	ErrWriter io.Writer
	Logger    logging.Logger
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithLogger sets the logger used by the searcher and the server.
func WithLogger(l logging.Logger) AppOption {
	return func(a *Application) { a.Logger = l }
}

// New creates a new Application instance by parsing command-line arguments.
// args[0] is the program name.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}

	programName := "parsearch"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}
	app.Config = cfg
	if app.Logger == nil {
		app.Logger = defaultLogger(cfg, errWriter)
	}
	return app, nil
}

// defaultLogger logs JSON in server mode and human-readable lines otherwise.
func defaultLogger(cfg config.AppConfig, w io.Writer) logging.Logger {
	if cfg.Serve {
		return logging.NewLogger(w, "parsearch")
	}
	return logging.NewDefaultLogger(w)
}

// Run executes the application based on the configured mode and returns
// the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.ShowVersion {
		fmt.Fprintf(out, "parsearch %s\n", Version)
		return apperrors.ExitSuccess
	}

	if a.Config.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	ui.InitTheme(a.Config.NoColor)

	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	switch {
	case a.Config.Serve:
		return a.runServer(ctx)
	case a.Config.Calibrate:
		return a.runCalibration(ctx, out)
	}
	return a.runSearch(ctx, out)
}

// runCalibration runs the calibration mode.
func (a *Application) runCalibration(ctx context.Context, out io.Writer) int {
	return calibration.RunCalibration(ctx, a.Config, search.New(search.WithLogger(a.Logger)), out)
}

// runServer serves searches over HTTP until ctx is done.
func (a *Application) runServer(ctx context.Context) int {
	cfg := server.DefaultConfig()
	cfg.Addr = a.Config.Addr
	cfg.RequestTimeout = a.Config.Timeout

	if err := server.New(cfg, a.Logger).Start(ctx); err != nil {
		fmt.Fprintf(a.ErrWriter, "Server error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
