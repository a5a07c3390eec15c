package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/agbru/fibfill/internal/cli"
	"github.com/agbru/fibfill/internal/config"
	apperrors "github.com/agbru/fibfill/internal/errors"
	"github.com/agbru/fibfill/internal/fibonacci"
	"github.com/agbru/fibfill/internal/logging"
	"github.com/agbru/fibfill/internal/sink"
	"github.com/agbru/fibfill/internal/sink/minio"
	"github.com/agbru/fibfill/internal/sink/s3"
	"github.com/agbru/fibfill/internal/ui"
)

// Application represents the fibfill application instance.
type Application struct {
	Config    config.AppConfig
	Factory   *fibonacci.GeneratorFactory
	ErrWriter io.Writer

	// store replaces the routed local and remote stores when set.
	store sink.Store
	// logWriter receives the structured log; ErrWriter when nil.
	logWriter io.Writer
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithFactory sets a custom GeneratorFactory for the application.
func WithFactory(f *fibonacci.GeneratorFactory) AppOption {
	return func(a *Application) { a.Factory = f }
}

// WithStore writes every destination to s instead of the file system and
// the remote stores.
func WithStore(s sink.Store) AppOption {
	return func(a *Application) { a.store = s }
}

// WithLogWriter sends the structured log to w.
func WithLogWriter(w io.Writer) AppOption {
	return func(a *Application) { a.logWriter = w }
}

// New creates a new Application instance by parsing command-line arguments.
// args[0] is the program name.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}
	if app.Factory == nil {
		app.Factory = fibonacci.NewDefaultFactory()
	}

	programName := "fibfill"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, app.Factory.List())
	if err != nil {
		return nil, err
	}
	app.Config = cfg
	return app, nil
}

// Run executes the application based on the configured mode and returns the
// process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	ui.InitTheme(a.Config.NoColor)
	return a.runGenerate(ctx, out)
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion, a.Factory.List()); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// newLogger builds the structured logger. The dashboard owns the terminal,
// so TUI runs only log warnings and errors, and only to a file or pipe.
func (a *Application) newLogger() logging.Logger {
	w := a.logWriter
	if w == nil {
		w = a.ErrWriter
	}
	level := logging.ParseLevel(a.Config.LogLevel)
	if a.Config.Verbose && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}
	if a.Config.Quiet && level < zerolog.WarnLevel {
		level = zerolog.WarnLevel
	}
	if a.Config.TUI {
		if f, ok := w.(*os.File); ok && isTerminal(f) {
			return logging.NopLogger{}
		}
		level = max(level, zerolog.WarnLevel)
	}
	return logging.NewConsoleLogger(w, "fibfill", level, a.Config.LogFormat == "json")
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

// buildStore returns the store every destination is written through: a
// router sending local paths to the file system and s3:// and minio://
// names to their object stores, throttled when --rate is set.
func (a *Application) buildStore() (sink.Store, *sink.LocalStore, error) {
	rate, err := a.Config.RateBytes()
	if err != nil {
		return nil, nil, err
	}

	var (
		store sink.Store
		local *sink.LocalStore
	)
	if a.store != nil {
		store = a.store
	} else {
		local = sink.NewLocalStore("",
			sink.WithFsync(a.Config.Fsync),
			sink.WithDropCache(a.Config.DropCache),
		)
		router := sink.NewRouter(local)
		s3Opts := s3.Options{Region: a.Config.S3Region, Endpoint: a.Config.S3Endpoint}
		router.Register("s3", func(ctx context.Context, bucket string) (sink.Store, error) {
			st, err := s3.NewStoreFromEnvironment(ctx, bucket, s3Opts, s3.DefaultConfig())
			if err != nil {
				return nil, err
			}
			return st, nil
		})
		env := minio.Env{
			Endpoint:  a.Config.MinioEndpoint,
			AccessKey: a.Config.MinioAccessKey,
			SecretKey: a.Config.MinioSecretKey,
			Secure:    a.Config.MinioSecure,
		}
		router.Register("minio", func(_ context.Context, bucket string) (sink.Store, error) {
			st, err := minio.NewStoreFromEnv(env, bucket)
			if err != nil {
				return nil, err
			}
			return st, nil
		})
		store = router
	}

	if rate > 0 {
		store = sink.NewThrottledStore(store, rate)
	}
	return store, local, nil
}

// shutdownTimeout bounds the graceful stop of the metrics endpoint.
const shutdownTimeout = 2 * time.Second

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
