// Command skyplot turns a HEALPix probability sky map into a render
// request: density, credible contours, projection and markers.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/skyplot/skyplot/internal/config"
	"github.com/skyplot/skyplot/internal/database"
	"github.com/skyplot/skyplot/internal/influx"
	"github.com/skyplot/skyplot/internal/logging"
	"github.com/skyplot/skyplot/internal/mapio"
	intOtel "github.com/skyplot/skyplot/internal/otel"
	"github.com/skyplot/skyplot/internal/render"
	"github.com/skyplot/skyplot/internal/skyerr"
	"github.com/skyplot/skyplot/internal/storage"
	"github.com/skyplot/skyplot/internal/storage/websocket"
)

// ProgramName prefixes log files and identifies the client to remote renderers.
const ProgramName = "skyplot"

// set at build time
var Version = "dev"

// exit codes
const (
	exitOK          = 0
	exitDataSource  = 1
	exitConfig      = 2
	exitUnavailable = 3
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	runStart := time.Now()

	fs := pflag.NewFlagSet(ProgramName, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	configDir := fs.String("config-dir", ".", "directory holding "+config.FileName)
	config.RegisterFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: %s [flags] SKYMAP.json[.gz]\n", ProgramName)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitConfig
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitConfig
	}

	if err := config.BindFlags(fs); err != nil {
		fmt.Fprintln(stderr, err)
		return exitConfig
	}
	if err := config.Load(*configDir); err != nil {
		fmt.Fprintln(stderr, err)
		return exitConfig
	}

	logFile, err := logging.OpenLogFile(viper.GetString("logsDir"), ProgramName, runStart)
	if err != nil {
		fmt.Fprintln(stderr, "Failed to create/open log file:", err)
	} else {
		defer logFile.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app, err := setup(ctx, logFile)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUnavailable
	}
	defer app.shutdown()

	if err := app.render(ctx, fs.Arg(0)); err != nil {
		app.logger.Error("Render failed", "error", err)
		fmt.Fprintln(stderr, err)
		return exitCode(err)
	}
	return exitOK
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case skyerr.IsConfiguration(err):
		return exitConfig
	case skyerr.IsDataSource(err):
		return exitDataSource
	default:
		return exitUnavailable
	}
}

type app struct {
	logger      *slog.Logger
	slogManager *logging.SlogManager
	otel        *intOtel.Provider
	metrics     *render.Metrics
	influx      *influx.Manager
	closers     []func() error
}

// setup builds the logging, telemetry and metrics stack.
func setup(ctx context.Context, logFile *os.File) (*app, error) {
	a := &app{slogManager: logging.NewSlogManager()}

	var logWriter io.Writer
	if logFile != nil {
		logWriter = logFile
	}

	otelProvider, err := intOtel.New(config.GetOTelConfig(), logWriter)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OTel provider: %w", err)
	}
	a.otel = otelProvider

	gelfWriter, err := logging.NewGraylogWriter(config.GetGraylogConfig())
	if err != nil {
		return nil, err
	}

	opts := logging.Options{File: logWriter, Level: viper.GetString("logLevel")}
	if gelfWriter != nil {
		opts.Graylog = gelfWriter
		a.closers = append(a.closers, gelfWriter.Close)
	}
	opts.Provider = otelProvider.LoggerProvider()
	a.slogManager.Setup(opts)
	a.logger = a.slogManager.Logger()

	a.metrics, err = render.NewMetrics(otelProvider.Meter(ProgramName))
	if err != nil {
		return nil, err
	}

	if ic := config.GetInfluxConfig(); ic.Enabled {
		backupPath := filepath.Join(viper.GetString("logsDir"), "influx_backup.log.gz")
		a.influx = influx.NewManager(ic, logging.NewZerolog(logWriter, viper.GetString("logLevel")), backupPath)
		if err := a.influx.Connect(ctx); err != nil {
			a.logger.Warn("InfluxDB disabled", "error", err)
			a.influx = nil
		}
	}

	a.logger.Info("Starting up", "version", Version)
	return a, nil
}

func (a *app) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.influx != nil {
		if err := a.influx.Close(); err != nil {
			a.logger.Warn("Failed to close InfluxDB manager", "error", err)
		}
	}
	if err := a.slogManager.Flush(ctx); err != nil {
		a.logger.Warn("Failed to flush logs", "error", err)
	}
	if err := a.otel.Shutdown(ctx); err != nil {
		a.logger.Warn("Failed to shut down OTel provider", "error", err)
	}
	for _, c := range a.closers {
		_ = c()
	}
}

// render reads the sky map at path, builds the request and hands it to
// the configured storage backend.
func (a *app) render(ctx context.Context, path string) error {
	opts, err := renderOptions(config.GetPlotConfig())
	if err != nil {
		return err
	}

	sources, db, err := markerSources(config.GetMarkerConfig(), config.GetInjectionDBConfig())
	if err != nil {
		return err
	}
	defer database.Close(db)

	m, meta, err := mapio.ReadFile(path)
	if err != nil {
		if _, classified := skyerr.ClassOf(err); !classified {
			err = skyerr.Source("read sky map", err)
		}
		return err
	}
	a.logger.Debug("Read sky map", "path", path, "pixels", m.Len(), "ordering", m.Scheme.String())

	start := time.Now()
	req, err := render.NewPipeline(opts, sources, a.logger, a.metrics).Build(ctx, m, meta)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	storageCfg := config.GetStorageConfig()
	websocket.Version = Version
	backend, err := storage.NewBackend(storageCfg, a.logger)
	if err != nil {
		return skyerr.Config("create storage backend", err)
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("failed to initialize %s storage backend: %w", storageCfg.Type, err)
	}
	defer backend.Close()

	if err := backend.SaveRender(req); err != nil {
		return fmt.Errorf("failed to save render request: %w", err)
	}
	if exp, ok := backend.(storage.Exportable); ok {
		a.logger.Info("Render request exported", "path", exp.ExportedFilePath())
	} else {
		a.logger.Info("Render request saved", "storage", storageCfg.Type)
	}

	if a.influx != nil {
		if err := a.influx.WriteRender(ctx, req, elapsed); err != nil {
			a.logger.Warn("Failed to write render metrics", "error", err)
		}
	}
	return nil
}
