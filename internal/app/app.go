package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zeek-r/go-reqlogger/internal/config"
	"github.com/zeek-r/go-reqlogger/internal/inspector"
	"github.com/zeek-r/go-reqlogger/internal/logger"
	"github.com/zeek-r/go-reqlogger/internal/metrics"
	"github.com/zeek-r/go-reqlogger/internal/server"
)

// Exit codes returned by Run
const (
	ExitOK     = 0
	ExitServer = 1
	ExitUsage  = 2
)

// Run starts the request logger with the given command line arguments and
// blocks until SIGINT or SIGTERM. It returns the process exit code.
func Run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, args, os.Stdout, os.Stderr, nil)
}

// parseArgs reads [-config file] [-verbose] [port]. Positional arguments
// other than a single port are returned as ignored and the configured port
// is kept.
func parseArgs(args []string, stderr io.Writer) (*config.Config, []string, error) {
	fs := flag.NewFlagSet("reqlogger", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: reqlogger [-config file.yaml] [-verbose] [port]")
		fmt.Fprintln(fs.Output(), "Flags must come before the port argument.")
		fs.PrintDefaults()
	}
	configFile := fs.String("config", "", "Path to an optional YAML configuration file")
	verboseFlag := fs.Bool("verbose", false, "Enable verbose logging (overrides config file setting)")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	cfg := config.Default()
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			return nil, nil, err
		}
	}

	if *verboseFlag {
		cfg.Logging.Level = logger.LevelDebug
	}

	var ignored []string
	switch rest := fs.Args(); len(rest) {
	case 0:
	case 1:
		port, err := config.ParsePort(rest[0])
		if err != nil {
			return nil, nil, err
		}
		cfg.Port = port
	default:
		ignored = rest
	}

	return cfg, ignored, cfg.Validate()
}

// run is Run with the signal context, the process streams and a ready hook,
// which receives the base URL once the listener is bound
func run(ctx context.Context, args []string, stdout, stderr io.Writer, ready chan<- string) int {
	cfg, ignored, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return ExitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return ExitUsage
	}

	log, closer, err := logger.New(cfg.Logging, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logging: %v\n", err)
		return ExitUsage
	}
	defer closer.Close()

	if len(ignored) > 0 {
		log.Warn().Strs("args", ignored).Int("port", cfg.Port).Msg("Expected a single port argument (flags go before it), using the configured port")
	}

	opts := inspector.Options{Concurrent: cfg.Concurrent}
	var metricsServer *server.Server
	if cfg.Metrics.Enabled {
		collector := metrics.NewCollector(metrics.NewRegistry())
		opts.Observer = collector

		metricsServer = server.New("metrics", metrics.NewMux(cfg.Metrics, collector), log)
		if err := metricsServer.Start(cfg.Metrics.Address); err != nil {
			log.Error().Err(err).Msg("Failed to start metrics listener")
			return ExitServer
		}
		log.Info().
			Str("address", metricsServer.Addr().String()).
			Str("endpoint", cfg.Metrics.Endpoint).
			Str("stats", cfg.Metrics.Stats).
			Msg("Metrics collection enabled")
	}

	httpd := server.New("httpd", inspector.New(log, opts), log)
	if err := httpd.Start(cfg.ListenAddress()); err != nil {
		log.Error().Err(err).Msg("Failed to start httpd")
		if metricsServer != nil {
			metricsServer.Shutdown(time.Second)
		}
		return ExitServer
	}

	log.Info().
		Str("address", httpd.Addr().String()).
		Bool("concurrent", cfg.Concurrent).
		Msg("Starting httpd...")
	if ready != nil {
		ready <- httpd.URL()
	}

	errs := make(chan error, 2)
	go func() { errs <- httpd.Serve() }()
	if metricsServer != nil {
		go func() { errs <- metricsServer.Serve() }()
	}

	code := ExitOK
	select {
	case <-ctx.Done():
	case err := <-errs:
		if err != nil {
			log.Error().Err(err).Msg("Server error")
			code = ExitServer
		}
	}

	timeout := time.Duration(cfg.ShutdownTimeout) * time.Second
	httpd.Shutdown(timeout)
	if metricsServer != nil {
		metricsServer.Shutdown(timeout)
	}

	log.Info().Msg("Stopping httpd...")
	return code
}
