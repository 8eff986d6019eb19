// Daybreak serves a personalized daily status message.
//
// It gathers context from a handful of unreliable sources (indoor
// climate via Home Assistant, an outdoor weather forecast, today's
// calendar events and holidays, a curated news headline), folds whatever
// was available into a prompt, and asks a completion service to write
// the message in a configured persona. Configuration comes from the
// environment, optionally seeded from a .env file.
//
// Usage:
//
//	daybreak serve       Start the HTTP server (and, in cached mode, the daily scheduler)
//	daybreak generate    Run the pipeline once, persist the result, print it
//	daybreak version     Print version and build information
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/daybreak-home/daybreak/internal/briefing"
	"github.com/daybreak-home/daybreak/internal/buildinfo"
	"github.com/daybreak-home/daybreak/internal/calendar"
	"github.com/daybreak-home/daybreak/internal/config"
	"github.com/daybreak-home/daybreak/internal/homeassistant"
	"github.com/daybreak-home/daybreak/internal/llm"
	"github.com/daybreak-home/daybreak/internal/news"
	"github.com/daybreak-home/daybreak/internal/scheduler"
	"github.com/daybreak-home/daybreak/internal/store"
	"github.com/daybreak-home/daybreak/internal/weather"
	"github.com/daybreak-home/daybreak/internal/web"
)

// shutdownGrace bounds how long we wait for in-flight requests on exit.
const shutdownGrace = 10 * time.Second

// main is intentionally minimal. It constructs the OS-level environment
// (context, stdio, argv) and delegates immediately to [run], keeping
// os.Exit and os.Args out of the application logic so the full lifecycle
// can be driven from tests.
func main() {
	ctx := context.Background()

	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

// run is the real entry point for the daybreak command. Arguments are
// parsed by hand; the surface is too small to justify a CLI framework,
// and the flag package's global state interferes with parallel tests.
func run(ctx context.Context, stdout io.Writer, stderr io.Writer, args []string) error {
	var command string

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "-h" || args[i] == "-help" || args[i] == "--help":
			return printUsage(stdout)
		case !strings.HasPrefix(args[i], "-") && command == "":
			command = args[i]
		default:
			return fmt.Errorf("unexpected argument %q (try -h)", args[i])
		}
	}

	switch command {
	case "serve", "":
		return runServe(ctx, stdout)
	case "generate":
		return runGenerate(ctx, stdout)
	case "version":
		fmt.Fprintln(stdout, buildinfo.String())
		return nil
	default:
		return fmt.Errorf("unknown command %q (try -h)", command)
	}
}

func printUsage(w io.Writer) error {
	fmt.Fprintln(w, `Usage: daybreak [command]

Commands:
  serve       Start the HTTP server (default)
  generate    Run the pipeline once, persist the result, print it
  version     Print version and build information

Configuration is read from the environment; a .env file in the working
directory is merged in when present.`)
	return nil
}

// newLogger builds the process logger from the configured level.
func newLogger(w io.Writer, cfg *config.Config) (*slog.Logger, error) {
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// buildPipeline wires the context sources, completion client, and store
// from configuration. The returned cleanup closes anything that holds a
// resource (currently only the SQLite store).
func buildPipeline(cfg *config.Config, logger *slog.Logger) (*briefing.Generator, store.Store, func(), error) {
	ha := homeassistant.NewClient(cfg.HAURL, cfg.HAToken, logger)
	loc := cfg.Location()

	var sources []briefing.Source

	sources = append(sources, briefing.NewSource("indoor", func(ctx context.Context) (string, error) {
		temp, err := ha.IndoorTemperature(ctx, cfg.ClimateEntity)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Temperature inside the house: %d°F", int(math.Round(temp))), nil
	}))

	var provider weather.Provider
	switch {
	case cfg.OpenWeatherKey != "":
		provider = weather.NewOpenWeather(cfg.OpenWeatherKey)
	case cfg.PirateWeatherKey != "":
		provider = weather.NewPirateWeather(cfg.PirateWeatherKey)
	}
	if provider != nil {
		svc := weather.NewService(ha, cfg.ZoneEntity, provider)
		sources = append(sources, briefing.NewSource("weather", svc.Fragment))
	} else {
		logger.Warn("no weather API key configured, outdoor forecast disabled")
	}

	if cfg.ICalURL != "" {
		feed := calendar.NewFeed(cfg.ICalURL, loc, logger)
		sources = append(sources, briefing.NewSource("calendar", feed.Fragment))
	} else {
		logger.Warn("no calendar URL configured, calendar and holidays disabled")
	}

	picker := news.NewPicker(cfg.NewsFeedURL, logger)
	sources = append(sources, briefing.NewSource("news", picker.Fragment))

	aggregator := briefing.NewAggregator(logger, cfg.SourceTimeout, sources...)
	aggregator.SetLocation(loc)

	client := llm.NewOpenAI(cfg.LLMBaseURL, cfg.GitHubToken, cfg.ModelName, cfg.Temperature)
	generator := briefing.NewGenerator(aggregator, client, cfg.SystemInstruction, logger)

	if cfg.MessageDB != "" {
		st, err := store.NewSQLiteStore(cfg.MessageDB)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open message database: %w", err)
		}
		return generator, st, func() { _ = st.Close() }, nil
	}
	return generator, store.NewFileStore(cfg.MessagePath), func() {}, nil
}

// runServe starts the HTTP server and, in cached mode, the daily
// scheduler. It blocks until the context is cancelled or a termination
// signal arrives, then shuts down gracefully.
func runServe(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := newLogger(stdout, cfg)
	if err != nil {
		return err
	}
	logger.Info("starting", "build", buildinfo.String(), "mode", cfg.Mode)

	generator, st, cleanup, err := buildPipeline(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := pingHomeAssistant(ctx, cfg, logger); err != nil {
		logger.Warn("home assistant unreachable at startup", "error", err)
	}

	var sched *scheduler.Scheduler
	if cfg.Mode == config.ModeCached {
		sched = scheduler.New(logger, cfg.Hour, cfg.Minute, cfg.Location(), func(ctx context.Context) error {
			msg, err := generator.Generate(ctx)
			if err != nil {
				return err
			}
			return st.Write(msg)
		})
		sched.Start()
		defer sched.Stop()
	}

	server := web.NewServer(cfg.ListenAddr, cfg.Mode, generator, st, logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// runGenerate runs the pipeline once: collect, generate, persist, print.
// This is the scheduled-job entry point for running under cron instead
// of the built-in scheduler.
func runGenerate(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Logs go to stderr so stdout carries only the message text.
	logger, err := newLogger(os.Stderr, cfg)
	if err != nil {
		return err
	}

	generator, st, cleanup, err := buildPipeline(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	msg, err := generator.Generate(ctx)
	if err != nil {
		return err
	}
	if err := st.Write(msg); err != nil {
		return fmt.Errorf("persist message: %w", err)
	}

	fmt.Fprintln(stdout, msg.Text)
	return nil
}

// pingHomeAssistant verifies connectivity once at startup. Failure is
// reported but not fatal; the indoor source degrades per request.
func pingHomeAssistant(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	ha := homeassistant.NewClient(cfg.HAURL, cfg.HAToken, logger)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := ha.Ping(pingCtx); err != nil {
		return err
	}
	logger.Info("home assistant reachable", "url", cfg.HAURL)
	return nil
}
