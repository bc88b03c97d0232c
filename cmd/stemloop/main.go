// Package main provides the stemloop CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.design/x/mainthread"

	"github.com/stemloop/stemloop/internal/app/engine"
	"github.com/stemloop/stemloop/internal/app/input"
	"github.com/stemloop/stemloop/internal/app/notify"
	"github.com/stemloop/stemloop/internal/app/playback"
	"github.com/stemloop/stemloop/internal/domain/set"
	"github.com/stemloop/stemloop/internal/infra/audio"
	"github.com/stemloop/stemloop/internal/infra/config"
	"github.com/stemloop/stemloop/internal/infra/logger"
)

var (
	app        = kingpin.New("stemloop", "stemloop ambient BGM engine")
	configPath = app.Flag("config", "Path to config file").Default("config/stemloop.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()
	setsPath   = app.Flag("sets", "Path to the sets directory (overrides config)").String()
	triggerKey = app.Flag("key", "Trigger key (overrides config)").String()

	// list-keys command
	listKeysCmd = app.Command("list-keys", "List recognized trigger keys and exit")
)

func init() {
	// start command (default) - no need to store the command
	app.Command("start", "Start the engine (default)").Default()
}

func main() {
	// The hotkey subscription requires the main OS thread on macOS, so the
	// whole program runs under the mainthread scheduler
	mainthread.Init(realMain)
}

func realMain() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if command == listKeysCmd.FullCommand() {
		printKeys()
		return
	}

	// Bootstrap logging from flags alone so config loading itself is
	// logged; re-initialized below once the log section is known
	if err := logger.Init(logConfig(config.LogConfig{Output: "stdout", Level: "info"}, *verbose, *logfile)); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	// Load config; fall back to defaults when no file is present so the
	// engine can run standalone with flags only
	var (
		cfg *config.Config
		err error
	)
	if _, statErr := os.Stat(*configPath); statErr == nil {
		zlog.Info().Msgf("Loading config from %s", *configPath)
		cfg, err = config.Load(*configPath)
	} else {
		cfg, err = config.Default()
	}
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	// Command-line overrides
	if *setsPath != "" {
		cfg.Engine.SetsPath = *setsPath
	}
	if *triggerKey != "" {
		cfg.Engine.TriggerKey = *triggerKey
	}
	if err := cfg.Validate(); err != nil {
		zlog.Fatal().Msgf("Invalid configuration: %v", err)
	}

	// Apply the log section from file/env; flags still win
	if err := logger.Init(logConfig(cfg.Log, *verbose, *logfile)); err != nil {
		zlog.Fatal().Msgf("Failed to initialize logger: %v", err)
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Engine error: %v", err)
		os.Exit(1)
	}
}

// run executes the engine. Using a separate function ensures defer
// statements fire even when returning with an error.
func run(cfg *config.Config) error {
	// The output device is the one exclusive playback resource; failing to
	// open it is fatal to startup
	device, err := audio.NewDevice(audio.Config{
		SampleRate: cfg.Audio.SampleRate,
		Channels:   cfg.Audio.Channels,
	})
	if err != nil {
		return fmt.Errorf("failed to open audio output: %w", err)
	}
	defer device.Close()

	controller := playback.NewController(device, playback.Config{
		Crossfade:    cfg.Crossfade(),
		ShutdownFade: cfg.ShutdownFade(),
	})

	probe, err := input.NewProbeFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to create key probe: %w", err)
	}
	defer probe.Close()

	loader := func(path string) (*set.Track, error) {
		return audio.Decode(path, cfg.Audio.SampleRate, cfg.Audio.Channels)
	}

	eng := engine.New(cfg, controller, input.NewSampler(probe), notify.NewHub(), loader)

	// Ctrl+C and SIGTERM take the cooperative Stopping path
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return eng.Run(ctx)
}

// logConfig merges the configured log section with the command-line
// flags. Flags take precedence over both the file and the environment.
func logConfig(lc config.LogConfig, verbose bool, logfile string) logger.Config {
	out := logger.Config{
		Output: lc.Output,
		Level:  lc.Level,
	}
	if verbose {
		out.Level = "debug"
	}
	if logfile != "" {
		out.Output = logfile
	}
	return out
}

// printKeys prints the recognized trigger keys.
func printKeys() {
	fmt.Println("Recognized trigger keys:")
	for _, name := range input.KeyNames() {
		fmt.Printf("  %s\n", name)
	}
}
