// Package main is the entry point for the DeskAI assistant.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"deskai/internal/assistant"
	"deskai/internal/config"
	"deskai/internal/dispatch"
	"deskai/internal/loader"
	"deskai/internal/session"
	"deskai/internal/skill"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, err := parseOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger, closeLog, err := newLogger(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open log: %v\n", err)
		return 1
	}
	defer closeLog()

	configDir := opts.ResolveConfigDir()
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create config dir: %v\n", err)
		return 1
	}

	store, err := config.Open(opts.SettingsPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open settings: %v\n", err)
		return 1
	}

	sess := session.New(
		session.WithConfigDir(configDir),
		session.WithSettings(store),
		session.WithUserName(store.String("user_name", "User")),
		session.WithVoice(opts.VoiceEnabled, int(store.Int("voice_rate", 175))),
	)

	registry := dispatch.NewRegistry()
	dispatcher := dispatch.New(registry,
		dispatch.WithLogger(logger),
		dispatch.WithMetrics(),
	)

	disabled := store.Strings("disabled_skills")
	disabled = append(disabled, opts.DisabledSkills...)

	skills := loader.New(registry,
		loader.WithModules(skill.Builtins()...),
		loader.WithScriptsDir(opts.ResolveSkillsDir()),
		loader.WithDisabled(disabled...),
		loader.WithLogger(logger),
	)
	summary := skills.LoadAll()
	if summary.Loaded == 0 {
		fmt.Fprintln(os.Stderr, "Error: no skills loaded")
		return 1
	}

	input, err := newReadlineSource(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize input: %v\n", err)
		return 1
	}
	defer input.Close()

	out := newPrinter(os.Stdout)
	out.banner(summary)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loop := assistant.New(dispatcher, sess, input,
		assistant.WithLogger(logger),
		assistant.OnResponse(out.response),
	)

	if err := loop.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// parseOptions merges environment options with command-line flags;
// flags win.
func parseOptions() (config.Options, error) {
	opts, err := config.OptionsFromEnv()
	if err != nil {
		return config.Options{}, err
	}

	var showVersion bool
	flag.StringVar(&opts.ConfigDir, "config", opts.ConfigDir, "Configuration directory (default ~/.deskai)")
	flag.StringVar(&opts.SkillsDir, "skills", opts.SkillsDir, "Lua skill scripts directory")
	flag.StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.VoiceEnabled, "voice", opts.VoiceEnabled, "Enable spoken responses")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "DeskAI - voice-driven desktop assistant\n\n")
		fmt.Fprintf(os.Stderr, "Usage: deskai [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("DeskAI %s (%s)\n", version, commit)
		os.Exit(0)
	}

	switch opts.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return config.Options{}, fmt.Errorf("invalid log level %q", opts.LogLevel)
	}
	return opts, nil
}

// newLogger builds the process logger writing to deskai.log in the
// config dir. Logs stay off the terminal; it belongs to the
// conversation.
func newLogger(opts config.Options) (*slog.Logger, func(), error) {
	var level slog.Level
	switch opts.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	dir := opts.ResolveConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(dir+"/deskai.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	return logger, func() { f.Close() }, nil
}
