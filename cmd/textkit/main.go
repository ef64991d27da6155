package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"textkit/internal/adapter/backend"
	"textkit/internal/adapter/clipboard"
	"textkit/internal/adapter/tui/app"
	"textkit/internal/adapter/tui/uxerror"
	"textkit/internal/domain"
	"textkit/internal/infra/config"
	"textkit/internal/infra/logger"
	"textkit/internal/infra/tracer"
	"textkit/internal/usecase/eventbus"
	"textkit/internal/usecase/tools"
)

func main() {
	args := os.Args[1:]

	// Handle help flag first
	if len(args) >= 1 {
		switch args[0] {
		case "--help", "-h", "help":
			showUsage()
			return
		}
	}

	if len(args) < 1 || strings.HasPrefix(args[0], "-") {
		if err := run(args); err != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch args[0] {
	case "run":
		err = run(args[1:])
	case "fix":
		err = runFix(ctx, args[1:], os.Stdin, os.Stdout, os.Stderr)
	case "translate":
		err = runTranslate(ctx, args[1:], os.Stdin, os.Stdout, os.Stderr)
	case "doctor":
		err = runDoctor(args[1:], os.Stdout)
	case "encrypt":
		err = runEncrypt(args[1:], os.Stdin, os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\nRun 'textkit --help' for usage information.\n", args[0])
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", args[0], uxerror.Humanize(err).Render())
		cancel()
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`textkit - grammar, style and translation in the terminal

USAGE:
    textkit [COMMAND] [FLAGS]

COMMANDS:
    run         Launch the interactive editor (default)
    fix         Fix or restyle text once and print the result
                Flags: --style NAME, --model NAME, --copy
    translate   Translate text once and print the result
                Flags: --to LANGUAGE, --model NAME, --copy
    doctor      Run health checks on your setup
    encrypt     Encrypt a secret for textkit.yaml using TEXTKIT_CONFIG_KEY

    fix and translate read TEXT from the argument, from stdin when it is
    "-" or piped, and from the clipboard otherwise.

FLAGS:
    -h, --help         Show this help message
    --config PATH      Specify config file path (default: ./textkit.yaml)

KEYS (run):
    Tab                Switch between Grammar and Translate
    Ctrl+F             Toggle autofix (Grammar)
    Alt+1..6           Fix, Shorten, Enhance, Formal, Casual, Rephrase (Grammar)
    Alt+Left/Right     Step through history (Grammar)
    Ctrl+T / Ctrl+G    Translate now / next language (Translate)
    Ctrl+O             Next model
    Ctrl+Y             Copy result
    Ctrl+L             Clear
    Ctrl+C             Quit

CONFIGURATION:
    Config file: ./textkit.yaml
    Environment: TEXTKIT_* variables override config

EXAMPLES:
    textkit                                  # Interactive editor
    textkit fix --style formal "hey, whats up"
    pbpaste | textkit translate --to German -
    textkit doctor                           # Check system health`)
}

func run(args []string) error {
	// 1. Config
	cfg, err := config.Load(configPath(args))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// 2. Logger & Tracer (the TUI owns the terminal)
	log, logCloser, err := logger.New(logger.ForTUI(cfg.Logger))
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logCloser()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tracerShutdown, err := tracer.Setup(ctx, tracer.ForTUI(cfg.Tracer))
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	defer tracerShutdown(context.Background())

	// 3. Event bus
	bus := eventbus.New(log, eventbus.WithSyncDispatch())
	defer bus.Close()

	// 4. Tools
	deps := toolDeps(cfg, bus, log)
	grammar := tools.NewGrammar(deps, grammarConfig(cfg.Session))
	translation := tools.NewTranslation(deps, sessionConfig(cfg.Session))

	log.Info("textkit starting",
		"backend", cfg.Backend.BaseURL,
		"model", deps.Catalog.DefaultModel(),
		"language", deps.Catalog.DefaultLanguage(),
		"circuit_breaker", cfg.Backend.CircuitBreaker.Enabled,
	)

	// 5. Start (blocks until the user quits)
	return app.Run(ctx, app.Deps{
		Grammar:     grammar,
		Translation: translation,
		Catalog:     deps.Catalog,
		Bus:         bus,
		Clipboard:   clipboard.System{},
		Logger:      log,
	})
}

func toolDeps(cfg *config.Config, bus domain.EventBus, log *slog.Logger) tools.Deps {
	return tools.Deps{
		Backend: backend.New(cfg.Backend, log),
		Catalog: cfg.Catalog.Build(),
		Bus:     bus,
		Logger:  log,
	}
}

func sessionConfig(s config.SessionConfig) tools.Config {
	return tools.Config{
		MinLength:       s.MinLength,
		DebounceDelay:   s.DebounceDelay,
		PasteSettle:     s.PasteSettle,
		HistoryCapacity: s.HistoryCapacity,
	}
}

func grammarConfig(s config.SessionConfig) tools.Config {
	c := sessionConfig(s)
	c.DebounceDelay = s.GrammarDebounceDelay
	return c
}

// configPath returns the --config flag value, TEXTKIT_CONFIG, or the default.
func configPath(args []string) string {
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	if p := os.Getenv(config.EnvConfigPath); p != "" {
		return p
	}
	return config.DefaultPath
}
