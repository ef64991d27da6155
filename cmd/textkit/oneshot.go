package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"textkit/internal/adapter/backend"
	"textkit/internal/adapter/clipboard"
	"textkit/internal/domain"
	"textkit/internal/infra/config"
	"textkit/internal/infra/logger"
	"textkit/internal/infra/tracer"
	"textkit/internal/usecase/tools"
)

// oneshotFlags holds the flags of the fix and translate commands.
type oneshotFlags struct {
	Config string
	Style  string
	Model  string
	To     string
	Copy   bool
	Text   string // "-" reads stdin, "" falls back to piped stdin or the clipboard
}

// parseOneshotFlags extracts --config, --style, --model, --to and --copy.
// Remaining arguments are joined into the text.
func parseOneshotFlags(args []string) (oneshotFlags, error) {
	var (
		f     oneshotFlags
		words []string
	)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, value, hasValue := strings.Cut(arg, "=")
		switch name {
		case "--config", "--style", "--model", "--to":
			if !hasValue {
				if i+1 >= len(args) {
					return f, fmt.Errorf("%w: %s needs a value", domain.ErrInvalidInput, name)
				}
				i++
				value = args[i]
			}
			switch name {
			case "--config":
				f.Config = value
			case "--style":
				f.Style = value
			case "--model":
				f.Model = value
			case "--to":
				f.To = value
			}
		case "--copy":
			f.Copy = true
		default:
			if strings.HasPrefix(arg, "--") {
				return f, fmt.Errorf("%w: unknown flag %s", domain.ErrInvalidInput, arg)
			}
			words = append(words, arg)
		}
	}
	f.Text = strings.Join(words, " ")
	if f.Config == "" {
		f.Config = configPath(nil)
	}
	return f, nil
}

// oneshotEnv is what a one-shot command needs once config is loaded.
type oneshotEnv struct {
	backend   domain.TextBackend
	catalog   domain.Catalog
	minLength int
	cleanup   func()
}

func newOneshotEnv(ctx context.Context, path string) (*oneshotEnv, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	log, logCloser, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	tracerShutdown, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		logCloser()
		return nil, fmt.Errorf("tracer: %w", err)
	}
	return &oneshotEnv{
		backend:   backend.New(cfg.Backend, log),
		catalog:   cfg.Catalog.Build(),
		minLength: cfg.Session.MinLength,
		cleanup: func() {
			_ = tracerShutdown(context.Background())
			_ = logCloser()
		},
	}, nil
}

func (e *oneshotEnv) checkText(text string) error {
	if len([]rune(strings.TrimSpace(text))) < e.minLength {
		return domain.ErrValidationSkip
	}
	return nil
}

func (e *oneshotEnv) model(name string) (string, error) {
	if name == "" {
		return e.catalog.DefaultModel(), nil
	}
	if !e.catalog.HasModel(name) {
		return "", fmt.Errorf("%w: unknown model %s (known: %s)", domain.ErrInvalidInput, name, strings.Join(e.catalog.Models(), ", "))
	}
	return name, nil
}

// runFix applies one style transformation and prints the result.
func runFix(ctx context.Context, args []string, stdin *os.File, stdout, stderr io.Writer) error {
	f, err := parseOneshotFlags(args)
	if err != nil {
		return err
	}
	style := domain.StyleFix
	if f.Style != "" {
		if style, err = domain.ParseStyle(f.Style); err != nil {
			return err
		}
	}
	env, err := newOneshotEnv(ctx, f.Config)
	if err != nil {
		return err
	}
	defer env.cleanup()

	model, err := env.model(f.Model)
	if err != nil {
		return err
	}
	text, err := clipboard.Input(f.Text, stdin)
	if err != nil {
		return err
	}
	if err := env.checkText(text); err != nil {
		return err
	}

	resp, err := env.backend.Modify(ctx, domain.ModifyRequest{Type: style, Text: text, Model: model})
	if err != nil {
		return err
	}
	return emit(stdout, stderr, resp.CorrectedText, f.Copy)
}

// runTranslate translates once and prints the result. The detected source
// language goes to stderr so stdout stays pipeable.
func runTranslate(ctx context.Context, args []string, stdin *os.File, stdout, stderr io.Writer) error {
	f, err := parseOneshotFlags(args)
	if err != nil {
		return err
	}
	env, err := newOneshotEnv(ctx, f.Config)
	if err != nil {
		return err
	}
	defer env.cleanup()

	model, err := env.model(f.Model)
	if err != nil {
		return err
	}
	lang := env.catalog.DefaultLanguage()
	if f.To != "" {
		if !env.catalog.HasLanguage(f.To) {
			return fmt.Errorf("%w: unknown language %s", domain.ErrInvalidInput, f.To)
		}
		lang = f.To
	}
	text, err := clipboard.Input(f.Text, stdin)
	if err != nil {
		return err
	}
	if err := env.checkText(text); err != nil {
		return err
	}

	resp, err := env.backend.Translate(ctx, domain.TranslateRequest{Text: text, Model: model, TargetLanguage: lang})
	if err != nil {
		return err
	}
	if label := tools.DetectedLabel(resp.DetectedLanguage); label != "" {
		fmt.Fprintln(stderr, label)
	}
	return emit(stdout, stderr, resp.TranslatedText, f.Copy)
}

func emit(stdout, stderr io.Writer, result string, copyResult bool) error {
	fmt.Fprintln(stdout, result)
	if !copyResult {
		return nil
	}
	if err := (clipboard.System{}).Copy(result); err != nil {
		return err
	}
	fmt.Fprintln(stderr, "Copied to clipboard.")
	return nil
}
