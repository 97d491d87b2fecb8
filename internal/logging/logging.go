// Package logging builds a go-pkgz/lgr logger from a YAML-loaded
// Config, the same responsibility nazandr-cp-epoch-server's
// internal/infra/logging carries, rebuilt around an option-builder
// instead of one long straight-line option slice so level, format, and
// caller settings can each be reasoned about in isolation.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-pkgz/lgr"
)

type Level string

const (
	LevelTrace Level = "trace"
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Config is the logging section of the service's YAML configuration.
type Config struct {
	Level  Level  `yaml:"level" json:"level"`
	Format Format `yaml:"format" json:"format"`
	Output string `yaml:"output" json:"output"` // "stdout", "stderr", or a file path

	Caller        CallerConfig `yaml:"caller" json:"caller"`
	SecretMask    []string     `yaml:"secrets" json:"secrets"`
	StackOnError  bool         `yaml:"stack_trace_error" json:"stack_trace_error"`
}

// CallerConfig controls source-location annotations on text-format lines.
type CallerConfig struct {
	Enabled  bool `yaml:"enabled" json:"enabled"`
	File     bool `yaml:"file" json:"file"`
	Function bool `yaml:"function" json:"function"`
	Package  bool `yaml:"package" json:"package"`
}

// Default returns a reasonable Config for a service that hasn't
// supplied a logging section at all.
func Default() Config {
	return Config{Level: LevelInfo, Format: FormatText, Output: "stdout"}
}

// New builds an lgr.L from cfg, falling back to a safe debug logger if
// cfg fails validation rather than refusing to start the process.
func New(cfg Config) lgr.L {
	logger, err := build(cfg)
	if err != nil {
		fallback := lgr.New(lgr.Debug, lgr.Msec, lgr.LevelBraces)
		fallback.Logf("WARN invalid logging config (%v), falling back to debug/text", err)
		return fallback
	}
	return logger
}

func build(cfg Config) (lgr.L, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}

	out, err := outputWriter(cfg.Output)
	if err != nil {
		return nil, err
	}

	opts := []lgr.Option{lgr.Msec}
	opts = append(opts, levelOptions(cfg.Level)...)

	if cfg.Format == FormatJSON {
		opts = append(opts, lgr.SlogHandler(jsonHandler(cfg, out)))
	} else {
		opts = append(opts, lgr.LevelBraces, lgr.Out(out))
		opts = append(opts, callerOptions(cfg)...)
		if len(cfg.SecretMask) > 0 {
			opts = append(opts, lgr.Secret(cfg.SecretMask...))
		}
		if cfg.StackOnError {
			opts = append(opts, lgr.StackTraceOnError)
		}
		if cfg.Output != "stderr" {
			opts = append(opts, lgr.Err(os.Stderr))
		}
	}

	return lgr.New(opts...), nil
}

func levelOptions(l Level) []lgr.Option {
	switch l {
	case LevelTrace:
		return []lgr.Option{lgr.Trace}
	case LevelDebug:
		return []lgr.Option{lgr.Debug}
	default:
		return nil
	}
}

func callerOptions(cfg Config) []lgr.Option {
	var opts []lgr.Option
	if cfg.Caller.Enabled {
		if cfg.Caller.File {
			opts = append(opts, lgr.CallerFile)
		}
		if cfg.Caller.Function {
			opts = append(opts, lgr.CallerFunc)
		}
		if cfg.Caller.Package {
			opts = append(opts, lgr.CallerPkg)
		}
		return opts
	}
	if cfg.Level == LevelTrace || cfg.Level == LevelDebug {
		opts = append(opts, lgr.CallerFile, lgr.CallerFunc)
	}
	return opts
}

func jsonHandler(cfg Config, out io.Writer) *slog.JSONHandler {
	return slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:       slogLevel(cfg.Level),
		ReplaceAttr: maskSecretsAttr(cfg.SecretMask),
	})
}

func slogLevel(l Level) slog.Level {
	switch l {
	case LevelTrace, LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func maskSecretsAttr(secrets []string) func([]string, slog.Attr) slog.Attr {
	if len(secrets) == 0 {
		return nil
	}
	return func(groups []string, a slog.Attr) slog.Attr {
		if a.Key != slog.MessageKey {
			return a
		}
		msg := a.Value.String()
		for _, s := range secrets {
			msg = strings.ReplaceAll(msg, s, "[REDACTED]")
		}
		return slog.Attr{Key: a.Key, Value: slog.StringValue(msg)}
	}
}

func validate(cfg Config) error {
	switch cfg.Level {
	case "", LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError:
	default:
		return fmt.Errorf("logging: invalid level %q", cfg.Level)
	}
	switch cfg.Format {
	case "", FormatText, FormatJSON:
	default:
		return fmt.Errorf("logging: invalid format %q", cfg.Format)
	}
	return nil
}

func outputWriter(output string) (io.Writer, error) {
	switch output {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("logging: open %s: %w", output, err)
		}
		return f, nil
	}
}
