// Package logger builds the zerolog logger shared by the server components
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Level represents the logging level
type Level string

// Available log levels
const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format represents the logging format
type Format string

// Available log formats
const (
	FormatJSON   Format = "json"
	FormatPretty Format = "pretty"
)

// Config holds logger configuration
type Config struct {
	// Level sets the minimum log level to output
	Level Level `yaml:"level"`
	// Format defines the output format (json, pretty)
	Format Format `yaml:"format"`
	// Output defines where logs are written (stdout, stderr, file)
	Output string `yaml:"output"`
	// File is the file path when Output is set to "file"
	File string `yaml:"file,omitempty"`
	// IncludeCaller adds caller information to log entries
	IncludeCaller bool `yaml:"includeCaller"`
	// TimeFormat specifies the time format for logs
	TimeFormat string `yaml:"timeFormat,omitempty"`
	// DisableTimestamp disables adding timestamp to logs
	DisableTimestamp bool `yaml:"disableTimestamp,omitempty"`
	// NoColor disables ANSI colors in the pretty format
	NoColor bool `yaml:"noColor,omitempty"`
}

// Fields carried by request records that the pretty format leaves out,
// since the record message already renders them.
var prettyExcluded = []string{"headers", "body"}

// DefaultConfig returns the logger configuration used when nothing is set
func DefaultConfig() Config {
	return Config{
		Level:      LevelInfo,
		Format:     FormatPretty,
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// ParseLevel maps a configured level onto zerolog, defaulting to info
func ParseLevel(l Level) zerolog.Level {
	switch strings.ToLower(string(l)) {
	case string(LevelDebug):
		return zerolog.DebugLevel
	case string(LevelWarn):
		return zerolog.WarnLevel
	case string(LevelError):
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New creates a logger from cfg, using stdout and stderr for the matching
// outputs. The returned closer releases the log file when Output is "file"
// and is a no-op otherwise.
func New(cfg Config, stdout, stderr io.Writer) (zerolog.Logger, io.Closer, error) {
	cfg = withDefaults(cfg)

	var (
		output io.Writer
		closer io.Closer = nopCloser{}
	)
	switch strings.ToLower(cfg.Output) {
	case "stderr":
		output = stderr
	case "file":
		if cfg.File == "" {
			return zerolog.Nop(), closer, fmt.Errorf("logging output is file but no file path is set")
		}
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("error opening log file: %w", err)
		}
		output = file
		closer = file
	default:
		output = stdout
	}

	return NewWithWriter(cfg, output), closer, nil
}

// NewWithWriter creates a logger writing to w. Writes are serialized so
// that records from concurrent requests never interleave.
func NewWithWriter(cfg Config, w io.Writer) zerolog.Logger {
	cfg = withDefaults(cfg)

	output := zerolog.SyncWriter(w)
	if strings.EqualFold(string(cfg.Format), string(FormatPretty)) {
		output = zerolog.ConsoleWriter{
			Out:           output,
			TimeFormat:    cfg.TimeFormat,
			NoColor:       cfg.NoColor || !isTerminal(w),
			FieldsExclude: prettyExcluded,
		}
	}

	ctx := zerolog.New(output).Level(ParseLevel(cfg.Level)).With()
	if !cfg.DisableTimestamp {
		ctx = ctx.Timestamp()
	}
	if cfg.IncludeCaller {
		ctx = ctx.Caller()
	}
	log := ctx.Logger()

	log.Debug().Str("level", string(cfg.Level)).Str("format", string(cfg.Format)).Msg("Logger initialized")
	return log
}

// isTerminal reports whether w is a terminal; colors are only written there
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func withDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.Level == "" {
		cfg.Level = def.Level
	}
	if cfg.Format == "" {
		cfg.Format = def.Format
	}
	if cfg.Output == "" {
		cfg.Output = def.Output
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = def.TimeFormat
	}
	return cfg
}
