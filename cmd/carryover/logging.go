package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	envLogLevel  = "CARRYOVER_LOG_LEVEL"
	envLogFormat = "CARRYOVER_LOG_FORMAT"

	formatConsole = "console"
	formatJSON    = "json"
)

// newLogger builds the run logger writing to w. An empty format picks console
// output when w is a terminal and JSON otherwise. Every entry carries the run id.
func newLogger(level, format string, w io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}

	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = formatJSON
		if isTerminal(w) {
			format = formatConsole
		}
	}

	var enc zapcore.Encoder
	switch format {
	case formatJSON:
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	case formatConsole:
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if !isTerminal(w) {
			cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		}
		enc = zapcore.NewConsoleEncoder(cfg)
	default:
		return nil, fmt.Errorf("log format %q: want %s or %s", format, formatConsole, formatJSON)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), zap.NewAtomicLevelAt(lvl))
	return zap.New(core).With(zap.String("run_id", uuid.NewString())), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
