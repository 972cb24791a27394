// Package logging builds the go-kit logger shared by every command.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Options selects the output encoding and minimum level.
type Options struct {
	Format string // "logfmt" (default) or "json"
	Level  string // "debug", "info" (default), "warn", "error"
}

// New returns a leveled logger writing to w with a UTC timestamp.
func New(w io.Writer, opt Options) (log.Logger, error) {
	var logger log.Logger
	sw := log.NewSyncWriter(w)
	switch strings.ToLower(strings.TrimSpace(opt.Format)) {
	case "", "logfmt":
		logger = log.NewLogfmtLogger(sw)
	case "json":
		logger = log.NewJSONLogger(sw)
	default:
		return nil, fmt.Errorf("unknown log format %q (want logfmt or json)", opt.Format)
	}
	lvl, err := levelOption(opt.Level)
	if err != nil {
		return nil, err
	}
	logger = level.NewFilter(logger, lvl)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	return logger, nil
}

func levelOption(s string) (level.Option, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return level.AllowDebug(), nil
	case "", "info":
		return level.AllowInfo(), nil
	case "warn", "warning":
		return level.AllowWarn(), nil
	case "error":
		return level.AllowError(), nil
	default:
		return nil, fmt.Errorf("unknown log level %q", s)
	}
}

// Nop returns a logger that discards everything.
func Nop() log.Logger { return log.NewNopLogger() }
