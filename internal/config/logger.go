package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// ParseLevel resolves a log level name. "warning" is accepted for "warn"
// and "none" for "off".
func ParseLevel(name string) (hclog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "warning":
		return hclog.Warn, nil
	case "none":
		return hclog.Off, nil
	}
	level := hclog.LevelFromString(name)
	if level == hclog.NoLevel {
		return hclog.NoLevel, fmt.Errorf("log.level: unknown level %q (valid levels: trace, debug, info, warn, error, off)", name)
	}
	return level, nil
}

// NewLogger builds the process logger. Output goes to w, or stderr when w
// is nil; stdout is reserved for protocol traffic.
func NewLogger(cfg LogConfig, w io.Writer) hclog.Logger {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		level = hclog.Info
	}
	if w == nil {
		w = os.Stderr
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "color-matcher",
		Output: w,
		Level:  level,
	})
}
