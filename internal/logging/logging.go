// Package logging builds the zap logger used across goapgit and masks
// credentials before they can reach a log line. Git remotes and command
// output routinely contain embedded tokens, so every command-related
// field goes through Sanitize.
package logging

import (
	"io"
	"os"
	"regexp"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var redactPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)https://[^:/\s]+:[^@\s]+@`),
	regexp.MustCompile(`(?i)token[=:]\s*\S+`),
}

var redactReplacements = []string{
	"https://***:***@",
	"token=***",
}

// Options control how the logger is built.
type Options struct {
	JSON    bool      // JSON lines instead of console encoding
	Verbose bool      // enable debug level
	Output  io.Writer // defaults to stderr
}

// New builds a zap logger for the CLI. Logs go to stderr by default so
// command output on stdout stays machine-readable.
func New(opts Options) *zap.Logger {
	w := opts.Output
	if w == nil {
		w = os.Stderr
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if opts.JSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	level := zapcore.InfoLevel
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), level)
	return zap.New(core)
}

// Nop returns a logger that discards everything. Useful for tests and
// for commands whose output must stay quiet.
func Nop() *zap.Logger {
	return zap.NewNop()
}

// Sanitize masks credential-bearing fragments (userinfo in remote URLs,
// token assignments) in s.
func Sanitize(s string) string {
	for i, re := range redactPatterns {
		s = re.ReplaceAllString(s, redactReplacements[i])
	}
	return s
}

// String returns a zap field whose value has been sanitized.
func String(key, val string) zap.Field {
	return zap.String(key, Sanitize(val))
}

// Strings returns a zap field for a sanitized string slice.
func Strings(key string, vals []string) zap.Field {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = Sanitize(v)
	}
	return zap.Strings(key, out)
}
