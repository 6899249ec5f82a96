// Package obslog initializes the process-wide zerolog logger used by
// cmd/oncotarget and every internal package that logs (grounded on
// intelligencedev-manifold's internal/observability/logging.go — the
// teacher itself logs with the stdlib log package, but structured
// logging is carried as part of the ambient stack regardless).
package obslog

import (
	"io"
	stdlog "log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger: level parsed from level
// (falling back to info on empty/unknown input), writing to logPath if
// set or stdout otherwise, and redirects the standard library logger so
// dependencies that still use log.Printf are captured too.
func Init(logPath string, level string) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var w io.Writer = os.Stdout
	if logPath != "" {
		if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			w = f
		} else {
			log.Error().Err(err).Str("path", logPath).Msg("failed to open log file, falling back to stdout")
		}
	}
	log.Logger = log.Output(w).With().Timestamp().Logger()

	lvl := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level))); err == nil {
		lvl = parsed
	}
	zerolog.SetGlobalLevel(lvl)

	stdlog.SetFlags(0)
	stdlog.SetOutput(log.Logger)
}

// Job returns a logger with a job_id field, for per-ingestion-job log
// lines emitted alongside progress.Bus events.
func Job(jobID string) zerolog.Logger {
	return log.With().Str("job_id", jobID).Logger()
}
