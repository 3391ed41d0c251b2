package parser

import "log/slog"

// Reporter receives user-facing validation messages. It is fire-and-forget
// and may be called from several goroutines during an asynchronous parse.
type Reporter interface {
	ReportTimezoneError(msg string)
}

// ReporterFunc adapts a function to Reporter
type ReporterFunc func(msg string)

func (f ReporterFunc) ReportTimezoneError(msg string) { f(msg) }

// logReporter is used when no Reporter is configured
type logReporter struct {
	logger *slog.Logger
}

func (r logReporter) ReportTimezoneError(msg string) {
	r.logger.Warn(msg)
}
