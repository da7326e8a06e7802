package app

import (
	"log/slog"

	"github.com/Trangar/zettelkasten/internal/logging"
)

// appLog is the package-level structured logger for the app package.
//
// It is tagged with component "app". Errors surfaced to the user through an
// alert or a status line are logged here with their full context, since the
// alert only shows the message text.
var appLog = logging.New("app")

// logError records an error that is also shown to the user. The error itself
// is always logged under the "error" key.
func logError(msg string, err error, attrs ...any) {
	fields := make([]any, 0, len(attrs)+1)
	fields = append(fields, slog.Any("error", err))
	fields = append(fields, attrs...)
	appLog.Error(msg, fields...)
}
