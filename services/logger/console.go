package logsvc

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/labstack/gommon/log"

	"github.com/trezcool/masomo-forms/core"
)

// ConsoleLogger writes leveled lines to an io.Writer. Outside debug mode only
// errors are written.
type ConsoleLogger struct {
	lg *log.Logger
}

var _ core.Logger = (*ConsoleLogger)(nil)

func NewConsoleLogger(w io.Writer, prefix string, debug bool) *ConsoleLogger {
	if w == nil {
		w = os.Stderr
	}
	lg := log.New(prefix)
	lg.SetOutput(w)
	lg.SetHeader("${time_rfc3339} ${level} ${prefix}")
	if debug {
		lg.SetLevel(log.DEBUG)
	} else {
		lg.SetLevel(log.ERROR)
	}
	return &ConsoleLogger{lg: lg}
}

// line renders msg followed by its args: errors with their stack, maps as is.
func line(msg string, args []interface{}) string {
	var b strings.Builder
	b.WriteString(msg)
	for _, arg := range args {
		_, _ = fmt.Fprintf(&b, " %+v", arg)
	}
	return b.String()
}

func (l *ConsoleLogger) Debug(msg string, args ...interface{}) {
	l.lg.Debug(line(msg, args))
}

func (l *ConsoleLogger) Info(msg string, args ...interface{}) {
	l.lg.Info(line(msg, args))
}

func (l *ConsoleLogger) Warn(msg string, args ...interface{}) {
	l.lg.Warn(line(msg, args))
}

func (l *ConsoleLogger) Error(msg string, args ...interface{}) {
	l.lg.Error(line(msg, args))
}

func (l *ConsoleLogger) Fatal(msg string, args ...interface{}) {
	l.lg.Fatal(line(msg, args))
}
