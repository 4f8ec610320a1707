// Package rlog wraps github.com/op/go-logging behind a small leveled
// interface. The CLI logs through it; the render driver and thread pool do
// not log.
package rlog

import (
	"io"
	"os"

	logging "github.com/op/go-logging"

	"github.com/biofag/tungsten/pkg/core"
)

// Level is one of the severities SetLevel accepts.
type Level int

const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
)

var format = logging.MustStringFormatter(
	`%{color}[%{time:15:04:05.000}] [%{module}] [%{level}]%{color:reset} %{message}`,
)

var leveledBackend logging.LeveledBackend

// Logger is the leveled logging surface render code depends on. It embeds
// core.Logger's Printf so anything that only needs that narrower contract
// (e.g. the acceleration-structure boundary) can take a Logger directly.
type Logger interface {
	core.Logger
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})
	Notice(v ...interface{})
	Noticef(format string, v ...interface{})
	Info(v ...interface{})
	Infof(format string, v ...interface{})
	Warning(v ...interface{})
	Warningf(format string, v ...interface{})
	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

// loggerAdapter satisfies core.Logger's single-method Printf contract by
// forwarding to go-logging's Infof.
type loggerAdapter struct {
	*logging.Logger
}

func (l loggerAdapter) Printf(format string, args ...interface{}) { l.Logger.Infof(format, args...) }

// New creates a named leveled logger.
func New(name string) Logger {
	return loggerAdapter{logging.MustGetLogger(name)}
}

// SetSink redirects log output, e.g. to a file during a headless render.
func SetSink(sink io.Writer) {
	backend := logging.NewLogBackend(sink, "", 0)
	backendWithFormatter := logging.NewBackendFormatter(backend, format)
	leveledBackend = logging.AddModuleLevel(backendWithFormatter)
	leveledBackend.SetLevel(logging.INFO, "")
	logging.SetBackend(leveledBackend)
}

// SetLevel sets the minimum severity that reaches the sink.
func SetLevel(level Level) {
	var loggerLevel logging.Level
	switch level {
	case Debug:
		loggerLevel = logging.DEBUG
	case Info:
		loggerLevel = logging.INFO
	case Notice:
		loggerLevel = logging.NOTICE
	case Warning:
		loggerLevel = logging.WARNING
	case Error:
		loggerLevel = logging.ERROR
	}
	leveledBackend.SetLevel(loggerLevel, "")
}

func init() {
	SetSink(os.Stdout)
	SetLevel(Notice)
}
