// Package log wraps go-logging so that every named logger in the program
// writes through one sink at one verbosity.
package log

import (
	"io"
	"os"
	"sync"

	"github.com/op/go-logging"
)

// Level is a logging verbosity. Lower levels print more.
type Level int

const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
)

// backendLevels maps a Level to its go-logging counterpart.
var backendLevels = [...]logging.Level{
	Debug:   logging.DEBUG,
	Info:    logging.INFO,
	Notice:  logging.NOTICE,
	Warning: logging.WARNING,
	Error:   logging.ERROR,
}

var format = logging.MustStringFormatter(
	`%{color}[%{time:15:04:05.000}] [%{module}] [%{level}]%{color:reset} %{message}`,
)

var sink struct {
	mu      sync.Mutex
	backend logging.LeveledBackend
	level   Level
}

// Logger is the subset of *logging.Logger the program logs through.
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})
	Info(v ...interface{})
	Infof(format string, v ...interface{})
	Notice(v ...interface{})
	Noticef(format string, v ...interface{})
	Warning(v ...interface{})
	Warningf(format string, v ...interface{})
	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

// New returns a logger whose lines are tagged with module.
func New(module string) Logger {
	return logging.MustGetLogger(module)
}

// SetSink sends the output of all loggers to w.
func SetSink(w io.Writer) {
	sink.mu.Lock()
	defer sink.mu.Unlock()
	formatted := logging.NewBackendFormatter(logging.NewLogBackend(w, "", 0), format)
	sink.backend = logging.AddModuleLevel(formatted)
	sink.backend.SetLevel(sink.level.backend(), "")
	logging.SetBackend(sink.backend)
}

// SetLevel discards messages below level for all loggers.
func SetLevel(level Level) {
	sink.mu.Lock()
	defer sink.mu.Unlock()
	sink.level = level
	sink.backend.SetLevel(level.backend(), "")
}

// Verbosity returns the level for a count of -v flags: Notice when zero,
// one step more verbose per flag, down to Debug.
func Verbosity(count int) Level {
	return max(Debug, Notice-Level(count))
}

func (l Level) backend() logging.Level {
	if l < Debug || int(l) >= len(backendLevels) {
		return logging.NOTICE
	}
	return backendLevels[l]
}

func init() {
	sink.level = Notice
	SetSink(os.Stdout)
}
