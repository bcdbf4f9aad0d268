// Package logger wraps logrus behind a small package-level API so callers
// never import logrus directly.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var std = newDefault()

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Init configures the package-level logger's level and output format.
func Init(level string, pretty bool) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	std.SetLevel(lvl)
	if pretty {
		std.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// Fields is an alias so call sites don't need to import logrus.
type Fields = logrus.Fields

func WithFields(f Fields) *logrus.Entry { return std.WithFields(f) }

func Debug(format string, args ...any) { std.Debugf(format, args...) }
func Info(format string, args ...any)  { std.Infof(format, args...) }
func Warn(format string, args ...any)  { std.Warnf(format, args...) }
func Error(format string, args ...any) { std.Errorf(format, args...) }

// Fatal logs at fatal level and terminates the process — used for Fatal
// errors per the error taxonomy (master key malformed, migrations failed).
func Fatal(format string, args ...any) { std.Fatalf(format, args...) }
