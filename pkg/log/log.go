// Provides a generic interface for logging
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/tim-beatham/waterq/pkg/conf"
)

var (
	Log Logger
)

type Logger interface {
	WriteDebugf(msg string, args ...interface{})
	WriteInfof(msg string, args ...interface{})
	WriteErrorf(msg string, args ...interface{})
	WriteWarnf(msg string, args ...interface{})
	Writer() io.Writer
}

type LogrusLogger struct {
	logger *logrus.Logger
}

func (l *LogrusLogger) WriteDebugf(msg string, args ...interface{}) {
	l.logger.Debugf(msg, args...)
}

func (l *LogrusLogger) WriteInfof(msg string, args ...interface{}) {
	l.logger.Infof(msg, args...)
}

func (l *LogrusLogger) WriteErrorf(msg string, args ...interface{}) {
	l.logger.Errorf(msg, args...)
}

func (l *LogrusLogger) WriteWarnf(msg string, args ...interface{}) {
	l.logger.Warnf(msg, args...)
}

func (l *LogrusLogger) Writer() io.Writer {
	return l.logger.Writer()
}

func NewLogrusLogger(confLevel conf.LogLevel) *LogrusLogger {
	return NewLogrusLoggerWithOutput(confLevel, os.Stdout)
}

// NewLogrusLoggerWithOutput creates a logger at the given level writing to out
func NewLogrusLoggerWithOutput(confLevel conf.LogLevel, out io.Writer) *LogrusLogger {
	var level logrus.Level

	switch confLevel {
	case conf.ERROR:
		level = logrus.ErrorLevel
	case conf.WARNING:
		level = logrus.WarnLevel
	case conf.DEBUG:
		level = logrus.DebugLevel
	default:
		level = logrus.InfoLevel
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetOutput(out)
	logger.SetLevel(level)

	return &LogrusLogger{logger: logger}
}

func init() {
	SetLogger(NewLogrusLogger(conf.INFO))
}

func SetLogger(l Logger) {
	Log = l
}
