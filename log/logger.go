// Package log provides a thin leveled logging facade tagged per subsystem,
// backed by logrus.
package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

// SubLogger defines a sub logger for a specific subsystem
type SubLogger string

// Global subsystem loggers
const (
	Global      SubLogger = "log"
	ExchangeSys SubLogger = "exchange"
	RequestSys  SubLogger = "request"
	ConfigSys   SubLogger = "config"
)

var logger = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}()

// SetLevel adjusts the global logging level
func SetLevel(level logrus.Level) {
	logger.SetLevel(level)
}

// Debugf logs a formatted debug message for a subsystem
func Debugf(s SubLogger, format string, a ...interface{}) {
	logger.WithField("system", string(s)).Debugf(format, a...)
}

// Infof logs a formatted informational message for a subsystem
func Infof(s SubLogger, format string, a ...interface{}) {
	logger.WithField("system", string(s)).Infof(format, a...)
}

// Warnf logs a formatted warning message for a subsystem
func Warnf(s SubLogger, format string, a ...interface{}) {
	logger.WithField("system", string(s)).Warnf(format, a...)
}

// Errorf logs a formatted error message for a subsystem
func Errorf(s SubLogger, format string, a ...interface{}) {
	logger.WithField("system", string(s)).Errorf(format, a...)
}

// Errorln logs an error message for a subsystem
func Errorln(s SubLogger, a ...interface{}) {
	logger.WithField("system", string(s)).Errorln(a...)
}
