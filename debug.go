package nanopipe

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(zap.NewNop())
}

// SetLogger installs the logger used by sockets and transports.  Passing
// nil restores the default, which discards everything.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}

// Logger returns the current package logger.
func Logger() *zap.Logger {
	return logger.Load()
}

// Debugf logs a formatted message at debug level, attributed to the caller.
func Debugf(format string, args ...interface{}) {
	Logger().WithOptions(zap.AddCallerSkip(1)).Sugar().Debugf(format, args...)
}
