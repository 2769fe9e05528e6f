package logger

import (
	"go.uber.org/zap"
)

var global *zap.Logger

// Init builds the process-wide logger. Development mode uses the console
// encoder with debug level, production mode emits JSON at info level.
func Init(isDev bool) error {
	var (
		log *zap.Logger
		err error
	)
	if isDev {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	global = log
	return nil
}

// L returns the process logger. Falls back to a no-op logger when Init was
// never called, so library code can log unconditionally.
func L() *zap.Logger {
	if global == nil {
		return zap.NewNop()
	}
	return global
}

func Sync() {
	if global != nil {
		_ = global.Sync()
	}
}
