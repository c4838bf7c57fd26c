package logging

import (
	"pinaly/config"

	"go.uber.org/zap"
)

// L is the process-wide logger. Development config pretty-prints and keeps
// debug output; production config is JSON at info level.
var L *zap.SugaredLogger

func init() {
	var (
		logger *zap.Logger
		err    error
	)
	if config.DEBUG_MODE {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	L = logger.Sugar()
}

func Sync() {
	_ = L.Sync()
}
