package bridge

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the bridge package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the bridge package's logger.
func SetLogger(l *zap.Logger) {
	logger = l
}

func logFailure(format string, err error) {
	if ce := Logger().Check(zap.DebugLevel, "bridge: conversion failed"); ce != nil {
		ce.Write(zap.String("format", format), zap.Error(err))
	}
}
