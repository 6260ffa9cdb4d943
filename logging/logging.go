// Package logging builds the process's single *zap.Logger, grounded on
// cmd/go-judge/main.go's initLogger (silent/production/development
// switch on config flags, capital-color level encoder in development).
package logging

import (
	"github.com/hotwords123/judge-v3/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger per conf.LogRelease/EnableDebug.
func New(conf *config.Config) (*zap.Logger, error) {
	if conf.LogRelease {
		return zap.NewProduction()
	}

	devConfig := zap.NewDevelopmentConfig()
	devConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if !conf.EnableDebug {
		devConfig.Level.SetLevel(zap.InfoLevel)
	}
	return devConfig.Build()
}
