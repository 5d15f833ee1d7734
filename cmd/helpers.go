package cmd

import (
	"github.com/spf13/afero"
	"github.com/starling-data/starling/pkg/config"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func makeLogger(isDebug bool) *zap.SugaredLogger {
	if !isDebug {
		return zap.NewNop().Sugar()
	}

	zapConfig := zap.NewDevelopmentConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	logger, err := zapConfig.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}

	return logger.Sugar()
}

func loadConfig(fs afero.Fs, c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadFromFile(fs, c.String("config"))
	if err != nil {
		return nil, err
	}

	if env := c.String("environment"); env != "" {
		if err := cfg.SelectEnvironment(env); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}
