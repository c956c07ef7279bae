package gormlog

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm/logger"
)

// New routes gorm's warnings, errors and slow queries into zap. A lookup
// miss is an expected outcome here and is not logged.
func New(zl *zap.Logger) logger.Interface {
	if zl == nil {
		zl = zap.NewNop()
	}
	std, err := zap.NewStdLogAt(zl.Named("gorm"), zapcore.WarnLevel)
	if err != nil {
		std = zap.NewStdLog(zl.Named("gorm"))
	}
	return logger.New(std, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
