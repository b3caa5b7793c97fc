package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const slowQuery = 200 * time.Millisecond

// GormLogger routes gorm's output through zap.
type GormLogger struct {
	log   *zap.Logger
	level logger.LogLevel
	slow  time.Duration
}

func NewGormLogger(log *zap.Logger) *GormLogger {
	if log == nil {
		log = zap.NewNop()
	}
	return &GormLogger{log: log.Named("db"), level: logger.Warn, slow: slowQuery}
}

func (g *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	cp := *g
	cp.level = level
	return &cp
}

func (g *GormLogger) Info(_ context.Context, msg string, args ...any) {
	if g.level >= logger.Info {
		g.log.Info(fmt.Sprintf(msg, args...))
	}
}

func (g *GormLogger) Warn(_ context.Context, msg string, args ...any) {
	if g.level >= logger.Warn {
		g.log.Warn(fmt.Sprintf(msg, args...))
	}
}

func (g *GormLogger) Error(_ context.Context, msg string, args ...any) {
	if g.level >= logger.Error {
		g.log.Error(fmt.Sprintf(msg, args...))
	}
}

// Trace logs failed and slow statements. Missing rows are expected and skipped.
func (g *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= logger.Silent {
		return
	}
	took := time.Since(begin)

	switch {
	case err != nil && g.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		g.log.Error("query failed", zap.Error(err), zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("took", took))
	case g.slow > 0 && took > g.slow && g.level >= logger.Warn:
		sql, rows := fc()
		g.log.Warn("slow query", zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("took", took))
	case g.level >= logger.Info:
		sql, rows := fc()
		g.log.Debug("query", zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("took", took))
	}
}
