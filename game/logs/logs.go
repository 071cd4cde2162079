// Package logs configures the process-wide zap logger.
package logs

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the level and optional rotating file sink
type Config struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	Dev        bool
	// Console overrides stderr; tests point it at a buffer
	Console io.Writer
}

var (
	mu     sync.RWMutex
	logger = zap.NewNop()
)

// Init builds the logger: colored console output plus JSON lines in File when set
func Init(appName string, cfg Config) error {
	lvl := zapcore.InfoLevel
	if err := lvl.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
		lvl = zapcore.InfoLevel
	}
	level := zap.NewAtomicLevelAt(lvl)

	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	consoleCfg := encoderCfg
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	var console zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
	if cfg.Console != nil {
		consoleCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		console = zapcore.AddSync(cfg.Console)
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), console, level)

	if cfg.File != "" {
		fileCfg := encoderCfg
		fileCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    max(1, cfg.MaxSizeMB),
			MaxBackups: max(0, cfg.MaxBackups),
			MaxAge:     max(0, cfg.MaxAgeDays),
			Compress:   cfg.Compress,
		}
		core = zapcore.NewTee(core, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(rotator), level))
	}

	opts := []zap.Option{zap.AddCaller()}
	if cfg.Dev {
		opts = append(opts, zap.Development(), zap.AddStacktrace(zapcore.WarnLevel))
	}

	l := zap.New(core, opts...).Named(appName)

	mu.Lock()
	_ = logger.Sync()
	logger = l
	mu.Unlock()
	return nil
}

// L returns the configured logger, a no-op before Init
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Sync flushes buffered entries
func Sync() error {
	return L().Sync()
}

func Debug(msg string, fields ...zap.Field) { skip().Debug(msg, fields...) }

func Info(msg string, fields ...zap.Field) { skip().Info(msg, fields...) }

func Warn(msg string, fields ...zap.Field) { skip().Warn(msg, fields...) }

func Error(msg string, fields ...zap.Field) { skip().Error(msg, fields...) }

// skip reports the caller of the package helpers, not the helper itself
func skip() *zap.Logger {
	return L().WithOptions(zap.AddCallerSkip(1))
}
