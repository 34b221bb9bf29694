// Package logger wires the process-wide zap logger: colored console output
// for operators plus a rotated JSON file for ingestion.
package logger

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	Log  *zap.Logger
	once sync.Once
)

// Init builds the global logger. Safe to call more than once; only the
// first call configures anything.
func Init(logDir string, debug bool) {
	once.Do(func() {
		if logDir == "" {
			logDir = "logs"
		}
		if err := os.MkdirAll(logDir, 0755); err != nil {
			panic(err)
		}

		consoleEncoderConfig := zap.NewDevelopmentEncoderConfig()
		consoleEncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		consoleEncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
		consoleEncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
		consoleCore := zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleEncoderConfig),
			zapcore.AddSync(os.Stdout),
			level(debug),
		)

		fileEncoderConfig := zap.NewProductionEncoderConfig()
		fileEncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		fileWriteSyncer := zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(logDir, "signal-bot.json"),
			MaxSize:    10, // MB per file
			MaxBackups: 30,
			MaxAge:     30, // days
			Compress:   true,
		})
		// The file core stays at INFO regardless of console verbosity.
		fileCore := zapcore.NewCore(
			zapcore.NewJSONEncoder(fileEncoderConfig),
			fileWriteSyncer,
			zapcore.InfoLevel,
		)

		Log = zap.New(zapcore.NewTee(consoleCore, fileCore),
			zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
		zap.ReplaceGlobals(Log)
	})
}

func level(debug bool) zapcore.LevelEnabler {
	if debug {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

// Component returns a logger tagged with the component name, initializing
// the global logger with defaults if nothing did yet.
func Component(name string) *zap.Logger {
	if Log == nil {
		Init("logs", false)
	}
	return Log.With(zap.String("component", name))
}

func Info(msg string, fields ...zap.Field) {
	if Log != nil {
		Log.Info(msg, fields...)
	}
}

func Warn(msg string, fields ...zap.Field) {
	if Log != nil {
		Log.Warn(msg, fields...)
	}
}

func Error(msg string, fields ...zap.Field) {
	if Log != nil {
		Log.Error(msg, fields...)
	}
}

func Debug(msg string, fields ...zap.Field) {
	if Log != nil {
		Log.Debug(msg, fields...)
	}
}
