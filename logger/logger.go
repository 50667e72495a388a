package logger

import (
	"os"

	"github.com/spf13/cast"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var log *zap.Logger = zap.NewNop()

// Initialize builds the process logger. When LOG_FILE is set the output is
// teed between stdout and a size-rotated file, otherwise stdout only.
func Initialize() {
	level := zapcore.InfoLevel
	if cast.ToBool(os.Getenv("LOG_DEBUG")) {
		level = zapcore.DebugLevel
	}

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(os.Stdout),
		level,
	)

	if filename := os.Getenv("LOG_FILE"); filename != "" {
		maxSize := cast.ToInt(os.Getenv("LOG_MAX_SIZE_MB"))
		if maxSize <= 0 {
			maxSize = 64
		}
		fileLogger := &lumberjack.Logger{
			Filename:   filename,
			MaxSize:    maxSize,
			MaxBackups: 7,
			MaxAge:     7,
		}
		core := zapcore.NewTee(
			consoleCore,
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(fileLogger),
				level,
			),
		)
		log = zap.New(core, zap.AddCaller())
	} else {
		log = zap.New(consoleCore, zap.AddCaller())
	}

	zap.ReplaceGlobals(log)
}

// L returns the process logger.
func L() *zap.Logger { return log }

// S returns the sugared process logger.
func S() *zap.SugaredLogger { return log.Sugar() }
