package logger

import (
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is a no-op until Init is called, so library code can log freely in tests.
var Logger = zap.NewNop()

func Init(logLevel, path string) {
	level, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	sink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	})

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), sink, level)
	Logger = zap.New(core, zap.AddCaller())

	// anything still using the standard logger ends up in the same file
	log.SetFlags(0)
	log.SetOutput(zap.NewStdLog(Logger).Writer())
}

func Sync() {
	_ = Logger.Sync()
}
