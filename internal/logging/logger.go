package logging

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupParams controls where and how much the CLI logs
type SetupParams struct {
	LogFile  string // Empty writes to stderr
	LogLevel string
	JSON     bool
}

// Setup builds the application logger. When a log file is given, output is
// rotated through lumberjack; the returned close function flushes and
// releases it.
func Setup(params SetupParams) (*zap.Logger, func() error, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if params.JSON {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	level := GetLevel(params.LogLevel)

	if params.LogFile == "" {
		core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level)
		logger := zap.New(core)
		return logger, func() error { return ignoreSyncError(logger.Sync()) }, nil
	}

	if !strings.HasSuffix(params.LogFile, ".log") {
		params.LogFile += ".log"
	}
	if err := os.MkdirAll(filepath.Dir(params.LogFile), 0o755); err != nil {
		return nil, nil, eris.Wrapf(err, "failed to create log directory for: %s", params.LogFile)
	}

	rotator := &lumberjack.Logger{
		Filename:   params.LogFile,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		LocalTime:  false, // UTC names for rotated files
		Compress:   true,
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(rotator), level)
	logger := zap.New(core, zap.AddCaller())

	closer := func() error {
		_ = logger.Sync()
		return rotator.Close()
	}
	return logger, closer, nil
}

// GetLevel maps a config level name to a zap level, defaulting to warn
func GetLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "error":
		return zapcore.ErrorLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	default:
		return zapcore.WarnLevel
	}
}

// Syncing stderr fails on some terminals ("invalid argument"); that is not worth reporting
func ignoreSyncError(err error) error {
	if err == nil {
		return nil
	}
	if pathErr, ok := err.(*os.PathError); ok && pathErr.Path == os.Stderr.Name() {
		return nil
	}
	return err
}
