package logging

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/lumberjack.v2"
)

type Options struct {
	Dir           string
	Level         string
	MaxSizeMB     int
	RetentionDays int
}

// New builds a JSON logger that writes to stdout and, when Dir is set, to a
// rotated app.log under Dir. The returned func flushes and closes the file.
func New(opts Options) (*zap.Logger, func(), error) {
	level := ParseLevel(opts.Level)
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())

	sinks := []zapcore.WriteSyncer{zapcore.Lock(os.Stdout)}
	var rotator *lumberjack.Logger
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, nil, err
		}
		rotator = &lumberjack.Logger{
			Filename:  filepath.Join(opts.Dir, "app.log"),
			MaxSize:   opts.MaxSizeMB,
			MaxAge:    clampRetention(opts.RetentionDays),
			LocalTime: true,
		}
		sinks = append(sinks, zapcore.AddSync(rotator))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), level)
	logger := zap.New(core, zap.AddCaller())
	cleanup := func() {
		_ = logger.Sync()
		if rotator != nil {
			_ = rotator.Close()
		}
	}
	return logger, cleanup, nil
}

// clampRetention keeps at most a week of rotated files.
func clampRetention(days int) int {
	if days <= 0 || days > 7 {
		return 7
	}
	return days
}

func ParseLevel(raw string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
