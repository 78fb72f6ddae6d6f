package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/natefinch/lumberjack"
)

var (
	once   sync.Once
	logger *slog.Logger
)

// GetLogger returns the process-wide logger. It reads LOG_LEVEL and LOG_FILE
// straight from the environment because config itself logs while loading.
func GetLogger() *slog.Logger {
	once.Do(func() {
		logger = newLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FILE"))
	})

	return logger
}

func newLogger(level string, filePath string) *slog.Logger {
	var writer io.Writer = os.Stdout

	if filePath != "" {
		writer = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   filePath,
			MaxSize:    100, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		})
	}

	return slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
