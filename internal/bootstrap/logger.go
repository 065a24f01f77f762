package bootstrap

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/osse101/IdleCultivation_Go/internal/config"
	"github.com/osse101/IdleCultivation_Go/internal/logger"
)

// SetupLogger initializes the application logger with file and stdout output.
// Returns the log file handle (caller must close) and any error encountered.
func SetupLogger(cfg *config.Config) (*os.File, error) {
	if err := os.MkdirAll(cfg.LogDir, DirPermission); err != nil {
		return nil, fmt.Errorf("%s: %w", LogMsgFailedCreateLogsDir, err)
	}

	cleanupLogs(cfg.LogDir, LogFileRetentionCount)

	timestamp := time.Now().Format(LogFileTimestampFormat)
	logFileName := filepath.Join(cfg.LogDir, fmt.Sprintf(LogFileNamePattern, timestamp))

	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, LogFilePermission)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", LogMsgFailedOpenLogFile, err)
	}

	loggerConfig := logger.NewConfig(cfg.LogLevel, cfg.LogFormat, cfg.ServiceName, cfg.Version, cfg.Environment)
	logger.InitLoggerWithWriter(loggerConfig, io.MultiWriter(os.Stdout, logFile))

	slog.Info(LogMsgLoggingInitialized, "level", loggerConfig.LogLevel())
	slog.Info(LogMsgStartingService,
		"environment", cfg.Environment,
		"log_level", cfg.LogLevel,
		"log_format", cfg.LogFormat,
		"version", cfg.Version)

	slog.Debug(LogMsgConfigurationLoaded,
		"storage", cfg.StorageDriver,
		"db_host", cfg.DBHost,
		"db_port", cfg.DBPort,
		"db_name", cfg.DBName,
		"port", cfg.Port)

	return logFile, nil
}

// cleanupLogs removes the oldest log files so that at most keep remain.
// Log names embed a sortable timestamp.
func cleanupLogs(logDir string, keep int) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return
	}

	var logFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), LogFileExtension) {
			logFiles = append(logFiles, entry.Name())
		}
	}
	sort.Strings(logFiles)

	for i := 0; i < len(logFiles)-keep; i++ {
		if err := os.Remove(filepath.Join(logDir, logFiles[i])); err != nil {
			fmt.Printf(LogMsgFailedDeleteOldLog, logFiles[i], err)
		}
	}
}
