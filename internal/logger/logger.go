package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"bot-swatter/internal/config"
)

// Log levels, in increasing severity.
const (
	LevelDebug = iota
	LevelInfo
	LevelWarning
	LevelError
)

var minLevel = LevelInfo

// createLogFilePath generates a log file path with the current date
func createLogFilePath(logDir, prefix string) string {
	currentDate := time.Now().Format("2006-01-02")
	return filepath.Join(logDir, fmt.Sprintf("%s-%s.log", prefix, currentDate))
}

// createRotatingLogger creates a lumberjack rotating logger
func createRotatingLogger(logFilePath string, cfg *config.Config) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    cfg.Logger.Rotation.MaxSize,
		MaxBackups: cfg.Logger.Rotation.MaxBackups,
		MaxAge:     cfg.Logger.Rotation.MaxAge,
		Compress:   cfg.Logger.Rotation.Compress,
	}
}

// Setup configures logging to output to both stdout and a rotating log file
func Setup(cfg *config.Config) error {
	logDir := cfg.Logger.Directory

	// Create log directory if it doesn't exist
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logFilePath := createLogFilePath(logDir, "bot-swatter")
	rotatingLogger := createRotatingLogger(logFilePath, cfg)
	multiWriter := io.MultiWriter(os.Stdout, rotatingLogger)

	log.SetOutput(multiWriter)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	minLevel = parseLevel(cfg.Logger.Level)

	log.Printf("Logging initialized: writing to %s", logFilePath)
	return nil
}

func parseLevel(level string) int {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return LevelDebug
	case "WARNING", "WARN":
		return LevelWarning
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

func output(level int, prefix, format string, args ...interface{}) {
	if level < minLevel {
		return
	}
	log.Output(3, prefix+fmt.Sprintf(format, args...))
}

func Debugf(format string, args ...interface{}) {
	output(LevelDebug, "[DEBUG] ", format, args...)
}

func Infof(format string, args ...interface{}) {
	output(LevelInfo, "[INFO] ", format, args...)
}

func Warningf(format string, args ...interface{}) {
	output(LevelWarning, "[WARNING] ", format, args...)
}

func Errorf(format string, args ...interface{}) {
	output(LevelError, "[ERROR] ", format, args...)
}

func Error(args ...interface{}) {
	if LevelError < minLevel {
		return
	}
	log.Output(2, "[ERROR] "+fmt.Sprint(args...))
}
