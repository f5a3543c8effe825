package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"ledgerkit/internal/ui"
)

type ErrorHandler struct {
	logger  *slog.Logger
	console *ui.Console
}

func NewErrorHandler() (*ErrorHandler, error) {
	logFile, err := createLogFile()
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	return &ErrorHandler{
		logger:  logger,
		console: ui.NewConsole(),
	}, nil
}

// getOSStandardLogDir returns the OS-standard log directory path
func getOSStandardLogDir() (string, error) {
	// Check for environment variable override first
	if customLogDir := os.Getenv("LEDGERKIT_LOG_DIR"); customLogDir != "" {
		return customLogDir, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir, "Library", "Logs", "LedgerKit"), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		// XDG Base Directory layout
		return filepath.Join(homeDir, ".local", "share", "ledgerkit", "logs"), nil
	case "windows":
		appDataDir := os.Getenv("APPDATA")
		if appDataDir == "" {
			return filepath.Join(homeDir, "AppData", "Roaming", "LedgerKit", "logs"), nil
		}
		return filepath.Join(appDataDir, "LedgerKit", "logs"), nil
	default:
		return filepath.Join(homeDir, ".ledgerkit", "logs"), nil
	}
}

// createLogDirectoryWithFallback creates the log directory with fallback to current directory
func createLogDirectoryWithFallback() (string, bool, error) {
	logDir, err := getOSStandardLogDir()
	if err == nil {
		if mkErr := os.MkdirAll(logDir, 0750); mkErr == nil {
			// Confirm the directory is writable before committing to it
			testFile := filepath.Join(logDir, ".test_write")
			if f, testErr := os.Create(testFile); testErr == nil {
				if err := f.Close(); err != nil {
					slog.Warn("Failed to close test file", "path", testFile, "error", err)
				}
				if err := os.Remove(testFile); err != nil {
					slog.Warn("Failed to remove test file", "path", testFile, "error", err)
				}
				return logDir, false, nil
			}
		}
	}

	currentDir, wdErr := os.Getwd()
	if wdErr != nil {
		return "", true, fmt.Errorf("cannot determine current directory for fallback logging: %w", wdErr)
	}

	fmt.Fprintf(os.Stderr, "Warning: cannot access standard log directory %s. Falling back to current directory for logging.\n", logDir)
	return currentDir, true, nil
}

// rotateLogFile rotates log files when size limit is exceeded
func rotateLogFile(logPath string) error {
	const maxFiles = 5

	// Rotate existing files (.4 -> .5, .3 -> .4, etc.)
	for i := maxFiles - 1; i > 0; i-- {
		oldPath := fmt.Sprintf("%s.%d", logPath, i)
		newPath := fmt.Sprintf("%s.%d", logPath, i+1)

		if i == maxFiles-1 {
			if _, err := os.Stat(oldPath); err == nil {
				if err := os.Remove(oldPath); err != nil {
					slog.Warn("Failed to remove old log file", "path", oldPath, "error", err)
				}
			}
		} else {
			if _, err := os.Stat(oldPath); err == nil {
				if err := os.Rename(oldPath, newPath); err != nil {
					slog.Warn("Failed to rotate log file", "old", oldPath, "new", newPath, "error", err)
				}
			}
		}
	}

	if _, err := os.Stat(logPath); err == nil {
		return os.Rename(logPath, logPath+".1")
	}

	return nil
}

// checkLogRotation checks if log rotation is needed and performs it
func checkLogRotation(logPath string) error {
	const maxSizeBytes = 10 * 1024 * 1024 // 10MB

	info, err := os.Stat(logPath)
	if err != nil {
		// File doesn't exist or other error, no rotation needed
		return nil
	}

	if info.Size() >= maxSizeBytes {
		return rotateLogFile(logPath)
	}

	return nil
}

func createLogFile() (*os.File, error) {
	logDir, _, err := createLogDirectoryWithFallback()
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath := filepath.Join(logDir, "ledgerkit.log")

	if err := checkLogRotation(logPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to rotate log file: %v\n", err)
	}

	return os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
}

func (h *ErrorHandler) Handle(err error) {
	if err == nil {
		return
	}

	var lkErr *LedgerKitError
	if errors.As(err, &lkErr) {
		h.handleLedgerKitError(lkErr)
	} else {
		h.handleGenericError(err)
	}
}

func (h *ErrorHandler) handleLedgerKitError(err *LedgerKitError) {
	h.logStructuredError(err)

	message := h.console.FormatErrorMessage(err.Context, err.Cause, err.Suggestion)
	h.console.PrintError(message)
}

func (h *ErrorHandler) handleGenericError(err error) {
	h.logger.Error("Unhandled error occurred",
		"error", err.Error(),
		"type", "generic",
	)

	h.console.PrintError(err.Error())
}

func (h *ErrorHandler) logStructuredError(err *LedgerKitError) {
	logAttrs := []slog.Attr{
		slog.String("error", err.OriginalErr.Error()),
		slog.String("type", getErrorTypeName(err.Type)),
		slog.String("context", err.Context),
	}

	if err.Cause != "" {
		logAttrs = append(logAttrs, slog.String("cause", err.Cause))
	}

	if err.Suggestion != "" {
		logAttrs = append(logAttrs, slog.String("suggestion", err.Suggestion))
	}

	h.logger.LogAttrs(context.TODO(), slog.LevelError, "LedgerKit error occurred", logAttrs...)
}

func getErrorTypeName(errType error) string {
	switch errType {
	case ErrConfigInvalid:
		return "config_invalid"
	case ErrRunRequestFailed:
		return "run_request_failed"
	case ErrHealthCheckFailed:
		return "health_check_failed"
	case ErrNotStarted:
		return "not_started"
	case ErrNoContainer:
		return "no_container"
	case ErrNoNetwork:
		return "no_network"
	case ErrManifestNotFound:
		return "manifest_not_found"
	case ErrManifestParseFailed:
		return "manifest_parse_failed"
	case ErrRuntimeFailed:
		return "runtime_failed"
	case ErrStateInvalid:
		return "state_invalid"
	default:
		return "unknown"
	}
}
