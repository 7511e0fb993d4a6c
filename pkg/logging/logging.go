package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	appName = "dotsync"

	// EnvStateDir overrides where the log file is written
	EnvStateDir = "DOTSYNC_STATE_DIR"
)

// levels maps -v counts to zerolog levels; anything past the end is trace
var levels = []zerolog.Level{
	zerolog.WarnLevel,
	zerolog.InfoLevel,
	zerolog.DebugLevel,
}

// Level returns the zerolog level for a -v count
func Level(verbosity int) zerolog.Level {
	if verbosity < 0 {
		verbosity = 0
	}
	if verbosity >= len(levels) {
		return zerolog.TraceLevel
	}
	return levels[verbosity]
}

// SetupLogger configures the global logger for a -v count. Console output
// goes to stderr; every run is also appended to LogFilePath as JSON lines.
func SetupLogger(verbosity int) {
	zerolog.SetGlobalLevel(Level(verbosity))

	console := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
		NoColor:    os.Getenv("NO_COLOR") != "",
	}

	logFile := LogFilePath()
	file, fileErr := openLogFile(logFile)

	var w io.Writer = console
	if fileErr == nil {
		w = zerolog.MultiLevelWriter(console, file)
	}

	ctx := zerolog.New(w).With().Timestamp()
	if verbosity >= 2 {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()

	if fileErr != nil {
		log.Warn().Err(fileErr).Str("path", logFile).Msg("Log file unavailable, logging to stderr only")
	}
	log.Debug().Int("verbosity", verbosity).Str("logFile", logFile).Msg("Logger initialized")
}

// SetupWriter points the global logger at w only
func SetupWriter(w io.Writer, verbosity int) {
	zerolog.SetGlobalLevel(Level(verbosity))
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// GetLogger returns a contextualized logger with the given name
func GetLogger(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// LogFilePath returns where SetupLogger appends. DOTSYNC_STATE_DIR wins,
// then XDG_STATE_HOME, then ~/.local/state.
func LogFilePath() string {
	if dir := os.Getenv(EnvStateDir); dir != "" {
		return filepath.Join(dir, appName+".log")
	}
	state := os.Getenv("XDG_STATE_HOME")
	if state == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return appName + ".log"
		}
		state = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(state, appName, appName+".log")
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}

// LogCommand records an external command before it runs
func LogCommand(name string, args []string) {
	log.Debug().Str("command", name).Strs("args", args).Msg("Executing command")
}

// LogOperationStart logs operation at debug level and returns a func that
// logs its completion with the elapsed time
func LogOperationStart(logger zerolog.Logger, operation string) func() {
	start := time.Now()
	logger.Debug().Str("operation", operation).Msg("Operation started")
	return func() {
		logger.Debug().
			Str("operation", operation).
			Dur("duration", time.Since(start)).
			Msg("Operation completed")
	}
}
