package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/hodynguyen/Claude-Workflow/internal/config"
	"github.com/hodynguyen/Claude-Workflow/internal/constants"
)

var (
	fileMu     sync.Mutex     //nolint:gochecknoglobals // guards logFile
	globalMu   sync.Mutex     //nolint:gochecknoglobals // guards log.Logger
	logFile    io.WriteCloser //nolint:gochecknoglobals // closed on shutdown
	globalsSet sync.Once      //nolint:gochecknoglobals // one-time zerolog setup
)

func configureGlobals() {
	globalsSet.Do(func() {
		zerolog.TimestampFieldName = "ts"
		zerolog.MessageFieldName = "event"
	})
}

// InitLogger builds the CLI logger.
//
// Level: debug with verbose, warn with quiet, info otherwise. Console
// output is human-readable on a TTY unless NO_COLOR is set, JSON on
// stderr otherwise. Entries are also appended to ~/.hody/logs/hody.log;
// if that file cannot be opened the logger stays console-only.
func InitLogger(verbose, quiet bool) zerolog.Logger {
	configureGlobals()

	console := selectOutput()
	var w io.Writer = console
	if fw, err := openLogFile(); err == nil {
		fileMu.Lock()
		if logFile != nil {
			_ = logFile.Close()
		}
		logFile = fw
		fileMu.Unlock()
		w = zerolog.MultiLevelWriter(console, fw)
	}

	logger := newLogger(w, selectLevel(verbose, quiet))
	setGlobal(logger)
	return logger
}

// InitLoggerWithWriter builds a logger writing only to w.
func InitLoggerWithWriter(verbose, quiet bool, w io.Writer) zerolog.Logger {
	configureGlobals()
	logger := newLogger(w, selectLevel(verbose, quiet))
	setGlobal(logger)
	return logger
}

// setGlobal points the zerolog/log package logger at ours so stray
// log.Debug() calls share its level and format.
func setGlobal(l zerolog.Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	log.Logger = l
}

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// CloseLogFile closes the rotating log file, if one was opened.
func CloseLogFile() {
	fileMu.Lock()
	defer fileMu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// LogFilePath returns where InitLogger writes its file output.
func LogFilePath() (string, error) {
	dir, err := config.LogDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.CLILogFileName), nil
}

func selectLevel(verbose, quiet bool) zerolog.Level {
	switch {
	case verbose:
		return zerolog.DebugLevel
	case quiet:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

func selectOutput() io.Writer {
	if term.IsTerminal(int(os.Stderr.Fd())) && os.Getenv("NO_COLOR") == "" {
		return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	return os.Stderr
}

func openLogFile() (io.WriteCloser, error) {
	path, err := LogFilePath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    constants.LogMaxSizeMB,
		MaxBackups: constants.LogMaxBackups,
		MaxAge:     constants.LogMaxAgeDays,
		Compress:   constants.LogCompress,
	}
	return &redactingWriteCloser{RedactingWriter: NewRedactingWriter(lj), closer: lj}, nil
}
