// Package logging is a thin facade over logrus used across the module.
// Importing it as `log` keeps call sites terse: log.Infof, log.WithError, etc.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Fields is an alias so callers don't import logrus directly.
type Fields = logrus.Fields

// Entry is an alias for a logrus entry carrying fields.
type Entry = logrus.Entry

var (
	setupOnce sync.Once
	logDir    = "logs"
	fileSink  *lumberjack.Logger
	sinkMu    sync.Mutex
)

// SetupBaseLogger installs the default formatter and writes to stdout.
// Safe to call more than once.
func SetupBaseLogger() {
	setupOnce.Do(func() {
		logrus.SetOutput(os.Stdout)
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
		logrus.SetLevel(logrus.InfoLevel)
	})
}

// SetOutput redirects log output, e.g. to stderr for commands whose stdout
// is machine readable.
func SetOutput(w io.Writer) {
	sinkMu.Lock()
	defer sinkMu.Unlock()
	logrus.SetOutput(w)
}

// SetLogDir changes the directory used when logging to file.
func SetLogDir(dir string) {
	if dir = strings.TrimSpace(dir); dir != "" {
		logDir = dir
	}
}

// SetDebug toggles debug-level output.
func SetDebug(enabled bool) {
	if enabled {
		logrus.SetLevel(logrus.DebugLevel)
		return
	}
	logrus.SetLevel(logrus.InfoLevel)
}

// ConfigureLogOutput switches output between stdout and a rotating file.
func ConfigureLogOutput(toFile bool) error {
	sinkMu.Lock()
	defer sinkMu.Unlock()

	if !toFile {
		if fileSink != nil {
			_ = fileSink.Close()
			fileSink = nil
		}
		logrus.SetOutput(os.Stdout)
		return nil
	}

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	if fileSink == nil {
		fileSink = &lumberjack.Logger{
			Filename:   filepath.Join(logDir, "xenovate.log"),
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		}
	}
	logrus.SetOutput(io.MultiWriter(os.Stdout, fileSink))
	return nil
}

// IsDebug reports whether debug logging is active.
func IsDebug() bool { return logrus.IsLevelEnabled(logrus.DebugLevel) }

func Debug(args ...any)                 { logrus.Debug(args...) }
func Info(args ...any)                  { logrus.Info(args...) }
func Warn(args ...any)                  { logrus.Warn(args...) }
func Error(args ...any)                 { logrus.Error(args...) }
func Debugf(format string, args ...any) { logrus.Debugf(format, args...) }
func Infof(format string, args ...any)  { logrus.Infof(format, args...) }
func Warnf(format string, args ...any)  { logrus.Warnf(format, args...) }
func Errorf(format string, args ...any) { logrus.Errorf(format, args...) }
func Fatalf(format string, args ...any) { logrus.Fatalf(format, args...) }

func WithError(err error) *Entry             { return logrus.WithError(err) }
func WithField(key string, value any) *Entry { return logrus.WithField(key, value) }
func WithFields(fields Fields) *Entry        { return logrus.WithFields(fields) }
