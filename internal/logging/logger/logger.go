// Package logger wraps logrus with context-aware logging. Every entry picks
// up the request trace id from the context when present.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jobhive/jobhive/internal/ctxutil"
)

// Config controls logger behavior.
type Config struct {
	Level      int    `json:"level" yaml:"level"`
	Format     string `json:"format" yaml:"format"`
	Output     string `json:"output" yaml:"output"`
	OutputFile string `json:"output_file" yaml:"output_file"`
}

// Logger is a context-aware logrus logger.
type Logger struct {
	*logrus.Logger
	logFile *os.File
	logPath string
}

var (
	standardLogger *Logger
	once           sync.Once
)

// StandardLogger returns the singleton logger instance.
func StandardLogger() *Logger {
	once.Do(func() {
		standardLogger = &Logger{
			Logger: logrus.New(),
		}
		standardLogger.SetFormatter(&logrus.JSONFormatter{})
	})
	return standardLogger
}

// New initializes the standard logger with the given configuration and
// returns it along with a cleanup function.
func New(c *Config) (*Logger, func(), error) {
	l := StandardLogger()
	cleanup, err := l.Init(c)
	if err != nil {
		return nil, nil, err
	}
	return l, cleanup, nil
}

// Init applies configuration to the logger.
func (l *Logger) Init(c *Config) (func(), error) {
	l.SetLevel(logrus.Level(c.Level))

	switch c.Format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{})
	}

	switch c.Output {
	case "stderr":
		l.SetOutput(os.Stderr)
	case "file":
		l.logPath = c.OutputFile
		if l.logPath != "" {
			if err := l.setupLogFile(); err != nil {
				return nil, err
			}
			go l.periodicLogRotation()
		}
	default:
		l.SetOutput(os.Stdout)
	}

	return func() {
		if l.logFile != nil {
			_ = l.logFile.Close()
		}
	}, nil
}

func (l *Logger) setupLogFile() error {
	if err := os.MkdirAll(filepath.Dir(l.logPath), 0777); err != nil {
		return err
	}
	return l.rotateLog()
}

func (l *Logger) rotateLog() error {
	if l.logFile != nil {
		if err := l.logFile.Close(); err != nil {
			return err
		}
	}

	logFilePath := fmt.Sprintf("%s.%s.log", strings.TrimSuffix(l.logPath, ".log"), time.Now().Format("2006-01-02"))
	f, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0666)
	if err != nil {
		return err
	}

	l.logFile = f
	l.Logger.SetOutput(l.logFile)
	return nil
}

func (l *Logger) periodicLogRotation() {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := l.rotateLog(); err != nil {
			l.Logger.Errorf("Error rotating log: %v", err)
		}
	}
}

// entryFromContext creates a new log entry with fields from context.
func (l *Logger) entryFromContext(ctx context.Context) *logrus.Entry {
	fields := logrus.Fields{}

	if traceID := ctxutil.GetTraceID(ctx); traceID != "" {
		fields[ctxutil.TraceIDKey] = traceID
	}

	return l.WithFields(fields)
}

// fields converts alternating key/value arguments into structured fields.
// A trailing key without a value is kept under "extra" rather than dropped.
func fields(kvs []any) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(kvs); i += 2 {
		key, ok := kvs[i].(string)
		if !ok {
			key = fmt.Sprint(kvs[i])
		}
		f[key] = kvs[i+1]
	}
	if len(kvs)%2 == 1 {
		f["extra"] = kvs[len(kvs)-1]
	}
	return f
}

func (l *Logger) log(ctx context.Context, level logrus.Level, msg string, kvs ...any) {
	l.entryFromContext(ctx).WithFields(fields(kvs)).Log(level, msg)
}

func (l *Logger) logf(ctx context.Context, level logrus.Level, format string, args ...any) {
	l.entryFromContext(ctx).Logf(level, format, args...)
}

// Debug and friends log a message with alternating key/value pairs emitted
// as structured fields.
func (l *Logger) Debug(ctx context.Context, msg string, kvs ...any) {
	l.log(ctx, logrus.DebugLevel, msg, kvs...)
}
func (l *Logger) Info(ctx context.Context, msg string, kvs ...any) {
	l.log(ctx, logrus.InfoLevel, msg, kvs...)
}
func (l *Logger) Warn(ctx context.Context, msg string, kvs ...any) {
	l.log(ctx, logrus.WarnLevel, msg, kvs...)
}
func (l *Logger) Error(ctx context.Context, msg string, kvs ...any) {
	l.log(ctx, logrus.ErrorLevel, msg, kvs...)
}

func (l *Logger) Debugf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, logrus.DebugLevel, format, args...)
}
func (l *Logger) Infof(ctx context.Context, format string, args ...any) {
	l.logf(ctx, logrus.InfoLevel, format, args...)
}
func (l *Logger) Warnf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, logrus.WarnLevel, format, args...)
}
func (l *Logger) Errorf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, logrus.ErrorLevel, format, args...)
}

// SetVerbosity adjusts the log level at runtime, for config hot reload.
func (l *Logger) SetVerbosity(level int) {
	l.Logger.SetLevel(logrus.Level(level))
}

// WithField returns an entry carrying an extra structured field.
func (l *Logger) WithField(key string, value any) *logrus.Entry {
	return l.Logger.WithField(key, value)
}

// SetOutput sets the output destination for the logger.
func (l *Logger) SetOutput(out io.Writer) {
	l.Logger.SetOutput(out)
}

// Discard returns a logger that drops everything, for tests.
func Discard() *Logger {
	l := &Logger{Logger: logrus.New()}
	l.Logger.SetOutput(io.Discard)
	return l
}
