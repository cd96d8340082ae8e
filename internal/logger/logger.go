// Package logger provides the structured zap logger shared by the dashboard,
// the digest scheduler and the CLI.
package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a sugared zap logger tagged with a component name.
type Logger struct {
	*zap.SugaredLogger
	component string
}

// New creates a logger for component. env selects the encoding: "production"
// writes JSON at info level, anything else writes console output at debug
// level.
func New(component, env string) *Logger {
	return NewWithWriter(component, env, os.Stdout)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(component, env string, w io.Writer) *Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	level := zap.DebugLevel
	if env == "production" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
		level = zap.InfoLevel
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zap.NewAtomicLevelAt(level))
	zl := zap.New(core, zap.AddCaller())

	return &Logger{
		SugaredLogger: zl.Sugar().With("component", component),
		component:     component,
	}
}

// Nop returns a logger that discards everything. Used by tests and callers
// that do not care about log output.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar(), component: "nop"}
}

// Named returns a child logger for a sub-component.
func (l *Logger) Named(component string) *Logger {
	return &Logger{
		SugaredLogger: l.SugaredLogger.Named(component),
		component:     component,
	}
}

// Component returns the component name the logger was created for.
func (l *Logger) Component() string {
	return l.component
}
