package xlog

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Debug(args ...interface{})
	Debugf(template string, args ...interface{})
	Info(args ...interface{})
	Infof(template string, args ...interface{})
	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
	Error(args ...interface{})
	Errorf(template string, args ...interface{})

	// With returns a child logger carrying the given key/value pairs.
	With(args ...interface{}) Logger
}

type zapLogger struct {
	*zap.SugaredLogger
}

func (l *zapLogger) With(args ...interface{}) Logger {
	return &zapLogger{SugaredLogger: l.SugaredLogger.With(args...)}
}

var (
	baseMu sync.RWMutex
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	base   = newBase(os.Stderr)
)

func newBase(writers ...io.Writer) *zap.Logger {
	syncers := make([]zapcore.WriteSyncer, 0, len(writers))
	for _, w := range writers {
		syncers = append(syncers, zapcore.AddSync(w))
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.NewMultiWriteSyncer(syncers...),
		level,
	)
	return zap.New(core)
}

func NewLogger(name string) Logger {
	baseMu.RLock()
	defer baseMu.RUnlock()
	return &zapLogger{SugaredLogger: base.Sugar().Named(name)}
}

// WithChildName returns xl extended with a sub-name, or a fresh named logger when xl is nil.
func WithChildName(name string, xl Logger) Logger {
	if zl, ok := xl.(*zapLogger); ok {
		return &zapLogger{SugaredLogger: zl.SugaredLogger.Named(name)}
	}
	if xl == nil {
		return NewLogger(name)
	}
	return xl.With("scope", name)
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return &zapLogger{SugaredLogger: zap.NewNop().Sugar()}
}

// SetLevel accepts debug, info, warn or error. Unknown values keep the current level.
func SetLevel(text string) bool {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(text)); err != nil {
		return false
	}
	level.SetLevel(lvl)
	return true
}

// SetOutput redirects every logger created afterwards.
func SetOutput(writers ...io.Writer) {
	if len(writers) == 0 {
		writers = []io.Writer{os.Stderr}
	}
	baseMu.Lock()
	base = newBase(writers...)
	baseMu.Unlock()
}

// Sync flushes the global logger.
func Sync() {
	baseMu.RLock()
	defer baseMu.RUnlock()
	_ = base.Sync()
}
