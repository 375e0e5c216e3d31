// Package log provides the process-wide structured logger this module's
// commands and packages use for progress, warnings, and fatal exits. It
// is a small, trimmed-down descendant of a much larger domain-agnostic
// logging package: this module only ever initializes the logger and
// calls Infow/Warnw/Fatal/Fatalf, so that is the surface kept here.
package log

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"path"
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	RFC3339Milli = "2006-01-02T15:04:05.000Z07:00" // like time.RFC3339Nano but with 3 fixed-width decimals
)

var (
	log   zerolog.Logger
	logMu sync.RWMutex
)

func init() {
	// Allow overriding the default log level via $LOG_LEVEL, so that the
	// environment variable can be set globally even when running tests.
	// Always initializing the logger is also useful to avoid panics when
	// logging if the logger is nil.
	Init(cmp.Or(os.Getenv("LOG_LEVEL"), "error"), "stderr", nil)
}

func logger() zerolog.Logger {
	logMu.RLock()
	l := log
	logMu.RUnlock()
	return l
}

func setLogger(l zerolog.Logger) {
	logMu.Lock()
	log = l
	logMu.Unlock()
}

// errorLevelWriter passes only warn-and-above records through to out, so
// Init's errorOutput parameter carries a subset of what the primary
// output receives.
type errorLevelWriter struct {
	out io.Writer
}

func (w *errorLevelWriter) Write(p []byte) (int, error) { return w.out.Write(p) }

func (w *errorLevelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < zerolog.WarnLevel {
		return len(p), nil
	}
	return w.out.Write(p)
}

// Init (re)configures the global logger: level is one of the LogLevel*
// constants; output is "stdout", "stderr", or a file path; errorOutput,
// if non-nil, additionally receives warn-and-above records.
func Init(level, output string, errorOutput io.Writer) {
	var dest io.Writer
	switch output {
	case "stdout":
		dest = os.Stdout
	case "stderr":
		dest = os.Stderr
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			panic(fmt.Sprintf("cannot create log output: %v", err))
		}
		dest = f
	}
	out := zerolog.ConsoleWriter{Out: dest, TimeFormat: RFC3339Milli}

	var writer io.Writer = out
	if errorOutput != nil {
		errOut := zerolog.ConsoleWriter{Out: errorOutput, TimeFormat: RFC3339Milli, NoColor: true}
		writer = zerolog.MultiLevelWriter(out, &errorLevelWriter{out: errOut})
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	l := zerolog.New(writer).With().Timestamp().Logger()

	// Include caller, increasing SkipFrameCount to account for this log
	// package's own wrapper functions.
	l = l.With().Caller().Logger()
	zerolog.CallerSkipFrameCount = 3
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return fmt.Sprintf("%s/%s:%d", path.Base(path.Dir(file)), path.Base(file), line)
	}

	switch level {
	case LogLevelDebug:
		l = l.Level(zerolog.DebugLevel)
	case LogLevelInfo:
		l = l.Level(zerolog.InfoLevel)
	case LogLevelWarn:
		l = l.Level(zerolog.WarnLevel)
	case LogLevelError:
		l = l.Level(zerolog.ErrorLevel)
	default:
		panic(fmt.Sprintf("invalid log level: %q", level))
	}

	setLogger(l)
	l.Info().Msgf("logger construction succeeded at level %s with output %s", level, output)
}

// Fatal logs args at fatal level, including a stack trace, then exits
// the process (zerolog's Fatal event calls os.Exit(1) on Msg/Send).
func Fatal(args ...any) {
	logger().Fatal().Msg(fmt.Sprint(args...) + "\n" + string(debug.Stack()))
	// We don't support log levels lower than "fatal". Help analyzers like
	// staticcheck see that, in this package, Fatal will always exit the
	// entire program.
	panic("unreachable")
}

// Fatalf sends a formatted fatal level log message.
func Fatalf(template string, args ...any) {
	logger().Fatal().Msgf(template+"\n"+string(debug.Stack()), args...)
	panic("unreachable")
}

// Infow sends an info level log message with key-value pairs.
func Infow(msg string, keyvalues ...any) {
	logger().Info().Fields(keyvalues).Msg(msg)
}

// Warnw sends a warning level log message with key-value pairs.
func Warnw(msg string, keyvalues ...any) {
	logger().Warn().Fields(keyvalues).Msg(msg)
}
