package log

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
	With().Timestamp().Logger()

// Configure sets up the global logger. Level is one of trace, debug, info,
// warn, error; format is "console" or "json".
func Configure(level, format string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	if format == "json" {
		logger = zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			Level(lvl).With().Timestamp().Logger()
	}
}

func Trace(msg string, kv ...interface{}) { emit(logger.Trace(), msg, kv) }
func Debug(msg string, kv ...interface{}) { emit(logger.Debug(), msg, kv) }
func Info(msg string, kv ...interface{})  { emit(logger.Info(), msg, kv) }
func Warn(msg string, kv ...interface{})  { emit(logger.Warn(), msg, kv) }
func Error(msg string, kv ...interface{}) { emit(logger.Error(), msg, kv) }

// emit attaches alternating key/value pairs to the event. A trailing key
// without a value is logged as-is under "arg".
func emit(e *zerolog.Event, msg string, kv []interface{}) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, kv[i+1])
	}
	if len(kv)%2 == 1 {
		e = e.Interface("arg", kv[len(kv)-1])
	}
	e.Msg(msg)
}
