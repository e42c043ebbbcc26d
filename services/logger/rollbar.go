package logsvc

import (
	"io"
	"os"
	"time"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"github.com/rs/zerolog"

	"github.com/trezcool/simulado/core"
)

// RollbarLogger reports to Rollbar and prints locally through zerolog.
type RollbarLogger struct {
	std zerolog.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

// NewRollbarLogger returns a logger tagged with name. Local output is human-readable in debug mode, JSON otherwise.
func NewRollbarLogger(name string, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)

	var w io.Writer = os.Stdout
	if conf.Debug {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return &RollbarLogger{
		std: zerolog.New(w).With().Timestamp().Str("logger", name).Logger(),
	}
}

// NewRollbarLoggerMock returns a logger that neither reports nor prints.
func NewRollbarLoggerMock() *RollbarLogger {
	rollbar.SetEnabled(false)
	return &RollbarLogger{std: zerolog.Nop()}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// expected fmt: msg | error, map[string]interface{}, core.Operator
func (l RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	var opSet bool
	newArgs := make([]interface{}, 0, len(args)+1)
	newArgs = append(newArgs, msg)
	for _, arg := range args {
		if op, ok := arg.(core.Operator); ok {
			if !opSet { // only set one Operator
				rollbar.SetPerson(op.ID, op.Name, op.Email)
				opSet = true
			}
		} else {
			newArgs = append(newArgs, arg)
		}
	}
	if !opSet {
		rollbar.ClearPerson()
	}
	return newArgs
}

func (l RollbarLogger) print(level zerolog.Level, msg string, args []interface{}) {
	ev := l.std.WithLevel(level)
	for _, arg := range args {
		switch a := arg.(type) {
		case error:
			ev = ev.AnErr("error", a)
		case map[string]interface{}:
			ev = ev.Fields(a)
		case core.Operator:
			ev = ev.Str("operator_id", a.ID).Str("operator_email", a.Email)
		default:
			ev = ev.Interface("extra", a)
		}
	}
	ev.Msg(msg)
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rollbar.Debug(l.prepare(msg, args)...)
	l.print(zerolog.DebugLevel, msg, args)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rollbar.Info(l.prepare(msg, args)...)
	l.print(zerolog.InfoLevel, msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(l.prepare(msg, args)...)
	l.print(zerolog.WarnLevel, msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(l.prepare(msg, args)...)
	l.print(zerolog.ErrorLevel, msg, args)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rollbar.Critical(l.prepare(msg, args)...)
	l.print(zerolog.FatalLevel, msg, args)
	rollbar.Close()
	os.Exit(1)
}
