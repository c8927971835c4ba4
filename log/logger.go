// Copyright 2024 The gtos Authors
// This file is part of the gtos library.
//
// The gtos library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The gtos library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the gtos library. If not, see <http://www.gnu.org/licenses/>.

// Package log is a leveled key/value logger. Call sites pass a message
// followed by alternating keys and values:
//
//	log.Info("Armed randomness request", "request", id, "due", slot)
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Lvl is a logging level.
type Lvl int

const (
	LvlCrit Lvl = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

const errorKey = "LOG_ERROR"

// String returns the name of a Lvl.
func (l Lvl) String() string {
	switch l {
	case LvlTrace:
		return "trce"
	case LvlDebug:
		return "dbug"
	case LvlInfo:
		return "info"
	case LvlWarn:
		return "warn"
	case LvlError:
		return "eror"
	case LvlCrit:
		return "crit"
	default:
		return "unknown"
	}
}

// LvlFromString returns the appropriate Lvl from a string name.
// Useful for parsing command line args and configuration files.
func LvlFromString(lvlString string) (Lvl, error) {
	switch strings.ToLower(lvlString) {
	case "trace", "trce":
		return LvlTrace, nil
	case "debug", "dbug":
		return LvlDebug, nil
	case "info":
		return LvlInfo, nil
	case "warn":
		return LvlWarn, nil
	case "error", "eror":
		return LvlError, nil
	case "crit":
		return LvlCrit, nil
	default:
		return LvlDebug, fmt.Errorf("unknown level: %v", lvlString)
	}
}

func (l Lvl) zerolog() zerolog.Level {
	switch l {
	case LvlTrace:
		return zerolog.TraceLevel
	case LvlDebug:
		return zerolog.DebugLevel
	case LvlInfo:
		return zerolog.InfoLevel
	case LvlWarn:
		return zerolog.WarnLevel
	case LvlError:
		return zerolog.ErrorLevel
	default:
		return zerolog.FatalLevel
	}
}

// Logger writes key/value pairs at a level.
type Logger interface {
	// New returns a new Logger that has this logger's context plus the given context
	New(ctx ...interface{}) Logger

	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	Crit(msg string, ctx ...interface{})
}

type logger struct {
	ctx []interface{}
}

type sink struct {
	zl zerolog.Logger
}

var root atomic.Pointer[sink]

func init() {
	root.Store(&sink{zl: newZerolog(os.Stderr, LvlInfo, false)})
}

// Setup replaces the output of the root logger. When json is false and w is a
// terminal, output is colored console text.
func Setup(w io.Writer, lvl Lvl, json bool) {
	root.Store(&sink{zl: newZerolog(w, lvl, json)})
}

func newZerolog(w io.Writer, lvl Lvl, json bool) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.ErrorFieldName = "err"
	if !json {
		color := false
		if f, ok := w.(*os.File); ok {
			color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
			if color {
				w = colorable.NewColorable(f)
			}
		}
		w = zerolog.ConsoleWriter{Out: w, NoColor: !color, TimeFormat: "01-02|15:04:05.000"}
	}
	return zerolog.New(w).Level(lvl.zerolog()).With().Timestamp().Logger()
}

// New returns a new logger with the given context.
// New is a convenient alias for Root().New
func New(ctx ...interface{}) Logger {
	return Root().New(ctx...)
}

// Root returns the root logger
func Root() Logger { return &logger{} }

func (l *logger) New(ctx ...interface{}) Logger {
	child := make([]interface{}, 0, len(l.ctx)+len(ctx))
	child = append(child, l.ctx...)
	child = append(child, normalize(ctx)...)
	return &logger{ctx: child}
}

func (l *logger) write(lvl Lvl, msg string, ctx []interface{}) {
	zl := root.Load().zl
	var ev *zerolog.Event
	switch lvl {
	case LvlTrace:
		ev = zl.Trace()
	case LvlDebug:
		ev = zl.Debug()
	case LvlInfo:
		ev = zl.Info()
	case LvlWarn:
		ev = zl.Warn()
	case LvlError:
		ev = zl.Error()
	default:
		ev = zl.WithLevel(zerolog.FatalLevel)
	}
	if ev == nil {
		return
	}
	appendPairs(ev, l.ctx)
	appendPairs(ev, normalize(ctx))
	ev.Msg(msg)
}

func appendPairs(ev *zerolog.Event, ctx []interface{}) {
	for i := 0; i+1 < len(ctx); i += 2 {
		key, ok := ctx[i].(string)
		if !ok {
			key = fmt.Sprint(ctx[i])
		}
		switch v := ctx[i+1].(type) {
		case error:
			if v == nil {
				ev.Interface(key, nil)
			} else {
				ev.Str(key, v.Error())
			}
		case fmt.Stringer:
			ev.Str(key, v.String())
		case time.Duration:
			ev.Str(key, v.String())
		default:
			ev.Interface(key, v)
		}
	}
}

func normalize(ctx []interface{}) []interface{} {
	// ctx needs to be even because it's a series of key/value pairs
	// no one wants to check for errors on logging functions,
	// so instead of erroring on bad input, we'll just make sure
	// that things are the right length and users can fix bugs
	// when they see the output looks wrong
	if len(ctx)%2 != 0 {
		ctx = append(ctx, nil, errorKey, "Normalized odd number of arguments by adding nil")
	}
	return ctx
}

func (l *logger) Trace(msg string, ctx ...interface{}) { l.write(LvlTrace, msg, ctx) }
func (l *logger) Debug(msg string, ctx ...interface{}) { l.write(LvlDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.write(LvlInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.write(LvlWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.write(LvlError, msg, ctx) }
func (l *logger) Crit(msg string, ctx ...interface{}) {
	l.write(LvlCrit, msg, ctx)
	os.Exit(1)
}

// Trace is a convenient alias for Root().Trace
func Trace(msg string, ctx ...interface{}) { Root().Trace(msg, ctx...) }

// Debug is a convenient alias for Root().Debug
func Debug(msg string, ctx ...interface{}) { Root().Debug(msg, ctx...) }

// Info is a convenient alias for Root().Info
func Info(msg string, ctx ...interface{}) { Root().Info(msg, ctx...) }

// Warn is a convenient alias for Root().Warn
func Warn(msg string, ctx ...interface{}) { Root().Warn(msg, ctx...) }

// Error is a convenient alias for Root().Error
func Error(msg string, ctx ...interface{}) { Root().Error(msg, ctx...) }

// Crit is a convenient alias for Root().Crit
func Crit(msg string, ctx ...interface{}) { Root().Crit(msg, ctx...) }
