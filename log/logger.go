package log

import (
	"os"
	"time"

	"github.com/go-stack/stack"
)

const (
	timeKey   = "t"
	lvlKey    = "lvl"
	msgKey    = "msg"
	errorKey  = "LOG15_ERROR"
	skipLevel = 2
)

// Lvl is a record severity. Lower values are more severe.
type Lvl int

const (
	LvlCrit Lvl = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

var (
	lvlNames   = [...]string{"crit", "eror", "warn", "info", "dbug", "trce"}
	lvlAligned = [...]string{"CRIT ", "ERROR", "WARN ", "INFO ", "DEBUG", "TRACE"}
)

// AlignedString returns the level name padded to five characters.
func (l Lvl) AlignedString() string {
	if l < LvlCrit || l > LvlTrace {
		panic("bad level")
	}
	return lvlAligned[l]
}

func (l Lvl) String() string {
	if l < LvlCrit || l > LvlTrace {
		panic("bad level")
	}
	return lvlNames[l]
}

// Record is a single log entry handed to a Handler.
type Record struct {
	Time time.Time
	Lvl  Lvl
	Msg  string
	Ctx  []interface{}
	Call stack.Call
}

// Logger writes leveled messages with key/value context to a Handler.
type Logger interface {
	// New returns a child logger carrying this logger's context plus ctx.
	New(ctx ...interface{}) Logger

	GetHandler() Handler
	SetHandler(h Handler)

	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	Crit(msg string, ctx ...interface{})
}

type logger struct {
	ctx []interface{}
	h   *swapHandler
}

func (l *logger) write(msg string, lvl Lvl, ctx []interface{}, skip int) {
	l.h.Log(&Record{
		Time: time.Now(),
		Lvl:  lvl,
		Msg:  msg,
		Ctx:  newContext(l.ctx, ctx),
		Call: stack.Caller(skip),
	})
}

func (l *logger) New(ctx ...interface{}) Logger {
	child := &logger{newContext(l.ctx, ctx), new(swapHandler)}
	child.SetHandler(l.h)
	return child
}

// newContext returns a fresh slice so children never share a backing array.
func newContext(prefix, suffix []interface{}) []interface{} {
	suffix = normalize(suffix)
	out := make([]interface{}, 0, len(prefix)+len(suffix))
	return append(append(out, prefix...), suffix...)
}

// normalize pads an odd key/value list instead of failing the call.
func normalize(ctx []interface{}) []interface{} {
	if len(ctx)%2 != 0 {
		ctx = append(ctx, nil, errorKey, "Normalized odd number of arguments by adding nil")
	}
	return ctx
}

func (l *logger) Trace(msg string, ctx ...interface{}) { l.write(msg, LvlTrace, ctx, skipLevel) }
func (l *logger) Debug(msg string, ctx ...interface{}) { l.write(msg, LvlDebug, ctx, skipLevel) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.write(msg, LvlInfo, ctx, skipLevel) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.write(msg, LvlWarn, ctx, skipLevel) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.write(msg, LvlError, ctx, skipLevel) }

func (l *logger) Crit(msg string, ctx ...interface{}) {
	l.write(msg, LvlCrit, ctx, skipLevel)
	os.Exit(1)
}

func (l *logger) GetHandler() Handler  { return l.h.Get() }
func (l *logger) SetHandler(h Handler) { l.h.Swap(h) }
