// Package logger owns the process zerolog logger
// it reads LOG_* through config/raw so config can log without an import cycle
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"hostdesk/internal/platform/config/raw"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the logging type passed around the codebase
type Logger = zerolog.Logger

// Options configures the root logger
type Options struct {
	Level   string
	Format  string // console or json
	Service string
	Writer  io.Writer
	Caller  bool

	// File tees json lines into a size rotated file when set
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// FromEnv reads LOG_* into Options
func FromEnv() Options {
	rc := raw.New().Prefix("LOG_")
	return Options{
		Level:      rc.Get("LEVEL", "debug"),
		Format:     strings.ToLower(rc.Get("FORMAT", "console")),
		Service:    rc.Get("SERVICE", ""),
		Caller:     rc.GetBool("CALLER", false),
		File:       strings.TrimSpace(rc.Get("FILE", "")),
		MaxSizeMB:  rc.GetInt("FILE_MAX_MB", 100),
		MaxBackups: rc.GetInt("FILE_BACKUPS", 3),
		MaxAgeDays: rc.GetInt("FILE_MAX_AGE_DAYS", 28),
		Compress:   rc.GetBool("FILE_COMPRESS", false),
	}
}

var (
	once sync.Once
	root atomic.Pointer[Logger]
)

// Init builds the root logger, only the first call has an effect
func Init(opt Options) {
	once.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano
		l := build(opt)
		root.Store(&l)
	})
}

// Get returns the root logger, initializing it from env on first use
func Get() *Logger {
	if l := root.Load(); l != nil {
		return l
	}
	Init(FromEnv())
	return root.Load()
}

func build(opt Options) Logger {
	var w io.Writer = os.Stdout
	if opt.Writer != nil {
		w = opt.Writer
	}
	if opt.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	if fw := fileWriter(opt); fw != nil {
		w = io.MultiWriter(w, fw)
	}

	lc := zerolog.New(w).Level(parseLevel(opt.Level)).With().Timestamp()
	if bi, ok := debug.ReadBuildInfo(); ok {
		lc = lc.Str("go_version", bi.GoVersion)
	}
	if opt.Service != "" {
		lc = lc.Str("service", opt.Service)
	}
	if opt.Caller {
		lc = lc.Caller()
	}
	return lc.Logger()
}

// fileWriter is nil without a file, the file always gets json whatever Format says
func fileWriter(opt Options) io.Writer {
	if opt.File == "" {
		return nil
	}
	return &lumberjack.Logger{
		Filename:   opt.File,
		MaxSize:    opt.MaxSizeMB,
		MaxBackups: opt.MaxBackups,
		MaxAge:     opt.MaxAgeDays,
		Compress:   opt.Compress,
	}
}

// parseLevel falls back to debug for anything zerolog does not know
func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.DebugLevel
	}
	return lvl
}

type reqKey struct{}

// WithRequest stores the request id that C adds to every line
func WithRequest(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		return ctx
	}
	return context.WithValue(ctx, reqKey{}, reqID)
}

// RequestID returns the id WithRequest stored, empty when none
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(reqKey{}).(string)
	return id
}

// C returns the root logger with the request id from ctx, if any
func C(ctx context.Context) *Logger {
	l := Get()
	id := RequestID(ctx)
	if id == "" {
		return l
	}
	ll := l.With().Str("request_id", id).Logger()
	return &ll
}

// Named returns the root logger tagged with component
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	ll := Get().With().Str("component", component).Logger()
	return &ll
}
