package bwboot

import (
	"context"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Enricher derives fields from a call context. Enrichers never fail; they return nil
// when the context carries nothing for them.
type Enricher func(ctx context.Context) []zap.Field

// Logger is the process-wide structured logger. It writes one JSON object per record
// and enriches records with invocation and per-call context obtained through Ctx.
type Logger struct {
	base      *zap.Logger
	enrichers []Enricher
	reserved  map[string]struct{} // keys the encoder writes itself
}

// CreateLogger builds the JSON console logger at info level. A nil writer means stdout.
func CreateLogger(w io.Writer) *Logger {
	if w == nil {
		w = os.Stdout
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.Lock(zapcore.AddSync(w)),
		zapcore.InfoLevel,
	)

	reserved := map[string]struct{}{}
	for _, k := range []string{
		encCfg.MessageKey, encCfg.LevelKey, encCfg.TimeKey, encCfg.NameKey,
		encCfg.CallerKey, encCfg.FunctionKey, encCfg.StacktraceKey,
	} {
		if k != "" {
			reserved[k] = struct{}{}
		}
	}

	// ambient fields are listed last so they win over invocation fields
	return &Logger{
		base:      zap.New(core),
		enrichers: []Enricher{invocationFields, LogFields},
		reserved:  reserved,
	}
}

// Zap returns the underlying logger without any context enrichment.
func (l *Logger) Zap() *zap.Logger {
	return l.base
}

// Ctx returns a logger that adds the enrichment fields for ctx to every record.
// Fields supplied by the caller, either per call or through With, are never overwritten
// by enrichment.
func (l *Logger) Ctx(ctx context.Context) *zap.Logger {
	extra := l.enrich(ctx)
	if len(extra) == 0 {
		return l.base
	}
	return l.base.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return &enrichCore{Core: c, extra: extra}
	}))
}

// Sync flushes buffered records.
func (l *Logger) Sync() error {
	return l.base.Sync()
}

// enrich runs all enrichers in order. A later enricher replaces an earlier field with
// the same key in place. Fields named like the encoder's own keys are dropped.
func (l *Logger) enrich(ctx context.Context) []zap.Field {
	var out []zap.Field
	idx := map[string]int{}
	for _, e := range l.enrichers {
		for _, f := range e(ctx) {
			if _, ok := l.reserved[f.Key]; ok {
				continue
			}
			if i, ok := idx[f.Key]; ok {
				out[i] = f
				continue
			}
			idx[f.Key] = len(out)
			out = append(out, f)
		}
	}
	return out
}

// enrichCore appends enrichment fields on write, skipping any key the caller has set.
type enrichCore struct {
	zapcore.Core
	extra []zap.Field
	keys  map[string]struct{}
}

func (c *enrichCore) With(fields []zapcore.Field) zapcore.Core {
	keys := make(map[string]struct{}, len(c.keys)+len(fields))
	for k := range c.keys {
		keys[k] = struct{}{}
	}
	for _, f := range fields {
		keys[f.Key] = struct{}{}
	}
	return &enrichCore{Core: c.Core.With(fields), extra: c.extra, keys: keys}
}

func (c *enrichCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

// Write puts enrichment ahead of the caller's fields so a zap.Namespace opened by the
// caller does not swallow it.
func (c *enrichCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	out := make([]zapcore.Field, 0, len(c.extra)+len(fields))
	for _, f := range c.extra {
		if _, ok := c.keys[f.Key]; ok {
			continue
		}
		if hasKey(fields, f.Key) {
			continue
		}
		out = append(out, f)
	}
	out = append(out, fields...)
	return c.Core.Write(ent, out)
}

func hasKey(fields []zapcore.Field, key string) bool {
	for _, f := range fields {
		if f.Key == key {
			return true
		}
	}
	return false
}
