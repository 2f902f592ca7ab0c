// Package logger is a thin key-value wrapper over zap. Learner ids are
// hashed before they reach the log sink.
package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	SugaredLogger *zap.SugaredLogger
	redact        redaction
}

type redaction struct {
	enabled bool
	salt    string
}

// Options configures New.
type Options struct {
	// Mode is "prod"/"production" for JSON output, anything else for the
	// development console encoder.
	Mode string
	// Level is a zap level name; empty means debug in development and
	// info in production.
	Level string
	// HashUserIDs replaces user id values with a salted hash.
	HashUserIDs bool
	HashSalt    string
}

func New(opts Options) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(opts.Mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	if opts.Level != "" {
		lvl, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{
		SugaredLogger: zapLogger.Sugar(),
		redact:        redaction{enabled: opts.HashUserIDs, salt: opts.HashSalt},
	}, nil
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// FromZap wraps an existing zap logger, mainly for tests using zaptest
// observers.
func FromZap(z *zap.Logger, hashUserIDs bool) *Logger {
	return &Logger{SugaredLogger: z.Sugar(), redact: redaction{enabled: hashUserIDs}}
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.SugaredLogger.Debugw(msg, l.sanitizeKVs(keysAndValues)...)
}
func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.SugaredLogger.Infow(msg, l.sanitizeKVs(keysAndValues)...)
}
func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.SugaredLogger.Warnw(msg, l.sanitizeKVs(keysAndValues)...)
}
func (l *Logger) Error(msg string, keysAndValues ...any) {
	l.SugaredLogger.Errorw(msg, l.sanitizeKVs(keysAndValues)...)
}
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{
		SugaredLogger: l.SugaredLogger.With(l.sanitizeKVs(keysAndValues)...),
		redact:        l.redact,
	}
}

func (l *Logger) sanitizeKVs(kv []any) []any {
	if len(kv) == 0 || !l.redact.enabled {
		return kv
	}
	out := make([]any, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key := toString(kv[i])
		val := kv[i+1]
		if isHashKey(strings.ToLower(key)) {
			val = hashValue(l.redact.salt, val)
		}
		out = append(out, key, val)
	}
	return out
}

func isHashKey(key string) bool {
	return key == "user" || strings.Contains(key, "user_id")
}

func hashValue(salt string, val any) string {
	raw := toString(val)
	if raw == "" {
		return ""
	}
	h := sha256.New()
	if salt != "" {
		_, _ = h.Write([]byte(salt))
	}
	_, _ = h.Write([]byte(raw))
	sum := hex.EncodeToString(h.Sum(nil))
	return "hash:" + sum[:12]
}

func toString(v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
