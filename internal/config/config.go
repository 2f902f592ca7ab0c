// Package config holds process-wide settings for skillforge.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/skillforge/internal/mastery"
	"github.com/abhisek/skillforge/internal/readiness"
	"github.com/abhisek/skillforge/internal/recommend"
)

// Config holds all runtime configuration.
type Config struct {
	// DBPath is the SQLite file. Empty means the XDG default.
	DBPath string

	Log       LogConfig
	HTTP      HTTPConfig
	Lock      LockConfig
	Decay     DecayConfig
	Recommend RecommendConfig
	Readiness readiness.Weights
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Mode        string // "dev" or "prod"
	Level       string
	HashUserIDs bool
	HashSalt    string
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr            string
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

// LockConfig selects the per-user lock. An empty RedisAddr means the
// in-process locker.
type LockConfig struct {
	RedisAddr string
	TTL       time.Duration
}

// DecayConfig holds the decay defaults applied to skills without their own
// rate.
type DecayConfig struct {
	Rate  float64
	Floor float64
}

// RecommendConfig bounds recommendation output.
type RecommendConfig struct {
	Limit   int
	Persist int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	opts := recommend.DefaultOptions()
	return Config{
		Log: LogConfig{
			Mode:        "dev",
			HashUserIDs: true,
		},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			CORSOrigins:     []string{"*"},
			ShutdownTimeout: 10 * time.Second,
		},
		Lock: LockConfig{
			TTL: 30 * time.Second,
		},
		Decay: DecayConfig{
			Rate:  mastery.DefaultDecayRate,
			Floor: 0,
		},
		Recommend: RecommendConfig{
			Limit:   opts.Limit,
			Persist: opts.Persist,
		},
		Readiness: readiness.DefaultWeights(),
	}
}

// LoadDotEnv loads variables from the given .env files (".env" when none
// are named). Missing files are ignored; variables already set in the
// environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// FromEnv builds a Config from SKILLFORGE_* environment variables, falling
// back to defaults for unset values.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()
	p := &envParser{}

	cfg.DBPath = p.str("SKILLFORGE_DB", cfg.DBPath)

	cfg.Log.Mode = p.str("SKILLFORGE_LOG_MODE", cfg.Log.Mode)
	cfg.Log.Level = p.str("SKILLFORGE_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.HashUserIDs = p.bool("SKILLFORGE_LOG_HASH_USER_IDS", cfg.Log.HashUserIDs)
	cfg.Log.HashSalt = p.str("SKILLFORGE_LOG_HASH_SALT", cfg.Log.HashSalt)

	cfg.HTTP.Addr = p.str("SKILLFORGE_HTTP_ADDR", cfg.HTTP.Addr)
	cfg.HTTP.CORSOrigins = p.list("SKILLFORGE_CORS_ORIGINS", cfg.HTTP.CORSOrigins)
	cfg.HTTP.ShutdownTimeout = p.duration("SKILLFORGE_SHUTDOWN_TIMEOUT", cfg.HTTP.ShutdownTimeout)

	cfg.Lock.RedisAddr = p.str("SKILLFORGE_REDIS_ADDR", cfg.Lock.RedisAddr)
	cfg.Lock.TTL = p.duration("SKILLFORGE_LOCK_TTL", cfg.Lock.TTL)

	cfg.Decay.Rate = p.float("SKILLFORGE_DECAY_RATE", cfg.Decay.Rate)
	cfg.Decay.Floor = p.float("SKILLFORGE_DECAY_FLOOR", cfg.Decay.Floor)

	cfg.Recommend.Limit = p.int("SKILLFORGE_RECOMMEND_LIMIT", cfg.Recommend.Limit)
	cfg.Recommend.Persist = p.int("SKILLFORGE_RECOMMEND_PERSIST", cfg.Recommend.Persist)

	cfg.Readiness.Mastery = p.float("SKILLFORGE_READINESS_W_MASTERY", cfg.Readiness.Mastery)
	cfg.Readiness.Coverage = p.float("SKILLFORGE_READINESS_W_COVERAGE", cfg.Readiness.Coverage)
	cfg.Readiness.Consistency = p.float("SKILLFORGE_READINESS_W_CONSISTENCY", cfg.Readiness.Consistency)
	cfg.Readiness.Goal = p.float("SKILLFORGE_READINESS_W_GOAL", cfg.Readiness.Goal)
	cfg.Readiness.Interview = p.float("SKILLFORGE_READINESS_W_INTERVIEW", cfg.Readiness.Interview)

	if len(p.errs) > 0 {
		return cfg, errors.Join(p.errs...)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if c.Decay.Rate < 0 {
		errs = append(errs, fmt.Errorf("SKILLFORGE_DECAY_RATE must be >= 0, got %g", c.Decay.Rate))
	}
	if c.Decay.Floor < mastery.MinLevel || c.Decay.Floor > mastery.MaxLevel {
		errs = append(errs, fmt.Errorf("SKILLFORGE_DECAY_FLOOR must be in [%d, %d], got %g", mastery.MinLevel, mastery.MaxLevel, c.Decay.Floor))
	}
	if c.Recommend.Limit < 1 {
		errs = append(errs, fmt.Errorf("SKILLFORGE_RECOMMEND_LIMIT must be >= 1, got %d", c.Recommend.Limit))
	}
	if c.Recommend.Persist < 0 || c.Recommend.Persist > c.Recommend.Limit {
		errs = append(errs, fmt.Errorf("SKILLFORGE_RECOMMEND_PERSIST must be in [0, %d], got %d", c.Recommend.Limit, c.Recommend.Persist))
	}
	if err := c.Readiness.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Lock.RedisAddr != "" && c.Lock.TTL <= 0 {
		errs = append(errs, fmt.Errorf("SKILLFORGE_LOCK_TTL must be positive, got %s", c.Lock.TTL))
	}
	return errors.Join(errs...)
}

// RecommendOptions returns the ranking options for this config.
func (c Config) RecommendOptions() recommend.Options {
	opts := recommend.DefaultOptions()
	opts.Limit = c.Recommend.Limit
	opts.Persist = c.Recommend.Persist
	return opts
}

type envParser struct {
	errs []error
}

func (p *envParser) lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(name)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (p *envParser) str(name, def string) string {
	if v, ok := p.lookup(name); ok {
		return v
	}
	return def
}

func (p *envParser) list(name string, def []string) []string {
	v, ok := p.lookup(name)
	if !ok {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (p *envParser) int(name string, def int) int {
	v, ok := p.lookup(name)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", name, err))
		return def
	}
	return i
}

func (p *envParser) float(name string, def float64) float64 {
	v, ok := p.lookup(name)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", name, err))
		return def
	}
	return f
}

func (p *envParser) bool(name string, def bool) bool {
	v, ok := p.lookup(name)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", name, err))
		return def
	}
	return b
}

func (p *envParser) duration(name string, def time.Duration) time.Duration {
	v, ok := p.lookup(name)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", name, err))
		return def
	}
	return d
}
