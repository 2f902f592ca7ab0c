package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillforge/internal/config"
	"github.com/abhisek/skillforge/internal/engine"
	"github.com/abhisek/skillforge/internal/observability"
	"github.com/abhisek/skillforge/internal/platform/logger"
	"github.com/abhisek/skillforge/internal/store"
	"github.com/abhisek/skillforge/internal/userlock"
)

var rootCmd = &cobra.Command{
	Use:   "skillforge",
	Short: "Skill-graph recommendation and mastery-decay engine",
	Long: "skillforge keeps a prerequisite graph of skills, decays each learner's mastery over time,\n" +
		"unlocks skills as prerequisites are mastered, and recommends what to learn next.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides SKILLFORGE_DB env var)")
	rootCmd.PersistentFlags().String("log", "", "Log mode: dev or prod (overrides SKILLFORGE_LOG_MODE)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Optional .env file to load before reading the environment")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(recomputeCmd)
	rootCmd.AddCommand(activityCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(readinessCmd)
	rootCmd.AddCommand(reviewsCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then SKILLFORGE_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// loadConfig reads .env, the environment, and the persistent flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadDotEnv(envFile); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.FromEnv()
	if err != nil {
		return cfg, fmt.Errorf("read environment: %w", err)
	}
	if mode, _ := cmd.Flags().GetString("log"); mode != "" {
		cfg.Log.Mode = mode
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// runtime is everything a command needs to talk to the engine.
type runtime struct {
	cfg     config.Config
	log     *logger.Logger
	store   *store.Store
	metrics *observability.Metrics
	engine  *engine.Service
	closers []func() error
}

func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			rt.log.Warn("close failed", "error", err)
		}
	}
	rt.log.Sync()
}

// openRuntime opens the store, loads the catalog, and builds the engine.
func openRuntime(ctx context.Context, cmd *cobra.Command) (*runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Options{
		Mode:        cfg.Log.Mode,
		Level:       cfg.Log.Level,
		HashUserIDs: cfg.Log.HashUserIDs,
		HashSalt:    cfg.Log.HashSalt,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	rt := &runtime{cfg: cfg, log: log, metrics: observability.NewMetrics()}

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	rt.store, err = store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	rt.closers = append(rt.closers, rt.store.Close)

	var locker userlock.Locker
	if cfg.Lock.RedisAddr != "" {
		rdb, err := userlock.NewRedisClient(ctx, cfg.Lock.RedisAddr)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		rt.closers = append(rt.closers, rdb.Close)
		locker = userlock.NewRedisLocker(rdb, userlock.RedisOptions{TTL: cfg.Lock.TTL})
		log.Info("using redis learner lock", "addr", cfg.Lock.RedisAddr)
	}

	opts := engine.DefaultOptions()
	opts.DecayRate = cfg.Decay.Rate
	opts.DecayFloor = cfg.Decay.Floor
	opts.Recommend = cfg.RecommendOptions()
	opts.Readiness = cfg.Readiness

	rt.engine, err = engine.New(engine.Deps{
		Catalog:  rt.store.CatalogRepo(),
		Learners: rt.store.LearnerRepo(),
		Locker:   locker,
		Logger:   log,
		Metrics:  rt.metrics,
	}, opts)
	if err != nil {
		rt.Close()
		return nil, err
	}
	if err := rt.engine.Bootstrap(ctx); err != nil {
		rt.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return rt, nil
}
