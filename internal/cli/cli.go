package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/planboard/internal/config"
	"github.com/matzehuels/planboard/pkg/buildinfo"
	"github.com/matzehuels/planboard/pkg/cache"
	"github.com/matzehuels/planboard/pkg/pipeline"
	"github.com/matzehuels/planboard/pkg/source"
	"github.com/matzehuels/planboard/pkg/timeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "planboard"

	// memoryCacheEntries bounds the in-process cache used by serve and view.
	memoryCacheEntries = 512
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is resolved before any subcommand runs.
	Config config.Config

	configPath string
	verbose    bool
	env        map[string]string
	stderr     io.Writer // spinner output
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
		env:    config.Environ(),
		stderr: w,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Planboard lays out project timelines as packed Gantt lanes",
		Long:          `Planboard computes Gantt-style timeline layouts: it resolves a month, quarter, half-year or year window, packs overlapping items into lanes and renders the result as SVG, PNG, PDF or JSON.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cfg, err := config.Load(config.LoadInput{ConfigPath: c.configPath, Env: c.env})
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			c.Config = cfg
			if cfg.Sources.User != "" {
				c.Logger.Debug("loaded config", "path", cfg.Sources.User)
			}
			if cfg.Sources.Explicit != "" {
				c.Logger.Debug("loaded config", "path", cfg.Sources.Explicit)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/planboard/config.toml)")

	// Register all subcommands
	root.AddCommand(c.windowCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.conflictsCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())
	registerCompletions(root)

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	kind := c.Config.Cache.Kind
	if noCache {
		kind = config.CacheNone
	}
	cc, err := c.newCache(ctx, kind)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(cc, nil, loggerFromContext(ctx))
	runner.TTL = c.Config.Cache.TTL.Duration
	return runner, nil
}

// newCache opens the cache backend of the given kind. An unusable file
// cache directory degrades to no caching.
func (c *CLI) newCache(ctx context.Context, kind string) (cache.Cache, error) {
	switch kind {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheMemory:
		return cache.NewMemoryCache(memoryCacheEntries), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.Config.Cache.RedisAddr,
			Password: c.Config.Cache.RedisPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		return rc, nil
	}

	dir, err := c.cacheDir()
	if err != nil {
		loggerFromContext(ctx).Warn("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newSource opens the configured item source. A non-empty path always
// selects a file source.
func (c *CLI) newSource(ctx context.Context, path string) (source.Source, func(), error) {
	if path != "" || c.Config.Source.Kind == config.SourceFile {
		if path == "" {
			path = c.Config.Source.Path
		}
		if path == "" {
			return nil, nil, fmt.Errorf("no item file given (pass one or set [source] path)")
		}
		src, err := source.NewFileSource(path)
		if err != nil {
			return nil, nil, err
		}
		return src, func() {}, nil
	}

	sp := c.spin(ctx, "Connecting to MongoDB ("+c.Config.Source.Database+")...")
	src, err := source.NewMongoSource(ctx, source.MongoConfig{
		URI:        c.Config.Source.MongoURI,
		Database:   c.Config.Source.Database,
		Collection: c.Config.Source.Collection,
	})
	if err != nil {
		sp.StopWithError("MongoDB unavailable")
		return nil, nil, err
	}
	sp.Stop()

	closeFn := func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := src.Close(closeCtx); err != nil {
			c.Logger.Warn("close mongo", "error", err)
		}
	}
	return src, closeFn, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the XDG default
// (~/.cache/planboard/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	if dir := config.CacheDir(c.env); dir != "" {
		return dir, nil
	}
	return "", fmt.Errorf("cannot determine cache directory (set XDG_CACHE_HOME or HOME)")
}

// =============================================================================
// Options Helpers
// =============================================================================

// navFlags are the window and layout flags shared by several commands.
type navFlags struct {
	granularity string
	cursor      string
	offset      int
	search      string
	today       string
	tieBreak    string
	collation   string
}

// register adds the navigation flags to cmd. Empty values fall back to
// the configuration.
func (f *navFlags) register(cmd *cobra.Command, layout bool) {
	cmd.Flags().StringVarP(&f.granularity, "granularity", "g", "", "window size: month, quarter, half, year (default from config)")
	cmd.Flags().StringVar(&f.cursor, "cursor", "", "any date inside the window, YYYY-MM-DD (default: today)")
	cmd.Flags().IntVar(&f.offset, "offset", 0, "shift the window by this many periods")
	cmd.Flags().StringVar(&f.today, "today", "", "date of the today marker, YYYY-MM-DD (default: now)")
	if !layout {
		return
	}
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "only show items whose title or subtitle contains this text")
	cmd.Flags().StringVar(&f.tieBreak, "tie-break", "", "order of items starting on the same day: title, input")
	cmd.Flags().StringVar(&f.collation, "collation", "", "language used to sort titles, e.g. de, sv")
}

// options merges the flags over the configured defaults and validates the
// result for layout.
func (c *CLI) options(f navFlags) (pipeline.Options, error) {
	opts := c.Config.PipelineDefaults()
	opts.Logger = c.Logger
	opts.Offset = f.offset
	opts.Search = f.search

	if f.granularity != "" {
		opts.Granularity = f.granularity
	}
	if f.tieBreak != "" {
		opts.TieBreak = f.tieBreak
	}
	if f.collation != "" {
		opts.Collation = f.collation
	}

	opts.Today = time.Now()
	if f.today != "" {
		today, err := timeline.ParseDate(f.today)
		if err != nil {
			return opts, err
		}
		opts.Today = today
	}
	opts.Cursor = opts.Today
	if f.cursor != "" {
		cursor, err := timeline.ParseDate(f.cursor)
		if err != nil {
			return opts, err
		}
		opts.Cursor = cursor
	}

	if err := opts.ValidateForLayout(); err != nil {
		return opts, err
	}
	return opts, nil
}

// loadItems reads a snapshot for the window of opts from the configured
// source or from path.
func (c *CLI) loadItems(ctx context.Context, path string, opts pipeline.Options) (source.Snapshot, error) {
	src, closeFn, err := c.newSource(ctx, path)
	if err != nil {
		return source.Snapshot{}, err
	}
	defer closeFn()

	win, err := opts.Window()
	if err != nil {
		return source.Snapshot{}, err
	}
	prog := newProgress(loggerFromContext(ctx))
	snap, err := source.LoadWindow(ctx, src, win)
	if err != nil {
		return source.Snapshot{}, fmt.Errorf("load items from %s: %w", src.Name(), err)
	}
	for _, w := range snap.Warnings {
		printWarning("%s", w)
	}
	prog.done("Loaded items", "count", len(snap.Items), "source", src.Name(), "window", win.Label())
	return snap, nil
}
