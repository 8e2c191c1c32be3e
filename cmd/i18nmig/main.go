// Command i18nmig moves hard-coded UI strings out of JSX/TSX and HTML
// sources into lookup keys and resource bundles.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/ZaguanLabs/i18nmig"
	"github.com/ZaguanLabs/i18nmig/cache"
	"github.com/ZaguanLabs/i18nmig/config"
	"github.com/ZaguanLabs/i18nmig/processor"
	"github.com/ZaguanLabs/i18nmig/provider"
	"github.com/ZaguanLabs/i18nmig/vcs"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Build-time variables (can be overridden with ldflags)
var (
	version   = i18nmig.Version
	commit    = i18nmig.GitCommit
	buildDate = i18nmig.BuildDate
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCommand(&app{stdout: stdout, stderr: stderr})
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

// app carries the global flags and the state resolved from them.
type app struct {
	stdout io.Writer
	stderr io.Writer

	root       string
	configPath string
	logLevel   string

	cfg    *config.Config
	logger zerolog.Logger
}

// writeFlags are shared by the passes that modify sources.
type writeFlags struct {
	dryRun       bool
	backup       string
	requireClean bool
}

func (f *writeFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Report planned changes without writing sources")
	cmd.Flags().StringVar(&f.backup, "backup", "", "Copy originals under this directory before replacing them")
	cmd.Flags().BoolVar(&f.requireClean, "require-clean", false, "Skip files with uncommitted git changes")
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           i18nmig.Name,
		Short:         i18nmig.Description,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.root, "root", "", "Project root (default: the config file's directory)")
	pf.StringVar(&a.configPath, "config", "", "Config file (default: <root>/"+config.FileName+")")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(
		newExtractCommand(a),
		newKeysCommand(a),
		newRewriteCommand(a),
		newHooksCommand(a),
		newRunCommand(a),
		newStatusCommand(a),
		newSuggestCommand(a),
		newVersionCommand(a),
	)
	return root
}

// setup loads the configuration and builds the logger.
func (a *app) setup() error {
	path := a.configPath
	if path == "" {
		dir := a.root
		if dir == "" {
			dir = "."
		}
		path = filepath.Join(dir, config.FileName)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	// With an explicit --config, --root replaces the configured root;
	// otherwise the config was found inside --root and resolved against it.
	if a.root != "" && a.configPath != "" {
		cfg.Root = a.root
	}
	if cfg.Root, err = filepath.Abs(cfg.Root); err != nil {
		return fmt.Errorf("resolving root: %w", err)
	}

	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	a.cfg = cfg
	a.logger = zerolog.New(zerolog.ConsoleWriter{Out: a.stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().
		Logger()
	a.logger.Debug().Str("config", path).Str("root", cfg.Root).Msg("configuration loaded")
	return nil
}

// pipeline builds a Pipeline from the configuration. w is nil for passes
// that never write sources.
func (a *app) pipeline(w *writeFlags) (*i18nmig.Pipeline, error) {
	dict, err := a.cfg.LoadDictionary()
	if err != nil {
		return nil, err
	}

	var opts []i18nmig.Option
	if a.cfg.Workers > 0 {
		opts = append(opts, i18nmig.WithWorkers(a.cfg.Workers))
	}
	for _, p := range processor.Defaults(a.cfg.RuntimeAPI(), a.cfg.SkipAttributes) {
		opts = append(opts, i18nmig.WithProcessor(p))
	}

	if w != nil {
		opts = append(opts, i18nmig.WithDryRun(w.dryRun))
		if w.backup != "" {
			dir, err := filepath.Abs(w.backup)
			if err != nil {
				return nil, fmt.Errorf("resolving backup directory: %w", err)
			}
			opts = append(opts, i18nmig.WithBackupDir(dir))
		}
		if w.requireClean {
			repo, err := vcs.Open(a.cfg.Root)
			if err != nil {
				return nil, err
			}
			if files, err := repo.DirtyFiles(); err == nil && len(files) > 0 {
				a.logger.Info().Int("files", len(files)).Msg("files with uncommitted changes will be skipped")
			}
			opts = append(opts, i18nmig.WithRequireClean(repo))
		}
	}

	return i18nmig.NewPipeline(i18nmig.PipelineConfig{
		Root:            a.cfg.Root,
		Include:         a.cfg.Include,
		Exclude:         a.cfg.Exclude,
		Artifacts:       a.cfg.ArtifactPaths(),
		PrimaryLocale:   a.cfg.Locales.Primary,
		SecondaryLocale: a.cfg.Locales.Secondary,
		MaxKeyLength:    a.cfg.KeyLength(),
		Dictionary:      dict,
		Options:         opts,
		Logger:          a.logger,
	}), nil
}

// sources sets up and lists the files a file pass runs over.
func (a *app) sources(w *writeFlags) (*i18nmig.Pipeline, []string, error) {
	if err := a.setup(); err != nil {
		return nil, nil, err
	}
	p, err := a.pipeline(w)
	if err != nil {
		return nil, nil, err
	}
	paths, err := p.Discover()
	if err != nil {
		return nil, nil, fmt.Errorf("discovering sources: %w", err)
	}
	a.logger.Debug().Int("files", len(paths)).Msg("sources discovered")
	return p, paths, nil
}

func newExtractCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "extract",
		Short: "Scan sources and write the extraction report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, paths, err := a.sources(nil)
			if err != nil {
				return err
			}
			ext, err := p.Extract(cmd.Context(), paths)
			if err != nil {
				return err
			}
			a.printSummary(ext.Summary)
			a.printArtifact("report", p.Artifacts().Report)
			return nil
		},
	}
}

func newKeysCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Assign lookup keys and write the map, bundles and review file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			p, err := a.pipeline(nil)
			if err != nil {
				return err
			}
			gen, err := p.Keys(cmd.Context())
			if err != nil {
				return err
			}
			a.printGeneration(gen)
			a.printArtifact("map", p.Artifacts().Map)
			a.printArtifact("review", p.Artifacts().Review)
			return nil
		},
	}
}

func newRewriteCommand(a *app) *cobra.Command {
	var w writeFlags
	cmd := &cobra.Command{
		Use:   "rewrite",
		Short: "Replace mapped literals with lookup calls",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, paths, err := a.sources(&w)
			if err != nil {
				return err
			}
			report, err := p.Rewrite(cmd.Context(), paths)
			if err != nil {
				return err
			}
			a.printRewrite(report)
			return nil
		},
	}
	w.register(cmd)
	return cmd
}

func newHooksCommand(a *app) *cobra.Command {
	var w writeFlags
	cmd := &cobra.Command{
		Use:   "hooks",
		Short: "Bind the lookup function inside components that use it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, paths, err := a.sources(&w)
			if err != nil {
				return err
			}
			report, err := p.Hooks(cmd.Context(), paths)
			if err != nil {
				return err
			}
			a.printRewrite(report)
			return nil
		},
	}
	w.register(cmd)
	return cmd
}

func newRunCommand(a *app) *cobra.Command {
	var w writeFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run extract, keys, rewrite and hooks in one go",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			p, err := a.pipeline(&w)
			if err != nil {
				return err
			}

			start := time.Now()
			result, err := p.Run(cmd.Context())
			if result != nil {
				for _, s := range result.Summaries() {
					a.printSummary(s)
				}
				if result.Generation != nil {
					a.printPending(len(result.Generation.Pending))
				}
				if result.Rewrite != nil && result.Rewrite.DryRun {
					a.printDryRun()
				}
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "\nDone in %v\n", time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
	w.register(cmd)
	return cmd
}

func newStatusCommand(a *app) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Summarize the artifacts without changing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			st, err := i18nmig.Status(a.cfg.ArtifactPaths(), a.cfg.Locales.Primary, a.cfg.Locales.Secondary)
			if err != nil {
				return err
			}
			if jsonOutput {
				return outputJSON(a.stdout, st)
			}
			a.printStatus(st)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newSuggestCommand(a *app) *cobra.Command {
	var (
		dryRun bool
		mock   bool
	)
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Request machine suggestions for pending secondary entries",
		Long: "Request machine suggestions for the secondary-locale keys the review file\n" +
			"lists as pending. Suggestions are written next to the bundles for review;\n" +
			"the bundles themselves are never modified.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.setup(); err != nil {
				return err
			}

			artifacts := a.cfg.ArtifactPaths()
			items, err := i18nmig.PendingItems(artifacts, a.cfg.Locales.Secondary)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(a.stdout, "Nothing pending.")
				return nil
			}
			if dryRun {
				a.printPendingItems(items)
				return nil
			}

			prov, model, err := a.suggestionProvider(mock)
			if err != nil {
				return err
			}
			sc, closeCache, err := a.suggestionCache(model)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeCache(); err != nil {
					a.logger.Warn().Err(err).Msg("closing suggestion cache")
				}
			}()

			opts := []i18nmig.SuggesterOption{
				i18nmig.WithSuggestionCache(sc),
				i18nmig.WithSuggestLocales(a.cfg.Locales.Primary, a.cfg.Locales.Secondary),
				i18nmig.WithModel(model),
				i18nmig.WithGlossary(a.cfg.Suggest.Glossary),
				i18nmig.WithSuggestLogger(a.logger),
			}
			if a.cfg.Suggest.BatchSize > 0 {
				opts = append(opts, i18nmig.WithBatchSize(a.cfg.Suggest.BatchSize))
			}
			if a.cfg.Suggest.Context != "" {
				opts = append(opts, i18nmig.WithContext(a.cfg.Suggest.Context))
			}

			fmt.Fprintf(a.stderr, "Requesting suggestions for %d entries (%s → %s)...\n",
				len(items), a.cfg.Locales.Primary, a.cfg.Locales.Secondary)

			result, suggestErr := i18nmig.NewSuggester(prov, opts...).Suggest(cmd.Context(), items)
			if result != nil && len(result.Suggestions) > 0 {
				if err := i18nmig.SaveSuggestions(artifacts, a.cfg.Locales.Secondary, result.Suggestions); err != nil {
					return err
				}
			}
			if suggestErr != nil {
				return fmt.Errorf("suggestions failed: %w", suggestErr)
			}

			a.printSuggestions(result)
			a.printArtifact("suggestions", artifacts.SuggestionsPath(a.cfg.Locales.Secondary))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List pending entries without calling the provider")
	cmd.Flags().BoolVar(&mock, "mock", false, "Use the offline mock provider")
	return cmd
}

// suggestionProvider returns the provider stack and the model name used in
// cache keys.
func (a *app) suggestionProvider(mock bool) (i18nmig.AIProvider, string, error) {
	if mock {
		return provider.NewMockProvider(), "mock", nil
	}
	if a.cfg.APIKey == "" {
		return nil, "", errors.New("OpenAI API key required (OPENAI_API_KEY env)")
	}

	openai := provider.NewOpenAIProvider(provider.OpenAIConfig{
		APIKey:  a.cfg.APIKey,
		Model:   a.cfg.Suggest.Model,
		BaseURL: a.cfg.Suggest.BaseURL,
	})

	var p i18nmig.AIProvider = openai
	if a.cfg.Suggest.RPM > 0 {
		p = i18nmig.NewRateLimitedProvider(p, a.cfg.Suggest.RPM, 1)
	}
	return i18nmig.NewRetryingProvider(p, i18nmig.DefaultBackoff()), openai.Model(), nil
}

// suggestionCache opens Redis when configured, or the file cache. The
// returned function persists or closes the cache.
func (a *app) suggestionCache(model string) (i18nmig.SuggestionCache, func() error, error) {
	s := a.cfg.Suggest
	if s.RedisURL != "" {
		rc, err := cache.NewRedisCache(cache.RedisConfig{URL: s.RedisURL, TTL: s.CacheTTL})
		if err != nil {
			return nil, nil, &i18nmig.CacheError{Message: "connecting to redis", Cause: err}
		}
		return rc, rc.Close, nil
	}

	fc, err := cache.OpenFileCache(a.cfg.CacheFilePath(), s.CacheTTL, map[string]string{
		"model": model,
		"tool":  i18nmig.UserAgent(),
	})
	if err != nil {
		return nil, nil, &i18nmig.CacheError{Message: "opening cache file", Cause: err}
	}
	return fc, fc.Save, nil
}

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(a.stdout, "%s %s\n", i18nmig.Name, version)
			if commit != "unknown" && commit != "" {
				fmt.Fprintf(a.stdout, "  commit:  %s\n", commit)
			}
			if buildDate != "unknown" && buildDate != "" {
				fmt.Fprintf(a.stdout, "  built:   %s\n", buildDate)
			}
		},
	}
}
