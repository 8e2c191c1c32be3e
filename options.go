package i18nmig

import (
	"runtime"

	"github.com/rs/zerolog"
)

// passConfig holds the settings shared by the file passes (Extractor,
// Rewriter, HookInjector).
type passConfig struct {
	processors map[string]SourceProcessor // Keyed by lower-case extension
	workers    int
	logger     zerolog.Logger

	root      string
	dryRun    bool
	backupDir string
	dirty     DirtyChecker
}

// Option is a functional option for configuring a pass.
type Option func(*passConfig)

func newPassConfig(opts []Option) passConfig {
	cfg := passConfig{
		processors: make(map[string]SourceProcessor),
		workers:    runtime.GOMAXPROCS(0),
		logger:     zerolog.Nop(),
		root:       ".",
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.workers < 1 {
		cfg.workers = 1
	}
	return cfg
}

// WithProcessor registers a source processor for its extensions. A later
// registration for the same extension wins.
func WithProcessor(p SourceProcessor) Option {
	return func(c *passConfig) {
		for _, ext := range p.Extensions() {
			c.processors[normalizeExt(ext)] = p
		}
	}
}

// WithWorkers bounds the number of files processed concurrently.
func WithWorkers(n int) Option {
	return func(c *passConfig) {
		c.workers = n
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(c *passConfig) {
		c.logger = l
	}
}

// WithRoot sets the project root used for backups and relative paths.
func WithRoot(root string) Option {
	return func(c *passConfig) {
		c.root = root
	}
}

// WithDryRun reports planned changes without writing any file.
func WithDryRun(dryRun bool) Option {
	return func(c *passConfig) {
		c.dryRun = dryRun
	}
}

// WithBackupDir copies each original file under dir before replacing it.
func WithBackupDir(dir string) Option {
	return func(c *passConfig) {
		c.backupDir = dir
	}
}

// WithRequireClean skips files the checker reports as having uncommitted
// changes.
func WithRequireClean(checker DirtyChecker) Option {
	return func(c *passConfig) {
		c.dirty = checker
	}
}
