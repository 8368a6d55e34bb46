// Package resolver answers "which flags should the completion engine use
// for this file". The compilation database wins when it has an entry;
// otherwise the configured user flags, include directories and language
// flags are used.
package resolver

import (
	"os"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/albertocavalcante/ccflags/internal/log"
	"github.com/albertocavalcante/ccflags/pkg/compdb"
	"github.com/albertocavalcante/ccflags/pkg/config"
	"github.com/albertocavalcante/ccflags/pkg/flags"
)

// DefaultCacheSize bounds the number of memoised results.
const DefaultCacheSize = 1024

// Result is the answer handed to the editor host.
type Result struct {
	Flags   []string `json:"flags"`
	DoCache bool     `json:"do_cache"`
}

// Source tells where a result's flags came from.
type Source string

const (
	SourceDatabase Source = "database"
	SourceFallback Source = "fallback"
)

// Resolver computes flags for files. It is safe for concurrent use.
type Resolver struct {
	cfg    *config.Config
	dbPath string

	mu sync.RWMutex
	db *compdb.Database

	cache *lru.Cache[string, cached]
}

type cached struct {
	result Result
	source Source
}

// Option configures a Resolver.
type Option func(*options)

type options struct {
	cacheSize int
	db        *compdb.Database
	dbSet     bool
}

// WithCacheSize sets the memoisation bound. Zero or negative disables
// memoisation even when the config enables caching.
func WithCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// WithDatabase uses db instead of opening the configured database.
func WithDatabase(db *compdb.Database) Option {
	return func(o *options) {
		o.db = db
		o.dbSet = true
	}
}

// New builds a resolver from cfg. The config is copied; later changes to
// cfg have no effect. A database that fails to load is logged and treated
// as absent.
func New(cfg *config.Config, opts ...Option) *Resolver {
	o := options{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(&o)
	}

	if cfg == nil {
		cfg = config.NewConfig()
	}
	cfg = cfg.Clone()
	if cfg.Dir == "" {
		// relative include dirs and database paths need an anchor
		if wd, err := os.Getwd(); err == nil {
			cfg.Dir = wd
		}
	}
	if lang := cfg.Language; lang != "" && lang != flags.LangAuto && !flags.IsLanguage(lang) {
		log.Component("resolver").Warn("unknown language, no -x flag will be emitted",
			"language", lang, "known", flags.Languages())
	}
	r := &Resolver{
		cfg:    cfg,
		dbPath: cfg.DatabasePath(),
	}

	if o.dbSet {
		r.db = o.db
	} else {
		r.db = openDatabase(r.dbPath)
	}

	if r.cfg.CacheEnabled() && o.cacheSize > 0 {
		// lru.New only fails for a non-positive size.
		r.cache, _ = lru.New[string, cached](o.cacheSize)
	}
	return r
}

func openDatabase(path string) *compdb.Database {
	db, err := compdb.Open(path)
	if err != nil {
		log.Component("resolver").Warn("compilation database unavailable, using configured flags",
			"path", path, "error", err)
		return nil
	}
	return db
}

// Config returns the resolver's configuration. Callers must not modify it.
func (r *Resolver) Config() *config.Config {
	return r.cfg
}

// Database returns the current database, or nil.
func (r *Resolver) Database() *compdb.Database {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.db
}

// FlagsForFile returns the flags for filename. It never fails: missing
// data degrades to fewer flags.
func (r *Resolver) FlagsForFile(filename string) Result {
	res, _ := r.Resolve(filename)
	return res
}

// Resolve is FlagsForFile plus the source of the flags.
func (r *Resolver) Resolve(filename string) (Result, Source) {
	if r.cache != nil {
		if c, ok := r.cache.Get(filename); ok {
			return cloneResult(c.result), c.source
		}
	}

	res, src := r.resolve(filename)
	log.V(log.VerbosityDebug).Debug("resolved flags", "file", filename, "source", src, "count", len(res.Flags))
	log.Trace("flags", "file", filename, "flags", res.Flags)

	if r.cache != nil {
		r.cache.Add(filename, cached{result: cloneResult(res), source: src})
	}
	return res, src
}

func (r *Resolver) resolve(filename string) (Result, Source) {
	// an entry with no flags (e.g. "cc -c a.c") tells us nothing
	if info, ok := r.Database().Lookup(filename); ok && len(info.Flags) > 0 {
		return Result{Flags: info.Flags, DoCache: r.cfg.CacheEnabled()}, SourceDatabase
	}

	out := flags.UserFlags(
		r.cfg.AllFlags(),
		flags.ExpandDirs(r.cfg.IncludeDirs, r.cfg.Dir),
		flags.ExpandDirs(r.cfg.SystemIncludeDirs, r.cfg.Dir),
		r.cfg.Dir,
	)
	out = append(out, flags.LanguageFlags(r.language(filename), r.cfg.Standard)...)
	if out == nil {
		out = []string{}
	}
	return Result{Flags: out, DoCache: r.cfg.CacheEnabled()}, SourceFallback
}

func (r *Resolver) language(filename string) string {
	if r.cfg.Language == flags.LangAuto {
		return flags.LanguageForFile(filename)
	}
	return r.cfg.Language
}

// Invalidate drops all memoised results.
func (r *Resolver) Invalidate() {
	if r.cache != nil {
		r.cache.Purge()
	}
}

// Reload reopens the database if its file changed (or was not loadable
// before) and drops memoised results. It reports whether a usable database
// was swapped in; a database that fails to reopen leaves none.
func (r *Resolver) Reload() bool {
	defer r.Invalidate()

	if r.dbPath == "" {
		return false
	}

	current := r.Database()
	if current != nil && !current.Stale() {
		return false
	}

	db := openDatabase(r.dbPath)
	r.mu.Lock()
	r.db = db
	r.mu.Unlock()

	if db == nil {
		return false
	}
	log.Component("resolver").Info("compilation database reloaded", "path", r.dbPath, "entries", db.Len())
	return true
}

func cloneResult(res Result) Result {
	return Result{Flags: append([]string{}, res.Flags...), DoCache: res.DoCache}
}
