package burl

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/jward/burl/internal/comment"
	"github.com/jward/burl/internal/diffscope"
	"github.com/jward/burl/internal/filter"
	"github.com/jward/burl/internal/lang"
	"github.com/jward/burl/internal/store"
	"github.com/jward/burl/internal/tags"
)

// DefaultTags are the keywords matched when WithTags is not given.
var DefaultTags = []string{"todo", "fixme", "note"}

// ErrUnsupported is returned by ScanFile for extensions the language
// registry does not recognize. Directory scans skip such files silently.
var ErrUnsupported = errors.New("unsupported file extension")

// Engine orchestrates the scan pipeline: language classification, comment
// extraction, tag matching, optional diff scoping, optional caching, and
// optional expression filtering.
type Engine struct {
	keywords    []string
	diffOnly    bool
	languages   map[lang.Language]bool // nil means all languages
	useParallel bool
	differ      diffscope.Differ
	filter      *filter.Filter

	// storeMu serializes cache reads/writes when scanning in parallel.
	storeMu   sync.Mutex
	store     *store.Store
	cachePath string
}

// Option configures an Engine.
type Option func(*Engine)

// WithTags sets the keywords to match inside comments. Matching is
// case-insensitive substring containment.
func WithTags(keywords ...string) Option {
	return func(e *Engine) {
		e.keywords = keywords
	}
}

// WithDiffOnly restricts results to annotations on lines git reports as
// added or modified in the working tree. A file with no computable diff
// yields zero annotations in this mode.
func WithDiffOnly(diffOnly bool) Option {
	return func(e *Engine) {
		e.diffOnly = diffOnly
	}
}

// WithLanguages restricts which languages the Engine will process, given
// canonical names such as "go" or "python". Unknown names are ignored.
func WithLanguages(names ...string) Option {
	return func(e *Engine) {
		e.languages = make(map[lang.Language]bool, len(names))
		for _, name := range names {
			if l, ok := lang.FromName(strings.TrimSpace(name)); ok {
				e.languages[l] = true
			}
		}
	}
}

// WithParallel controls parallel scanning. When true (default), ScanFiles
// uses a worker pool for parsing and matching. Set to false for serial mode.
func WithParallel(parallel bool) Option {
	return func(e *Engine) {
		e.useParallel = parallel
	}
}

// WithDiffer replaces the git-backed modified-line source. Used by tests and
// by callers that already hold diff data.
func WithDiffer(d diffscope.Differ) Option {
	return func(e *Engine) {
		e.differ = d
	}
}

// WithCache enables the SQLite result cache at dbPath. Unchanged files
// (same content hash) are served from the cache instead of being reparsed.
// The cache is invalidated wholesale when the tag set changes.
func WithCache(dbPath string) Option {
	return func(e *Engine) {
		e.cachePath = dbPath
	}
}

// WithFilter sets a Risor expression evaluated per annotation; annotations
// for which the expression is falsy are dropped. See the filter package for
// the globals an expression can reference.
func WithFilter(expr string) Option {
	return func(e *Engine) {
		if expr != "" {
			e.filter = filter.New(expr)
		}
	}
}

// New creates an Engine. The zero configuration scans all supported
// languages for DefaultTags with git-backed diff scoping available.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		keywords:    DefaultTags,
		useParallel: true,
		differ:      diffscope.GitDiffer{},
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.cachePath != "" {
		s, err := store.NewStore(e.cachePath)
		if err != nil {
			return nil, fmt.Errorf("burl: create cache: %w", err)
		}
		if err := s.Migrate(); err != nil {
			s.Close()
			return nil, fmt.Errorf("burl: migrate cache: %w", err)
		}
		e.store = s
		if err := e.validateCache(); err != nil {
			s.Close()
			return nil, fmt.Errorf("burl: validate cache: %w", err)
		}
	}
	return e, nil
}

// Close releases the Engine's cache resources, if any.
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// Store returns the underlying cache Store, or nil when caching is disabled.
func (e *Engine) Store() *store.Store {
	return e.store
}

// tagsHash fingerprints the configured keywords. Cached annotations are only
// valid for the exact tag set they were produced with.
func (e *Engine) tagsHash() string {
	h := sha256.New()
	for _, kw := range e.keywords {
		h.Write([]byte(strings.ToLower(kw)))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// validateCache clears the cache when it was built with a different tag set,
// then records the current one.
func (e *Engine) validateCache() error {
	current := e.tagsHash()
	stored, err := e.store.GetMetadata("tags_hash")
	if err != nil {
		return err
	}
	if stored != current {
		if err := e.store.Reset(); err != nil {
			return err
		}
		if err := e.store.SetMetadata("tags_hash", current); err != nil {
			return err
		}
	}
	return nil
}

// ScanFile scans a single explicitly-requested file. Unlike directory scans,
// an unsupported extension here is an error, wrapped around ErrUnsupported.
func (e *Engine) ScanFile(ctx context.Context, path string) ([]Annotation, error) {
	language, ok := lang.Classify(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
	}
	return e.scanFile(ctx, path, language)
}

// ScanFiles scans the given paths, skipping unsupported and filtered-out
// files. Results follow the input path order regardless of scan mode.
//
// Errors on individual files (unreadable file, aborted parse) do not stop
// the run; partial results are returned together with a summary error.
func (e *Engine) ScanFiles(ctx context.Context, paths []string) ([]Annotation, error) {
	if e.useParallel {
		return e.scanFilesParallel(ctx, paths)
	}
	return e.scanFilesSerial(ctx, paths)
}

func (e *Engine) scanFilesSerial(ctx context.Context, paths []string) ([]Annotation, error) {
	var annotations []Annotation
	var errs []error
	for _, path := range paths {
		language, ok := e.classify(path)
		if !ok {
			continue
		}
		anns, err := e.scanFile(ctx, path, language)
		if err != nil {
			errs = append(errs, fmt.Errorf("scan %s: %w", path, err))
			continue
		}
		annotations = append(annotations, anns...)
	}
	if len(errs) > 0 {
		return annotations, fmt.Errorf("scanning had %d error(s): %w", len(errs), errs[0])
	}
	return annotations, nil
}

// classify resolves a path's language and applies the language filter.
func (e *Engine) classify(path string) (lang.Language, bool) {
	language, ok := lang.Classify(path)
	if !ok {
		return lang.Unsupported, false
	}
	if e.languages != nil && !e.languages[language] {
		return lang.Unsupported, false
	}
	return language, true
}

// scanFile runs the full pipeline for one classified file.
func (e *Engine) scanFile(ctx context.Context, path string, language lang.Language) ([]Annotation, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	hash := fmt.Sprintf("%x", sha256.Sum256(src))

	annotations, cached, err := e.cachedAnnotations(path, hash)
	if err != nil {
		return nil, err
	}
	if !cached {
		comments, err := comment.Extract(ctx, src, language)
		if err != nil {
			return nil, err
		}
		annotations = tags.Match(path, comments, e.keywords)
		if err := e.storeAnnotations(path, language, hash, annotations); err != nil {
			return nil, err
		}
	}

	// Scoping and filtering always run after cache retrieval: the cache
	// holds the full annotation set, which depends only on content and tags.
	if e.diffOnly {
		modified := e.differ.ModifiedLines(path)
		annotations = scopeToLines(annotations, modified)
	}
	if e.filter != nil {
		annotations, err = e.applyFilter(ctx, annotations)
		if err != nil {
			return nil, err
		}
	}
	return annotations, nil
}

// scopeToLines keeps exactly the annotations whose line is in the modified
// set. Everything else is dropped silently.
func scopeToLines(annotations []Annotation, modified diffscope.LineSet) []Annotation {
	var scoped []Annotation
	for _, a := range annotations {
		if modified.Contains(a.Line) {
			scoped = append(scoped, a)
		}
	}
	return scoped
}

func (e *Engine) applyFilter(ctx context.Context, annotations []Annotation) ([]Annotation, error) {
	var kept []Annotation
	for _, a := range annotations {
		keep, err := e.filter.Keep(ctx, a)
		if err != nil {
			return nil, err
		}
		if keep {
			kept = append(kept, a)
		}
	}
	return kept, nil
}

// cachedAnnotations returns the cached annotation set for (path, hash).
// cached is false when caching is disabled, the file is unknown, or the
// content hash changed.
func (e *Engine) cachedAnnotations(path, hash string) (annotations []Annotation, cached bool, err error) {
	if e.store == nil {
		return nil, false, nil
	}
	e.storeMu.Lock()
	defer e.storeMu.Unlock()

	existing, err := e.store.FileByPath(path)
	if err != nil {
		return nil, false, fmt.Errorf("cache lookup: %w", err)
	}
	if existing == nil || existing.Hash != hash {
		return nil, false, nil
	}
	annotations, err = e.store.AnnotationsByFile(existing.ID, path)
	if err != nil {
		return nil, false, fmt.Errorf("cache read: %w", err)
	}
	return annotations, true, nil
}

// storeAnnotations replaces the cached record for path with a fresh one.
func (e *Engine) storeAnnotations(path string, language lang.Language, hash string, annotations []Annotation) error {
	if e.store == nil {
		return nil
	}
	e.storeMu.Lock()
	defer e.storeMu.Unlock()

	existing, err := e.store.FileByPath(path)
	if err != nil {
		return fmt.Errorf("cache lookup: %w", err)
	}
	if existing != nil {
		if err := e.store.DeleteFile(existing.ID); err != nil {
			return fmt.Errorf("cache evict: %w", err)
		}
	}
	fileID, err := e.store.InsertFile(&store.File{
		Path:        path,
		Language:    language.String(),
		Hash:        hash,
		LastScanned: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("cache insert: %w", err)
	}
	if err := e.store.InsertAnnotations(fileID, annotations); err != nil {
		return fmt.Errorf("cache write: %w", err)
	}
	return nil
}

// skipDir lists directories excluded from the filesystem-walk fallback.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
}

// ScanDirectory discovers supported files under root and scans them.
// If root is inside a git repository, uses git ls-files to respect
// .gitignore. Falls back to a filesystem walk (honoring a root .gitignore
// and skipping hidden dirs, node_modules, vendor, __pycache__) when git is
// unavailable.
func (e *Engine) ScanDirectory(ctx context.Context, root string) ([]Annotation, error) {
	paths, err := e.gitListFiles(root)
	if err != nil {
		// Not a git repo or git not available — fall back to walk.
		paths, err = e.walkListFiles(root)
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(paths)
	return e.ScanFiles(ctx, paths)
}

// gitListFiles uses git ls-files to discover tracked and untracked (but not
// ignored) files under root, filtered to supported languages.
func (e *Engine) gitListFiles(root string) ([]string, error) {
	// --cached: tracked files, --others: untracked files,
	// --exclude-standard: respect .gitignore, .git/info/exclude, global excludes.
	cmd := exec.Command("git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git ls-files: %w", err)
	}

	var paths []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		absPath := filepath.Join(root, line)
		if _, ok := e.classify(absPath); ok {
			paths = append(paths, absPath)
		}
	}
	return paths, nil
}

// walkListFiles discovers files by walking the filesystem, used as a
// fallback when git is not available. Honors a .gitignore at root when one
// exists. Per-entry errors are swallowed; that entry is simply omitted.
func (e *Engine) walkListFiles(root string) ([]string, error) {
	var gi *ignore.GitIgnore
	if compiled, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
		gi = compiled
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}
		if _, ok := e.classify(path); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	return paths, nil
}
