// Package library serves books from a local directory. A book is a folder
// or an archive (zip, rar, 7z) in the library root; its chapters are the
// first-level folders that hold images, and images at the top level belong
// to the book root.
package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Options configure a Library.
type Options struct {
	// SortMethod orders images and chapters (SortNatural by default).
	SortMethod int
	// Ignore holds glob patterns matched against book-relative paths and
	// base names.
	Ignore []string
	// StatePath overrides the state file location. Defaults to
	// DefaultStateName inside the library root.
	StatePath string
	// WatchDelay coalesces bursts of filesystem events.
	WatchDelay time.Duration
	Logger     *zap.Logger
}

// BookInfo summarises a book for listings.
type BookInfo struct {
	Name     string
	Format   Format
	Path     string
	Chapters int
	Images   int
	Page     int
	Started  bool
	Cover    string
	LastRead time.Time
}

type fileEntry struct {
	chapter string
	file    string
	name    string // name inside the source
}

type book struct {
	name   string
	path   string
	format Format
	src    source
	files  []fileEntry // nil until listed
}

// Library is safe for concurrent use.
type Library struct {
	root   string
	sorter SortStrategy
	ignore ignoreSet
	state  *stateStore
	delay  time.Duration
	log    *zap.Logger

	mu      sync.Mutex
	books   map[string]*book // nil until scanned
	token   uint64
	subs    map[int]func(token string)
	nextSub int
}

// Open prepares the library at root. A corrupt state file is logged and
// replaced on the next write.
func Open(root string, opts Options) (*Library, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("opening library: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("opening library: %s is not a directory", abs)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.WatchDelay <= 0 {
		opts.WatchDelay = 250 * time.Millisecond
	}
	if opts.StatePath == "" {
		opts.StatePath = filepath.Join(abs, DefaultStateName)
	}
	ignore, err := newIgnoreSet(opts.Ignore)
	if err != nil {
		return nil, err
	}
	state, err := loadState(opts.StatePath)
	if err != nil {
		opts.Logger.Warn("library state unreadable, starting fresh", zap.String("path", opts.StatePath), zap.Error(err))
	}

	return &Library{
		root:   abs,
		sorter: GetSortStrategy(opts.SortMethod),
		ignore: ignore,
		state:  state,
		delay:  opts.WatchDelay,
		log:    opts.Logger,
		token:  uint64(time.Now().UnixNano()),
		subs:   make(map[int]func(string)),
	}, nil
}

// Root returns the absolute library directory.
func (l *Library) Root() string { return l.root }

// Token is the cache-invalidation value for image resources. It changes
// whenever the library contents change.
func (l *Library) Token() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return strconv.FormatUint(l.token, 36)
}

// Subscribe registers fn for token changes. fn runs on the goroutine that
// detected the change.
func (l *Library) Subscribe(fn func(token string)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextSub++
	id := l.nextSub
	l.subs[id] = fn
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.subs, id)
	}
}

// Invalidate drops cached listings and bumps the token.
func (l *Library) Invalidate() {
	l.mu.Lock()
	l.books = nil
	l.token++
	token := strconv.FormatUint(l.token, 36)
	subs := make([]func(string), 0, len(l.subs))
	for _, fn := range l.subs {
		subs = append(subs, fn)
	}
	l.mu.Unlock()

	l.log.Debug("library changed", zap.String("token", token))
	for _, fn := range subs {
		fn(token)
	}
}

// scan indexes the library root. Callers hold l.mu.
func (l *Library) scan() error {
	if l.books != nil {
		return nil
	}
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return fmt.Errorf("scanning library: %w", err)
	}
	books := make(map[string]*book)
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || l.ignore.match(name) {
			continue
		}
		format := FormatDir
		if !e.IsDir() {
			if format = archiveFormat(name); format == "" {
				continue
			}
			name = strings.TrimSuffix(name, filepath.Ext(name))
			if l.ignore.match(name) {
				continue
			}
		}
		if _, dup := books[name]; dup {
			l.log.Warn("duplicate book name, keeping the first", zap.String("book", name), zap.String("path", e.Name()))
			continue
		}
		p := filepath.Join(l.root, e.Name())
		src, err := newSource(format, p)
		if err != nil {
			return err
		}
		books[name] = &book{name: name, path: p, format: format, src: src}
	}
	l.books = books
	return nil
}

// lookup returns the listed book. Callers hold l.mu.
func (l *Library) lookup(name string) (*book, error) {
	if err := checkName("book", name); err != nil {
		return nil, err
	}
	if err := l.scan(); err != nil {
		return nil, err
	}
	b, ok := l.books[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrBookNotFound)
	}
	if b.files == nil {
		files, err := l.listFiles(b)
		if err != nil {
			return nil, fmt.Errorf("listing %q: %w", name, err)
		}
		b.files = files
	}
	return b, nil
}

// listFiles collects the images of b. Archives whose entries all live in a
// folder named after the book are read as if that folder were the archive
// root.
func (l *Library) listFiles(b *book) ([]fileEntry, error) {
	names, err := b.src.list()
	if err != nil {
		return nil, err
	}
	prefix := ""
	if b.format != FormatDir {
		if root := commonRoot(names); root == b.name+"/" {
			prefix = root
		}
	}
	files := make([]fileEntry, 0, len(names))
	for _, name := range names {
		rel := strings.TrimPrefix(strings.TrimPrefix(name, "./"), prefix)
		if !IsImage(rel) || l.ignore.match(rel) {
			continue
		}
		parts := strings.Split(rel, "/")
		var fe fileEntry
		switch len(parts) {
		case 1:
			fe = fileEntry{file: parts[0], name: name}
		case 2:
			fe = fileEntry{chapter: parts[0], file: parts[1], name: name}
		default:
			continue
		}
		if checkName("image", fe.file) != nil || (fe.chapter != "" && checkName("chapter", fe.chapter) != nil) {
			continue
		}
		if strings.HasPrefix(fe.file, ".") || strings.HasPrefix(fe.chapter, ".") {
			continue
		}
		files = append(files, fe)
	}
	l.log.Debug("listed book", zap.String("book", b.name), zap.String("format", string(b.format)), zap.Int("images", len(files)))
	return files, nil
}

// commonRoot returns "dir/" when every name lives under the same top-level
// folder.
func commonRoot(names []string) string {
	root := ""
	for i, name := range names {
		name = strings.TrimPrefix(name, "./")
		top, _, found := strings.Cut(name, "/")
		if !found {
			return ""
		}
		if i == 0 {
			root = top
		} else if top != root {
			return ""
		}
	}
	if root == "" {
		return ""
	}
	return root + "/"
}

func (b *book) chapters() []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range b.files {
		if f.chapter != "" && !seen[f.chapter] {
			seen[f.chapter] = true
			out = append(out, f.chapter)
		}
	}
	return out
}

func (b *book) images(chapter string) []string {
	var out []string
	for _, f := range b.files {
		if f.chapter == chapter {
			out = append(out, f.file)
		}
	}
	return out
}

func (b *book) find(chapter, file string) (fileEntry, bool) {
	for _, f := range b.files {
		if f.chapter == chapter && f.file == file {
			return f, true
		}
	}
	return fileEntry{}, false
}

// Books lists every book in the library.
func (l *Library) Books() ([]BookInfo, error) {
	l.mu.Lock()
	if err := l.scan(); err != nil {
		l.mu.Unlock()
		return nil, err
	}
	names := make([]string, 0, len(l.books))
	for name := range l.books {
		names = append(names, name)
	}
	l.mu.Unlock()

	var out []BookInfo
	for _, name := range (&NaturalSortStrategy{}).Sort(names) {
		info, err := l.Book(name)
		if err != nil {
			l.log.Warn("skipping unreadable book", zap.String("book", name), zap.Error(err))
			continue
		}
		out = append(out, info)
	}
	return out, nil
}

// Book describes one book.
func (l *Library) Book(name string) (BookInfo, error) {
	l.mu.Lock()
	b, err := l.lookup(name)
	if err != nil {
		l.mu.Unlock()
		return BookInfo{}, err
	}
	info := BookInfo{
		Name:     b.name,
		Format:   b.format,
		Path:     b.path,
		Chapters: len(b.chapters()),
		Images:   len(b.files),
	}
	l.mu.Unlock()

	if st, ok := l.state.get(name); ok {
		info.Page = st.Page
		info.Started = true
		info.LastRead = st.LastRead
	}
	info.Cover, _ = l.Cover(name)
	return info, nil
}

// Chapters returns the chapter names of book in reading order. A flat book
// has none.
func (l *Library) Chapters(ctx context.Context, name string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	b, err := l.lookup(name)
	if err != nil {
		return nil, err
	}
	return l.sorter.Sort(b.chapters()), nil
}

// GetImagesInChapter lists the images of a chapter in reading order; an
// empty chapter is the book root.
func (l *Library) GetImagesInChapter(ctx context.Context, name, chapter string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if chapter != "" {
		if err := checkName("chapter", chapter); err != nil {
			return nil, err
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	b, err := l.lookup(name)
	if err != nil {
		return nil, err
	}
	images := b.images(chapter)
	if chapter != "" && len(images) == 0 {
		return nil, fmt.Errorf("%q in %q: %w", chapter, name, ErrChapterNotFound)
	}
	return l.sorter.Sort(images), nil
}

// UpdateBookProgress records page as the last page read.
func (l *Library) UpdateBookProgress(ctx context.Context, name string, page int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := l.exists(name); err != nil {
		return err
	}
	if page < 0 {
		page = 0
	}
	now := l.state.now()
	if err := l.state.update(name, func(st *BookState) {
		st.Page = page
		st.LastRead = now
	}); err != nil {
		return err
	}
	l.log.Debug("progress stored", zap.String("book", name), zap.Int("page", page))
	return nil
}

// SetBookCover makes the image at rel ("file" or "chapter/file") the cover.
func (l *Library) SetBookCover(ctx context.Context, name, rel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	chapter, file, err := splitRel(rel)
	if err != nil {
		return err
	}
	l.mu.Lock()
	b, err := l.lookup(name)
	if err == nil {
		if _, ok := b.find(chapter, file); !ok {
			err = fmt.Errorf("%q in %q: %w", rel, name, ErrResourceNotFound)
		}
	}
	l.mu.Unlock()
	if err != nil {
		return err
	}
	if err := l.state.update(name, func(st *BookState) { st.Cover = rel }); err != nil {
		return err
	}
	l.log.Info("cover changed", zap.String("book", name), zap.String("image", rel))
	return nil
}

// Progress returns the stored page for book and whether reading started.
func (l *Library) Progress(name string) (int, bool) {
	st, ok := l.state.get(name)
	return st.Page, ok
}

// Cover returns the book-relative path of the cover image: the chosen one
// when it still exists, otherwise the first image in reading order.
func (l *Library) Cover(name string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, err := l.lookup(name)
	if err != nil {
		return "", err
	}
	if st, ok := l.state.get(name); ok && st.Cover != "" {
		if chapter, file, err := splitRel(st.Cover); err == nil {
			if _, ok := b.find(chapter, file); ok {
				return st.Cover, nil
			}
		}
	}
	if root := b.images(""); len(root) > 0 {
		return l.sorter.Sort(root)[0], nil
	}
	if chapters := b.chapters(); len(chapters) > 0 {
		first := l.sorter.Sort(chapters)[0]
		return path.Join(first, l.sorter.Sort(b.images(first))[0]), nil
	}
	return "", fmt.Errorf("%q has no images: %w", name, ErrResourceNotFound)
}

// OpenImage opens the bytes of one image. The caller closes the reader.
func (l *Library) OpenImage(name, chapter, file string) (io.ReadCloser, error) {
	if chapter != "" {
		if err := checkName("chapter", chapter); err != nil {
			return nil, err
		}
	}
	if err := checkName("image", file); err != nil {
		return nil, err
	}
	l.mu.Lock()
	b, err := l.lookup(name)
	if err != nil {
		l.mu.Unlock()
		return nil, err
	}
	fe, ok := b.find(chapter, file)
	src := b.src
	l.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%s/%s in %q: %w", chapter, file, name, ErrResourceNotFound)
	}
	return src.open(fe.name)
}

func (l *Library) exists(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := checkName("book", name); err != nil {
		return err
	}
	if err := l.scan(); err != nil {
		return err
	}
	if _, ok := l.books[name]; !ok {
		return fmt.Errorf("%q: %w", name, ErrBookNotFound)
	}
	return nil
}

// IsNotFound reports whether err means a missing book, chapter or image.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBookNotFound) || errors.Is(err, ErrChapterNotFound) || errors.Is(err, ErrResourceNotFound)
}
