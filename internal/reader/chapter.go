package reader

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const chapterFetchTimeout = 30 * time.Second

// ImageLister fetches the image list of a chapter.
type ImageLister interface {
	GetImagesInChapter(ctx context.Context, book, chapter string) ([]string, error)
}

// ChapterNavigator moves between the chapters of a book. A new image list is
// fetched asynchronously and applied on the loop; on failure the current
// chapter is kept and the user is alerted.
type ChapterNavigator struct {
	loop     *Loop
	lister   ImageLister
	dialogs  Dialogs
	log      *zap.Logger
	book     string
	chapters []string
	current  string
	apply    func(chapter string, images []string)
	pending  bool
	closed   bool
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewChapterNavigator creates a navigator positioned at current. apply is
// invoked on the loop with the new chapter name and its images.
func NewChapterNavigator(loop *Loop, lister ImageLister, dialogs Dialogs, log *zap.Logger,
	book string, chapters []string, current string, apply func(string, []string)) *ChapterNavigator {
	if dialogs == nil {
		dialogs = nopDialogs{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ChapterNavigator{
		loop:     loop,
		lister:   lister,
		dialogs:  dialogs,
		log:      log,
		book:     book,
		chapters: chapters,
		current:  current,
		apply:    apply,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Chapters returns the chapter index. Callers must not modify it.
func (n *ChapterNavigator) Chapters() []string { return n.chapters }

// Current returns the active chapter name; "" is the book root.
func (n *ChapterNavigator) Current() string { return n.current }

// Pending reports whether a chapter fetch is in flight.
func (n *ChapterNavigator) Pending() bool { return n.pending }

// Position returns the index of the current chapter, or -1 when the current
// chapter is not part of the index.
func (n *ChapterNavigator) Position() int {
	for i, c := range n.chapters {
		if c == n.current {
			return i
		}
	}
	return -1
}

func (n *ChapterNavigator) HasNext() bool {
	return len(n.chapters) > 0 && n.Position() < len(n.chapters)-1
}

func (n *ChapterNavigator) HasPrev() bool {
	return n.Position() > 0
}

// NextChapter switches to the following chapter. At the last chapter it
// alerts and leaves the reader unchanged.
func (n *ChapterNavigator) NextChapter() error {
	if len(n.chapters) == 0 {
		return ErrNoChapters
	}
	if !n.HasNext() {
		n.dialogs.Alert("This is the last chapter.")
		return ErrNoNextChapter
	}
	return n.switchTo(n.chapters[n.Position()+1])
}

// PrevChapter switches to the preceding chapter. At the first chapter it
// does nothing.
func (n *ChapterNavigator) PrevChapter() error {
	if len(n.chapters) == 0 {
		return ErrNoChapters
	}
	if !n.HasPrev() {
		return ErrNoPrevChapter
	}
	return n.switchTo(n.chapters[n.Position()-1])
}

// OfferNext handles running past the last page in paged mode: when a next
// chapter exists the user is asked before switching.
func (n *ChapterNavigator) OfferNext() {
	if len(n.chapters) == 0 || n.closed || n.pending {
		return
	}
	if !n.HasNext() {
		n.dialogs.Alert("This is the last chapter.")
		return
	}
	n.dialogs.Confirm("Go to the next chapter?", func(ok bool) {
		if ok {
			_ = n.NextChapter()
		}
	})
}

func (n *ChapterNavigator) switchTo(chapter string) error {
	if n.closed {
		return ErrSessionClosed
	}
	if n.pending {
		return ErrBusy
	}
	n.pending = true
	n.log.Debug("loading chapter", zap.String("book", n.book), zap.String("chapter", chapter))

	go func() {
		ctx, cancel := context.WithTimeout(n.ctx, chapterFetchTimeout)
		defer cancel()
		images, err := n.lister.GetImagesInChapter(ctx, n.book, chapter)
		n.loop.Post(func() { n.finish(chapter, images, err) })
	}()
	return nil
}

func (n *ChapterNavigator) finish(chapter string, images []string, err error) {
	n.pending = false
	if n.closed {
		return
	}
	if err != nil {
		n.log.Warn("loading chapter failed", zap.String("book", n.book), zap.String("chapter", chapter), zap.Error(err))
		n.dialogs.Alert(fmt.Sprintf("Could not open chapter %q: %v", chapter, err))
		return
	}
	n.current = chapter
	if n.apply != nil {
		n.apply(chapter, images)
	}
}

// Close cancels any fetch in flight; its result is discarded.
func (n *ChapterNavigator) Close() {
	n.closed = true
	n.cancel()
}
