package reader

import (
	"context"
	"errors"
	"net/url"
)

var (
	ErrNoChapters    = errors.New("book has no chapters")
	ErrNoNextChapter = errors.New("no further chapters")
	ErrNoPrevChapter = errors.New("already at the first chapter")
	ErrBusy          = errors.New("chapter change already in progress")
	ErrSessionClosed = errors.New("reader session closed")
	ErrEmptySequence = errors.New("chapter has no images")
)

// Collaborator is the backend surface the reader consumes.
// Implementations must be safe to call from any goroutine.
type Collaborator interface {
	// GetImagesInChapter lists image filenames in reading order. An empty
	// chapter name means the book root.
	GetImagesInChapter(ctx context.Context, book, chapter string) ([]string, error)
	// UpdateBookProgress records the last page read. Last write wins.
	UpdateBookProgress(ctx context.Context, book string, page int) error
	// SetBookCover makes the image at the book-relative path the cover.
	SetBookCover(ctx context.Context, book, image string) error
}

// Dialogs is the modal protocol used for blocking notices and confirmations.
// Confirm must invoke answer exactly once, on the loop goroutine.
type Dialogs interface {
	Alert(message string)
	Confirm(message string, answer func(ok bool))
}

// PreferenceStore holds process-wide reader preferences that outlive a
// session.
type PreferenceStore interface {
	LoadPreferences() (Preferences, error)
	SavePreferences(Preferences) error
}

// Preferences are the locally remembered reader settings.
type Preferences struct {
	Mode        Mode
	RightToLeft bool
}

// Resource addresses the bytes of one image. Token is an opaque
// cache-invalidation value passed through from the caller.
type Resource struct {
	Book    string
	Chapter string
	File    string
	Token   string
}

// Path returns the stable resource path, suffixed with the token.
func (r Resource) Path() string {
	p := "/img/" + url.PathEscape(r.Book) + "/"
	if r.Chapter != "" {
		p += url.PathEscape(r.Chapter) + "/"
	}
	p += url.PathEscape(r.File)
	return p + "?t=" + url.QueryEscape(r.Token)
}

// RelativePath is the image path relative to the book root.
func (r Resource) RelativePath() string {
	if r.Chapter == "" {
		return r.File
	}
	return r.Chapter + "/" + r.File
}

// ImageRequester receives load requests for images that must be fetched.
type ImageRequester interface {
	Request(index int, res Resource)
}

type nopDialogs struct{}

func (nopDialogs) Alert(string)                   {}
func (nopDialogs) Confirm(_ string, a func(bool)) { a(false) }
