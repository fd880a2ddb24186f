package library

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// IsImage reports whether name has a supported image extension.
func IsImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".webp", ".bmp", ".gif":
		return true
	default:
		return false
	}
}

// archiveFormat returns the book format for an archive file name, or "".
func archiveFormat(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".zip", ".cbz":
		return FormatZip
	case ".rar", ".cbr":
		return FormatRar
	case ".7z", ".cb7":
		return FormatSevenZip
	default:
		return ""
	}
}

// checkName rejects names that could escape their parent: empty names,
// dot entries and anything containing a separator.
func checkName(kind, name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("%s %q: %w", kind, name, ErrUnsafePath)
	}
	return nil
}

// splitRel splits a book-relative image path ("file" or "chapter/file")
// after validating it.
func splitRel(rel string) (chapter, file string, err error) {
	if rel == "" || path.IsAbs(rel) || filepath.IsAbs(rel) || strings.Contains(rel, `\`) {
		return "", "", fmt.Errorf("image path %q: %w", rel, ErrUnsafePath)
	}
	parts := strings.Split(rel, "/")
	switch len(parts) {
	case 1:
		file = parts[0]
	case 2:
		chapter, file = parts[0], parts[1]
		if err := checkName("chapter", chapter); err != nil {
			return "", "", err
		}
	default:
		return "", "", fmt.Errorf("image path %q: %w", rel, ErrUnsafePath)
	}
	if err := checkName("image", file); err != nil {
		return "", "", err
	}
	return chapter, file, nil
}

// ignoreSet matches library-relative paths against glob patterns. A pattern
// matches either the full slash-separated path or its last element.
type ignoreSet struct {
	patterns []glob.Glob
}

func newIgnoreSet(patterns []string) (ignoreSet, error) {
	var s ignoreSet
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return ignoreSet{}, fmt.Errorf("invalid ignore pattern %q: %w", p, err)
		}
		s.patterns = append(s.patterns, g)
	}
	return s, nil
}

func (s ignoreSet) match(rel string) bool {
	base := path.Base(rel)
	for _, g := range s.patterns {
		if g.Match(rel) || g.Match(base) {
			return true
		}
	}
	return false
}

// ValidateIgnorePattern reports whether p compiles as an ignore pattern.
func ValidateIgnorePattern(p string) error {
	if _, err := glob.Compile(p, '/'); err != nil {
		return fmt.Errorf("invalid ignore pattern %q: %w", p, err)
	}
	return nil
}
