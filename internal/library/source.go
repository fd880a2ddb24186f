package library

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/nwaples/rardecode"
)

// Format is the storage layout of a book.
type Format string

const (
	FormatDir      Format = "dir"
	FormatZip      Format = "zip"
	FormatRar      Format = "rar"
	FormatSevenZip Format = "7z"
)

// source lists and opens the files of one book. Names are slash-separated
// and relative to the source root, in storage order.
type source interface {
	list() ([]string, error)
	open(name string) (io.ReadCloser, error)
}

func newSource(format Format, path string) (source, error) {
	switch format {
	case FormatDir:
		return dirSource{root: path}, nil
	case FormatZip:
		return zipSource{path: path}, nil
	case FormatRar:
		return rarSource{path: path}, nil
	case FormatSevenZip:
		return sevenZipSource{path: path}, nil
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupported)
	}
}

// dirSource reads a book directory: images at the top level and one level
// of chapter folders.
type dirSource struct {
	root string
}

func (s dirSource) list() ([]string, error) {
	var names []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		depth := strings.Count(filepath.ToSlash(rel), "/")
		if d.IsDir() {
			if depth > 0 || strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			names = append(names, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading book directory %s: %w", s.root, err)
	}
	return names, nil
}

func (s dirSource) open(name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(name)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ErrResourceNotFound)
	}
	return f, err
}

type zipSource struct {
	path string
}

func (s zipSource) list() ([]string, error) {
	r, err := zip.OpenReader(s.path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var names []string
	for _, f := range r.File {
		if !f.FileInfo().IsDir() {
			names = append(names, f.Name)
		}
	}
	return names, nil
}

func (s zipSource) open(name string) (io.ReadCloser, error) {
	r, err := zip.OpenReader(s.path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return readAll(rc)
		}
	}
	return nil, fmt.Errorf("entry %s not found in %s: %w", name, s.path, ErrResourceNotFound)
}

type rarSource struct {
	path string
}

func (s rarSource) list() ([]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := rardecode.NewReader(f, "")
	if err != nil {
		return nil, err
	}

	var names []string
	for {
		header, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if !header.IsDir {
			names = append(names, filepath.ToSlash(header.Name))
		}
	}
	return names, nil
}

func (s rarSource) open(name string) (io.ReadCloser, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := rardecode.NewReader(f, "")
	if err != nil {
		return nil, err
	}
	for {
		header, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if filepath.ToSlash(header.Name) == name {
			return readAll(r)
		}
	}
	return nil, fmt.Errorf("entry %s not found in %s: %w", name, s.path, ErrResourceNotFound)
}

type sevenZipSource struct {
	path string
}

func (s sevenZipSource) list() ([]string, error) {
	r, err := sevenzip.OpenReader(s.path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var names []string
	for _, f := range r.File {
		if !f.FileInfo().IsDir() {
			names = append(names, f.Name)
		}
	}
	return names, nil
}

func (s sevenZipSource) open(name string) (io.ReadCloser, error) {
	r, err := sevenzip.OpenReader(s.path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return readAll(rc)
		}
	}
	return nil, fmt.Errorf("entry %s not found in %s: %w", name, s.path, ErrResourceNotFound)
}

// readAll buffers an archive entry so the archive can be closed before the
// caller decodes it.
func readAll(r io.Reader) (io.ReadCloser, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
