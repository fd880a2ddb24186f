package library

import "errors"

var (
	ErrBookNotFound     = errors.New("book not found")
	ErrChapterNotFound  = errors.New("chapter not found")
	ErrResourceNotFound = errors.New("image not found")
	ErrUnsafePath       = errors.New("unsafe path")
	ErrUnsupported      = errors.New("unsupported book format")
)
