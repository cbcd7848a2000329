package pagination

import "math"

const (
	DefaultSize = 10
	MaxSize     = 100

	// MaxPage keeps (page-1)*size within int for every allowed size.
	MaxPage = math.MaxInt / MaxSize
)

type Params struct {
	Page int
	Size int
}

// Normalize clamps page to [1, MaxPage] and size to [1, MaxSize]. A zero size falls back to DefaultSize.
func Normalize(page, size int) Params {
	switch {
	case page < 1:
		page = 1
	case page > MaxPage:
		page = MaxPage
	}
	switch {
	case size == 0:
		size = DefaultSize
	case size < 1:
		size = 1
	case size > MaxSize:
		size = MaxSize
	}
	return Params{Page: page, Size: size}
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.Size
}

// Pages is ceil(total/size).
func Pages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
