package pagination

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		page, size int
		want       Params
	}{
		{"defaults", 0, 0, Params{Page: 1, Size: DefaultSize}},
		{"negative page", -3, 20, Params{Page: 1, Size: 20}},
		{"negative size", 2, -5, Params{Page: 2, Size: 1}},
		{"oversized", 1, 1000, Params{Page: 1, Size: MaxSize}},
		{"in range", 4, 25, Params{Page: 4, Size: 25}},
		{"huge page", math.MaxInt, 10, Params{Page: MaxPage, Size: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.page, tt.size))
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Params{Page: 1, Size: 10}.Offset())
	assert.Equal(t, 10, Params{Page: 2, Size: 10}.Offset())
}

func TestOffset_NeverNegative(t *testing.T) {
	for _, page := range []int{math.MaxInt, math.MaxInt64 / 3, MaxPage + 1} {
		for _, size := range []int{1, 10, MaxSize, 1000} {
			assert.Positive(t, Normalize(page, size).Offset(), "page=%d size=%d", page, size)
		}
	}
}

func TestPages_SumOfPageLengthsEqualsTotal(t *testing.T) {
	for total := int64(0); total <= 57; total++ {
		for size := 1; size <= 12; size++ {
			pages := Pages(total, size)

			var seen int64
			for page := 1; page <= pages; page++ {
				remaining := total - int64(Params{Page: page, Size: size}.Offset())
				if remaining > int64(size) {
					remaining = int64(size)
				}
				seen += remaining
			}

			assert.Equal(t, total, seen, "total=%d size=%d", total, size)
			assert.Equal(t, int((total+int64(size)-1)/int64(size)), pages)
		}
	}
}

func TestPages_FifteenItemsTenPerPage(t *testing.T) {
	assert.Equal(t, 2, Pages(15, 10))
}
