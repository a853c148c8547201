package query

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSorting(t *testing.T) {
	cases := map[string]Sorting{
		"":                 Newest,
		"newest":           Newest,
		"Oldest":           Oldest,
		"PriceAscending":   PriceAscending,
		"price_ascending":  PriceAscending,
		"price-descending": PriceDescending,
		"PENDING":          Pending,
		"delivered":        Delivered,
		"bogus":            Newest,
	}

	for in, want := range cases {
		assert.Equal(t, want, ParseSorting(in), "input %q", in)
	}
}

func TestSortingString(t *testing.T) {
	assert.Equal(t, "PriceDescending", PriceDescending.String())
	assert.Equal(t, "Newest", Sorting(99).String())
}

func TestParams_Pagination(t *testing.T) {
	tests := []struct {
		name       string
		params     Params
		wantOffset int
		wantLimit  int
	}{
		{"first page", Params{Page: 1, PageSize: 3}, 0, 3},
		{"third page", Params{Page: 3, PageSize: 10}, 20, 10},
		{"zero page is first", Params{Page: 0, PageSize: 5}, 0, 5},
		{"negative page is first", Params{Page: -4, PageSize: 5}, 0, 5},
		{"default page size", Params{Page: 2}, 3, DefaultPageSize},
		{"page size capped", Params{Page: 2, PageSize: 1000}, MaxPageSize, MaxPageSize},
		{"huge page clamped", Params{Page: math.MaxInt64 / 2, PageSize: 100}, math.MaxInt32 / 100 * 100, 100},
		{"max int page clamped", Params{Page: math.MaxInt, PageSize: 3}, math.MaxInt32 / 3 * 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantOffset, tt.params.Offset())
			assert.Equal(t, tt.wantLimit, tt.params.Limit())
		})
	}
}

func TestParams_OffsetNeverNegative(t *testing.T) {
	for _, size := range []int{0, 1, 3, 7, MaxPageSize, MaxPageSize + 1} {
		for _, page := range []int{math.MinInt, -1, 0, 1, math.MaxInt32, math.MaxInt64} {
			off := Params{Page: page, PageSize: size}.Offset()
			assert.GreaterOrEqual(t, off, 0, "page=%d size=%d", page, size)
			assert.LessOrEqual(t, off, math.MaxInt32, "page=%d size=%d", page, size)
		}
	}
}
