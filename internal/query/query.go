// Package query holds the sort modes and skip/take pagination shared by the
// order and menu listings.
package query

import (
	"math"
	"strings"
)

type Sorting int

const (
	Newest Sorting = iota
	Oldest
	PriceAscending
	PriceDescending
	Pending
	Delivered
)

const (
	DefaultPageSize = 3
	MaxPageSize     = 100
)

var sortingNames = map[Sorting]string{
	Newest:          "Newest",
	Oldest:          "Oldest",
	PriceAscending:  "PriceAscending",
	PriceDescending: "PriceDescending",
	Pending:         "Pending",
	Delivered:       "Delivered",
}

func (s Sorting) String() string {
	if name, ok := sortingNames[s]; ok {
		return name
	}
	return sortingNames[Newest]
}

// ParseSorting accepts the mode name in any case, with or without
// separators ("price_ascending", "PriceAscending"). Unknown values fall
// back to Newest.
func ParseSorting(v string) Sorting {
	key := strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(v))
	for s, name := range sortingNames {
		if strings.ToLower(name) == key {
			return s
		}
	}
	return Newest
}

type Params struct {
	Sorting  Sorting
	Page     int
	PageSize int
}

// Normalize clamps page size to [1, MaxPageSize], using DefaultPageSize
// when none was given, and page to [1, maxPage(size)] so the offset stays
// a valid positive int32. A clamped page is still past the last row.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	if last := maxPage(p.PageSize); p.Page > last {
		p.Page = last
	}
	return p
}

func maxPage(pageSize int) int {
	return math.MaxInt32/pageSize + 1
}

// Offset is the number of rows to skip: (page - 1) * pageSize.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

func (p Params) Limit() int {
	return p.Normalize().PageSize
}
