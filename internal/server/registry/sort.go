package registry

import (
	"sort"
	"strings"

	"github.com/KaityXD/choas-lib/internal/server/models"
)

type SortBy string

const (
	SortByDate SortBy = "date"
	SortBySize SortBy = "size"
	SortByName SortBy = "name"
)

type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// ParseSortBy maps a query value to a sort key, defaulting to date.
func ParseSortBy(s string) SortBy {
	switch SortBy(strings.ToLower(s)) {
	case SortBySize:
		return SortBySize
	case SortByName:
		return SortByName
	default:
		return SortByDate
	}
}

// ParseOrder maps a query value to an order, defaulting to descending.
func ParseOrder(s string) Order {
	if Order(strings.ToLower(s)) == OrderAsc {
		return OrderAsc
	}
	return OrderDesc
}

// Sort orders entries in place. Name comparison ignores case. Ties keep
// their input order in both directions.
func Sort(entries []models.Entry, by SortBy, order Order) {
	var cmp func(a, b models.Entry) int
	switch by {
	case SortBySize:
		cmp = func(a, b models.Entry) int { return compareInt64(a.Size, b.Size) }
	case SortByName:
		cmp = func(a, b models.Entry) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
	default:
		cmp = func(a, b models.Entry) int { return a.ModTime.Compare(b.ModTime) }
	}

	sort.SliceStable(entries, func(i, j int) bool {
		c := cmp(entries[i], entries[j])
		if order == OrderAsc {
			return c < 0
		}
		return c > 0
	})
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Page is one window of a sorted listing.
type Page struct {
	Items      []models.Entry `json:"files"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
	Total      int            `json:"total"`
}

// Paginate cuts the page-th window of pageSize entries. There is always at
// least one (possibly empty) page; out-of-range pages are clamped and a
// pageSize below 1 counts as 1.
func Paginate(entries []models.Entry, page, pageSize int) Page {
	if pageSize < 1 {
		pageSize = 1
	}
	n := len(entries)

	totalPages := (n + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	page = min(max(page, 1), totalPages)

	start := min((page-1)*pageSize, n)
	end := min(start+pageSize, n)

	items := make([]models.Entry, end-start)
	copy(items, entries[start:end])

	return Page{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		Total:      n,
	}
}
