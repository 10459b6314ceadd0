// Package pagination slices in-memory lists into fixed-size pages.
package pagination

// DefaultPerPage is used when a non-positive page size is given.
const DefaultPerPage = 15

// Page summarizes the position of a Paginator.
type Page struct {
	Number     int  `json:"page"`
	PerPage    int  `json:"per_page"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// Paginator tracks the current page of items. Pages are numbered from 1.
// It is not safe for concurrent use.
type Paginator[T any] struct {
	items   []T
	perPage int
	page    int
}

func New[T any](items []T, perPage int) *Paginator[T] {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return &Paginator[T]{items: items, perPage: perPage, page: 1}
}

func (p *Paginator[T]) Page() int { return p.page }

func (p *Paginator[T]) PerPage() int { return p.perPage }

// Items returns the items of the current page.
func (p *Paginator[T]) Items() []T {
	start := (p.page - 1) * p.perPage
	if start >= len(p.items) {
		return []T{}
	}
	end := start + p.perPage
	if end > len(p.items) {
		end = len(p.items)
	}
	return p.items[start:end]
}

// TotalPages is 0 when there are no items.
func (p *Paginator[T]) TotalPages() int {
	return (len(p.items) + p.perPage - 1) / p.perPage
}

func (p *Paginator[T]) HasNext() bool { return p.page < p.TotalPages() }

func (p *Paginator[T]) HasPrev() bool { return p.page > 1 }

// GoTo moves to page, unless it is out of range. It reports whether it moved.
func (p *Paginator[T]) GoTo(page int) bool {
	if page < 1 || page > p.TotalPages() {
		return false
	}
	p.page = page
	return true
}

func (p *Paginator[T]) Next() bool {
	if !p.HasNext() {
		return false
	}
	p.page++
	return true
}

func (p *Paginator[T]) Prev() bool {
	if !p.HasPrev() {
		return false
	}
	p.page--
	return true
}

// Reset goes back to the first page.
func (p *Paginator[T]) Reset() { p.page = 1 }

// SetItems swaps the underlying items. The current page is kept, or moved to
// the last page when the new list is shorter.
func (p *Paginator[T]) SetItems(items []T) {
	p.items = items
	if last := p.TotalPages(); p.page > last {
		p.page = last
	}
	if p.page < 1 {
		p.page = 1
	}
}

func (p *Paginator[T]) Summary() Page {
	return Page{
		Number:     p.page,
		PerPage:    p.perPage,
		Total:      len(p.items),
		TotalPages: p.TotalPages(),
		HasNext:    p.HasNext(),
		HasPrev:    p.HasPrev(),
	}
}
