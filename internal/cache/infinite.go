package cache

import "context"

// InfiniteQuery walks a cursor-paginated list. Each page is cached under the
// base key extended with the page's cursor, so pages are shared and
// deduplicated like any other query. An InfiniteQuery itself belongs to one
// consumer and is not safe for concurrent use.
type InfiniteQuery[T any] struct {
	cache    *Cache
	base     Key
	pageSize int
	fetch    func(ctx context.Context, cursor string) ([]T, error)
	cursorOf func(T) string
	opts     []FetchOption

	pages [][]T
	next  string
	done  bool
}

// NewInfiniteQuery creates a walker positioned at the first page.
func NewInfiniteQuery[T any](
	c *Cache,
	base Key,
	pageSize int,
	fetch func(ctx context.Context, cursor string) ([]T, error),
	cursorOf func(T) string,
	opts ...FetchOption,
) *InfiniteQuery[T] {
	return &InfiniteQuery[T]{
		cache:    c,
		base:     base,
		pageSize: pageSize,
		fetch:    fetch,
		cursorOf: cursorOf,
		opts:     opts,
	}
}

// StartAfter positions the walker after the item identified by cursor.
func (q *InfiniteQuery[T]) StartAfter(cursor string) *InfiniteQuery[T] {
	q.next = cursor
	return q
}

// FetchNextPage requests the page after the last one and appends it. Once a
// page shorter than the page size has been seen it returns nil, nil.
func (q *InfiniteQuery[T]) FetchNextPage(ctx context.Context) ([]T, error) {
	if q.done {
		return nil, nil
	}
	cursor := q.next
	page, err := Fetch(ctx, q.cache, q.base.With(cursor), func(ctx context.Context) ([]T, error) {
		return q.fetch(ctx, cursor)
	}, q.opts...)
	if err != nil {
		return nil, err
	}
	q.pages = append(q.pages, page)
	if len(page) < q.pageSize {
		q.done = true
	} else {
		q.next = q.cursorOf(page[len(page)-1])
	}
	return page, nil
}

// HasNextPage reports whether another page may exist.
func (q *InfiniteQuery[T]) HasNextPage() bool { return !q.done }

// NextCursor is the cursor the next page will be requested with.
func (q *InfiniteQuery[T]) NextCursor() string { return q.next }

// Pages returns the pages fetched so far, in request order.
func (q *InfiniteQuery[T]) Pages() [][]T { return q.pages }

// Items flattens Pages.
func (q *InfiniteQuery[T]) Items() []T {
	var out []T
	for _, p := range q.pages {
		out = append(out, p...)
	}
	return out
}
