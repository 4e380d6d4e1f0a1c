package service

import (
	"fmt"

	"github.com/2beens/blogql/internal/apperr"
	"github.com/2beens/blogql/internal/globalid"
)

const MaxPageSize = 100

// PageArgs are the forward pagination arguments of a connection.
type PageArgs struct {
	First *int
	After string
}

type Edge[T any] struct {
	Cursor string
	Node   T
}

type PageInfo struct {
	HasNextPage     bool
	HasPreviousPage bool
	StartCursor     string
	EndCursor       string
}

type Connection[T any] struct {
	Edges    []Edge[T]
	PageInfo PageInfo
}

func (c *Connection[T]) Nodes() []T {
	nodes := make([]T, 0, len(c.Edges))
	for _, e := range c.Edges {
		nodes = append(nodes, e.Node)
	}
	return nodes
}

type window struct {
	offset int
	limit  int
}

// resolveWindow turns connection arguments into an offset/limit pair.
func resolveWindow(codec *globalid.Codec, args PageArgs) (window, error) {
	w := window{limit: MaxPageSize}
	if args.First != nil {
		first := *args.First
		if first < 0 {
			return window{}, fmt.Errorf("%w: first must not be negative", apperr.ErrInvalidInput)
		}
		if first > MaxPageSize {
			return window{}, fmt.Errorf(
				"%w: requesting %d records exceeds the first limit of %d records",
				apperr.ErrInvalidInput, first, MaxPageSize,
			)
		}
		w.limit = first
	}

	if args.After != "" {
		position, err := codec.DecodeAs(args.After, globalid.TypeCursor)
		if err != nil {
			return window{}, err
		}
		if position < 0 || position >= globalid.MaxKey {
			return window{}, fmt.Errorf("%w: cursor out of range", apperr.ErrMalformedIdentifier)
		}
		w.offset = position + 1
	}

	return w, nil
}

// storeLimit asks the store for one extra row to learn whether a next page exists.
func (w window) storeLimit() int {
	return w.limit + 1
}

func newConnection[T any](codec *globalid.Codec, w window, rows []T) *Connection[T] {
	if w.limit == 0 {
		return &Connection[T]{
			Edges:    []Edge[T]{},
			PageInfo: PageInfo{HasNextPage: len(rows) > 0, HasPreviousPage: w.offset > 0},
		}
	}

	hasNext := len(rows) > w.limit
	if hasNext {
		rows = rows[:w.limit]
	}

	conn := &Connection[T]{
		Edges: make([]Edge[T], 0, len(rows)),
		PageInfo: PageInfo{
			HasNextPage:     hasNext,
			HasPreviousPage: w.offset > 0,
		},
	}
	for i, row := range rows {
		conn.Edges = append(conn.Edges, Edge[T]{
			Cursor: codec.Encode(globalid.TypeCursor, w.offset+i),
			Node:   row,
		})
	}
	if len(conn.Edges) > 0 {
		conn.PageInfo.StartCursor = conn.Edges[0].Cursor
		conn.PageInfo.EndCursor = conn.Edges[len(conn.Edges)-1].Cursor
	}

	return conn
}
