package shopify

import "context"

// PageFunc fetches one page of a cursor-paginated connection. Returning a nil
// connection (with no error) means the remote response carried no usable
// payload for the queried collection.
type PageFunc[T any] func(ctx context.Context, cursor *string) (*Connection[T], error)

// PageResult reports where pagination stopped. HasMore is true when further
// pages were believed to remain, either because the API said so or because a
// later page came back without a connection and the walk ended early.
type PageResult struct {
	LastCursor *string
	HasMore    bool
}

// Paginate walks a cursor-paginated connection strictly in order, invoking
// handle once per page, until hasNextPage is false. Remote cursors are
// sequential, so pages are never fetched in parallel or reordered.
//
// A missing connection on the first page fails with ErrEmptyFirstPage before
// anything is handled; on any later page the pages already handled count as a
// valid partial result and the walk stops without error.
func Paginate[T any](ctx context.Context, fetch PageFunc[T], handle func(nodes []T) error) (PageResult, error) {
	var (
		cursor *string
		res    PageResult
		first  = true
	)
	for {
		conn, err := fetch(ctx, cursor)
		if err != nil {
			return res, err
		}
		if conn == nil {
			if first {
				return res, ErrEmptyFirstPage
			}
			res.HasMore = true
			return res, nil
		}
		first = false

		if err := handle(conn.Nodes()); err != nil {
			return res, err
		}

		res.LastCursor = conn.PageInfo.EndCursor
		res.HasMore = conn.PageInfo.HasNextPage
		if !conn.PageInfo.HasNextPage {
			return res, nil
		}
		cursor = conn.PageInfo.EndCursor
	}
}
