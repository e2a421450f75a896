package querycache

import (
	"context"

	"groom-admin-backend/internal/models"
	"groom-admin-backend/internal/params"
)

// FetchPage reads one page of a list and prefetches its neighbours: the
// next page while more pages exist and the previous one unless page is the
// first. base carries everything but the page number.
func FetchPage[T any](ctx context.Context, c *Cache, base Key, page int, fn func(ctx context.Context, page int) (models.Page[T], error), opts ...QueryOption) (models.Page[T], error) {
	res, err := Fetch(ctx, c, pageKey(base, page), func(ctx context.Context) (models.Page[T], error) {
		return fn(ctx, page)
	}, opts...)
	if err != nil {
		return res, err
	}

	for _, neighbor := range params.Neighbors(page, res.Count) {
		Prefetch(c, pageKey(base, neighbor), func(ctx context.Context) (models.Page[T], error) {
			return fn(ctx, neighbor)
		}, opts...)
	}
	return res, nil
}

func pageKey(base Key, page int) Key {
	base.Page = page
	return base
}
