package repository

import (
	"context"

	"rollcall.io/infrastructure/database/repository/cache"
)

const catalogVersionKey = "catalog:version"

// CatalogVersion is a counter in redis bumped on every catalog write so other
// instances drop their snapshot.
type CatalogVersion struct {
	Cache *cache.RedisRepository
}

func (v CatalogVersion) Current(ctx context.Context) (int64, error) {
	return v.Cache.FindInt(ctx, catalogVersionKey)
}

func (v CatalogVersion) Bump(ctx context.Context) error {
	_, err := v.Cache.IncrementField(ctx, catalogVersionKey, 1, 0)
	return err
}
