package connection

import (
	"context"

	"rollcall.io/infrastructure/database/connection/cache"
	"rollcall.io/infrastructure/database/connection/datastore"
	"rollcall.io/infrastructure/env"
)

func ConnectToDatabase(cfg env.Config) error {
	if err := datastore.ConnectToDatabase(cfg); err != nil {
		return err
	}
	return cache.ConnectToCache(cfg)
}

func Disconnect(ctx context.Context) {
	datastore.Disconnect(ctx)
	cache.Disconnect()
}
