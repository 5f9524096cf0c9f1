package database

import (
	"context"

	"rollcall.io/infrastructure/database/connection"
	"rollcall.io/infrastructure/env"
)

func SetUpDatabase(cfg env.Config) error {
	return connection.ConnectToDatabase(cfg)
}

func CleanUp(ctx context.Context) {
	connection.Disconnect(ctx)
}

// BaseModel is implemented by every persisted entity. ParseModel returns a
// pointer to a copy with defaults and normalization applied.
type BaseModel interface {
	ParseModel() any
}
