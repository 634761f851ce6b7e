package metadata

import (
	"context"
)

// Repository is a small key/value store in the local database. Get returns
// common.ErrorNotFound for an absent key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}
