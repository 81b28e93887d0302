package session

import "context"

// StorePort persists sealed session blobs by token. Get returns
// errors.ErrSessionNotStored for unknown tokens.
type StorePort interface {
	Put(ctx context.Context, token string, blob []byte) error
	Get(ctx context.Context, token string) ([]byte, error)
	Delete(ctx context.Context, token string) error
}
