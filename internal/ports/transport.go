package ports

import (
	"context"
	"net/url"
)

// Transport executes authenticated JSON requests against the backend.
// Implementations attach the bearer credential and resolve 401s through the
// refresh protocol before surfacing errors.
type Transport interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body any, out any) error
	Put(ctx context.Context, path string, body any, out any) error
	Patch(ctx context.Context, path string, body any, out any) error
	Delete(ctx context.Context, path string, out any) error
}
