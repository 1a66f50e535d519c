package ports

import (
	"context"

	"github.com/omnity-hq/omnity-cli/internal/domain"
)

// SessionRepository persists the session snapshot across process restarts.
type SessionRepository interface {
	Load() (domain.Session, error)
	Save(session domain.Session) error
	Clear() error
}

// SessionStore is the full session surface used by the auth flows: snapshot
// access, atomic replacement, and teardown, plus the transport-facing
// TokenSource.
type SessionStore interface {
	TokenSource
	Current() domain.Session
	Set(session domain.Session) error
	Clear() error
	IsExpired() bool
}

// TokenSource is the transport client's view of the session store: the
// current access token, and the refresh entry point. Refresh must be safe to
// call concurrently; the transport serializes calls through its own
// single-flight gate.
type TokenSource interface {
	Token() string
	Refresh(ctx context.Context) (string, error)
}
