package ports

import "github.com/omnity-hq/omnity-cli/internal/domain"

// Invalidator is the realtime channel's hook into the query cache.
type Invalidator interface {
	Invalidate(keys ...string)
}

// Notifier receives transient user-facing notifications derived from
// server-pushed events.
type Notifier interface {
	Notify(notification domain.Notification)
}
