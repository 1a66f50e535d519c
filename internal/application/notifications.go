package application

import (
	"sync"

	"github.com/omnity-hq/omnity-cli/internal/domain"
	"github.com/omnity-hq/omnity-cli/internal/ports"
)

// NotificationCenter collects notifications pushed over the realtime
// channel for the lifetime of the process. Newest first, bounded so a
// long-running watch session cannot grow without limit.
type NotificationCenter struct {
	mu       sync.Mutex
	items    []domain.Notification
	capacity int
}

var _ ports.Notifier = (*NotificationCenter)(nil)

const defaultNotificationCapacity = 200

func NewNotificationCenter(capacity int) *NotificationCenter {
	if capacity <= 0 {
		capacity = defaultNotificationCapacity
	}
	return &NotificationCenter{capacity: capacity}
}

func (c *NotificationCenter) Notify(n domain.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = append([]domain.Notification{n}, c.items...)
	if len(c.items) > c.capacity {
		c.items = c.items[:c.capacity]
	}
}

func (c *NotificationCenter) All() []domain.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.Notification, len(c.items))
	copy(out, c.items)
	return out
}

func (c *NotificationCenter) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, n := range c.items {
		if !n.IsRead {
			count++
		}
	}
	return count
}

func (c *NotificationCenter) MarkRead(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].IsRead = true
			return true
		}
	}
	return false
}

func (c *NotificationCenter) MarkAllRead() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		c.items[i].IsRead = true
	}
}

func (c *NotificationCenter) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
}
