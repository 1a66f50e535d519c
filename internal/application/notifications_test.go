package application

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnity-hq/omnity-cli/internal/domain"
)

func TestNotificationCenterNewestFirst(t *testing.T) {
	t.Parallel()

	center := NewNotificationCenter(10)
	center.Notify(domain.Notification{ID: "a", Title: "first"})
	center.Notify(domain.Notification{ID: "b", Title: "second"})

	all := center.All()
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].ID)
	assert.Equal(t, "a", all[1].ID)
}

func TestNotificationCenterBounded(t *testing.T) {
	t.Parallel()

	center := NewNotificationCenter(3)
	for i := 0; i < 5; i++ {
		center.Notify(domain.Notification{ID: fmt.Sprintf("n-%d", i)})
	}

	all := center.All()
	require.Len(t, all, 3)
	assert.Equal(t, "n-4", all[0].ID)
	assert.Equal(t, "n-2", all[2].ID)
}

func TestNotificationCenterReadTracking(t *testing.T) {
	t.Parallel()

	center := NewNotificationCenter(10)
	center.Notify(domain.Notification{ID: "a"})
	center.Notify(domain.Notification{ID: "b"})
	center.Notify(domain.Notification{ID: "c", IsRead: true})

	assert.Equal(t, 2, center.UnreadCount())

	assert.True(t, center.MarkRead("a"))
	assert.False(t, center.MarkRead("missing"))
	assert.Equal(t, 1, center.UnreadCount())

	center.MarkAllRead()
	assert.Zero(t, center.UnreadCount())

	center.Clear()
	assert.Empty(t, center.All())
}
