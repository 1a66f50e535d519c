package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/omnity-hq/omnity-cli/internal/domain"
	"github.com/omnity-hq/omnity-cli/internal/ports"
)

type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusError        Status = "error"
)

// Client-emitted control events. Server-pushed event types live in domain.
const (
	eventJoinRoom  = "join-room"
	eventLeaveRoom = "leave-room"
	eventMessage   = "message"
)

const (
	defaultReconnectDelay   = 3 * time.Second
	defaultMaxReconnects    = 5
	defaultHandshakeTimeout = 10 * time.Second
	defaultRecentCapacity   = 100
)

type Options struct {
	// URL is the websocket endpoint, e.g. ws://host/ws.
	URL string
	// ReconnectDelay is the fixed wait between reconnect attempts.
	ReconnectDelay time.Duration
	// MaxReconnectAttempts caps consecutive automatic attempts; past it the
	// channel parks in the terminal error state until Reconnect.
	MaxReconnectAttempts int
	HandshakeTimeout     time.Duration
	// RecentCapacity bounds the recent-event buffer.
	RecentCapacity int
	// OnEvent, when set, observes every server-pushed event after the cache
	// and notification side effects ran. Must not block.
	OnEvent func(domain.Event)
}

func (o Options) withDefaults() Options {
	if o.ReconnectDelay <= 0 {
		o.ReconnectDelay = defaultReconnectDelay
	}
	if o.MaxReconnectAttempts <= 0 {
		o.MaxReconnectAttempts = defaultMaxReconnects
	}
	if o.HandshakeTimeout <= 0 {
		o.HandshakeTimeout = defaultHandshakeTimeout
	}
	if o.RecentCapacity <= 0 {
		o.RecentCapacity = defaultRecentCapacity
	}
	return o
}

// Invalidator is the subset of the query cache the channel patches.
type Invalidator interface {
	ports.Invalidator
	InvalidatePrefix(prefix string)
}

// Channel maintains a live event subscription independent of the
// request/response cache. Connection failures never escape to callers; they
// surface only through Status and the reconnect outcome.
type Channel struct {
	opts        Options
	tokens      ports.TokenSource
	invalidator Invalidator
	notifier    ports.Notifier
	clock       ports.Clock
	dialer      *websocket.Dialer

	mu             sync.Mutex
	status         Status
	conn           *websocket.Conn
	rooms          map[int]struct{}
	attempts       int
	reconnectTimer *time.Timer
	// generation invalidates read loops and timers that belong to a torn-down
	// connection; every manual disconnect/reconnect bumps it.
	generation int
	recent     []domain.Event
}

func NewChannel(opts Options, tokens ports.TokenSource, invalidator Invalidator, notifier ports.Notifier, clock ports.Clock) (*Channel, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("realtime url is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token source is required")
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}
	opts = opts.withDefaults()

	return &Channel{
		opts:        opts,
		tokens:      tokens,
		invalidator: invalidator,
		notifier:    notifier,
		clock:       clock,
		dialer:      &websocket.Dialer{HandshakeTimeout: opts.HandshakeTimeout},
		status:      StatusDisconnected,
		rooms:       map[int]struct{}{},
	}, nil
}

func (c *Channel) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Channel) IsConnected() bool {
	return c.Status() == StatusConnected
}

// Recent returns a copy of the bounded recent-event buffer, oldest first.
func (c *Channel) Recent() []domain.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Event, len(c.recent))
	copy(out, c.recent)
	return out
}

// Connect establishes the subscription. It requires an authenticated session;
// transport-level failures are absorbed into the reconnect state machine and
// never returned.
func (c *Channel) Connect() error {
	c.mu.Lock()
	if c.status == StatusConnected || c.status == StatusConnecting {
		c.mu.Unlock()
		return nil
	}
	token := c.tokens.Token()
	if token == "" {
		c.mu.Unlock()
		return domain.ErrNotAuthenticated
	}
	c.status = StatusConnecting
	generation := c.generation
	c.mu.Unlock()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	conn, resp, err := c.dialer.Dial(c.opts.URL, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		// Disconnected while the handshake was in flight.
		if conn != nil {
			_ = conn.Close()
		}
		return nil
	}

	if err != nil {
		c.status = StatusDisconnected
		c.scheduleReconnectLocked()
		return nil
	}

	c.conn = conn
	c.status = StatusConnected
	c.attempts = 0

	// Re-assert room membership after every successful (re)connect.
	for projectID := range c.rooms {
		c.writeLocked(domain.Event{
			Type:      eventJoinRoom,
			Data:      roomPayload("projectId", projectID),
			ProjectID: projectID,
			Timestamp: c.clock.Now(),
		})
	}

	go c.readLoop(conn, generation)
	return nil
}

// Disconnect tears the subscription down and clears room membership. Safe to
// call in any state.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardownLocked()
	c.rooms = map[int]struct{}{}
	c.status = StatusDisconnected
}

// Reconnect resets the attempt budget and dials again, including from the
// terminal error state.
func (c *Channel) Reconnect() error {
	c.mu.Lock()
	c.teardownLocked()
	c.status = StatusDisconnected
	c.mu.Unlock()

	return c.Connect()
}

// JoinRoom records membership in a project room. The join frame is emitted
// immediately when connected and re-asserted after reconnects; joining twice
// is a no-op.
func (c *Channel) JoinRoom(projectID int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.rooms[projectID]; ok {
		return
	}
	c.rooms[projectID] = struct{}{}

	if c.status == StatusConnected {
		c.writeLocked(domain.Event{
			Type:      eventJoinRoom,
			Data:      roomPayload("projectId", projectID),
			ProjectID: projectID,
			Timestamp: c.clock.Now(),
		})
	}
}

func (c *Channel) LeaveRoom(projectID int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.rooms[projectID]; !ok {
		return
	}
	delete(c.rooms, projectID)

	if c.status == StatusConnected {
		c.writeLocked(domain.Event{
			Type:      eventLeaveRoom,
			Data:      roomPayload("roomId", projectID),
			ProjectID: projectID,
			Timestamp: c.clock.Now(),
		})
	}
}

// Rooms returns the current membership set.
func (c *Channel) Rooms() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]int, 0, len(c.rooms))
	for id := range c.rooms {
		out = append(out, id)
	}
	return out
}

// Send emits a message event. Sends are best-effort: silently dropped when
// the channel is not connected, never queued.
func (c *Channel) Send(eventType string, data any, projectID int) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusConnected {
		return
	}
	c.writeLocked(domain.Event{
		Type:      eventMessage,
		Data:      wrapMessage(eventType, payload),
		ProjectID: projectID,
		Timestamp: c.clock.Now(),
	})
}

func (c *Channel) teardownLocked() {
	c.generation++
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.attempts = 0
}

// scheduleReconnectLocked arms the single pending reconnect timer, or parks
// the channel in the terminal error state once the attempt budget is spent.
func (c *Channel) scheduleReconnectLocked() {
	if c.attempts >= c.opts.MaxReconnectAttempts {
		c.status = StatusError
		return
	}
	if c.reconnectTimer != nil {
		return
	}

	c.attempts++
	generation := c.generation
	c.reconnectTimer = time.AfterFunc(c.opts.ReconnectDelay, func() {
		c.mu.Lock()
		c.reconnectTimer = nil
		stale := generation != c.generation
		c.mu.Unlock()
		if stale {
			return
		}
		_ = c.Connect()
	})
}

func (c *Channel) readLoop(conn *websocket.Conn, generation int) {
	for {
		var event domain.Event
		if err := conn.ReadJSON(&event); err != nil {
			c.handleDrop(generation)
			return
		}
		c.handleEvent(event)
	}
}

func (c *Channel) handleDrop(generation int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		return
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.status = StatusDisconnected
	c.scheduleReconnectLocked()
}

// handleEvent buffers the event, patches the cache, and emits a transient
// user notification keyed by the event type.
func (c *Channel) handleEvent(event domain.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = c.clock.Now()
	}

	c.mu.Lock()
	c.recent = append(c.recent, event)
	if len(c.recent) > c.opts.RecentCapacity {
		c.recent = c.recent[len(c.recent)-c.opts.RecentCapacity:]
	}
	c.mu.Unlock()

	c.applyInvalidations(event)

	if notification, ok := notificationFor(event); ok && c.notifier != nil {
		c.notifier.Notify(notification)
	}

	if c.opts.OnEvent != nil {
		c.opts.OnEvent(event)
	}
}

func (c *Channel) applyInvalidations(event domain.Event) {
	if c.invalidator == nil {
		return
	}

	project := strconv.Itoa(event.ProjectID)

	switch event.Type {
	case domain.EventProjectCreated, domain.EventProjectDeleted:
		c.invalidator.InvalidatePrefix("projects:")
		c.invalidator.Invalidate("stats:projects", "project:"+project)
	case domain.EventProjectUpdated:
		c.invalidator.InvalidatePrefix("projects:")
		c.invalidator.Invalidate("project:" + project)
	case domain.EventTaskCreated, domain.EventTaskUpdated, domain.EventTaskDeleted:
		c.invalidator.Invalidate("tasks:" + project)
	case domain.EventRequirementCreated, domain.EventRequirementUpdated:
		c.invalidator.Invalidate("requirements:" + project)
	case domain.EventNotificationCreated:
		// Notification events carry no cached resource.
	default:
		// Unknown event types still reach the buffer and OnEvent hook.
	}
}

func roomPayload(field string, id int) json.RawMessage {
	payload, _ := json.Marshal(map[string]int{field: id})
	return payload
}

func wrapMessage(eventType string, data json.RawMessage) json.RawMessage {
	payload, _ := json.Marshal(map[string]json.RawMessage{
		"type": json.RawMessage(strconv.Quote(eventType)),
		"data": data,
	})
	return payload
}

// writeLocked performs a best-effort frame write. Callers hold c.mu, which
// also serializes writers on the underlying connection.
func (c *Channel) writeLocked(event domain.Event) {
	if c.conn == nil {
		return
	}
	_ = c.conn.WriteJSON(event)
}

// notificationFor maps a server event to the transient notification shown to
// the user, mirroring the dashboard's toast behavior.
func notificationFor(event domain.Event) (domain.Notification, bool) {
	var body struct {
		Title   string `json:"title"`
		Titulo  string `json:"titulo"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(event.Data, &body)
	if body.Title == "" {
		body.Title = body.Titulo
	}

	notification := domain.Notification{
		ID:        uuid.NewString(),
		ProjectID: event.ProjectID,
		Priority:  domain.NotificationPriorityLow,
		CreatedAt: event.Timestamp,
	}

	switch event.Type {
	case domain.EventProjectCreated:
		notification.Title = "Project created"
	case domain.EventProjectUpdated:
		notification.Title = "Project updated"
		notification.Message = "The project was updated by another user"
	case domain.EventProjectDeleted:
		notification.Title = "Project deleted"
		notification.Priority = domain.NotificationPriorityMedium
	case domain.EventTaskCreated:
		notification.Title = "New task created"
		notification.Message = "Task: " + orUntitled(body.Title)
	case domain.EventTaskUpdated:
		notification.Title = "Task updated"
		notification.Message = "Task: " + orUntitled(body.Title)
	case domain.EventTaskDeleted:
		notification.Title = "Task deleted"
	case domain.EventRequirementCreated:
		notification.Title = "New requirement created"
		notification.Message = "Requirement: " + orUntitled(body.Title)
	case domain.EventRequirementUpdated:
		notification.Title = "Requirement updated"
		notification.Message = "Requirement: " + orUntitled(body.Title)
	case domain.EventNotificationCreated:
		notification.Title = body.Title
		notification.Message = body.Message
		notification.Priority = domain.NotificationPriorityMedium
	default:
		return domain.Notification{}, false
	}

	return notification, true
}

func orUntitled(title string) string {
	if title == "" {
		return "untitled"
	}
	return title
}
