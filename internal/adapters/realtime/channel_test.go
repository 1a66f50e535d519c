package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnity-hq/omnity-cli/internal/domain"
	"github.com/omnity-hq/omnity-cli/internal/ports"
)

type staticTokens struct{ token string }

func (s staticTokens) Token() string { return s.token }

func (s staticTokens) Refresh(_ context.Context) (string, error) {
	return s.token, nil
}

type recordingInvalidator struct {
	mu       sync.Mutex
	keys     []string
	prefixes []string
}

func (r *recordingInvalidator) Invalidate(keys ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, keys...)
}

func (r *recordingInvalidator) InvalidatePrefix(prefix string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefixes = append(r.prefixes, prefix)
}

func (r *recordingInvalidator) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.keys...)
}

type recordingNotifier struct {
	mu            sync.Mutex
	notifications []domain.Notification
}

func (r *recordingNotifier) Notify(n domain.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
}

func (r *recordingNotifier) All() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Notification(nil), r.notifications...)
}

// eventServer is a minimal realtime backend: it upgrades connections, records
// client frames, and lets tests push server events.
type eventServer struct {
	t        *testing.T
	upgrader websocket.Upgrader

	mu     sync.Mutex
	conns  []*websocket.Conn
	frames chan domain.Event
	dials  atomic.Int64
	reject atomic.Bool
	auths  chan string
}

func newEventServer(t *testing.T) (*eventServer, string) {
	t.Helper()

	srv := &eventServer{
		t:      t,
		frames: make(chan domain.Event, 32),
		auths:  make(chan string, 32),
	}

	httpSrv := httptest.NewServer(http.HandlerFunc(srv.handle))
	t.Cleanup(httpSrv.Close)
	t.Cleanup(srv.closeAll)

	return srv, "ws" + strings.TrimPrefix(httpSrv.URL, "http")
}

func (s *eventServer) handle(w http.ResponseWriter, r *http.Request) {
	s.dials.Add(1)
	s.auths <- r.Header.Get("Authorization")

	if s.reject.Load() {
		http.Error(w, "handshake rejected", http.StatusForbidden)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.conns = append(s.conns, conn)
	s.mu.Unlock()

	for {
		var event domain.Event
		if err := conn.ReadJSON(&event); err != nil {
			return
		}
		s.frames <- event
	}
}

func (s *eventServer) push(event domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(s.t, s.conns, "no live connection to push to")
	require.NoError(s.t, s.conns[len(s.conns)-1].WriteJSON(event))
}

func (s *eventServer) dropAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conn := range s.conns {
		_ = conn.Close()
	}
	s.conns = nil
}

func (s *eventServer) closeAll() {
	s.dropAll()
}

func (s *eventServer) nextFrame(t *testing.T) domain.Event {
	t.Helper()
	select {
	case frame := <-s.frames:
		return frame
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for client frame")
		return domain.Event{}
	}
}

func newTestChannel(t *testing.T, url string, invalidator Invalidator, notifier *recordingNotifier) *Channel {
	t.Helper()

	// Avoid wrapping a nil *recordingNotifier in a non-nil interface value.
	var n ports.Notifier
	if notifier != nil {
		n = notifier
	}

	channel, err := NewChannel(Options{
		URL:                  url,
		ReconnectDelay:       10 * time.Millisecond,
		MaxReconnectAttempts: 3,
		RecentCapacity:       5,
	}, staticTokens{token: "T1"}, invalidator, n, nil)
	require.NoError(t, err)
	t.Cleanup(channel.Disconnect)

	return channel
}

func TestConnectRequiresAuthenticatedSession(t *testing.T) {
	t.Parallel()

	_, url := newEventServer(t)
	channel, err := NewChannel(Options{URL: url}, staticTokens{}, nil, nil, nil)
	require.NoError(t, err)

	require.ErrorIs(t, channel.Connect(), domain.ErrNotAuthenticated)
	assert.Equal(t, StatusDisconnected, channel.Status())
}

func TestConnectAuthenticatesAndJoinsRooms(t *testing.T) {
	t.Parallel()

	server, url := newEventServer(t)
	channel := newTestChannel(t, url, nil, nil)

	channel.JoinRoom(7)
	require.NoError(t, channel.Connect())

	require.Eventually(t, channel.IsConnected, time.Second, 5*time.Millisecond)
	assert.Equal(t, "Bearer T1", <-server.auths)

	frame := server.nextFrame(t)
	assert.Equal(t, domain.EventType("join-room"), frame.Type)
	assert.Equal(t, 7, frame.ProjectID)

	// Joining the same room twice emits nothing further.
	channel.JoinRoom(7)
	select {
	case frame := <-server.frames:
		t.Fatalf("unexpected frame %q", frame.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestServerEventInvalidatesOnlyAffectedKeyAndNotifies(t *testing.T) {
	t.Parallel()

	server, url := newEventServer(t)
	invalidator := &recordingInvalidator{}
	notifier := &recordingNotifier{}
	channel := newTestChannel(t, url, invalidator, notifier)

	require.NoError(t, channel.Connect())
	require.Eventually(t, channel.IsConnected, time.Second, 5*time.Millisecond)

	server.push(domain.Event{
		Type:      domain.EventTaskCreated,
		ProjectID: 7,
		Data:      json.RawMessage(`{"title":"X"}`),
		Timestamp: time.Now(),
	})

	require.Eventually(t, func() bool {
		return len(invalidator.Keys()) > 0
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"tasks:7"}, invalidator.Keys())
	assert.NotContains(t, invalidator.Keys(), "tasks:8")

	notifications := notifier.All()
	require.Len(t, notifications, 1)
	assert.Equal(t, "New task created", notifications[0].Title)
	assert.Equal(t, "Task: X", notifications[0].Message)
	assert.Equal(t, 7, notifications[0].ProjectID)

	recent := channel.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, domain.EventTaskCreated, recent[0].Type)
}

func TestRecentBufferEvictsOldestPastCapacity(t *testing.T) {
	t.Parallel()

	server, url := newEventServer(t)
	channel := newTestChannel(t, url, nil, nil)

	require.NoError(t, channel.Connect())
	require.Eventually(t, channel.IsConnected, time.Second, 5*time.Millisecond)

	for i := 0; i < 8; i++ {
		server.push(domain.Event{
			Type:      domain.EventNotificationCreated,
			ProjectID: i,
			Timestamp: time.Now(),
		})
	}

	require.Eventually(t, func() bool {
		return len(channel.Recent()) == 5
	}, time.Second, 5*time.Millisecond)

	recent := channel.Recent()
	assert.Equal(t, 3, recent[0].ProjectID, "oldest events are evicted first")
	assert.Equal(t, 7, recent[len(recent)-1].ProjectID)
}

func TestDropTriggersReconnectAndReassertsRooms(t *testing.T) {
	t.Parallel()

	server, url := newEventServer(t)
	channel := newTestChannel(t, url, nil, nil)

	channel.JoinRoom(3)
	require.NoError(t, channel.Connect())
	require.Eventually(t, channel.IsConnected, time.Second, 5*time.Millisecond)
	server.nextFrame(t) // initial join-room

	server.dropAll()

	require.Eventually(t, func() bool {
		return server.dials.Load() >= 2 && channel.IsConnected()
	}, 2*time.Second, 5*time.Millisecond)

	frame := server.nextFrame(t)
	assert.Equal(t, domain.EventType("join-room"), frame.Type)
	assert.Equal(t, 3, frame.ProjectID)
}

func TestReconnectBudgetExhaustionIsTerminalUntilManualReconnect(t *testing.T) {
	t.Parallel()

	server, url := newEventServer(t)
	server.reject.Store(true)

	channel := newTestChannel(t, url, nil, nil)
	require.NoError(t, channel.Connect())

	require.Eventually(t, func() bool {
		return channel.Status() == StatusError
	}, 2*time.Second, 5*time.Millisecond)

	// Initial dial plus the capped automatic attempts, then silence.
	dialsAtError := server.dials.Load()
	assert.Equal(t, int64(4), dialsAtError)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, dialsAtError, server.dials.Load())

	server.reject.Store(false)
	require.NoError(t, channel.Reconnect())
	require.Eventually(t, channel.IsConnected, time.Second, 5*time.Millisecond)
}

func TestSendIsSilentlyDroppedWhenDisconnected(t *testing.T) {
	t.Parallel()

	_, url := newEventServer(t)
	channel := newTestChannel(t, url, nil, nil)

	channel.Send("chat", map[string]string{"text": "hi"}, 7)
	assert.Equal(t, StatusDisconnected, channel.Status())
}

func TestSendEmitsMessageEnvelopeWhenConnected(t *testing.T) {
	t.Parallel()

	server, url := newEventServer(t)
	channel := newTestChannel(t, url, nil, nil)

	require.NoError(t, channel.Connect())
	require.Eventually(t, channel.IsConnected, time.Second, 5*time.Millisecond)

	channel.Send("chat", map[string]string{"text": "hi"}, 7)

	frame := server.nextFrame(t)
	assert.Equal(t, domain.EventType("message"), frame.Type)
	assert.Equal(t, 7, frame.ProjectID)

	var inner struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(frame.Data, &inner))
	assert.Equal(t, "chat", inner.Type)
}

func TestDisconnectClearsRoomsAndStopsReconnects(t *testing.T) {
	t.Parallel()

	server, url := newEventServer(t)
	channel := newTestChannel(t, url, nil, nil)

	channel.JoinRoom(1)
	channel.JoinRoom(2)
	require.NoError(t, channel.Connect())
	require.Eventually(t, channel.IsConnected, time.Second, 5*time.Millisecond)

	channel.Disconnect()
	assert.Equal(t, StatusDisconnected, channel.Status())
	assert.Empty(t, channel.Rooms())

	dials := server.dials.Load()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, dials, server.dials.Load(), "no automatic reconnect after manual disconnect")
}
