package application

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/omnity-hq/omnity-cli/internal/adapters/querycache"
	"github.com/omnity-hq/omnity-cli/internal/domain"
	"github.com/omnity-hq/omnity-cli/internal/ports"
)

type transportCall struct {
	method string
	path   string
	query  url.Values
	body   any
}

// fakeTransport answers requests from per-route stubs and records every
// call, so tests can assert both what was sent and how often the network
// was touched.
type fakeTransport struct {
	mu    sync.Mutex
	calls []transportCall
	stubs map[string]stubResponse
}

type stubResponse struct {
	value any
	err   error
}

var _ ports.Transport = (*fakeTransport)(nil)

func newFakeTransport() *fakeTransport {
	return &fakeTransport{stubs: map[string]stubResponse{}}
}

func (f *fakeTransport) stub(method, path string, value any, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stubs[method+" "+path] = stubResponse{value: value, err: err}
}

func (f *fakeTransport) callCount(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, c := range f.calls {
		if c.method == method && c.path == path {
			count++
		}
	}
	return count
}

func (f *fakeTransport) lastCall(method, path string) (transportCall, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].method == method && f.calls[i].path == path {
			return f.calls[i], true
		}
	}
	return transportCall{}, false
}

func (f *fakeTransport) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeTransport) respond(method, path string, query url.Values, body, out any) error {
	f.mu.Lock()
	f.calls = append(f.calls, transportCall{method: method, path: path, query: query, body: body})
	stub, ok := f.stubs[method+" "+path]
	f.mu.Unlock()

	if !ok {
		return fmt.Errorf("no stub for %s %s", method, path)
	}
	if stub.err != nil {
		return stub.err
	}
	if out == nil || stub.value == nil {
		return nil
	}

	raw, err := json.Marshal(stub.value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (f *fakeTransport) Get(ctx context.Context, path string, query url.Values, out any) error {
	return f.respond("GET", path, query, nil, out)
}

func (f *fakeTransport) Post(ctx context.Context, path string, body, out any) error {
	return f.respond("POST", path, nil, body, out)
}

func (f *fakeTransport) Put(ctx context.Context, path string, body, out any) error {
	return f.respond("PUT", path, nil, body, out)
}

func (f *fakeTransport) Patch(ctx context.Context, path string, body, out any) error {
	return f.respond("PATCH", path, nil, body, out)
}

func (f *fakeTransport) Delete(ctx context.Context, path string, out any) error {
	return f.respond("DELETE", path, nil, nil, out)
}

type fakeSessionStore struct {
	mu      sync.Mutex
	session domain.Session
	setErr  error
	cleared int
}

var _ ports.SessionStore = (*fakeSessionStore)(nil)

func (f *fakeSessionStore) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session.Token
}

func (f *fakeSessionStore) Refresh(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session.Token, nil
}

func (f *fakeSessionStore) Current() domain.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

func (f *fakeSessionStore) Set(session domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.setErr != nil {
		return f.setErr
	}
	session.IsAuthenticated = session.User != nil && session.Token != ""
	f.session = session
	return nil
}

func (f *fakeSessionStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.session = domain.Session{}
	f.cleared++
	return nil
}

func (f *fakeSessionStore) IsExpired() bool { return false }

func (f *fakeSessionStore) clearCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cleared
}

// newServiceCache builds a cache with near-zero backoff so retry paths do
// not slow the suite down. The generous stale window keeps values fresh for
// the duration of a test.
func newServiceCache() *querycache.Cache {
	return querycache.New(querycache.Options{
		StaleTime: time.Hour,
		BaseDelay: time.Millisecond,
		MaxDelay:  5 * time.Millisecond,
	}, nil)
}
