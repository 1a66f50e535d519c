package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/omnity-hq/omnity-cli/internal/domain"
	"github.com/omnity-hq/omnity-cli/internal/ports"
)

const (
	refreshPath          = "/sessions/refresh"
	maxRefreshBodyBytes  = 1 << 20
	defaultRefreshWindow = 15 * time.Second
)

// Store is the single source of truth for the client credential. It owns the
// in-memory session, keeps the persisted snapshot in sync, and performs the
// refresh-token exchange against the backend with its own bare HTTP client so
// the exchange never recurses through the authenticated transport.
type Store struct {
	repo       ports.SessionRepository
	clock      ports.Clock
	refreshURL string
	httpClient *http.Client

	// refreshMu serializes the token exchange itself; mu guards the session
	// snapshot and stays uncontended during the HTTP round-trip.
	refreshMu sync.Mutex
	mu        sync.RWMutex
	session   domain.Session
}

var _ ports.TokenSource = (*Store)(nil)

func NewStore(repo ports.SessionRepository, clock ports.Clock, baseURL string, httpClient *http.Client) (*Store, error) {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRefreshWindow}
	}

	endpoint, err := resolveRefreshURL(baseURL)
	if err != nil {
		return nil, err
	}

	store := &Store{
		repo:       repo,
		clock:      clock,
		refreshURL: endpoint,
		httpClient: httpClient,
	}

	if err := store.rehydrate(); err != nil {
		return nil, err
	}

	return store, nil
}

// rehydrate loads the persisted snapshot and self-logs-out when the stored
// access token has already expired, so the rest of the system never observes
// a stale authenticated state.
func (s *Store) rehydrate() error {
	session, err := s.repo.Load()
	if err != nil {
		return fmt.Errorf("load persisted session: %w", err)
	}

	if !session.HasTokens() || tokenExpired(session.Token, s.clock.Now()) {
		if session.HasTokens() {
			if err := s.repo.Clear(); err != nil {
				return err
			}
		}
		s.session = domain.Session{}
		return nil
	}

	session.IsAuthenticated = true
	s.session = session
	return nil
}

func (s *Store) Current() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Token
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.IsAuthenticated
}

// IsExpired decodes the access token's expiry claim. Absent and malformed
// tokens count as expired.
func (s *Store) IsExpired() bool {
	s.mu.RLock()
	token := s.session.Token
	s.mu.RUnlock()
	return tokenExpired(token, s.clock.Now())
}

// Set replaces the session atomically and persists the new snapshot.
func (s *Store) Set(session domain.Session) error {
	session.IsAuthenticated = session.HasTokens() && !tokenExpired(session.Token, s.clock.Now())

	s.mu.Lock()
	s.session = session
	s.mu.Unlock()

	if err := s.repo.Save(session); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// Clear drops the in-memory credential and the persisted snapshot. It always
// leaves the store logged-out even when removing the snapshot fails.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.session = domain.Session{}
	s.mu.Unlock()

	return s.repo.Clear()
}

// Refresh exchanges the refresh token for a new pair. Any failure forces a
// logout and surfaces an AuthError, pushing every caller back to an
// unauthenticated state.
func (s *Store) Refresh(ctx context.Context) (string, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	s.mu.RLock()
	refreshToken := s.session.RefreshToken
	user := s.session.User
	s.mu.RUnlock()

	if refreshToken == "" {
		return "", &domain.AuthError{Reason: "no refresh token", Err: domain.ErrNotAuthenticated}
	}

	refreshed, err := s.exchange(ctx, refreshToken)
	if err != nil {
		_ = s.Clear()
		var authErr *domain.AuthError
		if errors.As(err, &authErr) {
			return "", err
		}
		return "", &domain.AuthError{Reason: "refresh token exchange failed", Err: err}
	}

	if err := s.Set(domain.Session{
		User:         user,
		Token:        refreshed.Token,
		RefreshToken: refreshed.RefreshToken,
	}); err != nil {
		return "", err
	}

	return refreshed.Token, nil
}

func (s *Store) exchange(ctx context.Context, refreshToken string) (domain.RefreshResponse, error) {
	payload, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return domain.RefreshResponse{}, fmt.Errorf("encode refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.refreshURL, bytes.NewReader(payload))
	if err != nil {
		return domain.RefreshResponse{}, fmt.Errorf("create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return domain.RefreshResponse{}, fmt.Errorf("request token refresh: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return domain.RefreshResponse{}, &domain.AuthError{
			Reason: fmt.Sprintf("refresh rejected with status %d", resp.StatusCode),
		}
	}

	var refreshed domain.RefreshResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxRefreshBodyBytes)).Decode(&refreshed); err != nil {
		return domain.RefreshResponse{}, fmt.Errorf("decode refresh response: %w", err)
	}
	if refreshed.Token == "" || refreshed.RefreshToken == "" {
		return domain.RefreshResponse{}, errors.New("refresh response missing tokens")
	}

	return refreshed, nil
}

func resolveRefreshURL(baseURL string) (string, error) {
	if baseURL == "" {
		return "", errors.New("api base url is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("api base url host is required")
	}

	endpoint, err := parsed.Parse(refreshPath)
	if err != nil {
		return "", fmt.Errorf("parse refresh path: %w", err)
	}
	return endpoint.String(), nil
}
