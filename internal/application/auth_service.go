package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/omnity-hq/omnity-cli/internal/adapters/querycache"
	"github.com/omnity-hq/omnity-cli/internal/domain"
	"github.com/omnity-hq/omnity-cli/internal/ports"
)

const (
	loginPath    = "/sessions/password"
	registerPath = "/users"
	profilePath  = "/profile"
)

// AuthService owns the authentication flows. Every successful login or
// refresh lands in the session store, which is also where the transport
// client picks its credential up, so the two can never disagree.
type AuthService struct {
	transport ports.Transport
	sessions  ports.SessionStore
	cache     *querycache.Cache
}

func NewAuthService(transport ports.Transport, sessions ports.SessionStore, cache *querycache.Cache) *AuthService {
	return &AuthService{transport: transport, sessions: sessions, cache: cache}
}

func (s *AuthService) Login(ctx context.Context, credentials domain.Credentials) (domain.Session, error) {
	if strings.TrimSpace(credentials.Email) == "" {
		return domain.Session{}, &domain.ValidationError{Field: "email", Message: "must not be empty"}
	}
	if credentials.Password == "" {
		return domain.Session{}, &domain.ValidationError{Field: "password", Message: "must not be empty"}
	}

	var response domain.LoginResponse
	if err := s.transport.Post(ctx, loginPath, credentials, &response); err != nil {
		if domain.IsUnauthorized(err) {
			return domain.Session{}, &domain.AuthError{Reason: "invalid credentials", Err: err}
		}
		return domain.Session{}, err
	}

	next := domain.Session{
		User:         &response.User,
		Token:        response.Token,
		RefreshToken: response.RefreshToken,
	}
	if err := s.sessions.Set(next); err != nil {
		return domain.Session{}, err
	}

	return s.sessions.Current(), nil
}

// Register creates the account and then logs in with the same credentials.
// Failures carry the phase they belong to.
func (s *AuthService) Register(ctx context.Context, request domain.CreateUserRequest) (domain.Session, error) {
	if strings.TrimSpace(request.Email) == "" {
		return domain.Session{}, &domain.ValidationError{Field: "email", Message: "must not be empty"}
	}
	if len(request.Password) == 0 {
		return domain.Session{}, &domain.ValidationError{Field: "password", Message: "must not be empty"}
	}

	var created struct {
		User    domain.User `json:"user"`
		Message string      `json:"message"`
	}
	if err := s.transport.Post(ctx, registerPath, request, &created); err != nil {
		return domain.Session{}, fmt.Errorf("create account: %w", err)
	}

	session, err := s.Login(ctx, domain.Credentials{Email: request.Email, Password: request.Password})
	if err != nil {
		return domain.Session{}, fmt.Errorf("login after registration: %w", err)
	}

	return session, nil
}

// Logout clears the credential and persisted state. It always succeeds; a
// failing snapshot removal still leaves the process logged out.
func (s *AuthService) Logout() {
	_ = s.sessions.Clear()
	if s.cache != nil {
		s.cache.Remove(profileKey)
	}
}

func (s *AuthService) Session() domain.Session {
	return s.sessions.Current()
}

func (s *AuthService) Profile(ctx context.Context) (domain.User, error) {
	return querycache.Query(ctx, s.cache, profileKey, func(ctx context.Context) (domain.User, error) {
		var user domain.User
		err := s.transport.Get(ctx, profilePath, nil, &user)
		return user, err
	})
}

func (s *AuthService) UpdateProfile(ctx context.Context, update domain.User) (domain.User, error) {
	user, err := querycache.Mutate(ctx, s.cache, func(ctx context.Context) (domain.User, error) {
		var updated domain.User
		err := s.transport.Put(ctx, profilePath, update, &updated)
		return updated, err
	})
	if err != nil {
		return domain.User{}, err
	}

	s.cache.Put(profileKey, user)
	return user, nil
}

func (s *AuthService) RecoverPassword(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return &domain.ValidationError{Field: "email", Message: "must not be empty"}
	}
	return s.transport.Post(ctx, "/password/recover", domain.RecoverPasswordRequest{Email: email}, nil)
}

func (s *AuthService) ResetPassword(ctx context.Context, request domain.ResetPasswordRequest) error {
	if request.Token == "" {
		return &domain.ValidationError{Field: "token", Message: "must not be empty"}
	}
	if request.NewPassword == "" {
		return &domain.ValidationError{Field: "newPassword", Message: "must not be empty"}
	}
	return s.transport.Post(ctx, "/password/reset", request, nil)
}
