package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"slot-swapper/internal/ports/auth"

	"github.com/google/uuid"
)

const DefaultTTL = 24 * time.Hour

var ErrTokenEmpty = errors.New("token is empty")

type entry struct {
	userID    string
	expiresAt time.Time
}

// Store emite tokens opacos en memoria y los verifica para el middleware.
// Es un mock de sesión: los tokens no sobreviven a un reinicio.
type Store struct {
	mu     sync.Mutex
	tokens map[string]entry
	ttl    time.Duration
	now    func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		tokens: map[string]entry{},
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue implementa users.TokenIssuer.
func (s *Store) Issue(_ context.Context, userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", errors.New("user id required")
	}

	token := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeLocked()
	s.tokens[token] = entry{userID: userID, expiresAt: s.now().Add(s.ttl)}
	return token, nil
}

func (s *Store) Revoke(_ context.Context, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, strings.TrimSpace(token))
}

// Verify implementa auth.AuthVerifier.
func (s *Store) Verify(_ context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.tokens[token]
	if !ok {
		return auth.Claims{}, auth.ErrInvalidToken
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.tokens, token)
		return auth.Claims{}, fmt.Errorf("%w: expired", auth.ErrInvalidToken)
	}
	return auth.Claims{UserID: e.userID}, nil
}

func (s *Store) purgeLocked() {
	now := s.now()
	for k, e := range s.tokens {
		if !now.Before(e.expiresAt) {
			delete(s.tokens, k)
		}
	}
}
