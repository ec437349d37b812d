package directory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"slot-swapper/internal/domain/users"
	"slot-swapper/internal/platform/httpclient"
	"slot-swapper/internal/platform/logger"
)

var (
	ErrNotConfigured = errors.New("identity directory not configured")
	ErrUnauthorized  = errors.New("identity directory unauthorized")
	ErrUpstream      = errors.New("identity directory upstream error")
	ErrUnknownUser   = errors.New("identity directory: unknown user")
)

const (
	defaultAPIKeyHeader = "X-Api-Key"
	defaultCacheTTL     = 5 * time.Minute
)

// Fallback resuelve nombres cuando el directorio no responde o no conoce al usuario.
type Fallback interface {
	ResolveName(ctx context.Context, userID string) string
}

type Config struct {
	BaseURL string
	APIKey  string

	// Opcional: si está vacío se usa "X-Api-Key".
	APIKeyHeader string

	Timeout  time.Duration
	CacheTTL time.Duration
}

type cached struct {
	name      string
	expiresAt time.Time
}

// Client consulta un directorio de identidad externo (GET /v1/users/{id}).
// Implementa el NameResolver de swaps y marketplace.
type Client struct {
	http     *httpclient.Client
	fallback Fallback
	log      logger.Logger
	ttl      time.Duration
	now      func() time.Time

	mu    sync.Mutex
	cache map[string]cached
}

func NewClient(cfg Config, fallback Fallback, log logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrNotConfigured
	}
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = defaultAPIKeyHeader
	}
	hc, err := httpclient.New(httpclient.Options{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Headers: map[string]string{h: strings.TrimSpace(cfg.APIKey)},
	})
	if err != nil {
		return nil, err
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if log == nil {
		log = logger.Nop()
	}

	return &Client{
		http:     hc,
		fallback: fallback,
		log:      log.With(logger.Fields{"component": "identity_directory"}),
		ttl:      ttl,
		now:      time.Now,
		cache:    map[string]cached{},
	}, nil
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LookupName trae el nombre visible de userID desde el directorio.
func (c *Client) LookupName(ctx context.Context, userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", ErrUnknownUser
	}

	var out userResponse
	err := c.http.GetJSON(ctx, "/v1/users/"+url.PathEscape(userID), &out)
	switch code := httpclient.StatusCode(err); {
	case err == nil:
	case code == http.StatusNotFound:
		return "", ErrUnknownUser
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return "", ErrUnauthorized
	default:
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	name := strings.TrimSpace(out.Name)
	if name == "" {
		return "", ErrUnknownUser
	}
	return name, nil
}

// ResolveName nunca falla: ante error usa el fallback (o users.UnknownUserName).
func (c *Client) ResolveName(ctx context.Context, userID string) string {
	if name, ok := c.cached(userID); ok {
		return name
	}

	name, err := c.LookupName(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrUnknownUser) {
			c.log.Warn("name lookup failed", logger.Fields{"user_id": userID, "error": err})
		}
		return c.fallbackName(ctx, userID)
	}

	c.mu.Lock()
	c.cache[userID] = cached{name: name, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return name
}

func (c *Client) cached(userID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.cache[userID]
	if !ok || !c.now().Before(e.expiresAt) {
		return "", false
	}
	return e.name, true
}

func (c *Client) fallbackName(ctx context.Context, userID string) string {
	if c.fallback == nil {
		return users.UnknownUserName
	}
	return c.fallback.ResolveName(ctx, userID)
}
