package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	UnknownUserName   = "Unknown User"
	MinPasswordLength = 6
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("user not found")
	ErrConflict     = errors.New("user already exists")
	ErrUnauthorized = errors.New("invalid credentials")
)

type Service struct {
	repo   Repository
	tokens TokenIssuer
	now    func() time.Time
}

func NewService(repo Repository, tokens TokenIssuer) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		now:    time.Now,
	}
}

type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// Session es el resultado de signup/login.
type Session struct {
	User  User
	Token string
}

// Register crea el usuario y abre sesión. La password solo se valida por largo:
// el login es un mock y no se persiste ninguna credencial.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)

	if email == "" || name == "" {
		return Session{}, fmt.Errorf("%w: email and name required", ErrInvalidInput)
	}
	if !strings.Contains(email, "@") {
		return Session{}, fmt.Errorf("%w: email is malformed", ErrInvalidInput)
	}
	if len(in.Password) < MinPasswordLength {
		return Session{}, fmt.Errorf("%w: password must have at least %d characters", ErrInvalidInput, MinPasswordLength)
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return Session{}, ErrConflict
	} else if !errors.Is(err, ErrNotFound) {
		return Session{}, err
	}

	u := User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return Session{}, err
	}

	return s.open(ctx, u)
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = normalizeEmail(email)
	if email == "" || len(password) < MinPasswordLength {
		return Session{}, ErrUnauthorized
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrUnauthorized
		}
		return Session{}, err
	}
	return s.open(ctx, u)
}

func (s *Service) Logout(ctx context.Context, token string) {
	if s.tokens == nil {
		return
	}
	s.tokens.Revoke(ctx, strings.TrimSpace(token))
}

func (s *Service) open(ctx context.Context, u User) (Session, error) {
	if s.tokens == nil {
		return Session{User: u}, nil
	}
	token, err := s.tokens.Issue(ctx, u.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{User: u, Token: token}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// ResolveName devuelve el nombre visible; UnknownUserName si no existe.
func (s *Service) ResolveName(ctx context.Context, userID string) string {
	u, err := s.repo.GetByID(ctx, strings.TrimSpace(userID))
	if err != nil || strings.TrimSpace(u.Name) == "" {
		return UnknownUserName
	}
	return u.Name
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
