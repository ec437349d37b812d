package users_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"slot-swapper/internal/adapters/storage/memory"
	"slot-swapper/internal/domain/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokens struct {
	issued  map[string]string
	revoked []string
	fail    error
}

func (f *fakeTokens) Issue(_ context.Context, userID string) (string, error) {
	if f.fail != nil {
		return "", f.fail
	}
	if f.issued == nil {
		f.issued = map[string]string{}
	}
	tok := fmt.Sprintf("tok-%d", len(f.issued)+1)
	f.issued[tok] = userID
	return tok, nil
}

func (f *fakeTokens) Revoke(_ context.Context, token string) {
	f.revoked = append(f.revoked, token)
}

func newService() (*users.Service, *fakeTokens) {
	tokens := &fakeTokens{}
	return users.NewService(memory.NewStore().Users(), tokens), tokens
}

func TestRegister_CreatesUserAndSession(t *testing.T) {
	svc, tokens := newService()

	sess, err := svc.Register(context.Background(), users.RegisterInput{
		Email:    " Alice@Example.com ",
		Name:     "Alice Johnson",
		Password: "secret1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.User.ID)
	assert.Equal(t, "alice@example.com", sess.User.Email)
	assert.Equal(t, "Alice Johnson", sess.User.Name)
	assert.Equal(t, sess.User.ID, tokens.issued[sess.Token])
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newService()
	tests := []struct {
		name string
		in   users.RegisterInput
	}{
		{name: "missing email", in: users.RegisterInput{Name: "A", Password: "secret1"}},
		{name: "missing name", in: users.RegisterInput{Email: "a@b.c", Password: "secret1"}},
		{name: "malformed email", in: users.RegisterInput{Email: "nope", Name: "A", Password: "secret1"}},
		{name: "short password", in: users.RegisterInput{Email: "a@b.c", Name: "A", Password: "12345"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.in)
			assert.ErrorIs(t, err, users.ErrInvalidInput)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newService()
	in := users.RegisterInput{Email: "bob@example.com", Name: "Bob", Password: "secret1"}

	_, err := svc.Register(context.Background(), in)
	require.NoError(t, err)

	in.Email = "BOB@example.com"
	_, err = svc.Register(context.Background(), in)
	assert.ErrorIs(t, err, users.ErrConflict)
}

func TestLogin(t *testing.T) {
	svc, tokens := newService()
	ctx := context.Background()
	reg, err := svc.Register(ctx, users.RegisterInput{Email: "bob@example.com", Name: "Bob", Password: "secret1"})
	require.NoError(t, err)

	sess, err := svc.Login(ctx, "bob@example.com", "whatever")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, sess.User.ID)
	assert.NotEqual(t, reg.Token, sess.Token)

	_, err = svc.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, users.ErrUnauthorized)

	_, err = svc.Login(ctx, "bob@example.com", "123")
	assert.ErrorIs(t, err, users.ErrUnauthorized)

	svc.Logout(ctx, " "+sess.Token+" ")
	assert.Equal(t, []string{sess.Token}, tokens.revoked)
}

func TestLogin_TokenFailureIsReturned(t *testing.T) {
	svc, tokens := newService()
	ctx := context.Background()
	_, err := svc.Register(ctx, users.RegisterInput{Email: "bob@example.com", Name: "Bob", Password: "secret1"})
	require.NoError(t, err)

	boom := errors.New("boom")
	tokens.fail = boom
	_, err = svc.Login(ctx, "bob@example.com", "secret1")
	assert.ErrorIs(t, err, boom)
}

func TestResolveName(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	sess, err := svc.Register(ctx, users.RegisterInput{Email: "c@example.com", Name: "Charlie Brown", Password: "secret1"})
	require.NoError(t, err)

	assert.Equal(t, "Charlie Brown", svc.ResolveName(ctx, sess.User.ID))
	assert.Equal(t, users.UnknownUserName, svc.ResolveName(ctx, "ghost"))
	assert.Equal(t, users.UnknownUserName, svc.ResolveName(ctx, ""))
}
