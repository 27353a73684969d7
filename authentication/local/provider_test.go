package local

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"nutriflow/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type sentMail struct {
	email, link string
}

type recordingMailer struct {
	sent []sentMail
	err  error
}

func (m *recordingMailer) SendVerification(_ context.Context, email, link string) error {
	m.sent = append(m.sent, sentMail{email, link})
	return m.err
}

func newTestProvider() (*Provider, *repositories.InMemoryIdentityStore, *recordingMailer) {
	store := repositories.NewInMemoryIdentityStore()
	m := &recordingMailer{}
	p := NewProvider(store, m, Config{
		Secret:       "test-secret",
		VerifyURL:    "http://localhost:8080/auth/verify",
		VerifyExpiry: time.Hour,
		BcryptCost:   bcrypt.MinCost,
	}, zap.NewNop())
	return p, store, m
}

func TestSignUp(t *testing.T) {
	ctx := context.Background()
	p, store, m := newTestProvider()

	user, err := p.SignUp(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.False(t, user.EmailConfirmed)

	stored, err := store.FindIdentityByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))

	require.Len(t, m.sent, 1)
	assert.Equal(t, "ada@example.com", m.sent[0].email)
	assert.Contains(t, m.sent[0].link, "http://localhost:8080/auth/verify?token=")
}

func TestSignUpRejects(t *testing.T) {
	ctx := context.Background()
	p, _, _ := newTestProvider()
	_, err := p.SignUp(ctx, "taken@example.com", "secret1")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		want     *Error
	}{
		{"empty email", "", "secret1", ErrInvalidEmail},
		{"malformed email", "ada-at-example", "secret1", ErrInvalidEmail},
		{"display name form", "Ada <ada@example.com>", "secret1", ErrInvalidEmail},
		{"short password", "new@example.com", "abc", ErrWeakPassword},
		{"duplicate", "taken@example.com", "secret1", ErrUserExists},
		{"duplicate other case", "TAKEN@example.com", "secret1", ErrUserExists},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.SignUp(ctx, tc.email, tc.password)
			var perr *Error
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tc.want.Message, err.Error())
		})
	}
}

func TestSignUpMailFailureStillCreates(t *testing.T) {
	p, store, m := newTestProvider()
	m.err = errors.New("smtp down")

	user, err := p.SignUp(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)

	_, err = store.FindIdentityByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	p, store, _ := newTestProvider()

	user, err := p.SignUp(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, p.DeleteUser(ctx, user.ID))

	_, err = store.FindIdentityByEmail(ctx, "ada@example.com")
	assert.ErrorIs(t, err, repositories.ErrIdentityNotFound)

	_, err = p.SignUp(ctx, "ada@example.com", "secret1")
	assert.NoError(t, err, "email is free again after delete")
}

func TestVerifyEmail(t *testing.T) {
	ctx := context.Background()
	p, store, m := newTestProvider()

	user, err := p.SignUp(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	link, err := url.Parse(m.sent[0].link)
	require.NoError(t, err)
	verified, err := p.VerifyEmail(ctx, link.Query().Get("token"))
	require.NoError(t, err)
	assert.Equal(t, user.ID, verified.ID)
	assert.True(t, verified.EmailConfirmed)

	stored, err := store.FindIdentityByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.NotNil(t, stored.EmailVerifiedAt)

	_, err = p.VerifyEmail(ctx, "bogus")
	assert.Error(t, err)
}
