package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flamecrumble/storefront-backend/internal/auth"
)

// chanMailer hands each sent code to the test; delivery happens on a
// goroutine, so the test receives with a timeout.
type chanMailer struct {
	codes chan string
}

func newChanMailer() *chanMailer {
	return &chanMailer{codes: make(chan string, 4)}
}

func (m *chanMailer) SendVerificationCode(email, code string) error {
	m.codes <- code
	return nil
}

func (m *chanMailer) next(t *testing.T) string {
	t.Helper()
	select {
	case code := <-m.codes:
		return code
	case <-time.After(2 * time.Second):
		t.Fatal("no verification code was sent")
		return ""
	}
}

func TestRegisterCreatesUnverifiedAccount(t *testing.T) {
	ctx := context.Background()
	mailer := newChanMailer()
	svc := NewService(NewInMemoryRepository(nil), mailer)

	u, err := svc.Register(ctx, "Ada", "ada@example.com", "s3cret")
	require.NoError(t, err)
	assert.False(t, u.IsVerified)
	assert.Equal(t, auth.RoleUser, u.Role)
	assert.NotEqual(t, "s3cret", u.Password, "password must be stored hashed")

	code := mailer.next(t)
	assert.Len(t, code, 6)

	_, err = svc.Register(ctx, "Ada", "ada@example.com", "other")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	mailer := newChanMailer()
	svc := NewService(NewInMemoryRepository(nil), mailer)

	_, err := svc.Register(ctx, "Ada", "ada@example.com", "s3cret")
	require.NoError(t, err)
	mailer.next(t)

	u, err := svc.Authenticate(ctx, "ada@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)

	_, err = svc.Authenticate(ctx, "ada@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody@example.com", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyEmailFlow(t *testing.T) {
	ctx := context.Background()
	mailer := newChanMailer()
	svc := NewService(NewInMemoryRepository(nil), mailer)

	_, err := svc.Register(ctx, "Ada", "ada@example.com", "s3cret")
	require.NoError(t, err)
	code := mailer.next(t)

	wrong := "000000"
	if code == wrong {
		wrong = "000001"
	}
	_, err = svc.VerifyEmail(ctx, "ada@example.com", wrong)
	assert.ErrorIs(t, err, ErrCodeInvalid)

	verified, err := svc.VerifyEmail(ctx, "ada@example.com", code)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)

	_, err = svc.VerifyEmail(ctx, "ada@example.com", code)
	assert.ErrorIs(t, err, ErrAlreadyVerified)
	err = svc.ResendVerification(ctx, "ada@example.com")
	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestVerifyEmailExpiredCode(t *testing.T) {
	ctx := context.Background()
	mailer := newChanMailer()
	repo := NewInMemoryRepository(nil)
	svc := NewService(repo, mailer)

	_, err := svc.Register(ctx, "Ada", "ada@example.com", "s3cret")
	require.NoError(t, err)
	code := mailer.next(t)

	u, err := repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	u.VerificationExpires = time.Now().UTC().Add(-time.Minute).Format(time.RFC3339)
	_, err = repo.Update(ctx, u.ID, u)
	require.NoError(t, err)

	_, err = svc.VerifyEmail(ctx, "ada@example.com", code)
	assert.ErrorIs(t, err, ErrCodeExpired)

	// resend issues a usable replacement
	require.NoError(t, svc.ResendVerification(ctx, "ada@example.com"))
	fresh := mailer.next(t)
	verified, err := svc.VerifyEmail(ctx, "ada@example.com", fresh)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	mailer := newChanMailer()
	svc := NewService(NewInMemoryRepository(nil), mailer)

	u, err := svc.Register(ctx, "Ada", "ada@example.com", "s3cret")
	require.NoError(t, err)
	mailer.next(t)

	updated, err := svc.UpdateProfile(ctx, u.ID, "Countess", "newpass")
	require.NoError(t, err)
	assert.Equal(t, "Countess", updated.Name)

	_, err = svc.Authenticate(ctx, "ada@example.com", "newpass")
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, "ada@example.com", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// empty fields leave the account untouched
	same, err := svc.UpdateProfile(ctx, u.ID, "", "")
	require.NoError(t, err)
	assert.Equal(t, "Countess", same.Name)
}
