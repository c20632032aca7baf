package user

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/flamecrumble/storefront-backend/internal/auth"
	"github.com/flamecrumble/storefront-backend/internal/mail"
)

const codeValidity = 15 * time.Minute

// Service handles account lifecycle: registration with emailed verification
// codes, authentication and profile updates. Mail delivery is fire-and-forget;
// a failed send is logged and never fails the request that triggered it.
type Service struct {
	repo   Repository
	mailer mail.Mailer
}

func NewService(repo Repository, mailer mail.Mailer) *Service {
	return &Service{repo: repo, mailer: mailer}
}

// Register creates an unverified account and emails a verification code.
func (s *Service) Register(ctx context.Context, name, email, password string) (User, error) {
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return User{}, ErrEmailExists
	} else if err != ErrNotFound {
		return User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return User{}, err
	}

	code, codeHash, err := newVerificationCode()
	if err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, User{
		Name:                name,
		Email:               email,
		Password:            string(hashed),
		Role:                auth.RoleUser,
		IsVerified:          false,
		VerificationCode:    codeHash,
		VerificationExpires: now.Add(codeValidity).Format(time.RFC3339),
		CreatedAt:           now.Format(time.RFC3339),
		UpdatedAt:           now.Format(time.RFC3339),
	})
	if err != nil {
		return User{}, err
	}

	s.sendCode(created.Email, code)
	return created, nil
}

// Authenticate checks the credentials and returns the matching account.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// VerifyEmail marks the account verified when the supplied code matches the
// pending one and has not expired.
func (s *Service) VerifyEmail(ctx context.Context, email, code string) (User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if u.IsVerified {
		return User{}, ErrAlreadyVerified
	}
	if u.VerificationCode == "" {
		return User{}, ErrCodeInvalid
	}
	if expires, err := time.Parse(time.RFC3339, u.VerificationExpires); err != nil || time.Now().After(expires) {
		return User{}, ErrCodeExpired
	}
	if bcrypt.CompareHashAndPassword([]byte(u.VerificationCode), []byte(code)) != nil {
		return User{}, ErrCodeInvalid
	}

	u.IsVerified = true
	u.VerificationCode = ""
	u.VerificationExpires = ""
	u.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return s.repo.Update(ctx, u.ID, u)
}

// ResendVerification issues a fresh code for an unverified account.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u.IsVerified {
		return ErrAlreadyVerified
	}

	code, codeHash, err := newVerificationCode()
	if err != nil {
		return err
	}
	u.VerificationCode = codeHash
	u.VerificationExpires = time.Now().UTC().Add(codeValidity).Format(time.RFC3339)
	u.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if _, err := s.repo.Update(ctx, u.ID, u); err != nil {
		return err
	}

	s.sendCode(u.Email, code)
	return nil
}

func (s *Service) GetByID(ctx context.Context, id int) (User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile changes name and, when non-empty, the password.
func (s *Service) UpdateProfile(ctx context.Context, id int, name, password string) (User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if name != "" {
		u.Name = name
	}
	if password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), 12)
		if err != nil {
			return User{}, err
		}
		u.Password = string(hashed)
	}
	u.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return s.repo.Update(ctx, id, u)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// sendCode delivers asynchronously so registration never waits on SMTP.
func (s *Service) sendCode(email, code string) {
	go func() {
		if err := s.mailer.SendVerificationCode(email, code); err != nil {
			log.Printf("user: could not send verification code to %s: %v", email, err)
		}
	}()
}

// newVerificationCode returns a 6-digit code and its bcrypt hash; only the
// hash is persisted.
func newVerificationCode() (code, hash string, err error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", "", err
	}
	code = fmt.Sprintf("%06d", n.Int64())
	hashed, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", "", err
	}
	return code, string(hashed), nil
}
