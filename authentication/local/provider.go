// Package local is the self-hosted identity provider: bcrypt password hashes
// in the identity store and signed email verification links.
package local

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"nutriflow/authentication/mailer"
	"nutriflow/authentication/util"
	"nutriflow/models"
	"nutriflow/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 6

// Error is a rejection the user should see as is.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrInvalidEmail = &Error{Code: "email_address_invalid", Message: "Unable to validate email address: invalid format"}
	ErrWeakPassword = &Error{Code: "weak_password", Message: fmt.Sprintf("Password should be at least %d characters.", MinPasswordLength)}
	ErrUserExists   = &Error{Code: "user_already_exists", Message: "User already registered"}
)

type Config struct {
	Secret       string
	VerifyURL    string
	VerifyExpiry time.Duration
	BcryptCost   int
}

type Provider struct {
	store  repositories.IdentityStore
	mailer mailer.Mailer
	cfg    Config
	log    *zap.Logger
	now    func() time.Time
}

func NewProvider(store repositories.IdentityStore, m mailer.Mailer, cfg Config, log *zap.Logger) *Provider {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &Provider{store: store, mailer: m, cfg: cfg, log: log, now: time.Now}
}

// SignUp creates an unverified identity and mails its verification link.
func (p *Provider) SignUp(ctx context.Context, email, password string) (*models.AuthUser, error) {
	email = strings.TrimSpace(email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	if _, err := p.store.FindIdentityByEmail(ctx, email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, repositories.ErrIdentityNotFound) {
		return nil, fmt.Errorf("look up identity: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	identity := &models.Identity{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := p.store.CreateIdentity(ctx, identity); err != nil {
		if errors.Is(err, repositories.ErrIdentityExists) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	// The account exists at this point; a lost email can be re-sent later,
	// so delivery problems are logged rather than failing the sign up.
	if err := p.sendVerification(ctx, identity); err != nil {
		p.log.Error("failed to send verification email",
			zap.String("user_id", identity.ID), zap.Error(err))
	}
	return identity.AuthUser(), nil
}

// DeleteUser removes an identity. Used to undo a sign up whose profile could
// not be written.
func (p *Provider) DeleteUser(ctx context.Context, id string) error {
	return p.store.DeleteIdentity(ctx, id)
}

// VerifyEmail confirms the address named in a verification token.
func (p *Provider) VerifyEmail(ctx context.Context, token string) (*models.AuthUser, error) {
	claims, err := util.ParseVerificationToken(token, p.cfg.Secret)
	if err != nil {
		return nil, err
	}
	if err := p.store.MarkEmailVerified(ctx, claims.Subject, p.now().UTC()); err != nil {
		return nil, err
	}
	return &models.AuthUser{ID: claims.Subject, Email: claims.Email, EmailConfirmed: true}, nil
}

func (p *Provider) sendVerification(ctx context.Context, identity *models.Identity) error {
	token, err := util.CreateVerificationToken(identity.ID, identity.Email, p.cfg.Secret, p.cfg.VerifyExpiry)
	if err != nil {
		return err
	}
	link := p.cfg.VerifyURL + "?token=" + url.QueryEscape(token)
	return p.mailer.SendVerification(ctx, identity.Email, link)
}
