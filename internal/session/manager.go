package session

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/locvowork/taskflow/internal/apiclient"
	"github.com/locvowork/taskflow/internal/domain"
	"github.com/locvowork/taskflow/internal/logger"
)

// DefaultRememberTTL is how long a remembered login stays valid.
const DefaultRememberTTL = 10 * time.Hour

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// Authenticator is the part of the API client the manager needs.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*apiclient.AuthResult, error)
	Register(ctx context.Context, fullName, email, password string) (*apiclient.AuthResult, error)
}

// Manager owns login, registration and logout outcomes and decides in which
// tier the resulting credential lives.
type Manager struct {
	auth        Authenticator
	repo        domain.CredentialRepository
	now         func() time.Time
	rememberTTL time.Duration
}

type Option func(*Manager)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithRememberTTL overrides DefaultRememberTTL.
func WithRememberTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.rememberTTL = ttl
		}
	}
}

func NewManager(auth Authenticator, repo domain.CredentialRepository, opts ...Option) *Manager {
	m := &Manager{
		auth:        auth,
		repo:        repo,
		now:         time.Now,
		rememberTTL: DefaultRememberTTL,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Authenticate logs in. With remember the credential goes to the durable tier
// with an expiry, otherwise to the session tier.
func (m *Manager) Authenticate(ctx context.Context, email, password string, remember bool) (*domain.Credential, error) {
	if email == "" || password == "" {
		return nil, domain.NewValidationError(domain.ReasonMissingFields)
	}

	res, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return nil, authFailure(err, "Login failed")
	}
	if err := checkAuthResult(res); err != nil {
		return nil, err
	}

	cred := &domain.Credential{Token: res.Token, User: res.User}
	tier := domain.TierSession
	if remember {
		exp := m.now().Add(m.rememberTTL)
		cred.ExpiresAt = &exp
		tier = domain.TierDurable
	}
	if err := m.store(ctx, tier, cred); err != nil {
		return nil, err
	}
	logger.InfoLog(ctx, fmt.Sprintf("signed in user %s (%s tier)", res.User.ID, tier))
	return cred, nil
}

// Register validates the form, creates the account and stores the credential
// in the durable tier without expiry.
func (m *Manager) Register(ctx context.Context, fullName, email, password, confirmPassword string) (*domain.Credential, error) {
	if err := ValidateRegistration(fullName, email, password, confirmPassword); err != nil {
		return nil, err
	}

	res, err := m.auth.Register(ctx, fullName, email, password)
	if err != nil {
		return nil, authFailure(err, "Registration failed")
	}
	if err := checkAuthResult(res); err != nil {
		return nil, err
	}

	cred := &domain.Credential{Token: res.Token, User: res.User}
	if err := m.store(ctx, domain.TierDurable, cred); err != nil {
		return nil, err
	}
	logger.InfoLog(ctx, fmt.Sprintf("registered user %s", res.User.ID))
	return cred, nil
}

// ValidateRegistration runs the registration checks in order and returns the
// first failure.
func ValidateRegistration(fullName, email, password, confirmPassword string) error {
	switch {
	case fullName == "" || email == "" || password == "" || confirmPassword == "":
		return domain.NewValidationError(domain.ReasonMissingFields)
	case password != confirmPassword:
		return domain.NewValidationError(domain.ReasonMismatch)
	case len(password) < minPasswordLength:
		return domain.NewValidationError(domain.ReasonTooShort)
	case !emailPattern.MatchString(email):
		return domain.NewValidationError(domain.ReasonInvalidEmail)
	}
	return nil
}

// RestoreSession returns the stored credential without contacting the server.
// The durable tier wins; an expired durable credential is cleared and ignored.
func (m *Manager) RestoreSession(ctx context.Context) (*domain.Credential, bool, error) {
	for _, tier := range domain.Tiers {
		cred, err := m.repo.Get(ctx, tier)
		if errors.Is(err, domain.ErrNoCredential) {
			continue
		}
		if err != nil {
			logger.WarnLog(ctx, fmt.Sprintf("discarding unreadable %s credential: %v", tier, err))
			if err := m.repo.Clear(ctx, tier); err != nil {
				return nil, false, fmt.Errorf("failed to clear %s credential: %w", tier, err)
			}
			continue
		}
		if tier == domain.TierDurable && cred.Expired(m.now()) {
			logger.InfoLog(ctx, "remembered session expired")
			if err := m.repo.Clear(ctx, tier); err != nil {
				return nil, false, fmt.Errorf("failed to clear expired credential: %w", err)
			}
			continue
		}
		return cred, true, nil
	}
	return nil, false, nil
}

// Logout clears both tiers. Calling it without a session is a no-op.
func (m *Manager) Logout(ctx context.Context) error {
	var errs []error
	for _, tier := range domain.Tiers {
		if err := m.repo.Clear(ctx, tier); err != nil {
			errs = append(errs, fmt.Errorf("failed to clear %s credential: %w", tier, err))
		}
	}
	return errors.Join(errs...)
}

// store keeps exactly one credential: both tiers are cleared before tier is written.
func (m *Manager) store(ctx context.Context, tier domain.Tier, cred *domain.Credential) error {
	if err := m.Logout(ctx); err != nil {
		return err
	}
	if err := m.repo.Set(ctx, tier, cred); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}

// checkAuthResult rejects a success envelope without a usable credential
// before any stored credential is touched.
func checkAuthResult(res *apiclient.AuthResult) error {
	switch {
	case res == nil:
		return &domain.NetworkError{Err: errors.New("malformed response: no auth payload")}
	case res.Token == "":
		return &domain.NetworkError{Err: errors.New("malformed response: missing token")}
	case res.User.FullName == "" && res.User.Email == "":
		return &domain.NetworkError{Err: errors.New("malformed response: missing user profile")}
	}
	return nil
}

func authFailure(err error, fallback string) error {
	if msg, ok := apiclient.IsLogical(err); ok {
		if msg == "" {
			msg = fallback
		}
		return &domain.AuthError{Message: msg}
	}
	return &domain.NetworkError{Err: err}
}
