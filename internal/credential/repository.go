package credential

import (
	"context"
	"fmt"

	"github.com/locvowork/taskflow/internal/domain"
)

// Backend persists a single credential.
type Backend interface {
	Load(ctx context.Context) (*domain.Credential, error)
	Save(ctx context.Context, cred *domain.Credential) error
	Remove(ctx context.Context) error
}

// Repository implements domain.CredentialRepository over one Backend per tier.
type Repository struct {
	backends map[domain.Tier]Backend
}

var _ domain.CredentialRepository = (*Repository)(nil)

func NewRepository(durable, session Backend) *Repository {
	return &Repository{backends: map[domain.Tier]Backend{
		domain.TierDurable: durable,
		domain.TierSession: session,
	}}
}

func (r *Repository) backend(tier domain.Tier) (Backend, error) {
	b, ok := r.backends[tier]
	if !ok || b == nil {
		return nil, fmt.Errorf("unknown credential tier %q", tier)
	}
	return b, nil
}

func (r *Repository) Get(ctx context.Context, tier domain.Tier) (*domain.Credential, error) {
	b, err := r.backend(tier)
	if err != nil {
		return nil, err
	}
	return b.Load(ctx)
}

func (r *Repository) Set(ctx context.Context, tier domain.Tier, cred *domain.Credential) error {
	if cred == nil || cred.Token == "" {
		return fmt.Errorf("refusing to store an empty credential in %s tier", tier)
	}
	b, err := r.backend(tier)
	if err != nil {
		return err
	}
	return b.Save(ctx, cred)
}

func (r *Repository) Clear(ctx context.Context, tier domain.Tier) error {
	b, err := r.backend(tier)
	if err != nil {
		return err
	}
	return b.Remove(ctx)
}
