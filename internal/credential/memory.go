package credential

import (
	"context"
	"sync"

	"github.com/locvowork/taskflow/internal/domain"
)

// MemoryBackend keeps the credential for the lifetime of the process.
type MemoryBackend struct {
	mu   sync.Mutex
	cred *domain.Credential
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (m *MemoryBackend) Load(_ context.Context) (*domain.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cred == nil {
		return nil, domain.ErrNoCredential
	}
	return clone(m.cred), nil
}

func (m *MemoryBackend) Save(_ context.Context, cred *domain.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = clone(cred)
	return nil
}

func (m *MemoryBackend) Remove(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = nil
	return nil
}

func clone(c *domain.Credential) *domain.Credential {
	cp := *c
	if c.ExpiresAt != nil {
		t := *c.ExpiresAt
		cp.ExpiresAt = &t
	}
	return &cp
}
