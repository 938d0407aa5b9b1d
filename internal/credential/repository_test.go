package credential

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/locvowork/taskflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCredential(withExpiry bool) *domain.Credential {
	cred := &domain.Credential{
		Token: "tok-abc",
		User:  domain.User{ID: 3, FullName: "Ada Lovelace", Email: "ada@example.com"},
	}
	if withExpiry {
		exp := time.UnixMilli(time.Now().Add(10 * time.Hour).UnixMilli())
		cred.ExpiresAt = &exp
	}
	return cred
}

func TestBackends(t *testing.T) {
	backends := map[string]Backend{
		"Memory": NewMemoryBackend(),
		"File":   NewFileBackend(filepath.Join(t.TempDir(), "nested", DurableFileName)),
	}

	for name, b := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := b.Load(ctx)
			assert.ErrorIs(t, err, domain.ErrNoCredential)

			want := sampleCredential(true)
			require.NoError(t, b.Save(ctx, want))

			got, err := b.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, want.Token, got.Token)
			assert.Equal(t, want.User, got.User)
			require.NotNil(t, got.ExpiresAt)
			assert.True(t, want.ExpiresAt.Equal(*got.ExpiresAt))

			require.NoError(t, b.Remove(ctx))
			require.NoError(t, b.Remove(ctx))
			_, err = b.Load(ctx)
			assert.ErrorIs(t, err, domain.ErrNoCredential)
		})
	}
}

func TestFileBackendLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), DurableFileName)
	b := NewFileBackend(path)
	require.NoError(t, b.Save(context.Background(), sampleCredential(false)))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(filePerm), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "token: tok-abc")
	assert.Contains(t, string(data), `"full_name":"Ada Lovelace"`)
	assert.NotContains(t, string(data), "token_expiration")
}

func TestFileBackendCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), DurableFileName)
	require.NoError(t, os.WriteFile(path, []byte("token: [unterminated"), filePerm))

	_, err := NewFileBackend(path).Load(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNoCredential)
}

func TestRepositoryTiersAreIndependent(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemoryBackend(), NewMemoryBackend())

	require.NoError(t, repo.Set(ctx, domain.TierSession, sampleCredential(false)))

	_, err := repo.Get(ctx, domain.TierDurable)
	assert.ErrorIs(t, err, domain.ErrNoCredential)
	got, err := repo.Get(ctx, domain.TierSession)
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", got.Token)

	assert.Error(t, repo.Set(ctx, domain.TierDurable, &domain.Credential{}))
	_, err = repo.Get(ctx, domain.Tier("cookie"))
	assert.Error(t, err)
}
