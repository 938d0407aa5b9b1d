//go:build unix

package credential

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/locvowork/taskflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBackendRejectsSharedFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	t.Run("OpenMode", func(t *testing.T) {
		path := filepath.Join(dir, "open.yaml")
		require.NoError(t, NewFileBackend(path).Save(ctx, sampleCredential(false)))
		require.NoError(t, os.Chmod(path, 0o644))

		_, err := NewFileBackend(path).Load(ctx)
		assert.ErrorContains(t, err, "open to other users")
		assert.NotErrorIs(t, err, domain.ErrNoCredential)
	})

	t.Run("Symlink", func(t *testing.T) {
		target := filepath.Join(dir, "target.yaml")
		require.NoError(t, NewFileBackend(target).Save(ctx, sampleCredential(false)))
		link := filepath.Join(dir, "link.yaml")
		require.NoError(t, os.Symlink(target, link))

		_, err := NewFileBackend(link).Load(ctx)
		assert.ErrorContains(t, err, "not a regular file")
	})

	t.Run("PrivateFileLoads", func(t *testing.T) {
		path := SessionPath(dir)
		assert.Equal(t, dir, filepath.Dir(path))
		require.NoError(t, NewFileBackend(path).Save(ctx, sampleCredential(false)))

		got, err := NewFileBackend(path).Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "tok-abc", got.Token)
	})
}
