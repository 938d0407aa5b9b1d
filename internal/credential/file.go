package credential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/locvowork/taskflow/internal/domain"
	"gopkg.in/yaml.v2"
)

const (
	DurableFileName = "credential.yaml"
	filePerm        = 0o600
	dirPerm         = 0o700
)

// record is the on-disk layout. The profile is kept as JSON text and the
// expiry as Unix milliseconds.
type record struct {
	Token           string `yaml:"token"`
	User            string `yaml:"user"`
	TokenExpiration int64  `yaml:"token_expiration,omitempty"`
}

// FileBackend stores the credential as a YAML document at Path.
type FileBackend struct {
	Path string
	mu   sync.Mutex
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{Path: path}
}

// DurablePath is where the durable tier lives inside dir.
func DurablePath(dir string) string {
	return filepath.Join(dir, DurableFileName)
}

// SessionPath is the per-terminal session tier file inside dir: it is keyed by
// the parent shell's pid so a new terminal starts without a session.
func SessionPath(dir string) string {
	return filepath.Join(dir, fmt.Sprintf("session-%d.yaml", os.Getppid()))
}

func (f *FileBackend) Load(_ context.Context) (*domain.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	info, err := os.Lstat(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.ErrNoCredential
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credential file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("refusing credential file %s: not a regular file", f.Path)
	}
	if err := checkPrivate(info); err != nil {
		return nil, fmt.Errorf("refusing credential file %s: %w", f.Path, err)
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credential file: %w", err)
	}

	var rec record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse credential file %s: %w", f.Path, err)
	}
	if rec.Token == "" {
		return nil, domain.ErrNoCredential
	}

	cred := &domain.Credential{Token: rec.Token}
	if rec.User != "" {
		if err := json.Unmarshal([]byte(rec.User), &cred.User); err != nil {
			return nil, fmt.Errorf("failed to parse stored user profile: %w", err)
		}
	}
	if rec.TokenExpiration > 0 {
		exp := time.UnixMilli(rec.TokenExpiration)
		cred.ExpiresAt = &exp
	}
	return cred, nil
}

func (f *FileBackend) Save(_ context.Context, cred *domain.Credential) error {
	user, err := json.Marshal(cred.User)
	if err != nil {
		return fmt.Errorf("failed to encode user profile: %w", err)
	}
	rec := record{Token: cred.Token, User: string(user)}
	if cred.ExpiresAt != nil {
		rec.TokenExpiration = cred.ExpiresAt.UnixMilli()
	}
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode credential: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.Path), dirPerm); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.Path), ".credential-*")
	if err != nil {
		return fmt.Errorf("failed to create temp credential file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write credential: %w", err)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set credential file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write credential: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}

func (f *FileBackend) Remove(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credential file: %w", err)
	}
	return nil
}
