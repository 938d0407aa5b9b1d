package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/locvowork/taskflow/internal/apiclient"
	"github.com/locvowork/taskflow/internal/config"
	"github.com/locvowork/taskflow/internal/credential"
	"github.com/locvowork/taskflow/internal/domain"
	"github.com/locvowork/taskflow/internal/logger"
	"github.com/locvowork/taskflow/internal/session"
	"github.com/locvowork/taskflow/internal/taskstore"
)

// App holds the client's long-lived dependencies.
type App struct {
	API         *apiclient.Client
	Durable     credential.Backend
	Credentials *credential.Repository
	Session     *session.Manager

	LoaderDelay time.Duration
	RememberTTL time.Duration
}

func NewApp() *App {
	return &App{RememberTTL: session.DefaultRememberTTL}
}

// Initialize loads configuration and logging, then wires the API client and
// file-backed credential tiers.
func (a *App) Initialize(ctx context.Context) error {
	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}
	cfg := config.DefaultEnvConfig

	logger.InitLogging(cfg.LOG_FILE_PATH, cfg.LOG_LEVEL)
	logger.DebugLog(ctx, fmt.Sprintf("environment loaded (%s), api %s", cfg.APP_ENV, cfg.API_BASE_URL))

	a.API = apiclient.New(cfg.API_BASE_URL, cfg.HTTP_TIMEOUT)
	a.LoaderDelay = cfg.LOADER_DELAY
	a.RememberTTL = cfg.REMEMBER_TTL
	a.Wire(
		credential.NewFileBackend(credential.DurablePath(cfg.CREDENTIAL_DIR)),
		credential.NewFileBackend(credential.SessionPath(cfg.SESSION_DIR)),
	)
	return nil
}

// Wire (re)builds the credential repository and session manager over the
// given tier backends. API must be set first.
func (a *App) Wire(durable, sess credential.Backend) {
	a.Durable = durable
	a.Credentials = credential.NewRepository(durable, sess)
	a.Session = session.NewManager(a.API, a.Credentials, session.WithRememberTTL(a.RememberTTL))
}

// NewTaskStore returns an empty store authorized by cred.
func (a *App) NewTaskStore(cred *domain.Credential) *taskstore.Store {
	return taskstore.New(a.API, cred)
}
