package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mpetrenko/leadglass/internal/backend"
	"github.com/mpetrenko/leadglass/internal/cache"
	"github.com/mpetrenko/leadglass/internal/config"
	"github.com/mpetrenko/leadglass/internal/lead"
	"github.com/mpetrenko/leadglass/internal/logging"
	"github.com/mpetrenko/leadglass/internal/prefs"
	"github.com/mpetrenko/leadglass/internal/state"
	"github.com/mpetrenko/leadglass/internal/syncer"
	"github.com/mpetrenko/leadglass/internal/ui"
)

// Options configure the leadglass application.
type Options struct {
	ConfigPath   string
	PrefsPath    string // empty uses default ~/.config/leadglass/prefs.toml
	RefreshEvery int    // seconds; zero uses default
}

// Run boots the leadglass TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, closeLog, err := logging.New(logging.Config{Path: cfg.LogPath, Level: cfg.LogLevel})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer closeLog()

	userPrefs := prefs.Load(opts.PrefsPath)

	cacheStore, err := cache.New(cfg.CacheDir, log)
	if err != nil {
		return fmt.Errorf("init cache: %w", err)
	}

	client, err := backend.NewClient(cfg.BackendURL, cfg.BackendKey)
	if err != nil {
		return fmt.Errorf("init backend client: %w", err)
	}

	store := state.NewStore(lead.ParseDirection(userPrefs.SortDirection))
	ctrl := syncer.New(client, cacheStore, store, cfg.CacheTTL, log)

	interval := defaultRefreshInterval
	if opts.RefreshEvery > 0 {
		interval = time.Duration(opts.RefreshEvery) * time.Second
	}

	logSession(ctx, client, log)

	// Populate all datasets before the first view switch; the UI only
	// re-syncs the dataset it is looking at.
	go ctrl.SyncAll(ctx)
	startRefresher(ctx, ctrl, interval)

	uiOpts := ui.Options{
		Context:    ctx,
		Client:     client,
		Controller: ctrl,
		Store:      store,
		Prefs:      userPrefs,
		PrefsPath:  opts.PrefsPath,
		Log:        log,
	}
	return ui.Run(uiOpts)
}

// logSession records whether the backend recognises a signed-in user.
// Anonymous access still works with the project API key, so failures here
// never stop startup.
func logSession(ctx context.Context, client *backend.Client, log *zap.Logger) {
	go func() {
		probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		user, err := client.Session(probeCtx)
		switch {
		case err != nil:
			log.Warn("session probe failed", zap.Error(err))
		case user == nil:
			log.Info("running anonymously")
		default:
			log.Info("session active", zap.String("user", user.Email))
		}
	}()
}
