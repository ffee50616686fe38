package client

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	gosync "sync"

	"golang.org/x/exp/slog"

	"joddit/internal/app/client/config"
	"joddit/internal/domain/note"
)

// App wires the local store, the server client and the sync core
// together. It owns the store mutex: every read-modify-write of the
// local collection, whether from a command or a reconcile run, goes
// through it.
type App struct {
	config      *config.Config
	log         *slog.Logger
	store       LocalStore
	remote      RemoteStore
	identity    Identity
	httpClient  *httpClient
	notes       *NoteService
	reconciler  *Reconciler
	transcriber Transcriber
	storeMu     gosync.Mutex
	storeGen    uint64
	wg          gosync.WaitGroup
	cancel      context.CancelFunc
}

// persistLocked writes the collection and bumps the store generation.
// Callers must hold storeMu. The generation lets a reconcile run detect
// writes that landed while it was off the lock talking to the server.
func (a *App) persistLocked(notes []note.Note) error {
	a.storeGen++
	return a.store.WriteAll(notes)
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	httpCl := NewHTTPClient(cfg, log)

	var store LocalStore
	sqliteStore, err := NewSQLiteStore(cfg.DataPath, log)
	if err != nil {
		log.Warn("sqlite unavailable, falling back to memory", "error", err)
		store = NewMemoryStore()
	} else {
		store = sqliteStore
	}

	app := &App{
		config:     cfg,
		log:        log,
		store:      store,
		remote:     httpCl,
		identity:   NewFileIdentity(cfg),
		httpClient: httpCl,
	}

	app.notes = NewNoteService(app)
	app.reconciler = NewReconciler(app)
	app.transcriber = NewDeepgramTranscriber(cfg, log)

	app.notes.SeedDefaults()

	return app, nil
}

// Run starts the auto-sync loop and blocks until a termination signal.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	go a.handleSignals()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.reconciler.StartAutoSync(ctx, time.Duration(a.config.SyncInterval)*time.Second)
	}()

	a.log.Info("client started",
		"server", a.config.ServerAddress,
		"env", a.config.Env,
	)

	a.wg.Wait()
	return nil
}

func (a *App) handleSignals() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	sig := <-sigChan
	a.log.Info("received termination signal", "signal", sig.String())

	if a.cancel != nil {
		a.cancel()
	}
}

func (a *App) Shutdown() {
	if a.cancel != nil {
		a.cancel()
	}

	a.wg.Wait()
	a.log.Info("client stopped")
}

// Notes exposes the local note operations.
func (a *App) Notes() *NoteService {
	return a.notes
}

// Transcriber exposes the configured speech-to-text backend.
func (a *App) Transcriber() Transcriber {
	return a.transcriber
}

// Sync runs one reconcile pass now.
func (a *App) Sync(ctx context.Context) (*SyncResult, error) {
	return a.reconciler.Sync(ctx)
}

// CheckConnection probes the server.
func (a *App) CheckConnection() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return a.httpClient.HealthCheck(ctx)
}

// IsAuthenticated reports whether a login is stored on this device.
func (a *App) IsAuthenticated() bool {
	_, haveUser := a.identity.UserID()
	_, haveToken := a.identity.Credential()
	return haveUser && haveToken
}

// Register creates an account on the server.
func (a *App) Register(ctx context.Context, email, password string) error {
	userID, err := a.httpClient.Register(ctx, email, password)
	if err != nil {
		return err
	}

	a.log.Info("account registered", "user_id", userID)
	return nil
}

// Login signs in, stores the credential, and immediately reconciles so
// notes written before login are claimed and pushed.
func (a *App) Login(ctx context.Context, email, password string) error {
	token, userID, err := a.httpClient.Login(ctx, email, password)
	if err != nil {
		return err
	}

	if err := os.WriteFile(a.config.TokenPath, []byte(token), 0600); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if err := os.WriteFile(a.config.UserIDPath, []byte(userID), 0600); err != nil {
		return fmt.Errorf("save user id: %w", err)
	}

	a.log.Info("logged in", "user_id", userID)

	if _, err := a.reconciler.Sync(ctx); err != nil {
		a.log.Warn("post-login sync failed", "error", err)
	}

	return nil
}

// Logout revokes the session and forgets the stored identity. Local
// notes stay on the device; the next login re-claims them.
func (a *App) Logout(ctx context.Context) error {
	if token, ok := a.identity.Credential(); ok {
		if err := a.httpClient.Logout(ctx, token); err != nil {
			a.log.Warn("server-side logout failed", "error", err)
		}
	}

	for _, path := range []string{a.config.TokenPath, a.config.UserIDPath} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("clear identity: %w", err)
		}
	}

	a.log.Info("logged out")
	return nil
}
