//POST   /api/v1/user/register  # Register (public)
//POST   /api/v1/user/login     # Log in, returns bearer token (public)
//POST   /api/v1/user/logout    # Revoke session (public, token in header)
//GET    /api/v1/notes          # List notes (auth)
//PUT    /api/v1/notes/{id}     # Create or replace a note (auth)
//DELETE /api/v1/notes/{id}     # Soft-delete a note (auth)
//GET    /api/v1/health         # Liveness probe (public)

package api

import (
	healthAPI "joddit/internal/app/server/api/http/health"
	"joddit/internal/app/server/api/http/middleware"
	"joddit/internal/app/server/api/http/middleware/auth"
	"joddit/internal/app/server/api/http/middleware/logger"
	noteAPI "joddit/internal/app/server/api/http/note"
	userAPI "joddit/internal/app/server/api/http/user"
	"joddit/internal/domain/note"
	"joddit/internal/domain/session"
	"joddit/internal/domain/user"
	"joddit/internal/infrastructure/storage/postgres"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"
)

type Handlers struct {
	Health *healthAPI.Handler
	User   *userAPI.Handler
	Note   *noteAPI.Handler
}

// New builds a *chi.Mux with every operation registered through huma.
func New(storage *postgres.Storage, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	config := huma.DefaultConfig("Joddit API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, config)

	h := handlers(storage, log)
	h.Health.SetupRoutes(API)
	h.User.SetupRoutes(API)
	h.Note.SetupRoutes(API)

	return mux
}

func handlers(storage *postgres.Storage, log *slog.Logger) *Handlers {
	sessionRepo := postgres.NewSessionRepository(storage.Pool(), log)
	sessionService := session.NewService(sessionRepo, log)
	authMW := auth.New(sessionService, log)
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(log, middlewares.GetAllAndClear())

	userRepo := postgres.NewUserRepository(storage.Pool(), log)
	userService := user.NewService(userRepo, user.NewCredentialsValidator(), log)
	middlewares.Add(loggerMW.Middleware())
	userHandler := userAPI.NewHandler(userService, sessionService, log, middlewares.GetAllAndClear())

	noteRepo := postgres.NewNoteRepository(storage.Pool(), log)
	noteService := note.NewService(noteRepo, log)
	middlewares.Add(authMW.Middleware())
	middlewares.Add(loggerMW.Middleware())
	noteHandler := noteAPI.NewHandler(noteService, log, middlewares.GetAllAndClear())

	return &Handlers{
		Health: healthHandler,
		User:   userHandler,
		Note:   noteHandler,
	}
}
