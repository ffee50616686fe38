package user

import (
	"context"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"joddit/internal/domain/session"
	"joddit/internal/domain/user"
)

type Handler struct {
	service    user.Servicer
	session    session.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service user.Servicer, session session.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		session:    session,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.registerOp(), h.register)
	huma.Register(api, h.loginOp(), h.login)
	huma.Register(api, h.logoutOp(), h.logout)
}

func (h *Handler) register(ctx context.Context, input *registerInput) (*registerOutput, error) {
	userID, err := h.service.Register(ctx, input.Body.Email, input.Body.Password)
	if err != nil {
		return &registerOutput{
			Body: RegisterResponse{Status: "Error", Error: err.Error()},
		}, nil
	}

	return &registerOutput{
		Body: RegisterResponse{UserID: userID, Status: "Ok"},
	}, nil
}

func (h *Handler) login(ctx context.Context, input *loginInput) (*loginOutput, error) {
	u, err := h.service.Authenticate(ctx, input.Body.Email, input.Body.Password)
	if err != nil {
		return &loginOutput{
			Body: LoginResponse{
				Status: "Error",
				Error:  "Invalid credentials",
			},
		}, nil
	}

	token, err := h.session.Create(ctx, u.ID)
	if err != nil {
		h.log.Error("create session failed", "user_id", u.ID, "error", err)
		return &loginOutput{
			Body: LoginResponse{Status: "Error", Error: "Could not create session"},
		}, nil
	}

	return &loginOutput{
		Body: LoginResponse{
			Token:  token,
			UserID: u.ID,
			Status: "Ok",
		},
	}, nil
}

func (h *Handler) logout(ctx context.Context, input *logoutInput) (*logoutOutput, error) {
	token, ok := strings.CutPrefix(input.Authorization, "Bearer ")
	if !ok || token == "" {
		return &logoutOutput{
			Body: LogoutResponse{Status: "Error", Error: "Missing bearer token"},
		}, nil
	}

	if err := h.session.Revoke(ctx, token); err != nil {
		h.log.Warn("revoke session failed", "error", err)
	}

	// Revocation is best effort: the client drops its copy regardless.
	return &logoutOutput{
		Body: LogoutResponse{Status: "Ok"},
	}, nil
}
