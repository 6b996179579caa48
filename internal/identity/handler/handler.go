package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"civicdesk/internal/identity/models"
	"civicdesk/internal/platform/middleware"
	dErrors "civicdesk/pkg/domain-errors"
	"civicdesk/pkg/platform/httputil"
)

// Service defines the identity operations exposed over HTTP.
type Service interface {
	CreateAccount(ctx context.Context, req *models.CredentialsRequest) (string, error)
	IssueToken(ctx context.Context, req *models.CredentialsRequest) (string, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register registers the identity routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Post("/auth/signup", h.HandleSignup)
		r.Post("/auth/signin", h.HandleSignin)
	})
}

func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	uid, err := h.service.CreateAccount(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "signup failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, models.SignupResponse{
		Message: "User created successfully",
		UID:     uid,
	})
}

func (h *Handler) HandleSignin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	tok, err := h.service.IssueToken(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "signin failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.SigninResponse{
		Message:     "User signed in successfully",
		CustomToken: tok,
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (*models.CredentialsRequest, bool) {
	var req models.CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return nil, false
	}
	return &req, true
}
