package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"civicdesk/internal/media/models"
	"civicdesk/internal/platform/middleware"
	dErrors "civicdesk/pkg/domain-errors"
	"civicdesk/pkg/platform/httputil"
)

// Service defines the relay operations exposed over HTTP.
type Service interface {
	EnqueueMessage(ctx context.Context, msg *models.OutboundMessage) (string, error)
	StoreMedia(ctx context.Context, req *models.StoreMediaRequest) (*models.StoreMediaResponse, error)
	LookupMedia(ctx context.Context, contactNumber, extension string) (*models.LookupMediaResponse, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register registers the relay routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Post("/messages", h.HandleEnqueueMessage)
		r.Post("/media", h.HandleStoreMedia)
		r.Get("/media", h.HandleLookupMedia)
	})
}

func (h *Handler) HandleEnqueueMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var msg models.OutboundMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	text, err := h.service.EnqueueMessage(ctx, &msg)
	if err != nil {
		h.logFailure(ctx, "failed to queue message", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.MessageQueuedResponse{Message: text})
}

func (h *Handler) HandleStoreMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.StoreMediaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	res, err := h.service.StoreMedia(ctx, &req)
	if err != nil {
		h.logFailure(ctx, "failed to store media", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleLookupMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	res, err := h.service.LookupMedia(ctx, q.Get("contactNumber"), q.Get("extension"))
	if err != nil {
		h.logFailure(ctx, "failed to look up media", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	attrs := []any{"request_id", middleware.GetRequestID(ctx), "error", err.Error()}
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg, attrs...)
		return
	}
	h.logger.WarnContext(ctx, msg, attrs...)
}
