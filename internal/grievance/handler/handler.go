package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"civicdesk/internal/grievance/models"
	"civicdesk/internal/platform/middleware"
	dErrors "civicdesk/pkg/domain-errors"
	"civicdesk/pkg/platform/httputil"
)

// Service defines the grievance operations exposed over HTTP.
type Service interface {
	Create(ctx context.Context, req *models.CreateGrievanceRequest) (*models.CreateGrievanceResult, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.Grievance, error)
	Get(ctx context.Context, id string) (*models.Grievance, error)
	List(ctx context.Context) ([]*models.Grievance, error)
	Analytics(ctx context.Context) (*models.Report, error)
}

// Handler serves the grievance endpoints.
type Handler struct {
	service   Service
	logger    *slog.Logger
	validator middleware.TokenValidator
}

type Option func(*Handler)

// WithStaffAuth requires a bearer token for status updates and analytics.
func WithStaffAuth(v middleware.TokenValidator) Option {
	return func(h *Handler) {
		h.validator = v
	}
}

func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{service: service, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the grievance routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Post("/grievances", h.HandleCreate)
		r.Get("/grievances", h.HandleList)
		r.Get("/grievances/{grievanceId}", h.HandleGet)

		r.Group(func(r chi.Router) {
			if h.validator != nil {
				r.Use(middleware.RequireAuth(h.validator, h.logger))
			}
			r.Post("/grievances/status", h.HandleUpdateStatus)
			r.Get("/analytics", h.HandleAnalytics)
		})
	})
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req models.CreateGrievanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid create grievance request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	res, err := h.service.Create(ctx, &req)
	if err != nil {
		h.logFailure(ctx, "failed to create grievance", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	all, err := h.service.List(ctx)
	if err != nil {
		h.logFailure(ctx, "failed to list grievances", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, all)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	g, err := h.service.Get(ctx, chi.URLParam(r, "grievanceId"))
	if err != nil {
		h.logFailure(ctx, "failed to fetch grievance", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, g)
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req models.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid update status request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if _, err := h.service.UpdateStatus(ctx, req.GrievanceID, req.Status); err != nil {
		h.logFailure(ctx, "failed to update grievance status", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.UpdateStatusResponse{Message: "Grievance status updated successfully"})
}

func (h *Handler) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	report, err := h.service.Analytics(ctx)
	if err != nil {
		h.logFailure(ctx, "failed to compute analytics", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

// logFailure logs client errors at Warn and everything else at Error.
func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	attrs := []any{"request_id", middleware.GetRequestID(ctx), "error", err.Error()}
	if de, ok := dErrors.As(err); ok && de.Code != dErrors.CodeInternal {
		h.logger.WarnContext(ctx, msg, attrs...)
		return
	}
	h.logger.ErrorContext(ctx, msg, attrs...)
}
