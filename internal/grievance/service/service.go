package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"civicdesk/internal/grievance/analytics"
	"civicdesk/internal/grievance/classifier"
	"civicdesk/internal/grievance/contact"
	"civicdesk/internal/grievance/metrics"
	"civicdesk/internal/grievance/models"
	"civicdesk/internal/grievance/store"
	dErrors "civicdesk/pkg/domain-errors"
	"civicdesk/pkg/requestcontext"
)

// Store is the grievance repository. CreateIfAbsent and Execute must be
// atomic per record.
type Store interface {
	CreateIfAbsent(ctx context.Context, g *models.Grievance) error
	FindByID(ctx context.Context, id string) (*models.Grievance, error)
	Exists(ctx context.Context, id string) (bool, error)
	Execute(ctx context.Context, id string, validate func(*models.Grievance) error, mutate func(*models.Grievance)) (*models.Grievance, error)
	ListAll(ctx context.Context) ([]*models.Grievance, error)
}

// Classifier never fails; it returns the fallback instead.
type Classifier interface {
	Classify(ctx context.Context, title, description string) classifier.Result
}

const createdMessage = "Grievance added successfully"

// Service orchestrates intake, status changes, reads and analytics.
type Service struct {
	store      Store
	classifier Classifier
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store Store, classifier Classifier, opts ...Option) *Service {
	s := &Service{store: store, classifier: classifier, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates, normalizes the contact, classifies and stores a new
// grievance. A second grievance for the same contact is a conflict.
func (s *Service) Create(ctx context.Context, req *models.CreateGrievanceRequest) (*models.CreateGrievanceResult, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "required fields are missing")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, err.Error())
	}

	id := contact.Normalize(req.ContactIdentifier)
	if id == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "contactNumber is not a valid identifier")
	}

	// Fast path only; CreateIfAbsent below is what enforces uniqueness.
	exists, err := s.store.Exists(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check existing grievance")
	}
	if exists {
		s.incrementDuplicate()
		return nil, errDuplicate()
	}

	result := s.classifier.Classify(ctx, req.Title, req.Description)

	g := &models.Grievance{
		ID:            id,
		ContactNumber: id,
		Title:         req.Title,
		Description:   req.Description,
		Department:    req.Department,
		Priority:      result.Priority,
		GrievanceType: result.GrievanceType,
		Category:      result.Category,
		Anonymity:     *req.Anonymity,
		Status:        models.StatusNew,
		Resolved:      false,
		CreatedAt:     requestcontext.Now(ctx),
	}
	if err := s.store.CreateIfAbsent(ctx, g); err != nil {
		if errors.Is(err, store.ErrAlreadyUsed) {
			s.incrementDuplicate()
			return nil, errDuplicate()
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save grievance: "+err.Error())
	}

	s.logger.InfoContext(ctx, "grievance created",
		"grievance_id", g.ID,
		"priority", g.Priority,
		"classifier_outcome", result.Outcome,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementCreated()
	}

	return &models.CreateGrievanceResult{
		ID:            g.ID,
		Priority:      g.Priority,
		GrievanceType: g.GrievanceType,
		Category:      g.Category,
		Message:       createdMessage,
	}, nil
}

// UpdateStatus overwrites the status of an existing grievance. Only Resolved
// stamps resolved and resolvedAt.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (*models.Grievance, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "grievanceId is required")
	}
	st, err := models.ParseStatus(status)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "status must be one of New, Open, In-Progress, Resolved, Completed")
	}

	now := requestcontext.Now(ctx)
	updated, err := s.store.Execute(ctx, id, nil, func(g *models.Grievance) {
		g.ApplyStatus(st, now)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "grievance not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update grievance status: "+err.Error())
	}

	s.logger.InfoContext(ctx, "grievance status updated",
		"grievance_id", id,
		"status", st,
		"updated_by", requestcontext.AccountID(ctx),
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementStatusUpdate(string(st))
	}
	return updated, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Grievance, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "grievanceId is required")
	}
	g, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "grievance not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load grievance: "+err.Error())
	}
	return g, nil
}

// List returns every grievance. An empty store is reported as not found.
func (s *Service) List(ctx context.Context) ([]*models.Grievance, error) {
	all, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list grievances: "+err.Error())
	}
	if len(all) == 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, "no grievances found")
	}
	return all, nil
}

// Analytics rescans the whole store on every call.
func (s *Service) Analytics(ctx context.Context) (*models.Report, error) {
	start := time.Now()
	all, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load grievances for analytics: "+err.Error())
	}
	report := analytics.Compute(all, requestcontext.Now(ctx))
	if s.metrics != nil {
		s.metrics.ObserveAnalytics(len(all), start)
	}
	return report, nil
}

func (s *Service) incrementDuplicate() {
	if s.metrics != nil {
		s.metrics.IncrementDuplicate()
	}
}

func errDuplicate() error {
	return dErrors.New(dErrors.CodeConflict, "a grievance with this contact number already exists")
}
