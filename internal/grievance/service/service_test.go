package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"civicdesk/internal/grievance/classifier"
	"civicdesk/internal/grievance/metrics"
	"civicdesk/internal/grievance/models"
	"civicdesk/internal/grievance/store"
	dErrors "civicdesk/pkg/domain-errors"
	"civicdesk/pkg/requestcontext"
)

type stubClassifier struct {
	result classifier.Result
	calls  atomic.Int32
}

func (c *stubClassifier) Classify(context.Context, string, string) classifier.Result {
	c.calls.Add(1)
	return c.result
}

// racyStore hides existing records from Exists to force the create race
// onto CreateIfAbsent.
type racyStore struct {
	*store.InMemory
}

func (racyStore) Exists(context.Context, string) (bool, error) { return false, nil }

type brokenStore struct {
	*store.InMemory
	err error
}

func (b brokenStore) CreateIfAbsent(context.Context, *models.Grievance) error { return b.err }
func (b brokenStore) ListAll(context.Context) ([]*models.Grievance, error)     { return nil, b.err }
func (b brokenStore) Execute(context.Context, string, func(*models.Grievance) error, func(*models.Grievance)) (*models.Grievance, error) {
	return nil, b.err
}

type ServiceSuite struct {
	suite.Suite
	ctx        context.Context
	now        time.Time
	store      *store.InMemory
	classifier *stubClassifier
	metrics    *metrics.Metrics
	service    *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.now = time.Date(2024, 8, 15, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.store = store.NewInMemory()
	s.classifier = &stubClassifier{result: classifier.Result{
		Classification: classifier.Classification{
			Priority: models.PriorityHigh, GrievanceType: "Infrastructure", Category: "Water",
		},
		Outcome: classifier.OutcomeClassified,
	}}
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())
	s.service = s.newService(s.store)
}

func (s *ServiceSuite) newService(st Store) *Service {
	return New(st, s.classifier,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(s.metrics),
	)
}

func boolPtr(b bool) *bool { return &b }

func validRequest() *models.CreateGrievanceRequest {
	return &models.CreateGrievanceRequest{
		Title:             "No water",
		Description:       "Tap dry for three days",
		Department:        "Water",
		Anonymity:         boolPtr(false),
		ContactIdentifier: "whatsapp:+15551234567",
	}
}

func (s *ServiceSuite) TestCreate() {
	s.Run("normalizes contact and stores new record", func() {
		res, err := s.service.Create(s.ctx, validRequest())
		s.Require().NoError(err)
		s.Equal("15551234567", res.ID)
		s.Equal(models.PriorityHigh, res.Priority)
		s.Equal("Infrastructure", res.GrievanceType)
		s.Equal("Water", res.Category)

		g, err := s.store.FindByID(s.ctx, "15551234567")
		s.Require().NoError(err)
		s.Equal(models.StatusNew, g.Status)
		s.False(g.Resolved)
		s.Nil(g.ResolvedAt)
		s.Equal(s.now, g.CreatedAt)
		s.Equal("15551234567", g.ContactNumber)
		s.Equal(float64(1), promtest.ToFloat64(s.metrics.GrievancesCreated))
	})

	s.Run("same contact again is a conflict and never overwrites", func() {
		req := validRequest()
		req.Title = "Second attempt"
		req.ContactIdentifier = "+15551234567"

		_, err := s.service.Create(s.ctx, req)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))

		g, err := s.store.FindByID(s.ctx, "15551234567")
		s.Require().NoError(err)
		s.Equal("No water", g.Title)
		s.Equal(int32(1), s.classifier.calls.Load(), "duplicate short-circuits before classification")
	})
}

func (s *ServiceSuite) TestCreateValidation() {
	cases := map[string]func(r *models.CreateGrievanceRequest){
		"missing title":       func(r *models.CreateGrievanceRequest) { r.Title = "" },
		"missing description": func(r *models.CreateGrievanceRequest) { r.Description = " " },
		"missing department":  func(r *models.CreateGrievanceRequest) { r.Department = "" },
		"missing anonymity":   func(r *models.CreateGrievanceRequest) { r.Anonymity = nil },
		"missing contact":     func(r *models.CreateGrievanceRequest) { r.ContactIdentifier = "" },
		"contact strips to nothing": func(r *models.CreateGrievanceRequest) {
			r.ContactIdentifier = "whatsapp:+"
		},
	}
	for name, mutate := range cases {
		s.Run(name, func() {
			req := validRequest()
			mutate(req)
			_, err := s.service.Create(s.ctx, req)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
	s.Equal(int32(0), s.classifier.calls.Load(), "validation runs before any I/O")

	all, _ := s.store.ListAll(s.ctx)
	s.Empty(all)
}

func (s *ServiceSuite) TestCreateStoresFallbackClassification() {
	s.classifier.result = classifier.Result{Classification: classifier.Fallback(), Outcome: classifier.OutcomeFallback, Reason: classifier.ReasonUpstreamError}

	res, err := s.service.Create(s.ctx, validRequest())
	s.Require().NoError(err)
	s.Equal(models.PriorityMedium, res.Priority)
	s.Equal("General", res.GrievanceType)
	s.Equal("General", res.Category)
}

func (s *ServiceSuite) TestCreateRaceHasOneWinner() {
	svc := s.newService(racyStore{InMemory: s.store})

	const goroutines = 16
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
	)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(s.ctx, validRequest())
			switch {
			case err == nil:
				successes.Add(1)
			case dErrors.HasCode(err, dErrors.CodeConflict):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successes.Load())
	s.Equal(int32(goroutines-1), conflicts.Load())
	s.Equal(float64(goroutines-1), promtest.ToFloat64(s.metrics.DuplicatesRejected))
}

func (s *ServiceSuite) TestCreatePersistenceFailure() {
	svc := s.newService(brokenStore{InMemory: s.store, err: errors.New("disk full")})

	_, err := svc.Create(s.ctx, validRequest())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.Contains(err.Error(), "disk full")
}

func (s *ServiceSuite) TestUpdateStatus() {
	_, err := s.service.Create(s.ctx, validRequest())
	s.Require().NoError(err)
	id := "15551234567"

	s.Run("any status may follow any other", func() {
		for _, st := range []string{"Completed", "New", "In-Progress", "Open"} {
			g, err := s.service.UpdateStatus(s.ctx, id, st)
			s.Require().NoError(err, st)
			s.Equal(models.Status(st), g.Status)
			s.False(g.Resolved)
			s.Nil(g.ResolvedAt)
		}
	})

	s.Run("resolved stamps resolvedAt", func() {
		later := s.now.Add(2 * time.Hour)
		g, err := s.service.UpdateStatus(requestcontext.WithTime(s.ctx, later), id, "Resolved")
		s.Require().NoError(err)
		s.True(g.Resolved)
		s.Require().NotNil(g.ResolvedAt)
		s.Equal(later, *g.ResolvedAt)
	})

	s.Run("moving away from resolved keeps the stamp", func() {
		g, err := s.service.UpdateStatus(s.ctx, id, "Open")
		s.Require().NoError(err)
		s.True(g.Resolved)
		s.Require().NotNil(g.ResolvedAt)
		s.Equal(s.now.Add(2*time.Hour), *g.ResolvedAt)
	})

	s.Run("invalid status", func() {
		for _, st := range []string{"", "Closed", "resolved", "In Progress"} {
			_, err := s.service.UpdateStatus(s.ctx, id, st)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation), st)
		}
	})

	s.Run("missing id", func() {
		_, err := s.service.UpdateStatus(s.ctx, "  ", "Open")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown id", func() {
		_, err := s.service.UpdateStatus(s.ctx, "000", "Open")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Equal(float64(1), promtest.ToFloat64(s.metrics.StatusUpdates.WithLabelValues("Resolved")))
}

func (s *ServiceSuite) TestGetAndList() {
	s.Run("list on empty store is not found", func() {
		_, err := s.service.List(s.ctx)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	for i := 1; i <= 2; i++ {
		req := validRequest()
		req.ContactIdentifier = fmt.Sprintf("sms:+1555000000%d", i)
		_, err := s.service.Create(s.ctx, req)
		s.Require().NoError(err)
	}

	s.Run("list returns every record", func() {
		all, err := s.service.List(s.ctx)
		s.Require().NoError(err)
		s.Len(all, 2)
	})

	s.Run("get by id", func() {
		g, err := s.service.Get(s.ctx, "15550000001")
		s.Require().NoError(err)
		s.Equal("No water", g.Title)
	})

	s.Run("get requires id", func() {
		_, err := s.service.Get(s.ctx, "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("get unknown", func() {
		_, err := s.service.Get(s.ctx, "nope")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestAnalyticsAfterResolution() {
	_, err := s.service.Create(s.ctx, validRequest())
	s.Require().NoError(err)

	before, err := s.service.Analytics(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, before.DepartmentGrievanceBreakdown["Water"].Resolved)

	_, err = s.service.UpdateStatus(s.ctx, "15551234567", "Resolved")
	s.Require().NoError(err)

	after, err := s.service.Analytics(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, after.DepartmentGrievanceBreakdown["Water"].Resolved)
	s.Equal(0, after.GrievanceTypeBreakdown["Infrastructure"].Resolved, "type breakdown counts Completed only")
	s.Equal(1, after.StatusBreakdown.Completed)
	s.Equal(8, after.ClosureRate.Month)
	s.Equal(1.0, after.ClosureRate.ClosureRate)

	_, err = s.service.UpdateStatus(s.ctx, "15551234567", "Completed")
	s.Require().NoError(err)

	completed, err := s.service.Analytics(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, completed.GrievanceTypeBreakdown["Infrastructure"].Resolved)
	s.Equal(0, completed.DepartmentGrievanceBreakdown["Water"].Resolved)
	s.Equal(0, completed.StatusBreakdown.Completed)
	s.Equal(0.0, completed.ClosureRate.ClosureRate)
}

func (s *ServiceSuite) TestStoreFailuresAreInternal() {
	svc := s.newService(brokenStore{InMemory: s.store, err: errors.New("connection reset")})

	_, err := svc.List(s.ctx)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	_, err = svc.Analytics(s.ctx)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	_, err = svc.UpdateStatus(s.ctx, "15551234567", "Open")
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
