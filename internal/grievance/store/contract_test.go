package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/suite"

	"civicdesk/internal/grievance/models"
)

// Repository is what every backend must provide.
type Repository interface {
	CreateIfAbsent(ctx context.Context, g *models.Grievance) error
	FindByID(ctx context.Context, id string) (*models.Grievance, error)
	Exists(ctx context.Context, id string) (bool, error)
	Execute(ctx context.Context, id string, validate func(*models.Grievance) error, mutate func(*models.Grievance)) (*models.Grievance, error)
	ListAll(ctx context.Context) ([]*models.Grievance, error)
}

var (
	_ Repository = (*InMemory)(nil)
	_ Repository = (*Postgres)(nil)
	_ Repository = (*Redis)(nil)
)

// ContractSuite runs the same behavioural checks against any backend.
// Embedders set newStore in SetupTest.
type ContractSuite struct {
	suite.Suite
	ctx   context.Context
	store Repository
}

var createdAt = time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC)

func newGrievance(id string) *models.Grievance {
	return &models.Grievance{
		ID:            id,
		ContactNumber: id,
		Title:         "No water",
		Description:   "Tap dry for three days",
		Department:    "Water",
		Priority:      models.PriorityHigh,
		GrievanceType: "Infrastructure",
		Category:      "Water",
		Anonymity:     false,
		Status:        models.StatusNew,
		CreatedAt:     createdAt,
	}
}

func (s *ContractSuite) TestCreateAndFind() {
	s.Run("creates and finds by id", func() {
		g := newGrievance("15551230001")
		s.Require().NoError(s.store.CreateIfAbsent(s.ctx, g))

		found, err := s.store.FindByID(s.ctx, g.ID)
		s.Require().NoError(err)
		s.Equal(g.Title, found.Title)
		s.Equal(models.StatusNew, found.Status)
		s.True(createdAt.Equal(found.CreatedAt))
		s.Nil(found.ResolvedAt)

		exists, err := s.store.Exists(s.ctx, g.ID)
		s.Require().NoError(err)
		s.True(exists)
	})

	s.Run("unknown id", func() {
		_, err := s.store.FindByID(s.ctx, "missing")
		s.ErrorIs(err, ErrNotFound)

		exists, err := s.store.Exists(s.ctx, "missing")
		s.Require().NoError(err)
		s.False(exists)
	})
}

func (s *ContractSuite) TestDuplicateNeverOverwrites() {
	first := newGrievance("15551230002")
	s.Require().NoError(s.store.CreateIfAbsent(s.ctx, first))

	second := newGrievance("15551230002")
	second.Title = "Different title"
	err := s.store.CreateIfAbsent(s.ctx, second)
	s.ErrorIs(err, ErrAlreadyUsed)

	found, err := s.store.FindByID(s.ctx, first.ID)
	s.Require().NoError(err)
	s.Equal("No water", found.Title)
}

func (s *ContractSuite) TestConcurrentCreateHasOneWinner() {
	const goroutines = 20
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
	)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.CreateIfAbsent(s.ctx, newGrievance("15551230003"))
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, ErrAlreadyUsed):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successes.Load())
	s.Equal(int32(goroutines-1), conflicts.Load())
}

func (s *ContractSuite) TestExecute() {
	g := newGrievance("15551230004")
	s.Require().NoError(s.store.CreateIfAbsent(s.ctx, g))
	resolvedAt := createdAt.Add(90 * time.Minute)

	s.Run("mutates and persists", func() {
		updated, err := s.store.Execute(s.ctx, g.ID, nil, func(r *models.Grievance) {
			r.ApplyStatus(models.StatusResolved, resolvedAt)
		})
		s.Require().NoError(err)
		s.True(updated.Resolved)

		found, err := s.store.FindByID(s.ctx, g.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusResolved, found.Status)
		s.True(found.Resolved)
		s.Require().NotNil(found.ResolvedAt)
		s.True(resolvedAt.Equal(*found.ResolvedAt))
		s.Equal("Infrastructure", found.GrievanceType, "immutable fields untouched")
	})

	s.Run("validation failure leaves record unchanged", func() {
		boom := errors.New("rejected")
		_, err := s.store.Execute(s.ctx, g.ID,
			func(*models.Grievance) error { return boom },
			func(r *models.Grievance) { r.Status = models.StatusOpen },
		)
		s.ErrorIs(err, boom)

		found, err := s.store.FindByID(s.ctx, g.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusResolved, found.Status)
	})

	s.Run("unknown id", func() {
		_, err := s.store.Execute(s.ctx, "missing", nil, func(*models.Grievance) {})
		s.ErrorIs(err, ErrNotFound)
	})
}

func (s *ContractSuite) TestListAll() {
	s.Run("empty store", func() {
		all, err := s.store.ListAll(s.ctx)
		s.Require().NoError(err)
		s.Empty(all)
	})

	s.Run("returns every record ordered by creation", func() {
		for i := 3; i >= 1; i-- {
			g := newGrievance(fmt.Sprintf("1555000000%d", i))
			g.CreatedAt = createdAt.Add(time.Duration(i) * time.Minute)
			s.Require().NoError(s.store.CreateIfAbsent(s.ctx, g))
		}

		all, err := s.store.ListAll(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(all, 3)
		s.Equal("15550000001", all[0].ID)
		s.Equal("15550000003", all[2].ID)
	})
}
