package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"civicdesk/internal/identity/models"
)

type Repository interface {
	Create(ctx context.Context, a *models.Account) error
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
}

var (
	_ Repository = (*InMemory)(nil)
	_ Repository = (*Postgres)(nil)
)

// AccountStoreSuite holds behaviour shared by every account store.
type AccountStoreSuite struct {
	suite.Suite
	ctx   context.Context
	store Repository
}

func (s *AccountStoreSuite) account(email string) *models.Account {
	return &models.Account{
		ID:           "id-" + email,
		Email:        email,
		PasswordHash: "hash",
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *AccountStoreSuite) TestCreateAndFind() {
	s.Require().NoError(s.store.Create(s.ctx, s.account("a@example.com")))

	got, err := s.store.FindByEmail(s.ctx, "a@example.com")
	s.Require().NoError(err)
	s.Equal("id-a@example.com", got.ID)
	s.Equal("hash", got.PasswordHash)
	s.True(got.CreatedAt.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func (s *AccountStoreSuite) TestDuplicateEmail() {
	s.Require().NoError(s.store.Create(s.ctx, s.account("dup@example.com")))

	again := s.account("dup@example.com")
	again.ID = "other"
	s.ErrorIs(s.store.Create(s.ctx, again), ErrEmailExists)
}

func (s *AccountStoreSuite) TestFindMissing() {
	_, err := s.store.FindByEmail(s.ctx, "missing@example.com")
	s.ErrorIs(err, ErrNotFound)
}

type InMemorySuite struct {
	AccountStoreSuite
}

func (s *InMemorySuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemory()
}

func TestInMemorySuite(t *testing.T) {
	suite.Run(t, new(InMemorySuite))
}
