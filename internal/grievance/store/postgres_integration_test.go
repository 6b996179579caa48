//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"civicdesk/pkg/testutil/containers"
)

type PostgresSuite struct {
	ContractSuite
	postgres *containers.PostgresContainer
	pg       *Postgres
}

func TestPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.pg = NewPostgres(s.postgres.Pool)
	s.Require().NoError(s.pg.Migrate(context.Background()))
}

func (s *PostgresSuite) SetupTest() {
	s.ctx = context.Background()
	_, err := s.postgres.Pool.Exec(s.ctx, `TRUNCATE grievances`)
	s.Require().NoError(err)
	s.store = s.pg
}

func (s *PostgresSuite) TestMigrateIsIdempotent() {
	s.Require().NoError(s.pg.Migrate(s.ctx))
}
