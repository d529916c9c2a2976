//go:build integration

package store_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"clientregistry/internal/registry/models"
	"clientregistry/internal/registry/store"
	"clientregistry/pkg/sentinel"
)

type PostgresSuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	db        *sql.DB
	store     *store.Postgres
	ctx       context.Context
}

func TestPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := tcpostgres.Run(s.ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("registry"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.db, err = sql.Open("postgres", dsn)
	s.Require().NoError(err)

	s.store = store.NewPostgres(s.db)
	s.Require().NoError(s.store.Migrate(s.ctx))
}

func (s *PostgresSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresSuite) SetupTest() {
	_, err := s.db.ExecContext(s.ctx, "TRUNCATE clients RESTART IDENTITY")
	s.Require().NoError(err)
}

func (s *PostgresSuite) newDraft(name, email, cnpj string) models.Draft {
	return models.Draft{
		Name:      name,
		Email:     email,
		Telephone: "1134567890",
		CNPJ:      cnpj,
		Address:   "Rua das Flores, 10",
	}
}

func (s *PostgresSuite) TestCRUDRoundtrip() {
	created, err := s.store.Create(s.ctx, s.newDraft("Acme", "a@acme.com", "11111111111111"))
	s.Require().NoError(err)
	s.Equal(models.ClientID(1), created.ID)

	found, err := s.store.Get(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(created, found)

	draft := models.DraftOf(created)
	draft.City = "São Paulo"
	updated, err := s.store.Update(s.ctx, created.ID, draft)
	s.Require().NoError(err)
	s.Equal("São Paulo", updated.City)

	s.Require().NoError(s.store.Delete(s.ctx, created.ID))
	_, err = s.store.Get(s.ctx, created.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresSuite) TestSearch() {
	_, err := s.store.Create(s.ctx, s.newDraft("Acme Corp", "a@acme.com", "11111111111111"))
	s.Require().NoError(err)
	_, err = s.store.Create(s.ctx, s.newDraft("Beta Ltda", "b@beta.com", "22222222222222"))
	s.Require().NoError(err)

	got, err := s.store.List(s.ctx, "ACME")
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("Acme Corp", got[0].Name)

	got, err = s.store.List(s.ctx, "222222")
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("Beta Ltda", got[0].Name)

	got, err = s.store.List(s.ctx, "")
	s.Require().NoError(err)
	s.Len(got, 2)
}

func (s *PostgresSuite) TestUniqueConstraintsTranslateToConflict() {
	_, err := s.store.Create(s.ctx, s.newDraft("Acme", "a@acme.com", "11111111111111"))
	s.Require().NoError(err)

	_, err = s.store.Create(s.ctx, s.newDraft("Other", "a@acme.com", "22222222222222"))
	s.Require().ErrorIs(err, sentinel.ErrConflict)

	_, err = s.store.Create(s.ctx, s.newDraft("Other", "o@other.com", "11111111111111"))
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresSuite) TestMissingRecords() {
	_, err := s.store.Get(s.ctx, models.ClientID(42))
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.Update(s.ctx, models.ClientID(42), s.newDraft("X", "x@x.com", "11111111111111"))
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	s.Require().ErrorIs(s.store.Delete(s.ctx, models.ClientID(42)), sentinel.ErrNotFound)
}
