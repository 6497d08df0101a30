package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/landmark-guide/internal/domain/repository"
	"github.com/landmark-guide/internal/repository/postgres/testhelpers"
	"github.com/landmark-guide/migrations"
)

// StoreRepositoryTestSuite тестирует kv_store поверх PostgreSQL
type StoreRepositoryTestSuite struct {
	suite.Suite
	testDB *testhelpers.TestDB
	repo   repository.KVStore
	ctx    context.Context
}

func (s *StoreRepositoryTestSuite) SetupSuite() {
	s.testDB = testhelpers.SetupTestDB(s.T())
	s.ctx = context.Background()

	s.Require().NoError(testhelpers.ApplyMigrations(s.testDB.DB.DB, migrations.FS))
	s.repo = testhelpers.NewStoreRepositoryForTest(s.testDB.DB, s.testDB.Logger)
}

func (s *StoreRepositoryTestSuite) TearDownSuite() {
	if s.testDB != nil {
		s.testDB.Close()
	}
}

func (s *StoreRepositoryTestSuite) SetupTest() {
	s.Require().NoError(s.testDB.Cleanup(s.ctx))
}

func (s *StoreRepositoryTestSuite) TestGetMissing() {
	val, err := s.repo.Get(s.ctx, "structures")
	s.NoError(err)
	s.Nil(val)
}

func (s *StoreRepositoryTestSuite) TestSetOverwrites() {
	s.Require().NoError(s.repo.Set(s.ctx, "structures", []byte(`[{"id":1}]`)))
	s.Require().NoError(s.repo.Set(s.ctx, "structures", []byte(`[{"id":2}]`)))

	val, err := s.repo.Get(s.ctx, "structures")
	s.NoError(err)
	s.Equal(`[{"id":2}]`, string(val))

	var rows int
	s.NoError(s.testDB.DB.Get(&rows, `SELECT COUNT(*) FROM kv_store WHERE key = 'structures'`))
	s.Equal(1, rows)
}

func (s *StoreRepositoryTestSuite) TestRemove() {
	s.Require().NoError(s.repo.Set(s.ctx, "last_visited", []byte(`3`)))
	s.NoError(s.repo.Remove(s.ctx, "last_visited"))
	s.NoError(s.repo.Remove(s.ctx, "last_visited"), "removing an absent key is a no-op")

	val, err := s.repo.Get(s.ctx, "last_visited")
	s.NoError(err)
	s.Nil(val)
}

func (s *StoreRepositoryTestSuite) TestReadsFixtureRows() {
	s.Require().NoError(testhelpers.LoadFixtures(s.testDB.DB.DB, "testdata", []string{"kv_store.sql"}))

	val, err := s.repo.Get(s.ctx, "dataset_version")
	s.NoError(err)
	s.Equal(`"fixture-1"`, string(val))

	mode, err := s.repo.Get(s.ctx, "mode")
	s.NoError(err)
	s.Equal("adventure", string(mode))
}

func TestStoreRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(StoreRepositoryTestSuite))
}
