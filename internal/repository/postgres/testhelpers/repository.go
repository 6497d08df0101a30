package testhelpers

import (
	"github.com/jmoiron/sqlx"
	"github.com/landmark-guide/internal/domain/repository"
	"github.com/landmark-guide/internal/repository/postgres"
	"go.uber.org/zap"
)

// NewDBForTest creates a postgres.DB with test database and logger
func NewDBForTest(db *sqlx.DB, logger *zap.Logger) *postgres.DB {
	return postgres.NewDBForTest(db, logger)
}

// NewStoreRepositoryForTest creates a key-value store over the test database
func NewStoreRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.KVStore {
	return postgres.NewStoreRepository(NewDBForTest(db, logger))
}
