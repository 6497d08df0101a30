package repository

import (
	"context"

	"github.com/landmark-guide/internal/domain"
)

// DatasetProvider supplies the bundled static landmark data.
type DatasetProvider interface {
	Load(ctx context.Context) (*domain.Dataset, error)
}
