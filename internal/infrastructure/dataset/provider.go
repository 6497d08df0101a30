package dataset

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/landmark-guide/internal/domain"
	"github.com/landmark-guide/internal/domain/repository"
	"go.uber.org/zap"
)

//go:embed bundle.json
var bundled []byte

type provider struct {
	path   string
	logger *zap.Logger
}

// NewProvider returns the dataset provider. An empty path selects the bundle
// compiled into the binary.
func NewProvider(path string, logger *zap.Logger) repository.DatasetProvider {
	return &provider{
		path:   path,
		logger: logger,
	}
}

func (p *provider) Load(ctx context.Context) (*domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw := bundled
	source := "embedded"
	if p.path != "" {
		data, err := os.ReadFile(p.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset %s: %w", p.path, err)
		}
		raw = data
		source = p.path
	}

	ds, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", source, err)
	}

	p.logger.Info("Dataset loaded",
		zap.String("source", source),
		zap.String("version", ds.Version),
		zap.Int("structures", len(ds.Structures)),
		zap.Int("points", len(ds.Points)))

	return ds, nil
}

// Decode parses a dataset bundle. Dynamic fields in the bundle are ignored;
// the persistence layer owns them.
func Decode(raw []byte) (*domain.Dataset, error) {
	var ds domain.Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}

	for i := range ds.Structures {
		ds.Structures[i].ResetDynamic()
	}
	for i := range ds.Points {
		ds.Points[i].Visited = false
		if !ds.Points[i].Coordinate.Valid() {
			return nil, fmt.Errorf("point %d has invalid coordinate %+v", i, ds.Points[i].Coordinate)
		}
	}
	return &ds, nil
}
