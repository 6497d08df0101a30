package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landmark-guide/internal/domain"
	"github.com/landmark-guide/internal/pkg/utils"
	"github.com/landmark-guide/internal/usecase"
)

func TestResolveNearest_PicksMinimumDistance(t *testing.T) {
	probe := domain.Coordinate{Lat: 35.3122, Lon: -120.6511}
	points := []domain.LandmarkPoint{
		{Coordinate: northOf(probe, 250), StructureID: 10},
		{Coordinate: northOf(probe, 40), StructureID: 11},
		{Coordinate: northOf(probe, -75), StructureID: 12},
		{Coordinate: northOf(probe, 12), StructureID: domain.NotALandmark},
		{Coordinate: northOf(probe, -900), StructureID: 13},
	}

	got, ok := usecase.ResolveNearest(probe, points)
	require.True(t, ok)

	assert.Equal(t, 3, got.Index)
	assert.Equal(t, domain.NotALandmark, got.Point.StructureID)
	assert.InDelta(t, 12, got.Distance, 0.01)

	for _, p := range points {
		assert.LessOrEqual(t, got.Distance, utils.Distance(probe, p.Coordinate))
	}
}

func TestResolveNearest_EmptySet(t *testing.T) {
	_, ok := usecase.ResolveNearest(domain.Coordinate{Lat: 1, Lon: 1}, nil)
	assert.False(t, ok)
}

func TestResolveNearest_TieBreak(t *testing.T) {
	probe := domain.Coordinate{Lat: 35.3122, Lon: -120.6511}
	same := northOf(probe, 30)

	tests := []struct {
		name   string
		points []domain.LandmarkPoint
		wantID int
		wantAt int
	}{
		{
			name: "landmark beats trail marker",
			points: []domain.LandmarkPoint{
				{Coordinate: same, StructureID: domain.NotALandmark},
				{Coordinate: same, StructureID: 7},
			},
			wantID: 7,
			wantAt: 1,
		},
		{
			name: "lowest structure id wins",
			points: []domain.LandmarkPoint{
				{Coordinate: same, StructureID: 9},
				{Coordinate: same, StructureID: 4},
				{Coordinate: same, StructureID: 6},
			},
			wantID: 4,
			wantAt: 1,
		},
		{
			name: "dataset order among points of one structure",
			points: []domain.LandmarkPoint{
				{Coordinate: same, StructureID: 5},
				{Coordinate: same, StructureID: 5},
			},
			wantID: 5,
			wantAt: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := usecase.ResolveNearest(probe, tt.points)
			require.True(t, ok)
			assert.Equal(t, tt.wantID, got.Point.StructureID)
			assert.Equal(t, tt.wantAt, got.Index)
		})
	}
}
