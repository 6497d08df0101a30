package usecase_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/landmark-guide/internal/domain"
	"github.com/landmark-guide/internal/pkg/utils"
	"github.com/landmark-guide/internal/usecase"
)

func polyCanyon() domain.Region {
	bl := domain.Coordinate{Lat: 35.30757, Lon: -120.65470}
	tr := domain.Coordinate{Lat: 35.31681, Lon: -120.64750}
	return domain.Region{
		BottomLeft: bl,
		TopRight:   tr,
		Center:     domain.Coordinate{Lat: (bl.Lat + tr.Lat) / 2, Lon: (bl.Lon + tr.Lon) / 2},
	}
}

// northOf returns the coordinate meters north of c along its meridian.
func northOf(c domain.Coordinate, meters float64) domain.Coordinate {
	return domain.Coordinate{
		Lat: c.Lat + meters/utils.EarthRadiusMeters*180/math.Pi,
		Lon: c.Lon,
	}
}

func TestZoneClassifier_Classify(t *testing.T) {
	region := polyCanyon()
	classifier := usecase.NewZoneClassifier(region, 2000, 50000, 600)

	tests := []struct {
		name  string
		point domain.Coordinate
		want  domain.ProximityTier
	}{
		{name: "center", point: region.Center, want: domain.TierInside},
		{name: "bottom left corner", point: region.BottomLeft, want: domain.TierInside},
		{name: "top edge", point: domain.Coordinate{Lat: region.TopRight.Lat, Lon: region.Center.Lon}, want: domain.TierInside},
		{name: "just inside background radius", point: northOf(region.Center, 1999), want: domain.TierApproaching},
		{name: "one meter past background radius", point: northOf(region.Center, 2001), want: domain.TierFar},
		{name: "other continent", point: domain.Coordinate{Lat: 48.8566, Lon: 2.3522}, want: domain.TierFar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifier.Classify(tt.point))
		})
	}
}

func TestZoneClassifier_InvertedCornersStillContainEdges(t *testing.T) {
	classifier := usecase.NewZoneClassifier(testRegion(), 2000, 50000, 600)

	assert.Equal(t, domain.TierInside, classifier.Classify(domain.Coordinate{Lat: 35.0, Lon: -120.1}))
	assert.Equal(t, domain.TierInside, classifier.Classify(domain.Coordinate{Lat: 35.1, Lon: -120.0}))
	assert.Equal(t, domain.TierInside, classifier.Classify(point2))
}

func TestZoneClassifier_RecommendMode(t *testing.T) {
	region := polyCanyon()
	classifier := usecase.NewZoneClassifier(region, 2000, 50000, 600)

	assert.Equal(t, domain.ModeAdventure, classifier.RecommendMode(northOf(region.Center, 30000)))
	assert.Equal(t, domain.ModeVirtualTour, classifier.RecommendMode(northOf(region.Center, 50001)))
}

func TestZoneClassifier_IsAlmostThere(t *testing.T) {
	region := polyCanyon()
	classifier := usecase.NewZoneClassifier(region, 2000, 50000, 600)

	assert.False(t, classifier.IsAlmostThere(region.Center), "inside the zone is not almost there")
	assert.True(t, classifier.IsAlmostThere(northOf(region.Center, 580)))
	assert.False(t, classifier.IsAlmostThere(northOf(region.Center, 601)))
}
