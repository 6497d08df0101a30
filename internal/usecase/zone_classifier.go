package usecase

import (
	"github.com/landmark-guide/internal/domain"
	"github.com/landmark-guide/internal/pkg/utils"
)

// ZoneClassifier maps a position to a proximity tier against the safe zone.
// It holds no state beyond its configuration.
type ZoneClassifier struct {
	region               domain.Region
	backgroundRadius     float64
	recommendationRadius float64
	almostThereRadius    float64
}

// NewZoneClassifier создает классификатор; все радиусы в метрах от центра зоны
func NewZoneClassifier(
	region domain.Region,
	backgroundRadius float64,
	recommendationRadius float64,
	almostThereRadius float64,
) *ZoneClassifier {
	return &ZoneClassifier{
		region:               region,
		backgroundRadius:     backgroundRadius,
		recommendationRadius: recommendationRadius,
		almostThereRadius:    almostThereRadius,
	}
}

// Classify returns Inside for points in the rectangle, Approaching within the
// background radius of the center, Far otherwise.
func (c *ZoneClassifier) Classify(p domain.Coordinate) domain.ProximityTier {
	if utils.Contains(c.region, p) {
		return domain.TierInside
	}
	if utils.Distance(p, c.region.Center) <= c.backgroundRadius {
		return domain.TierApproaching
	}
	return domain.TierFar
}

// RecommendMode is the onboarding suggestion: Adventure when the user is
// within the recommendation radius.
func (c *ZoneClassifier) RecommendMode(p domain.Coordinate) domain.Mode {
	if utils.Distance(p, c.region.Center) <= c.recommendationRadius {
		return domain.ModeAdventure
	}
	return domain.ModeVirtualTour
}

// IsAlmostThere reports a position outside the safe zone but close enough to
// nudge the user.
func (c *ZoneClassifier) IsAlmostThere(p domain.Coordinate) bool {
	if utils.Contains(c.region, p) {
		return false
	}
	return utils.Distance(p, c.region.Center) <= c.almostThereRadius
}

func (c *ZoneClassifier) Region() domain.Region {
	return c.region
}
