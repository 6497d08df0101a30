package usecase

import (
	"github.com/landmark-guide/internal/domain"
	"github.com/landmark-guide/internal/pkg/utils"
)

// NearestLandmark is the resolver output.
type NearestLandmark struct {
	Index    int
	Point    domain.LandmarkPoint
	Distance float64
}

// ResolveNearest scans points linearly and returns the closest one, or false
// for an empty set. Equidistant points are ordered: structure points before
// non-landmark points, then lower structure id, then dataset order.
func ResolveNearest(p domain.Coordinate, points []domain.LandmarkPoint) (NearestLandmark, bool) {
	if len(points) == 0 {
		return NearestLandmark{}, false
	}

	best := NearestLandmark{
		Index:    0,
		Point:    points[0],
		Distance: utils.Distance(p, points[0].Coordinate),
	}

	for i := 1; i < len(points); i++ {
		d := utils.Distance(p, points[i].Coordinate)
		if d < best.Distance || (d == best.Distance && winsTie(points[i], best.Point)) {
			best = NearestLandmark{Index: i, Point: points[i], Distance: d}
		}
	}

	return best, true
}

func winsTie(candidate, current domain.LandmarkPoint) bool {
	if candidate.IsLandmark() != current.IsLandmark() {
		return candidate.IsLandmark()
	}
	if !candidate.IsLandmark() {
		return false
	}
	return candidate.StructureID < current.StructureID
}
