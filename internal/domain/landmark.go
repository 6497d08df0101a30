package domain

// NotALandmark is the structure reference of map points that do not belong
// to any structure (trail markers, entrances).
const NotALandmark = -1

// LandmarkPoint is one map point. PixelX/PixelY are the projection used by
// map rendering and are opaque here.
type LandmarkPoint struct {
	Coordinate  Coordinate `json:"coordinate"`
	PixelX      float64    `json:"pixel_x"`
	PixelY      float64    `json:"pixel_y"`
	StructureID int        `json:"structure_id"`
	Visited     bool       `json:"visited"`
}

// IsLandmark reports whether the point references a structure.
func (p LandmarkPoint) IsLandmark() bool {
	return p.StructureID != NotALandmark
}
