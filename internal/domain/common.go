package domain

// Coordinate is a WGS84 position in degrees.
type Coordinate struct {
	Lat float64 `json:"lat" db:"lat"`
	Lon float64 `json:"lon" db:"lon"`
}

// Valid reports whether the coordinate lies within the WGS84 ranges.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Region is the safe zone: a lat/lon rectangle plus the center used for the
// coarse radius checks. It is configured once per process and never mutated.
type Region struct {
	BottomLeft Coordinate `json:"bottom_left"`
	TopRight   Coordinate `json:"top_right"`
	Center     Coordinate `json:"center"`
}

// BoundingBox is the normalized form of a Region's rectangle.
type BoundingBox struct {
	MinLat float64 `json:"min_lat" db:"min_lat"`
	MinLon float64 `json:"min_lon" db:"min_lon"`
	MaxLat float64 `json:"max_lat" db:"max_lat"`
	MaxLon float64 `json:"max_lon" db:"max_lon"`
}

// Bounds normalizes the corners so callers need not care which corner holds
// the smaller longitude.
func (r Region) Bounds() BoundingBox {
	b := BoundingBox{
		MinLat: r.BottomLeft.Lat,
		MaxLat: r.TopRight.Lat,
		MinLon: r.BottomLeft.Lon,
		MaxLon: r.TopRight.Lon,
	}
	if b.MinLat > b.MaxLat {
		b.MinLat, b.MaxLat = b.MaxLat, b.MinLat
	}
	if b.MinLon > b.MaxLon {
		b.MinLon, b.MaxLon = b.MaxLon, b.MinLon
	}
	return b
}
