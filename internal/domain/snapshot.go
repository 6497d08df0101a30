package domain

import "time"

// Snapshot is an immutable view of the engine handed to observers.
type Snapshot struct {
	Sequence             uint64           `json:"sequence"`
	Mode                 Mode             `json:"mode"`
	TrackingState        TrackingState    `json:"tracking_state"`
	ProximityTier        ProximityTier    `json:"proximity_tier"`
	TierKnown            bool             `json:"tier_known"`
	ForegroundPermission PermissionStatus `json:"foreground_permission"`
	BackgroundPermission PermissionStatus `json:"background_permission"`
	PermissionDenied     bool             `json:"permission_denied"`
	LastFix              *Coordinate      `json:"last_fix,omitempty"`
	LastVisited          *Structure       `json:"last_visited,omitempty"`
	Statistics           VisitStatistics  `json:"statistics"`
	Structures           []Structure      `json:"structures"`
	DatasetVersion       string           `json:"dataset_version"`
	TakenAt              time.Time        `json:"taken_at"`
}

// FixResult reports what the engine did with one location update.
type FixResult struct {
	Accepted      bool          `json:"accepted"`
	DropReason    string        `json:"drop_reason,omitempty"`
	ProximityTier ProximityTier `json:"proximity_tier"`
	TrackingState TrackingState `json:"tracking_state"`
	AlmostThere   bool          `json:"almost_there"`
	NearestID     *int          `json:"nearest_structure_id,omitempty"`
	DistanceM     *float64      `json:"distance_m,omitempty"`
	Visited       *Structure    `json:"visited,omitempty"`
}

// Fix drop reasons.
const (
	DropRateLimited = "rate_limited"
	DropInactive    = "tracking_inactive"
	DropInvalid     = "invalid_coordinate"
	DropNoFix       = "no_fix"
)
