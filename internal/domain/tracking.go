package domain

import (
	"fmt"
	"strings"
)

// TrackingState is the location acquisition intensity.
type TrackingState int

const (
	TrackingInactive TrackingState = iota
	TrackingForegroundOnly
	TrackingBackground
)

func (s TrackingState) String() string {
	switch s {
	case TrackingInactive:
		return "inactive"
	case TrackingForegroundOnly:
		return "foreground_only"
	case TrackingBackground:
		return "background"
	default:
		return fmt.Sprintf("tracking_state(%d)", int(s))
	}
}

func (s TrackingState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ProximityTier is the distance class of a position relative to the safe zone.
type ProximityTier int

const (
	TierFar ProximityTier = iota
	TierApproaching
	TierInside
)

func (t ProximityTier) String() string {
	switch t {
	case TierFar:
		return "far"
	case TierApproaching:
		return "approaching"
	case TierInside:
		return "inside"
	default:
		return fmt.Sprintf("proximity_tier(%d)", int(t))
	}
}

func (t ProximityTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Mode is how the user explores the landmarks.
type Mode int

const (
	ModeVirtualTour Mode = iota
	ModeAdventure
)

func (m Mode) String() string {
	switch m {
	case ModeVirtualTour:
		return "virtual_tour"
	case ModeAdventure:
		return "adventure"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMode accepts the String form of a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "virtual_tour", "virtual":
		return ModeVirtualTour, nil
	case "adventure":
		return ModeAdventure, nil
	default:
		return ModeVirtualTour, fmt.Errorf("unknown mode %q", s)
	}
}

// PermissionKind distinguishes the two location permission levels.
type PermissionKind int

const (
	PermissionForeground PermissionKind = iota
	PermissionBackground
)

func (k PermissionKind) String() string {
	if k == PermissionBackground {
		return "background"
	}
	return "foreground"
}

func (k PermissionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParsePermissionKind accepts the String form of a PermissionKind.
func ParsePermissionKind(s string) (PermissionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "foreground", "when_in_use":
		return PermissionForeground, nil
	case "background", "always":
		return PermissionBackground, nil
	default:
		return PermissionForeground, fmt.Errorf("unknown permission kind %q", s)
	}
}

// PermissionStatus is what the engine knows about one permission level.
type PermissionStatus int

const (
	PermissionUnknown PermissionStatus = iota
	PermissionPending
	PermissionGranted
	PermissionDenied
)

func (s PermissionStatus) String() string {
	switch s {
	case PermissionPending:
		return "pending"
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "unknown"
	}
}

func (s PermissionStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
