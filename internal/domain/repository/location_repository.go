package repository

import (
	"context"

	"github.com/landmark-guide/internal/domain"
)

// LocationProvider is the platform location API as seen by the engine.
type LocationProvider interface {
	// CurrentFix is best effort; nil means no fix yet
	CurrentFix(ctx context.Context) (*domain.Coordinate, error)

	// RequestPermission prompts the user and blocks until an answer arrives
	RequestPermission(ctx context.Context, kind domain.PermissionKind) (bool, error)

	// SetAcquisition switches update delivery to the given intensity
	SetAcquisition(ctx context.Context, state domain.TrackingState) error
}
