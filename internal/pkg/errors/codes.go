package errors

import "net/http"

// Engine failure taxonomy. None of these ever crash the engine; the worst
// outcome is that visits are not tracked for a while.
var (
	ErrPermissionDenied = New(
		"PERMISSION_DENIED",
		"Location permission denied",
		http.StatusForbidden,
	)

	ErrNoFix = New(
		"NO_FIX",
		"No location fix available yet",
		http.StatusConflict,
	)

	ErrEmptyLandmarkSet = New(
		"EMPTY_LANDMARK_SET",
		"Landmark set is empty",
		http.StatusServiceUnavailable,
	)

	ErrPersistenceFailure = New(
		"PERSISTENCE_FAILURE",
		"Storage operation failed",
		http.StatusInternalServerError,
	)

	ErrVersionMismatch = New(
		"VERSION_MISMATCH",
		"Dataset version changed during migration",
		http.StatusInternalServerError,
	)
)

var (
	ErrStructureNotFound = New(
		"STRUCTURE_NOT_FOUND",
		"Structure not found",
		http.StatusNotFound,
	)

	ErrNotALandmark = New(
		"NOT_A_LANDMARK",
		"Point does not reference a structure",
		http.StatusBadRequest,
	)

	ErrVisitNotAllowed = New(
		"VISIT_NOT_ALLOWED",
		"Visits are only recorded in adventure mode",
		http.StatusConflict,
	)

	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidMode = New(
		"INVALID_MODE",
		"Invalid mode",
		http.StatusBadRequest,
	)

	ErrInvalidDataset = New(
		"INVALID_DATASET",
		"Dataset is malformed",
		http.StatusInternalServerError,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
