package simulation

import "errors"

var (
	// ErrInsufficientData is returned when the overlapping history of
	// the securities is too short to estimate a covariance matrix.
	ErrInsufficientData = errors.New("insufficient overlapping history")

	// ErrNonPositiveSemidefinite is returned when the covariance
	// matrix cannot be factored even after regularization. This
	// signals a pathological security set, e.g. a zero-variance
	// asset.
	ErrNonPositiveSemidefinite = errors.New("covariance matrix is not positive semi-definite")
)
