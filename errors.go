package bankergo

import (
	"errors"
)

var (
	// ErrExceedsClaim is returned when a request exceeds the claimant's
	// remaining need.
	ErrExceedsClaim = errors.New("exceeds maximum claim")

	// ErrInsufficientAvailable is returned when a request exceeds the
	// currently available units.
	ErrInsufficientAvailable = errors.New("insufficient available resources")

	// ErrUnsafeState is returned when a request is individually
	// satisfiable but would leave the system without any safe finishing
	// order.
	ErrUnsafeState = errors.New("would create unsafe state")

	// ErrExceedsAllocation is returned when a release exceeds the
	// claimant's current allocation.
	ErrExceedsAllocation = errors.New("exceeds current allocation")

	// ErrUnknownClaimant is returned for a claimant id that was not part
	// of the population at construction.
	ErrUnknownClaimant = errors.New("unknown claimant")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("allocator is closed")
)

// IsDenial reports whether err is a request denial: a non-fatal outcome that
// left the allocator's state unchanged and fully usable.
func IsDenial(err error) bool {
	return errors.Is(err, ErrExceedsClaim) ||
		errors.Is(err, ErrInsufficientAvailable) ||
		errors.Is(err, ErrUnsafeState) ||
		errors.Is(err, ErrExceedsAllocation)
}

// DenialReason returns the human-readable reason for a denial, or the plain
// error text for anything else. Identical denied requests against an
// unchanged state yield the same reason.
func DenialReason(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
