package services

import (
	"time"

	"github.com/wanjiru2468/fitness_trainer/models"
)

// RangesOverlap reports whether two time ranges overlap under half-open
// interval semantics: touching endpoints do not overlap.
func RangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// MatchesPolicy reports whether range B matches range A under the trainer's
// group-session matching logic. Unknown policies fall back to ANY_OVERLAP.
func MatchesPolicy(aStart, aEnd, bStart, bEnd time.Time, matchingLogic string) bool {
	switch matchingLogic {
	case models.MatchExact:
		return aStart.Equal(bStart) && aEnd.Equal(bEnd)
	case models.MatchStart:
		return aStart.Equal(bStart)
	case models.MatchEnd:
		return aEnd.Equal(bEnd)
	default:
		return RangesOverlap(aStart, aEnd, bStart, bEnd)
	}
}

// BookingConflict reports whether a requested booking window conflicts with
// an existing appointment. Booking checks use closed-interval semantics, so
// touching endpoints DO conflict. This intentionally diverges from the
// half-open semantics of RangesOverlap used for group classification.
func BookingConflict(apptStart, apptEnd, reqStart, reqEnd time.Time) bool {
	return !apptStart.After(reqEnd) && !apptEnd.Before(reqStart)
}
