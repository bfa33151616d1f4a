// Package expiry holds the quote validity window logic: when a quote
// expires, how its lifecycle state is classified, and how an extension
// moves the deadline.
package expiry

import (
	"fmt"
	"math"
	"time"
)

const (
	// DefaultValidityDays is how long a quote stays open after creation.
	DefaultValidityDays = 30

	// DefaultReminderWindowDays is the width of the expiring-soon window.
	DefaultReminderWindowDays = 7
)

// State is the lifecycle state of a quote relative to its deadline.
type State string

const (
	StateActive       State = "active"
	StateExpiringSoon State = "expiring_soon"
	StateExpired      State = "expired"
)

// Status pairs the state with how many whole days remain. DaysRemaining is
// negative once the deadline has passed.
type Status struct {
	State         State  `json:"state"`
	DaysRemaining int    `json:"daysRemaining"`
	Message       string `json:"message"`
}

func message(state State, days int) string {
	switch {
	case state == StateExpired:
		return "This quote has expired"
	case days <= 0:
		return "This quote expires today"
	case days == 1:
		return "This quote expires tomorrow"
	case state == StateExpiringSoon:
		return fmt.Sprintf("This quote expires in %d days", days)
	default:
		return fmt.Sprintf("Valid for %d more days", days)
	}
}

// ExpirationDate returns the deadline for a quote created at createdAt.
func ExpirationDate(createdAt time.Time, validityDays int) time.Time {
	if validityDays <= 0 {
		validityDays = DefaultValidityDays
	}
	return createdAt.Add(time.Duration(validityDays) * 24 * time.Hour)
}

// StatusAt classifies a quote against its deadline. A quote is expired
// strictly after the deadline; within reminderDays whole days of it
// (inclusive of day zero) it is expiring soon.
func StatusAt(expiresAt, now time.Time, reminderDays int) Status {
	if reminderDays <= 0 {
		reminderDays = DefaultReminderWindowDays
	}
	days := int(math.Floor(expiresAt.Sub(now).Hours() / 24))
	var state State
	switch {
	case now.After(expiresAt):
		state = StateExpired
	case days <= reminderDays:
		state = StateExpiringSoon
	default:
		state = StateActive
	}
	return Status{State: state, DaysRemaining: days, Message: message(state, days)}
}

// Extend pushes the deadline out by days counted from whichever is later,
// the current deadline or now. Extending an expired quote therefore
// reopens it for the full window rather than producing a deadline that is
// already in the past.
func Extend(currentExpiry, now time.Time, days int) time.Time {
	base := currentExpiry
	if now.After(base) {
		base = now
	}
	return base.Add(time.Duration(days) * 24 * time.Hour)
}
