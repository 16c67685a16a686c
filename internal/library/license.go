package library

import "time"

// ExpiryWarningWindow is how long before expiry a license is flagged as
// expiring soon.
const ExpiryWarningWindow = 3 * 24 * time.Hour

// ExpiryState classifies an offline license for warning purposes.
type ExpiryState string

const (
	ExpiryExpired      ExpiryState = "expired"
	ExpiryExpiringSoon ExpiryState = "expiring_soon"
	ExpiryHealthy      ExpiryState = "healthy"
)

// ClassifyExpiry maps an expiry timestamp onto exactly one ExpiryState for
// the given instant. It is a pure function: callers must re-evaluate it on
// every check, since "now" advances independently of any data mutation.
func ClassifyExpiry(expiresAt, now time.Time) ExpiryState {
	if expiresAt.Before(now) {
		return ExpiryExpired
	}
	if expiresAt.Before(now.Add(ExpiryWarningWindow)) {
		return ExpiryExpiringSoon
	}
	return ExpiryHealthy
}
