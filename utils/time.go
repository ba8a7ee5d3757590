// Package utils provides utility functions for the application.
package utils

import (
	"time"
)

// UTCNow returns the current time in UTC. All persisted timestamps go
// through this so comparisons never mix zones.
func UTCNow() time.Time {
	return time.Now().UTC()
}

// UTCNowAdd returns the current UTC time shifted by d
func UTCNowAdd(d time.Duration) time.Time {
	return UTCNow().Add(d)
}
