package utils

import "time"

// Now is the default engine clock, always UTC.
func Now() time.Time {
	return time.Now().UTC()
}
