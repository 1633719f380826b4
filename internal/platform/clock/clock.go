package clock

import "time"

// Clock abstracts time to keep usecases deterministic in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

// Now is truncated to the second so timestamps survive a YAML round trip unchanged.
func (SystemClock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
