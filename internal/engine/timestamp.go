package engine

import "time"

// Minute is a calendar instant truncated to minute resolution, represented
// as the number of whole minutes since the Unix epoch (UTC). It is the
// compact, fixed-width stand-in for Timestamp used throughout the hot
// paths (range tree leaves, segment tree indexing, bucket lookups).
type Minute int64

// NewMinute truncates t to minute resolution in UTC.
func NewMinute(t time.Time) Minute {
	u := t.UTC()
	return Minute(u.Unix() / 60)
}

// Time expands a Minute back to a UTC time.Time at second 0.
func (m Minute) Time() time.Time {
	return time.Unix(int64(m)*60, 0).UTC()
}

// String renders the minute as "YYYY-MM-DD hh:mm:ss", matching the HTTP
// response rendering required by the external interface.
func (m Minute) String() string {
	return m.Time().Format("2006-01-02 15:04:05")
}

// AddMinutes returns m shifted by n minutes.
func (m Minute) AddMinutes(n int64) Minute {
	return m + Minute(n)
}
