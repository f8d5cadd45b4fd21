package field

import (
	"strconv"
	"strings"
	"time"
)

// Dates are stored as ticks: 100ns intervals since 0001-01-01T00:00:00Z.
const (
	ticksPerSecond = 10_000_000
	unixEpochTicks = 621_355_968_000_000_000
)

// Ticks converts t to ticks.
func Ticks(t time.Time) int64 {
	return unixEpochTicks + t.Unix()*ticksPerSecond + int64(t.Nanosecond())/100
}

// FromTicks converts ticks to a UTC time.
func FromTicks(ticks int64) time.Time {
	d := ticks - unixEpochTicks
	return time.Unix(d/ticksPerSecond, (d%ticksPerSecond)*100).UTC()
}

// FormatDate renders t in the stored date form.
func FormatDate(t time.Time) string {
	return strconv.FormatInt(Ticks(t), 10)
}

// ParseDate reads the stored date form.
func ParseDate(s string) (time.Time, error) {
	ticks, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return FromTicks(ticks), nil
}
