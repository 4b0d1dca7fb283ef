// Package convert holds conversion helpers for exchange reply fields.
package convert

import "time"

// TimeFromUnixTimestampDecimal converts a unix timestamp in decimal seconds,
// e.g. 1537535284.828868, to time.Time
func TimeFromUnixTimestampDecimal(input float64) time.Time {
	return time.Unix(0, int64(input*float64(time.Second)))
}
