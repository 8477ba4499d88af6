// Package timezone pins the sync clock to the catalog's local time.
package timezone

import (
	"time"
	_ "time/tzdata" // containers often ship without /usr/share/zoneinfo
)

// Name is the IANA zone every timestamp is written in.
const Name = "Asia/Tehran"

var location = mustLoad(Name)

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		// +03:30, no DST since 2022
		return time.FixedZone("IRST", 3*3600+30*60)
	}
	return loc
}

// Location returns the sync location.
func Location() *time.Location { return location }

// Now returns the current time in the sync location, truncated to whole seconds
// since that is all the on-disk layout keeps.
func Now() time.Time {
	return time.Now().In(location).Truncate(time.Second)
}

// Parse reads a timestamp written with layout in the sync location.
func Parse(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, location)
}
