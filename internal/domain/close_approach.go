package domain

import (
	"fmt"
	"time"
)

// TimeLayout is the minute-precision layout used when approach times are displayed or serialized.
const TimeLayout = "2006-01-02 15:04"

// CloseApproach represents a single flyby of an NEO past Earth.
type CloseApproach struct {
	Designation string    `json:"designation"`
	Time        time.Time `json:"datetime_utc"`
	DistanceAU  float64   `json:"distance_au"`
	VelocityKmS float64   `json:"velocity_km_s"`

	// NEO is a non-owning link resolved by the database after loading.
	NEO *NearEarthObject `json:"-"`
}

// TimeString formats the approach time in UTC without seconds.
func (a CloseApproach) TimeString() string {
	return a.Time.UTC().Format(TimeLayout)
}

// Linked reports whether the approach has been associated with its NEO.
func (a CloseApproach) Linked() bool {
	return a.NEO != nil
}

func (a CloseApproach) String() string {
	name := a.Designation
	if a.NEO != nil {
		name = a.NEO.FullName()
	}
	return fmt.Sprintf("On %s, '%s' approaches Earth at a distance of %.2f au and a velocity of %.2f km/s.",
		a.TimeString(), name, a.DistanceAU, a.VelocityKmS)
}
