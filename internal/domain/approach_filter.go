package domain

import "time"

// ApproachFilter represents the criteria for querying close approaches.
// Nil fields are not applied.
type ApproachFilter struct {
	Date      *time.Time
	StartDate *time.Time
	EndDate   *time.Time

	DistanceMin *float64
	DistanceMax *float64
	VelocityMin *float64
	VelocityMax *float64
	DiameterMin *float64
	DiameterMax *float64

	Hazardous *bool
}

// IsEmpty reports whether no criterion is set.
func (f ApproachFilter) IsEmpty() bool {
	return f.Date == nil && f.StartDate == nil && f.EndDate == nil &&
		f.DistanceMin == nil && f.DistanceMax == nil &&
		f.VelocityMin == nil && f.VelocityMax == nil &&
		f.DiameterMin == nil && f.DiameterMax == nil &&
		f.Hazardous == nil
}
