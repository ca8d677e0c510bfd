package export

import (
	"fmt"

	"github.com/spf13/cast"

	"github.com/idumahg/NearEarthObjects/internal/domain"
)

// Header is the fixed column order of tabular outputs.
var Header = []string{
	"datetime_utc",
	"distance_au",
	"velocity_km_s",
	"designation",
	"name",
	"diameter_km",
	"potentially_hazardous",
}

const unknownDiameterText = "nan"

type approachRecord struct {
	DatetimeUTC string    `json:"datetime_utc"`
	DistanceAU  float64   `json:"distance_au"`
	VelocityKmS float64   `json:"velocity_km_s"`
	Designation string    `json:"designation"`
	NEO         neoRecord `json:"neo"`
}

type neoRecord struct {
	Designation string   `json:"designation"`
	Name        *string  `json:"name"`
	DiameterKm  *float64 `json:"diameter_km"`
	Hazardous   bool     `json:"potentially_hazardous"`
}

// newApproachRecord copies the approach and its NEO into a self-contained value.
// JSON has no NaN, so an unknown diameter becomes nil.
func newApproachRecord(approach *domain.CloseApproach) (approachRecord, error) {
	if approach == nil || approach.NEO == nil {
		return approachRecord{}, unlinkedError(approach)
	}
	neo := approach.NEO
	record := approachRecord{
		DatetimeUTC: approach.TimeString(),
		DistanceAU:  approach.DistanceAU,
		VelocityKmS: approach.VelocityKmS,
		Designation: approach.Designation,
		NEO: neoRecord{
			Designation: neo.Designation,
			Hazardous:   neo.Hazardous,
		},
	}
	if neo.Name != nil {
		name := *neo.Name
		record.NEO.Name = &name
	}
	if neo.HasDiameter() {
		diameter := neo.DiameterKm
		record.NEO.DiameterKm = &diameter
	}
	return record, nil
}

// csvRow flattens the record into Header order.
func (r approachRecord) csvRow() []string {
	name := ""
	if r.NEO.Name != nil {
		name = *r.NEO.Name
	}
	diameter := unknownDiameterText
	if r.NEO.DiameterKm != nil {
		diameter = formatFloat(*r.NEO.DiameterKm)
	}
	return []string{
		r.DatetimeUTC,
		formatFloat(r.DistanceAU),
		formatFloat(r.VelocityKmS),
		r.NEO.Designation,
		name,
		diameter,
		formatBool(r.NEO.Hazardous),
	}
}

// cells flattens the record into Header order for spreadsheets; unknown values are empty cells.
func (r approachRecord) cells() []any {
	var name, diameter any
	if r.NEO.Name != nil {
		name = *r.NEO.Name
	}
	if r.NEO.DiameterKm != nil {
		diameter = *r.NEO.DiameterKm
	}
	return []any{
		r.DatetimeUTC,
		r.DistanceAU,
		r.VelocityKmS,
		r.NEO.Designation,
		name,
		diameter,
		r.NEO.Hazardous,
	}
}

// formatFloat uses the shortest decimal form that parses back to the same value.
func formatFloat(value float64) string {
	return cast.ToString(value)
}

func formatBool(value bool) string {
	if value {
		return "True"
	}
	return "False"
}

func unlinkedError(approach *domain.CloseApproach) error {
	if approach == nil {
		return fmt.Errorf("%w: nil result", ErrUnlinkedApproach)
	}
	return fmt.Errorf("%w: %s at %s", ErrUnlinkedApproach, approach.Designation, approach.TimeString())
}
