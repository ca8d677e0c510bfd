package domain

import (
	"fmt"
	"math"
)

// NearEarthObject represents a catalogued near-Earth object.
type NearEarthObject struct {
	Designation string  `json:"designation"`
	Name        *string `json:"name"`
	DiameterKm  float64 `json:"diameter_km"`
	Hazardous   bool    `json:"potentially_hazardous"`

	// Approaches is filled in by the database once close approaches are linked.
	Approaches []*CloseApproach `json:"-"`
}

// NewNearEarthObject creates an NEO. An empty name is stored as nil.
func NewNearEarthObject(designation, name string, diameterKm float64, hazardous bool) NearEarthObject {
	neo := NearEarthObject{
		Designation: designation,
		DiameterKm:  diameterKm,
		Hazardous:   hazardous,
	}
	if name != "" {
		neo.Name = &name
	}
	return neo
}

// UnknownDiameter is the sentinel stored when a diameter is not known.
func UnknownDiameter() float64 {
	return math.NaN()
}

// HasDiameter reports whether the diameter is known.
func (n NearEarthObject) HasDiameter() bool {
	return !math.IsNaN(n.DiameterKm)
}

// NameOrEmpty returns the IAU name, or an empty string when there is none.
func (n NearEarthObject) NameOrEmpty() string {
	if n.Name == nil {
		return ""
	}
	return *n.Name
}

// FullName returns the designation followed by the name in parentheses, if any.
func (n NearEarthObject) FullName() string {
	if n.Name == nil {
		return n.Designation
	}
	return fmt.Sprintf("%s (%s)", n.Designation, *n.Name)
}

func (n NearEarthObject) String() string {
	diameter := "an unknown diameter"
	if n.HasDiameter() {
		diameter = fmt.Sprintf("a diameter of %.3f km", n.DiameterKm)
	}
	hazard := "is not"
	if n.Hazardous {
		hazard = "is"
	}
	return fmt.Sprintf("NEO %s has %s and %s potentially hazardous.", n.FullName(), diameter, hazard)
}
