package ingestion

import (
	"fmt"

	"github.com/valyala/fastjson"

	"github.com/idumahg/NearEarthObjects/internal/domain"
)

// approachLayout holds the positions of the consumed values within a data row.
type approachLayout struct {
	designation int
	time        int
	distance    int
	velocity    int
}

// defaultApproachLayout is used when the document has no usable "fields" header.
var defaultApproachLayout = approachLayout{designation: 0, time: 1, distance: 2, velocity: 3}

func (l approachLayout) width() int {
	return max(l.designation, l.time, l.distance, l.velocity) + 1
}

// LoadApproaches reads close approaches from a JSON file on the OS filesystem.
func LoadApproaches(path string) ([]domain.CloseApproach, error) {
	return defaultLoader.LoadApproaches(path)
}

// LoadApproaches reads one close approach per element of the top-level "data"
// array, in array order.
func (l *Loader) LoadApproaches(path string) ([]domain.CloseApproach, error) {
	payload, err := l.readFile(path)
	if err != nil {
		return nil, err
	}

	var parser fastjson.Parser
	doc, err := parser.ParseBytes(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrMalformedInput, err)
	}
	if doc.Type() != fastjson.TypeObject {
		return nil, fmt.Errorf("%s: %w: top-level value is %s, expected object", path, ErrMalformedInput, doc.Type())
	}

	data := doc.Get("data")
	if data == nil {
		return nil, fmt.Errorf("%s: %w: missing \"data\" key", path, ErrMalformedInput)
	}
	rows, err := data.Array()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: \"data\" is not an array", path, ErrMalformedInput)
	}

	layout := resolveApproachLayout(doc.Get("fields"))
	approaches := make([]domain.CloseApproach, 0, len(rows))
	for i, row := range rows {
		approach, err := decodeApproach(row, layout)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: data[%d]: %v", path, ErrMalformedInput, i, err)
		}
		approaches = append(approaches, approach)
	}
	return approaches, nil
}

// resolveApproachLayout maps the SBDB close-approach field names to positions.
// The header is used only when it names every consumed field.
func resolveApproachLayout(fields *fastjson.Value) approachLayout {
	if fields == nil {
		return defaultApproachLayout
	}
	names, err := fields.Array()
	if err != nil {
		return defaultApproachLayout
	}

	positions := map[string]int{}
	for idx, name := range names {
		value, err := name.StringBytes()
		if err != nil {
			continue
		}
		if _, seen := positions[string(value)]; !seen {
			positions[string(value)] = idx
		}
	}

	des, okDes := positions["des"]
	cd, okCd := positions["cd"]
	dist, okDist := positions["dist"]
	vRel, okVRel := positions["v_rel"]
	if !okDes || !okCd || !okDist || !okVRel {
		return defaultApproachLayout
	}
	return approachLayout{designation: des, time: cd, distance: dist, velocity: vRel}
}

func decodeApproach(row *fastjson.Value, layout approachLayout) (domain.CloseApproach, error) {
	values, err := row.Array()
	if err != nil {
		return domain.CloseApproach{}, fmt.Errorf("row is %s, expected array", row.Type())
	}
	if len(values) < layout.width() {
		return domain.CloseApproach{}, fmt.Errorf("expected at least %d values, got %d", layout.width(), len(values))
	}

	designation, err := values[layout.designation].StringBytes()
	if err != nil {
		return domain.CloseApproach{}, fmt.Errorf("designation must be a string")
	}
	rawTime, err := values[layout.time].StringBytes()
	if err != nil {
		return domain.CloseApproach{}, fmt.Errorf("approach time must be a string")
	}
	ts, err := parseTimestamp(string(rawTime))
	if err != nil {
		return domain.CloseApproach{}, err
	}
	distance, err := numericValue(values[layout.distance])
	if err != nil {
		return domain.CloseApproach{}, fmt.Errorf("distance: %w", err)
	}
	velocity, err := numericValue(values[layout.velocity])
	if err != nil {
		return domain.CloseApproach{}, fmt.Errorf("velocity: %w", err)
	}

	return domain.CloseApproach{
		Designation: string(designation),
		Time:        ts,
		DistanceAU:  distance,
		VelocityKmS: velocity,
	}, nil
}

// numericValue accepts both JSON numbers and numeric strings, which is how the
// upstream API encodes every value.
func numericValue(value *fastjson.Value) (float64, error) {
	switch value.Type() {
	case fastjson.TypeNumber:
		return value.Float64()
	case fastjson.TypeString:
		raw, _ := value.StringBytes()
		return coerceFloat(string(raw))
	default:
		return 0, fmt.Errorf("expected number, got %s", value.Type())
	}
}
