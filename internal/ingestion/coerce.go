package ingestion

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/idumahg/NearEarthObjects/internal/domain"
)

// hazardousFlag is the only pha value that marks an NEO as potentially hazardous.
const hazardousFlag = "Y"

var timeLayouts = []string{
	"2006-Jan-02 15:04",
	"2006-Jan-02 15:04:05",
	domain.TimeLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// coerceDiameter never fails; blank or unparsable values become the unknown sentinel.
func coerceDiameter(raw string) float64 {
	if strings.TrimSpace(raw) == "" {
		return domain.UnknownDiameter()
	}
	value, err := cast.ToFloat64E(raw)
	if err != nil {
		return domain.UnknownDiameter()
	}
	return value
}

func coerceHazardous(raw string) bool {
	return raw == hazardousFlag
}

func coerceFloat(raw string) (float64, error) {
	value, err := cast.ToFloat64E(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("unable to coerce %q to float", raw)
	}
	return value, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format %q", raw)
}
