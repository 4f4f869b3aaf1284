package motion

import (
	"strings"

	"github.com/pkg/errors"
)

// Units converts meters and seconds into the distance and speed units used for output.
type Units struct {
	Name          string
	DistanceLabel string
	SpeedLabel    string
	// meters per distance unit
	metersPerUnit float64
	// seconds per speed time unit (speed is distance unit per this many seconds)
	secondsPerUnit float64
}

var (
	// Imperial reports miles and miles per hour.
	Imperial = Units{Name: "imperial", DistanceLabel: "mi", SpeedLabel: "mph", metersPerUnit: 1 / 0.000621371, secondsPerUnit: 3600}
	// Metric reports kilometers and kilometers per hour.
	Metric = Units{Name: "metric", DistanceLabel: "km", SpeedLabel: "km/h", metersPerUnit: 1000, secondsPerUnit: 3600}
	// SI reports meters and meters per second.
	SI = Units{Name: "si", DistanceLabel: "m", SpeedLabel: "m/s", metersPerUnit: 1, secondsPerUnit: 1}
)

// ParseUnits maps a unit system name to its Units.
func ParseUnits(name string) (Units, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "imperial", "mi", "mph":
		return Imperial, nil
	case "metric", "km", "kmh":
		return Metric, nil
	case "si", "m", "mps":
		return SI, nil
	}
	return Units{}, errors.Errorf("unknown units %q", name)
}

// Distance converts meters into this unit system's distance unit.
func (u Units) Distance(meters float64) float64 {
	return meters / u.metersPerUnit
}

// Speed converts a distance in meters covered in seconds into this unit system's speed unit.
func (u Units) Speed(meters, seconds float64) float64 {
	if seconds == 0 {
		return 0
	}
	return u.Distance(meters) / seconds * u.secondsPerUnit
}
