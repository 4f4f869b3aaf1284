// Package motion derives distance and speed from timestamped positions.
package motion

import (
	"math"
	"time"

	"github.com/pkg/errors"
)

// EarthRadius is the mean Earth radius in meters.
const EarthRadius = 6371008.8

var ErrNoPoints = errors.New("no points")

// Point is one timestamped position.
type Point struct {
	Lat  float64
	Lon  float64
	Time time.Time
}

// Result holds the per-sample and total motion of a track.
type Result struct {
	Units Units
	// Speed is aligned with the input points; Speed[0] is always 0.
	Speed []float64
	// Distance is the step distance from the previous point; Distance[0] is always 0.
	Distance      []float64
	TotalDistance float64
	TotalTime     time.Duration
}

// Haversine returns the great-circle distance between a and b in meters.
func Haversine(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadius * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Compute walks consecutive pairs of points and returns step distances, speeds and totals in u.
// A zero time delta produces a zero speed for that step.
func Compute(points []Point, u Units) (Result, error) {
	if len(points) == 0 {
		return Result{}, ErrNoPoints
	}
	res := Result{
		Units:    u,
		Speed:    make([]float64, len(points)),
		Distance: make([]float64, len(points)),
	}
	var totalMeters float64
	for i := 1; i < len(points); i++ {
		meters := Haversine(points[i-1], points[i])
		delta := points[i].Time.Sub(points[i-1].Time)

		totalMeters += meters
		res.TotalTime += delta
		res.Distance[i] = u.Distance(meters)
		res.Speed[i] = u.Speed(meters, delta.Seconds())
	}
	res.TotalDistance = u.Distance(totalMeters)
	return res, nil
}

// AverageSpeed is total distance over total time. ok is false when the track
// covers no time, e.g. a single point.
func (r Result) AverageSpeed() (speed float64, ok bool) {
	secs := r.TotalTime.Seconds()
	if secs == 0 {
		return 0, false
	}
	return r.TotalDistance / secs * r.Units.secondsPerUnit, true
}

// MaxSpeed returns the largest speed sample.
func (r Result) MaxSpeed() float64 {
	var m float64
	for _, s := range r.Speed {
		m = math.Max(m, s)
	}
	return m
}
