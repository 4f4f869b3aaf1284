// Package analysis runs the speed pipeline over a loaded track and reports the results.
package analysis

import (
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/jibb34/gpxspeed/config"
	"github.com/jibb34/gpxspeed/gpxtrack"
	"github.com/jibb34/gpxspeed/motion"
	"github.com/jibb34/gpxspeed/smooth"
)

var log = logrus.WithField("pkg", "analysis")

// Options are the static settings of one pipeline run.
type Options struct {
	Units      motion.Units
	Location   *time.Location
	Track      int
	Smoother   smooth.Smoother
	SampleRate float64
}

// OptionsFromConfig resolves units, timezone and smoother from cfg.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	units, err := motion.ParseUnits(cfg.Units)
	if err != nil {
		return Options{}, err
	}
	smoother, err := smooth.New(cfg.SmoothParams())
	if err != nil {
		return Options{}, err
	}
	return Options{
		Units:      units,
		Location:   gpxtrack.LoadLocation(cfg.Timezone),
		Track:      cfg.Track,
		Smoother:   smoother,
		SampleRate: cfg.Smoothing.SampleRate,
	}, nil
}

// HeartRate summarizes the heart rate readings of a track.
type HeartRate struct {
	Count   int
	Average float64
	Max     int
}

// Analysis is the outcome of running the pipeline over one track.
type Analysis struct {
	Source   string
	FileInfo string
	Track    int
	Points   []gpxtrack.GPXPoint
	Motion   motion.Result
	// Smoothed is aligned with Motion.Speed.
	Smoothed  []float64
	Smoother  string
	Spectrum  smooth.Spectrum
	HeartRate HeartRate
}

// Run selects the configured track, converts its timestamps, and derives speed,
// smoothed speed, the speed spectrum and heart rate statistics.
func Run(data *gpxtrack.GPXData, opts Options) (*Analysis, error) {
	points, err := data.Track(opts.Track)
	if err != nil {
		return nil, err
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	points = gpxtrack.InLocation(points, loc)

	units := opts.Units
	if units.Name == "" {
		units = motion.Imperial
	}
	res, err := motion.Compute(gpxtrack.MotionPoints(points), units)
	if err != nil {
		return nil, errors.Wrapf(err, "track %d in %s", opts.Track, data.Name)
	}

	smoother := opts.Smoother
	if smoother == nil {
		smoother = smooth.None{}
	}
	smoothed, err := smoother.Smooth(res.Speed)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot smooth speed of %s", data.Name)
	}

	sampleRate := opts.SampleRate
	if sampleRate <= 0 {
		sampleRate = 1
	}

	a := &Analysis{
		Source:    data.Name,
		FileInfo:  data.Info(),
		Track:     opts.Track,
		Points:    points,
		Motion:    res,
		Smoothed:  smoothed,
		Smoother:  smoother.Name(),
		Spectrum:  smooth.AmplitudeSpectrum(res.Speed, sampleRate),
		HeartRate: heartRateStats(points),
	}
	log.Debugf("%s: %d points, %.2f %s", data.Name, len(points), res.TotalDistance, units.DistanceLabel)
	return a, nil
}

func heartRateStats(points []gpxtrack.GPXPoint) HeartRate {
	var hr HeartRate
	var sum int
	for _, p := range points {
		if p.HeartRate <= 0 {
			continue
		}
		hr.Count++
		sum += p.HeartRate
		hr.Max = max(hr.Max, p.HeartRate)
	}
	if hr.Count > 0 {
		hr.Average = float64(sum) / float64(hr.Count)
	}
	return hr
}
