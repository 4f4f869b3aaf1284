package gpxtrack

import (
	"bytes"
	"math"
	"os"

	"github.com/pkg/errors"
	"github.com/tormoder/fit"
)

// invalid uint8 value in FIT records
const fitInvalidHeartRate = 0xFF

// ParseFITFile reads the records of a FIT activity file as a single-track, single-segment GPXData.
func ParseFITFile(filename string) (*GPXData, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", filename)
	}
	return ParseFITBytes(filename, content)
}

func ParseFITBytes(name string, content []byte) (*GPXData, error) {
	f, err := fit.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", name)
	}
	activity, err := f.Activity()
	if err != nil {
		return nil, errors.Wrapf(err, "%s is not an activity file", name)
	}

	var seg GPXSegment
	skipped := 0
	for _, rec := range activity.Records {
		if rec.PositionLat.Invalid() || rec.PositionLong.Invalid() {
			skipped++
			continue
		}
		p := GPXPoint{
			Time:      rec.Timestamp,
			Latitude:  rec.PositionLat.Degrees(),
			Longitude: rec.PositionLong.Degrees(),
		}
		if alt := rec.GetAltitudeScaled(); !math.IsNaN(alt) {
			p.Elevation = alt
			p.HasElevation = true
		}
		if rec.HeartRate != fitInvalidHeartRate {
			p.HeartRate = int(rec.HeartRate)
		}
		seg.Points = append(seg.Points, p)
	}
	if skipped > 0 {
		log.Debugf("%s: skipped %d records without a position", name, skipped)
	}

	return &GPXData{
		Name:   name,
		Tracks: []GPXTrack{{Name: "activity", Segments: []GPXSegment{seg}}},
	}, nil
}
