package gpxtrack

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Metrics that can color a track map.
const (
	MetricSpeed     = "speed"
	MetricHeartRate = "heartrate"
)

// TrackMapData pairs each point with a metric value as [lat, lon, value].
// For heart rate, points without a reading carry the previous reading forward
// (0 until the first one).
func TrackMapData(points []GPXPoint, speed []float64, metric string) ([][3]float64, error) {
	if metric == MetricSpeed && len(speed) != len(points) {
		return nil, errors.Errorf("%d speed samples for %d points", len(speed), len(points))
	}
	data := make([][3]float64, 0, len(points))
	var prev float64
	for i, point := range points {
		var value float64
		switch metric {
		case MetricSpeed:
			value = speed[i]
		case MetricHeartRate:
			if point.HeartRate > 0 {
				prev = float64(point.HeartRate)
			}
			value = prev
		default:
			return nil, errors.Errorf("unknown track map metric %q", metric)
		}
		data = append(data, [3]float64{point.Latitude, point.Longitude, value})
	}
	return data, nil
}

// GenerateTrackMap writes the track map data as indented JSON to outputPath.
func GenerateTrackMap(points []GPXPoint, speed []float64, metric, outputPath string) (err error) {
	data, err := TrackMapData(points, speed, metric)
	if err != nil {
		return err
	}

	jsonData, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return errors.Wrap(err, "could not encode track map")
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return errors.Wrap(err, "could not create track map file")
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "could not close track map file")
		}
	}()

	if _, err = file.Write(jsonData); err != nil {
		return errors.Wrap(err, "could not write track map")
	}

	log.Infof("track map data saved to %s", outputPath)
	return nil
}
