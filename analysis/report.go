package analysis

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/floats"
)

const timeLayout = "2006-01-02 15:04:05-07:00"

// WriteSummary prints the file layout and the track statistics.
func (a *Analysis) WriteSummary(w io.Writer) error {
	_, err := fmt.Fprintf(w, "File: %s\n\nGPX Information\n%s\n\nTrack Information\n%s\n", a.Source, a.FileInfo, a.TrackInfo())
	return err
}

// TrackInfo describes start, end, totals and speeds of the analyzed track.
func (a *Analysis) TrackInfo() string {
	start := a.Points[0]
	end := a.Points[len(a.Points)-1]
	u := a.Motion.Units

	info := fmt.Sprintf("start: lat=%v lon=%v time=%s\n", start.Latitude, start.Longitude, start.Time.Format(timeLayout))
	info += fmt.Sprintf("end  : lat=%v lon=%v time=%s\n", end.Latitude, end.Longitude, end.Time.Format(timeLayout))

	avg := "n/a"
	if s, ok := a.Motion.AverageSpeed(); ok {
		avg = fmt.Sprintf("%.2f %s", s, u.SpeedLabel)
	}
	info += fmt.Sprintf("total_dist=%.2f %s, total_time=%.1f min, avg_speed=%s\n",
		a.Motion.TotalDistance, u.DistanceLabel, a.Motion.TotalTime.Minutes(), avg)

	maxSmoothed := 0.0
	if len(a.Smoothed) > 0 {
		maxSmoothed = floats.Max(a.Smoothed)
	}
	info += fmt.Sprintf("max_speed=%.2f %s, max_smoothed_speed=%.2f %s (%s)",
		a.Motion.MaxSpeed(), u.SpeedLabel, maxSmoothed, u.SpeedLabel, a.Smoother)

	if a.HeartRate.Count > 0 {
		info += fmt.Sprintf("\nheart_rate: avg=%.0f bpm, max=%d bpm (%d of %d points)",
			a.HeartRate.Average, a.HeartRate.Max, a.HeartRate.Count, len(a.Points))
	}
	return info
}
