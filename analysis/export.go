package analysis

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/jibb34/gpxspeed/config"
	"github.com/jibb34/gpxspeed/gpxtrack"
)

// FormatValue formats v with six significant digits, keeping a ".0" on whole
// numbers in fixed notation (0 -> "0.0", 12.3456789 -> "12.3457").
func FormatValue(v float64) string {
	s := strconv.FormatFloat(v, 'g', 6, 64)
	if strings.ContainsAny(s, ".eIN") {
		return s
	}
	return s + ".0"
}

// writeFile creates path, hands it to write and reports the first error of
// create, write and close.
func writeFile(path, what string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "could not create %s file", what)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "could not close %s", path)
		}
	}()
	if err := write(f); err != nil {
		return errors.Wrapf(err, "could not write %s", path)
	}
	return nil
}

// WriteSpeedFile writes one value per line.
func WriteSpeedFile(path string, values []float64) error {
	return writeFile(path, "speed", func(f io.Writer) error {
		w := bufio.NewWriter(f)
		for _, v := range values {
			w.WriteString(FormatValue(v))
			w.WriteByte('\n')
		}
		return w.Flush()
	})
}

// WriteSamplesCSV writes one row per track point with its raw and smoothed speed.
func (a *Analysis) WriteSamplesCSV(path string) error {
	return writeFile(path, "samples", func(f io.Writer) error {
		u := a.Motion.Units
		w := csv.NewWriter(f)
		w.Write([]string{"time", "lat", "lon", "ele_m", "hr_bpm",
			"dist_" + u.DistanceLabel, "speed_" + u.SpeedLabel, "smoothed_" + u.SpeedLabel})
		for i, p := range a.Points {
			ele, hr := "", ""
			if p.HasElevation {
				ele = strconv.FormatFloat(p.Elevation, 'f', -1, 64)
			}
			if p.HeartRate > 0 {
				hr = strconv.Itoa(p.HeartRate)
			}
			w.Write([]string{
				p.Time.Format(time.RFC3339),
				strconv.FormatFloat(p.Latitude, 'f', -1, 64),
				strconv.FormatFloat(p.Longitude, 'f', -1, 64),
				ele,
				hr,
				FormatValue(a.Motion.Distance[i]),
				FormatValue(a.Motion.Speed[i]),
				FormatValue(a.Smoothed[i]),
			})
		}
		w.Flush()
		return w.Error()
	})
}

// WriteSpectrumCSV writes the amplitude spectrum of the raw speed.
func (a *Analysis) WriteSpectrumCSV(path string) error {
	return writeFile(path, "spectrum", func(f io.Writer) error {
		w := csv.NewWriter(f)
		w.Write([]string{"frequency", "amplitude"})
		for i := range a.Spectrum.Frequency {
			w.Write([]string{FormatValue(a.Spectrum.Frequency[i]), FormatValue(a.Spectrum.Amplitude[i])})
		}
		w.Flush()
		return w.Error()
	})
}

// OutputPath expands {name} to the source's base name and places relative paths under dir.
// An empty pattern yields an empty path.
func OutputPath(dir, pattern, source string) string {
	if pattern == "" {
		return ""
	}
	base := filepath.Base(source)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	p := strings.ReplaceAll(pattern, "{name}", name)
	if filepath.IsAbs(p) || dir == "" {
		return p
	}
	return filepath.Join(dir, p)
}

// WriteOutputs writes every export named in out and returns the written paths.
// out.Dir is created when at least one export is configured.
func (a *Analysis) WriteOutputs(out config.OutputConfig) ([]string, error) {
	var written []string
	anyOutput := out.SpeedFile != "" || out.SamplesFile != "" || out.TrackMapFile != "" || out.SpectrumFile != ""
	if out.Dir != "" && anyOutput {
		if err := os.MkdirAll(out.Dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "could not create output dir %s", out.Dir)
		}
	}
	if p := OutputPath(out.Dir, out.SpeedFile, a.Source); p != "" {
		if err := WriteSpeedFile(p, a.Smoothed); err != nil {
			return written, err
		}
		written = append(written, p)
	}
	if p := OutputPath(out.Dir, out.SamplesFile, a.Source); p != "" {
		if err := a.WriteSamplesCSV(p); err != nil {
			return written, err
		}
		written = append(written, p)
	}
	if p := OutputPath(out.Dir, out.TrackMapFile, a.Source); p != "" {
		if err := gpxtrack.GenerateTrackMap(a.Points, a.Smoothed, out.TrackMapMetric, p); err != nil {
			return written, err
		}
		written = append(written, p)
	}
	if p := OutputPath(out.Dir, out.SpectrumFile, a.Source); p != "" {
		if err := a.WriteSpectrumCSV(p); err != nil {
			return written, err
		}
		written = append(written, p)
	}
	for _, p := range written {
		log.Debugf("wrote %s", p)
	}
	return written, nil
}
