// Package gpxtrack loads GPS tracks from GPX and FIT files into a common point model.
package gpxtrack

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jibb34/gpxspeed/motion"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tkrajina/gpxgo/gpx"
)

var log = logrus.WithField("pkg", "gpxtrack")

var (
	ErrNoTrack           = errors.New("no such track")
	ErrEmptyTrack        = errors.New("track has no points")
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// GPXData holds one parsed track file
type GPXData struct {
	Name   string
	Tracks []GPXTrack
}

type GPXTrack struct {
	Name     string
	Segments []GPXSegment
}

type GPXSegment struct {
	Points []GPXPoint
}

type GPXPoint struct {
	Time         time.Time
	Latitude     float64
	Longitude    float64
	Elevation    float64
	HasElevation bool
	HeartRate    int // bpm, 0 when not recorded
	Extensions   map[string]string
}

// extension keys (last path element) that carry heart rate
var heartRateKeys = []string{"hr", "heartrate"}

// LoadGPXFiles returns path itself when it is a file, or every .gpx and .fit
// file below it when it is a directory.
func LoadGPXFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot access %s", path)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && isTrackFile(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to walk %s", path)
	}
	return files, nil
}

func isTrackFile(p string) bool {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".gpx", ".fit":
		return true
	}
	return false
}

// ParseFile parses a GPX or FIT file depending on its extension.
func ParseFile(filename string) (*GPXData, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".gpx":
		return ParseGPXFile(filename)
	case ".fit":
		return ParseFITFile(filename)
	}
	return nil, errors.Wrapf(ErrUnsupportedFormat, "%s", filename)
}

func ParseGPXFile(filename string) (*GPXData, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read %s", filename)
	}
	return ParseGPXBytes(filename, content)
}

// ParseGPXBytes parses GPX content already in memory.
func ParseGPXBytes(name string, content []byte) (*GPXData, error) {
	gpxFile, err := gpx.ParseBytes(content)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", name)
	}
	data := fromGPX(gpxFile)
	data.Name = name
	return data, nil
}

func fromGPX(gpxFile *gpx.GPX) *GPXData {
	data := &GPXData{}
	for _, track := range gpxFile.Tracks {
		t := GPXTrack{Name: track.Name}
		for _, segment := range track.Segments {
			var seg GPXSegment
			for _, point := range segment.Points {
				p := GPXPoint{
					Latitude:     point.Latitude,
					Longitude:    point.Longitude,
					Elevation:    point.Elevation.Value(),
					HasElevation: point.Elevation.NotNull(),
					Time:         point.Timestamp,
				}
				if len(point.Extensions.Nodes) > 0 {
					p.Extensions = make(map[string]string)
					// nested extensions flatten to path keys:
					// <ext1><ext2>value</ext2></ext1> => ext1/ext2 = value
					parseRecursiveExtensions(point.Extensions.Nodes, &p, "")
					p.HeartRate = heartRateFromExtensions(p.Extensions)
				}
				seg.Points = append(seg.Points, p)
			}
			t.Segments = append(t.Segments, seg)
		}
		data.Tracks = append(data.Tracks, t)
	}
	return data
}

func parseRecursiveExtensions(nodes []gpx.ExtensionNode, p *GPXPoint, prefix string) {
	for _, node := range nodes {
		key := prefix + node.XMLName.Local
		value := strings.TrimSpace(node.Data)
		if value != "" {
			p.Extensions[key] = value
			log.Debugf("found extension %s -> %s", key, value)
		} else if len(node.Nodes) > 0 {
			parseRecursiveExtensions(node.Nodes, p, key+"/")
		}
	}
}

// heartRateFromExtensions picks the first key of heartRateKeys that matches a
// leaf, trying extension paths in sorted order.
func heartRateFromExtensions(ext map[string]string) int {
	keys := make([]string, 0, len(ext))
	for key := range ext {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, hrKey := range heartRateKeys {
		for _, key := range keys {
			leaf := strings.ToLower(key[strings.LastIndex(key, "/")+1:])
			if leaf != hrKey {
				continue
			}
			hr, err := strconv.ParseFloat(ext[key], 64)
			if err != nil {
				log.Warnf("invalid heart rate %q in extension %s", ext[key], key)
				continue
			}
			return int(hr)
		}
	}
	return 0
}

// Track returns the points of track i with all of its segments concatenated in order.
func (d *GPXData) Track(i int) ([]GPXPoint, error) {
	if i < 0 || i >= len(d.Tracks) {
		return nil, errors.Wrapf(ErrNoTrack, "track %d of %d in %s", i, len(d.Tracks), d.Name)
	}
	var points []GPXPoint
	for _, seg := range d.Tracks[i].Segments {
		points = append(points, seg.Points...)
	}
	if len(points) == 0 {
		return nil, errors.Wrapf(ErrEmptyTrack, "track %d in %s", i, d.Name)
	}
	return points, nil
}

// Info describes the number of tracks, segments and points in the file.
func (d *GPXData) Info() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Number of tracks: %d", len(d.Tracks))
	for i, t := range d.Tracks {
		fmt.Fprintf(&sb, "\nTrack %d:", i)
		if t.Name != "" {
			fmt.Fprintf(&sb, " %s", t.Name)
		}
		fmt.Fprintf(&sb, "\n  Number of segments: %d", len(t.Segments))
		for j, s := range t.Segments {
			fmt.Fprintf(&sb, "\n  Segment %d:", j)
			fmt.Fprintf(&sb, "\n    Number of points: %d", len(s.Points))
		}
	}
	return sb.String()
}

// MotionPoints converts track points for speed computation.
func MotionPoints(points []GPXPoint) []motion.Point {
	out := make([]motion.Point, len(points))
	for i, p := range points {
		out[i] = motion.Point{Lat: p.Latitude, Lon: p.Longitude, Time: p.Time}
	}
	return out
}

// InLocation returns a copy of points with timestamps expressed in loc.
func InLocation(points []GPXPoint, loc *time.Location) []GPXPoint {
	out := make([]GPXPoint, len(points))
	for i, p := range points {
		p.Time = p.Time.In(loc)
		out[i] = p
	}
	return out
}

// LoadLocation resolves an IANA zone name, falling back to UTC when it cannot be loaded.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warnf("cannot load timezone %q, using UTC: %v", name, err)
		return time.UTC
	}
	return loc
}
