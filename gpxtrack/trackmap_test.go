package gpxtrack

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mapPoints = []GPXPoint{
	{Latitude: 1, Longitude: 2, HeartRate: 0},
	{Latitude: 1.1, Longitude: 2.1, HeartRate: 90},
	{Latitude: 1.2, Longitude: 2.2, HeartRate: 0},
	{Latitude: 1.3, Longitude: 2.3, HeartRate: 97},
}

func TestTrackMapData(t *testing.T) {
	t.Run("speed", func(t *testing.T) {
		data, err := TrackMapData(mapPoints, []float64{0, 3, 4, 5}, MetricSpeed)
		require.NoError(t, err)
		assert.Equal(t, [3]float64{1.2, 2.2, 4}, data[2])
	})

	t.Run("heart rate carries forward", func(t *testing.T) {
		data, err := TrackMapData(mapPoints, nil, MetricHeartRate)
		require.NoError(t, err)
		var got []float64
		for _, d := range data {
			got = append(got, d[2])
		}
		assert.Equal(t, []float64{0, 90, 90, 97}, got)
	})

	t.Run("misaligned speed", func(t *testing.T) {
		_, err := TrackMapData(mapPoints, []float64{0}, MetricSpeed)
		assert.Error(t, err)
	})

	t.Run("unknown metric", func(t *testing.T) {
		_, err := TrackMapData(mapPoints, nil, "power")
		assert.Error(t, err)
	})
}

func TestGenerateTrackMap(t *testing.T) {
	out := filepath.Join(t.TempDir(), "map.json")
	require.NoError(t, GenerateTrackMap(mapPoints, []float64{0, 3, 4, 5}, MetricSpeed, out))

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	var got [][3]float64
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Len(t, got, 4)
	assert.Equal(t, 5.0, got[3][2])

	err = GenerateTrackMap(mapPoints, []float64{0, 3, 4, 5}, MetricSpeed, filepath.Join(t.TempDir(), "missing", "map.json"))
	assert.Error(t, err)
}
