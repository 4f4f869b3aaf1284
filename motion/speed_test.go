package motion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2021, 12, 4, 12, 1, 33, 0, time.UTC)

func TestHaversine(t *testing.T) {
	t.Run("one degree along the equator", func(t *testing.T) {
		d := Haversine(Point{Lat: 0, Lon: 0}, Point{Lat: 0, Lon: 1})
		assert.InDelta(t, 111195.08, d, 1)
		assert.InDelta(t, 69.09, Imperial.Distance(d), 0.01)
	})

	t.Run("symmetric", func(t *testing.T) {
		pairs := [][2]Point{
			{{Lat: 42.3314, Lon: -83.0458}, {Lat: 42.3601, Lon: -71.0589}},
			{{Lat: -6.2, Lon: 106.816}, {Lat: -6.9175, Lon: 107.6191}},
			{{Lat: 51.5007, Lon: -0.1246}, {Lat: 40.6892, Lon: -74.0445}},
		}
		for _, p := range pairs {
			assert.InDelta(t, Haversine(p[0], p[1]), Haversine(p[1], p[0]), 1e-6)
		}
	})

	t.Run("same point", func(t *testing.T) {
		p := Point{Lat: 42.3314, Lon: -83.0458}
		assert.Zero(t, Haversine(p, p))
	})
}

func TestCompute(t *testing.T) {
	t.Run("one degree in one hour", func(t *testing.T) {
		res, err := Compute([]Point{
			{Lat: 0, Lon: 0, Time: t0},
			{Lat: 0, Lon: 1, Time: t0.Add(time.Hour)},
		}, Imperial)
		require.NoError(t, err)
		require.Len(t, res.Speed, 2)

		assert.Zero(t, res.Speed[0])
		assert.InDelta(t, 69.09, res.Speed[1], 0.01)
		assert.InDelta(t, 69.09, res.TotalDistance, 0.01)
		assert.Equal(t, time.Hour, res.TotalTime)

		avg, ok := res.AverageSpeed()
		require.True(t, ok)
		assert.InDelta(t, 69.09, avg, 0.01)
	})

	t.Run("total is the sum of steps", func(t *testing.T) {
		points := []Point{
			{Lat: 42.3314, Lon: -83.0458, Time: t0},
			{Lat: 42.3320, Lon: -83.0450, Time: t0.Add(5 * time.Second)},
			{Lat: 42.3331, Lon: -83.0441, Time: t0.Add(11 * time.Second)},
			{Lat: 42.3339, Lon: -83.0430, Time: t0.Add(20 * time.Second)},
		}
		res, err := Compute(points, Metric)
		require.NoError(t, err)

		var sum float64
		for _, d := range res.Distance {
			sum += d
		}
		assert.InDelta(t, sum, res.TotalDistance, 1e-12)
		assert.Equal(t, 20*time.Second, res.TotalTime)
		assert.Zero(t, res.Distance[0])
	})

	t.Run("duplicate timestamps give zero speed", func(t *testing.T) {
		res, err := Compute([]Point{
			{Lat: 0, Lon: 0, Time: t0},
			{Lat: 0, Lon: 0.001, Time: t0},
			{Lat: 0, Lon: 0.002, Time: t0.Add(time.Second)},
		}, SI)
		require.NoError(t, err)
		assert.Zero(t, res.Speed[1])
		assert.Greater(t, res.Distance[1], 0.0)
		assert.InDelta(t, res.Distance[2], res.Speed[2], 1e-9)
	})

	t.Run("single point", func(t *testing.T) {
		res, err := Compute([]Point{{Lat: 1, Lon: 2, Time: t0}}, Imperial)
		require.NoError(t, err)
		assert.Equal(t, []float64{0}, res.Speed)
		assert.Zero(t, res.TotalDistance)

		_, ok := res.AverageSpeed()
		assert.False(t, ok)
	})

	t.Run("no points", func(t *testing.T) {
		_, err := Compute(nil, Imperial)
		assert.ErrorIs(t, err, ErrNoPoints)
	})
}

func TestMaxSpeed(t *testing.T) {
	res := Result{Speed: []float64{0, 3.5, 7.25, 1}}
	assert.Equal(t, 7.25, res.MaxSpeed())
}

func TestParseUnits(t *testing.T) {
	tests := []struct {
		in   string
		want Units
	}{
		{"", Imperial},
		{"imperial", Imperial},
		{"Metric", Metric},
		{" si ", SI},
	}
	for _, tt := range tests {
		got, err := ParseUnits(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want.Name, got.Name)
	}

	_, err := ParseUnits("furlongs")
	assert.Error(t, err)
}

func TestUnitsSpeed(t *testing.T) {
	assert.InDelta(t, 3.6, Metric.Speed(1, 1), 1e-12)
	assert.InDelta(t, 1, SI.Speed(1, 1), 1e-12)
	assert.Zero(t, SI.Speed(10, 0))
}
