package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "imperial", cfg.Units)
	assert.Equal(t, 0, cfg.Track)
	assert.Equal(t, "butterworth", cfg.Smoothing.Method)
	assert.Equal(t, 6, cfg.Smoothing.Order)
	assert.Equal(t, 0.04, cfg.Smoothing.Cutoff)
	assert.Equal(t, 1.0, cfg.Smoothing.SampleRate)
	assert.Equal(t, 5, cfg.Smoothing.Window)
	assert.Equal(t, "speed", cfg.Output.TrackMapMetric)
	assert.Empty(t, cfg.Output.SpeedFile)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gpxspeed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
units: metric
timezone: America/Detroit
track: 1
smoothing:
  method: moving_average
  window: 60
output:
  speed_file: "{name}-speed.txt"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "metric", cfg.Units)
	assert.Equal(t, "America/Detroit", cfg.Timezone)
	assert.Equal(t, 1, cfg.Track)
	assert.Equal(t, "moving_average", cfg.Smoothing.Method)
	assert.Equal(t, 60, cfg.Smoothing.Window)
	assert.Equal(t, "{name}-speed.txt", cfg.Output.SpeedFile)
	// untouched keys keep their defaults
	assert.Equal(t, 6, cfg.Smoothing.Order)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GPXSPEED_UNITS", "si")
	t.Setenv("GPXSPEED_SMOOTHING_METHOD", "none")
	t.Setenv("GPXSPEED_OUTPUT_DIR", "/tmp/out")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "si", cfg.Units)
	assert.Equal(t, "none", cfg.Smoothing.Method)
	assert.Equal(t, "/tmp/out", cfg.Output.Dir)
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]string{
		"units":     "GPXSPEED_UNITS",
		"smoothing": "GPXSPEED_SMOOTHING_METHOD",
		"log level": "GPXSPEED_LOG_LEVEL",
		"metric":    "GPXSPEED_OUTPUT_TRACKMAP_METRIC",
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(env, "bogus")
			_, err := Load("")
			assert.Error(t, err)
		})
	}

	t.Run("cutoff above nyquist", func(t *testing.T) {
		t.Setenv("GPXSPEED_SMOOTHING_CUTOFF", "0.7")
		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}

func TestLoaderCurrent(t *testing.T) {
	l := NewLoader("")
	assert.Nil(t, l.Current())

	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Same(t, cfg, l.Current())

	assert.Error(t, l.Watch(func(*Config) {}))
}

// replaceFile swaps in new content with a rename, so a watcher never sees a
// truncated file.
func replaceFile(t *testing.T, path, content string) {
	t.Helper()
	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte(content), 0o644))
	require.NoError(t, os.Rename(tmp, path))
}

func TestLoaderWatch(t *testing.T) {
	hook := logtest.NewGlobal()
	path := filepath.Join(t.TempDir(), "gpxspeed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("units: imperial\n"), 0o644))

	l := NewLoader(path)
	_, err := l.Load()
	require.NoError(t, err)

	var mu sync.Mutex
	var seen []string
	require.NoError(t, l.Watch(func(cfg *Config) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, cfg.Units)
	}))

	replaceFile(t, path, "units: metric\n")
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0 && seen[len(seen)-1] == "metric"
	}, 5*time.Second, 20*time.Millisecond)
	require.NotNil(t, l.Current())
	assert.Equal(t, "metric", l.Current().Units)

	replaceFile(t, path, "units: leagues\n")
	assert.Eventually(t, func() bool {
		for _, e := range hook.AllEntries() {
			if strings.Contains(e.Message, "ignoring config change") {
				return true
			}
		}
		return false
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, "metric", l.Current().Units)

	mu.Lock()
	defer mu.Unlock()
	assert.NotContains(t, seen, "leagues")
}
