package config

import (
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/jibb34/gpxspeed/motion"
	"github.com/jibb34/gpxspeed/smooth"
)

var log = logrus.WithField("pkg", "config")

// EnvPrefix is prepended to every environment override, e.g. GPXSPEED_SMOOTHING_METHOD.
const EnvPrefix = "GPXSPEED"

// SmoothingConfig selects and parameterizes the speed smoother.
type SmoothingConfig struct {
	Method     string  `mapstructure:"method"`
	Window     int     `mapstructure:"window"`
	Order      int     `mapstructure:"order"`
	Cutoff     float64 `mapstructure:"cutoff"`
	SampleRate float64 `mapstructure:"sample_rate"`
	ZeroPhase  bool    `mapstructure:"zero_phase"`
}

// OutputConfig names the optional export files. Relative names are placed under Dir
// and may contain {name}, replaced by the input file's base name without extension.
type OutputConfig struct {
	Dir            string `mapstructure:"dir"`
	SpeedFile      string `mapstructure:"speed_file"`
	SamplesFile    string `mapstructure:"samples_file"`
	TrackMapFile   string `mapstructure:"trackmap_file"`
	TrackMapMetric string `mapstructure:"trackmap_metric"`
	SpectrumFile   string `mapstructure:"spectrum_file"`
}

// Config holds the entire config
type Config struct {
	LogLevel  string          `mapstructure:"log_level"`
	Units     string          `mapstructure:"units"`
	Timezone  string          `mapstructure:"timezone"`
	Track     int             `mapstructure:"track"`
	Smoothing SmoothingConfig `mapstructure:"smoothing"`
	Output    OutputConfig    `mapstructure:"output"`
}

// SmoothParams maps the smoothing section onto smoother parameters.
func (c *Config) SmoothParams() smooth.Params {
	return smooth.Params{
		Method:     c.Smoothing.Method,
		Window:     c.Smoothing.Window,
		Order:      c.Smoothing.Order,
		Cutoff:     c.Smoothing.Cutoff,
		SampleRate: c.Smoothing.SampleRate,
		ZeroPhase:  c.Smoothing.ZeroPhase,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("units", "imperial")
	v.SetDefault("timezone", "")
	v.SetDefault("track", 0)
	v.SetDefault("smoothing.method", smooth.MethodButterworth)
	v.SetDefault("smoothing.window", 5)
	v.SetDefault("smoothing.order", 6)
	v.SetDefault("smoothing.cutoff", 0.04)
	v.SetDefault("smoothing.sample_rate", 1.0)
	v.SetDefault("smoothing.zero_phase", false)
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.speed_file", "")
	v.SetDefault("output.samples_file", "")
	v.SetDefault("output.trackmap_file", "")
	v.SetDefault("output.trackmap_metric", "speed")
	v.SetDefault("output.spectrum_file", "")
}

// Loader reads the configuration from defaults, an optional YAML file and the environment.
type Loader struct {
	v    *viper.Viper
	path string

	mu  sync.RWMutex
	cfg *Config
}

func NewLoader(path string) *Loader {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
	}
	return &Loader{v: v, path: path}
}

// Load initializes and loads the configuration
func Load(path string) (*Config, error) {
	return NewLoader(path).Load()
}

func (l *Loader) Load() (*Config, error) {
	if l.path != "" {
		if err := l.v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "cannot read config %s", l.path)
		}
	}
	cfg, err := l.unmarshal()
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.cfg = cfg
	l.mu.Unlock()
	return cfg, nil
}

func (l *Loader) unmarshal() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "cannot decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Current returns the last successfully loaded configuration.
func (l *Loader) Current() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

// Watch calls onChange with every valid configuration written to the config file.
// Invalid edits are logged and the previous configuration stays current.
func (l *Loader) Watch(onChange func(*Config)) error {
	if l.path == "" {
		return errors.New("no config file to watch")
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := l.unmarshal()
		if err != nil {
			log.Errorf("ignoring config change in %s: %v", e.Name, err)
			return
		}
		l.mu.Lock()
		l.cfg = cfg
		l.mu.Unlock()
		log.Infof("reloaded config %s", e.Name)
		onChange(cfg)
	})
	l.v.WatchConfig()
	return nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Track < 0 {
		return errors.Errorf("track %d must not be negative", c.Track)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrapf(err, "invalid log_level")
	}
	if _, err := motion.ParseUnits(c.Units); err != nil {
		return err
	}
	switch c.Output.TrackMapMetric {
	case "speed", "heartrate":
	default:
		return errors.Errorf("invalid output.trackmap_metric %q", c.Output.TrackMapMetric)
	}
	if _, err := smooth.New(c.SmoothParams()); err != nil {
		return err
	}
	return nil
}
