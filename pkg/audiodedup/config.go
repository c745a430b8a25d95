package audiodedup

import (
	"github.com/ReshikaSuresh433/audio-copyright-detection/pkg/audiodedup/fingerprint"
	"github.com/ReshikaSuresh433/audio-copyright-detection/pkg/audiodedup/similarity"
)

type Config struct {
	DBPath     string
	TempDir    string
	SampleRate int

	Fingerprint fingerprint.Config
	Similarity  similarity.Config

	Logger       Logger
	Store        FingerprintStore
	ContentStore ContentStore
	Registrar    Registrar
}

type Option func(*Config)

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

func WithTempDir(dir string) Option {
	return func(c *Config) {
		c.TempDir = dir
	}
}

func WithSampleRate(rate int) Option {
	return func(c *Config) {
		c.SampleRate = rate
	}
}

func WithFingerprintConfig(cfg fingerprint.Config) Option {
	return func(c *Config) {
		c.Fingerprint = cfg
	}
}

// WithMatchThreshold sets the score at which the detector flags a duplicate.
func WithMatchThreshold(t float64) Option {
	return func(c *Config) {
		c.Similarity.MatchThreshold = t
	}
}

// WithRejectThreshold sets the stricter score at which submissions are refused.
func WithRejectThreshold(t float64) Option {
	return func(c *Config) {
		c.Similarity.RejectThreshold = t
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStore(store FingerprintStore) Option {
	return func(c *Config) {
		c.Store = store
	}
}

func WithContentStore(cs ContentStore) Option {
	return func(c *Config) {
		c.ContentStore = cs
	}
}

func WithRegistrar(r Registrar) Option {
	return func(c *Config) {
		c.Registrar = r
	}
}

func defaultConfig() *Config {
	return &Config{
		DBPath:      "audioregistry.sqlite3",
		TempDir:     "/tmp",
		SampleRate:  22050,
		Fingerprint: fingerprint.DefaultConfig(),
		Similarity:  similarity.DefaultConfig(),
	}
}
