package cvextract

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Thresholds holds the empirically tuned acceptance and bucket cutoffs.
// The defaults are the behavioural reference; deployments may tune them
// via the YAML config but should not expect miracles from doing so.
type Thresholds struct {
	// Structural is the minimum score for the standard and alternate decodes.
	Structural int `json:"structural" yaml:"structural"`

	// OCR is the minimum score for optical recognition results. Lower than
	// Structural because OCR output is noisier but still valuable when
	// structural extraction fails.
	OCR int `json:"ocr" yaml:"ocr"`

	// Manual is the minimum score for the pattern scraper, the most
	// permissive strategy. It should only win when nothing else qualifies.
	Manual int `json:"manual" yaml:"manual"`

	// BucketHigh and BucketMedium are the score cutoffs for quality buckets.
	BucketHigh   int `json:"bucket_high" yaml:"bucket_high"`
	BucketMedium int `json:"bucket_medium" yaml:"bucket_medium"`
}

// OCRConfig configures the external OCR service. With an empty APIKey the
// optical strategy is skipped entirely — absence of OCR is not an error.
type OCRConfig struct {
	// Endpoint is the OCR API URL (default: https://api.ocr.space/parse/image).
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// APIKey authenticates against the OCR service. Empty disables OCR.
	APIKey string `json:"api_key" yaml:"api_key"`

	// Timeout bounds the network call so extraction never blocks on a
	// slow OCR backend (default: 10s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// Engine selects the recognition engine (default: 2, document-optimized).
	Engine int `json:"engine" yaml:"engine"`
}

// UnmarshalYAML accepts the timeout as a duration string ("5s", "1m30s"),
// which yaml.v3 does not decode into time.Duration on its own.
func (o *OCRConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Endpoint string `yaml:"endpoint"`
		APIKey   string `yaml:"api_key"`
		Timeout  string `yaml:"timeout"`
		Engine   int    `yaml:"engine"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	o.Endpoint = raw.Endpoint
	o.APIKey = raw.APIKey
	o.Engine = raw.Engine
	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return fmt.Errorf("ocr timeout: %w", err)
		}
		o.Timeout = d
	}
	return nil
}

// Config configures the extraction engine.
type Config struct {
	Thresholds Thresholds `json:"thresholds" yaml:"thresholds"`

	OCR OCRConfig `json:"ocr" yaml:"ocr"`

	// OCRWeight multiplies the combined score of OCR candidates during
	// selection, reflecting their typically higher per-character fidelity
	// on image-based documents (default: 1.2).
	OCRWeight float64 `json:"ocr_weight" yaml:"ocr_weight"`

	// MaxDocumentSize is the maximum document size to process (default: 20 MB).
	MaxDocumentSize int64 `json:"max_document_size" yaml:"max_document_size"`

	// Logger for debug/error messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

// DefaultThresholds returns the reference threshold set.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Structural:   40,
		OCR:          30,
		Manual:       25,
		BucketHigh:   70,
		BucketMedium: 40,
	}
}

func (c *Config) defaults() {
	if c.Thresholds.Structural <= 0 {
		c.Thresholds.Structural = 40
	}
	if c.Thresholds.OCR <= 0 {
		c.Thresholds.OCR = 30
	}
	if c.Thresholds.Manual <= 0 {
		c.Thresholds.Manual = 25
	}
	if c.Thresholds.BucketHigh <= 0 {
		c.Thresholds.BucketHigh = 70
	}
	if c.Thresholds.BucketMedium <= 0 {
		c.Thresholds.BucketMedium = 40
	}
	if c.OCR.Endpoint == "" {
		c.OCR.Endpoint = "https://api.ocr.space/parse/image"
	}
	if c.OCR.Timeout <= 0 {
		c.OCR.Timeout = 10 * time.Second
	}
	if c.OCR.Engine <= 0 {
		c.OCR.Engine = 2
	}
	if c.OCRWeight <= 0 {
		c.OCRWeight = 1.2
	}
	if c.MaxDocumentSize <= 0 {
		c.MaxDocumentSize = 20 * 1024 * 1024
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// LoadConfig reads a YAML config file and applies defaults for anything
// left unset.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.defaults()
	return cfg, nil
}
