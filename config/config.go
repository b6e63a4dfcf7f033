package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	OCR      OCRConfig
	Search   SearchConfig
	Pipeline PipelineConfig
	Pointer  PointerConfig
}

// OCRConfig selects and parameterizes the text recognition backend
type OCRConfig struct {
	Backend      string   `mapstructure:"backend"` // "tesseract" or "vision"
	VisionURL    string   `mapstructure:"vision_url"`
	VisionAPIKey string   `mapstructure:"vision_api_key"`
	Languages    []string `mapstructure:"languages"`
}

// SearchConfig holds web evidence retrieval configuration
type SearchConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Sites       []string      `mapstructure:"sites"`
	GeneralCap  int           `mapstructure:"general_cap"`
	PerSiteCap  int           `mapstructure:"per_site_cap"`
	MinInterval time.Duration `mapstructure:"min_interval"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
}

// PipelineConfig holds the orchestrator knobs
type PipelineConfig struct {
	AutoClick     bool          `mapstructure:"auto_click"`
	MinConfidence float64       `mapstructure:"min_confidence"`
	ScanInterval  time.Duration `mapstructure:"scan_interval"`
	DebugDir      string        `mapstructure:"debug_dir"`
}

// PointerConfig selects the click dispatcher
type PointerConfig struct {
	Dispatcher string `mapstructure:"dispatcher"` // "log" or "xdotool"
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Load .env file if present; existing environment variables win
	godotenv.Load()

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/quizpilot/")

	// Environment variable settings
	v.SetEnvPrefix("QUIZPILOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// OCR defaults
	v.SetDefault("ocr.backend", "tesseract")
	v.SetDefault("ocr.vision_url", "")
	v.SetDefault("ocr.vision_api_key", "")
	v.SetDefault("ocr.languages", []string{"eng"})

	// Search defaults
	v.SetDefault("search.base_url", "https://html.duckduckgo.com/html/")
	v.SetDefault("search.sites", []string{"en.wikipedia.org", "www.britannica.com", "quizlet.com", "brainly.com"})
	v.SetDefault("search.general_cap", 5)
	v.SetDefault("search.per_site_cap", 2)
	v.SetDefault("search.min_interval", "1s")
	v.SetDefault("search.http_timeout", "15s")

	// Pipeline defaults
	v.SetDefault("pipeline.auto_click", false)
	v.SetDefault("pipeline.min_confidence", 0.3)
	v.SetDefault("pipeline.scan_interval", "2s")
	v.SetDefault("pipeline.debug_dir", "")

	// Pointer defaults
	v.SetDefault("pointer.dispatcher", "log")
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.OCR.Backend {
	case "tesseract":
	case "vision":
		if config.OCR.VisionURL == "" {
			return fmt.Errorf("vision backend requires an endpoint (set QUIZPILOT_OCR_VISION_URL)")
		}
	default:
		return fmt.Errorf("OCR backend must be 'tesseract' or 'vision', got: %s", config.OCR.Backend)
	}

	if config.Pipeline.MinConfidence < 0 || config.Pipeline.MinConfidence > 1 {
		return fmt.Errorf("min confidence must be within [0, 1], got: %v", config.Pipeline.MinConfidence)
	}

	if config.Pipeline.ScanInterval <= 0 {
		return fmt.Errorf("scan interval must be positive, got: %v", config.Pipeline.ScanInterval)
	}

	if config.Search.GeneralCap <= 0 || config.Search.PerSiteCap <= 0 {
		return fmt.Errorf("search result caps must be positive")
	}

	if config.Search.MinInterval < 0 {
		return fmt.Errorf("search min interval must not be negative, got: %v", config.Search.MinInterval)
	}

	if config.Pointer.Dispatcher != "log" && config.Pointer.Dispatcher != "xdotool" {
		return fmt.Errorf("pointer dispatcher must be 'log' or 'xdotool', got: %s", config.Pointer.Dispatcher)
	}

	return nil
}
