package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// AppName names the config file, the env prefix and the data directory.
const AppName = "loanocr"

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	OCR        OCRConfig        `mapstructure:"ocr"`
	Upload     UploadConfig     `mapstructure:"upload"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Port    string `mapstructure:"port" validate:"required,numeric"`
	GinMode string `mapstructure:"gin_mode" validate:"oneof=debug release test"`
}

type OCRConfig struct {
	TessdataPrefix  string        `mapstructure:"tessdata_prefix"`
	Language        string        `mapstructure:"language" validate:"required"`
	PaddleURL       string        `mapstructure:"paddle_url" validate:"omitempty,url"`
	PaddleTimeout   time.Duration `mapstructure:"paddle_timeout" validate:"gt=0"`
	PageConcurrency int           `mapstructure:"page_concurrency" validate:"min=1,max=32"`
	// MinTextLength is the embedded-text length below which a PDF is
	// treated as scanned and sent through OCR.
	MinTextLength int `mapstructure:"min_text_length" validate:"min=0"`
}

type UploadConfig struct {
	MaxFileSize        int64 `mapstructure:"max_file_size" validate:"gt=0"`
	MaxMultipartMemory int64 `mapstructure:"max_multipart_memory" validate:"gt=0"`
}

type StorageConfig struct {
	// DSN is a SQLite file path or a postgres:// URL.
	DSN string `mapstructure:"dsn" validate:"required"`
}

type ExtractionConfig struct {
	ConfidenceMode string `mapstructure:"confidence_mode" validate:"oneof=mean max shared"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// DefaultDatabasePath is the SQLite file used when no DSN is configured.
func DefaultDatabasePath() string {
	return filepath.Join(xdg.DataHome, AppName, "results.db")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.gin_mode", "release")

	v.SetDefault("ocr.tessdata_prefix", "/usr/share/tesseract-ocr/5/tessdata/")
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.paddle_url", "")
	v.SetDefault("ocr.paddle_timeout", 30*time.Second)
	v.SetDefault("ocr.page_concurrency", 4)
	v.SetDefault("ocr.min_text_length", 20)

	v.SetDefault("upload.max_file_size", 10*1024*1024)        // 10 MB
	v.SetDefault("upload.max_multipart_memory", 32*1024*1024) // 32 MB

	v.SetDefault("storage.dsn", DefaultDatabasePath())
	v.SetDefault("extraction.confidence_mode", "mean")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// LoadConfig reads defaults, then the YAML file at path (or ./loanocr.yaml
// when path is empty and the file exists), then environment variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Variable names used by earlier deployments.
	_ = v.BindEnv("server.port", "LOANOCR_SERVER_PORT", "SERVER_PORT")
	_ = v.BindEnv("ocr.tessdata_prefix", "LOANOCR_OCR_TESSDATA_PREFIX", "TESSDATA_PREFIX")
	_ = v.BindEnv("ocr.paddle_url", "LOANOCR_OCR_PADDLE_URL", "PADDLEOCR_API_URL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
