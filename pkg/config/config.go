package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Storage StorageConfig `yaml:"storage"`
	API     APIConfig     `yaml:"api"`
	Source  SourceConfig  `yaml:"source"`
	Search  SearchConfig  `yaml:"search"`
	Ingest  IngestConfig  `yaml:"ingest"`
	S3      S3Config      `yaml:"s3"`
}

// StorageConfig locates the staged archive, extracted CSVs and the database.
type StorageConfig struct {
	Path     string `yaml:"path"`
	Database string `yaml:"database"`
}

type APIConfig struct {
	Port string `yaml:"port"`
	Key  string `yaml:"key"`
}

// SourceConfig points at the postcode product download API. Downloads are
// only followed when the advertised URL starts with TrustedPrefix.
type SourceConfig struct {
	BaseURL       string `yaml:"base_url"`
	ProductPath   string `yaml:"product_path"`
	Key           string `yaml:"key"`
	TrustedPrefix string `yaml:"trusted_prefix"`
}

type SearchConfig struct {
	RadiusKm float64 `yaml:"radius_km"`
}

type IngestConfig struct {
	Workers   int `yaml:"workers"`
	BatchSize int `yaml:"batch_size"`
}

// S3Config enables mirroring the staged archive to an S3-compatible bucket.
type S3Config struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

func Load() *Config {
	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}

	config := defaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		log.Printf("Failed to read config file, using defaults: %v", err)
		applyEnv(config)
		return config
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		log.Printf("Failed to parse config file, using defaults: %v", err)
		config = defaultConfig()
	}

	applyEnv(config)
	return config
}

func applyEnv(config *Config) {
	if key := os.Getenv("OS_API_KEY"); key != "" {
		config.Source.Key = key
	}
	if key := os.Getenv("CODEPOINT_API_KEY"); key != "" {
		config.API.Key = key
	}
}

func defaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Path:     "./storage",
			Database: "./postcodes.db",
		},
		API: APIConfig{
			Port: "8080",
		},
		Source: SourceConfig{
			BaseURL:       "https://api.os.uk",
			ProductPath:   "/downloads/v1/products/CodePointOpen/downloads",
			TrustedPrefix: "https://api.os.uk",
		},
		Search: SearchConfig{
			RadiusKm: 0.5,
		},
		Ingest: IngestConfig{
			Workers:   4,
			BatchSize: 1000,
		},
	}
}
