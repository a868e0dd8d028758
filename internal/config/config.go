package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           int           `yaml:"port"`
		ReadTimeout    time.Duration `yaml:"readTimeout"`
		WriteTimeout   time.Duration `yaml:"writeTimeout"`
		IdleTimeout    time.Duration `yaml:"idleTimeout"`
		MaxUploadBytes int64         `yaml:"maxUploadBytes"`
	} `yaml:"server"`

	OpenAI struct {
		APIKey    string `yaml:"apiKey"`
		Model     string `yaml:"model"`
		MaxTokens int    `yaml:"maxTokens"`
		BaseURL   string `yaml:"baseURL"`
	} `yaml:"openai"`

	Reference struct {
		Path string `yaml:"path"`
	} `yaml:"reference"`

	Drive struct {
		DownloadURL string        `yaml:"downloadURL"`
		Timeout     time.Duration `yaml:"timeout"`
	} `yaml:"drive"`

	Imaging struct {
		PDFDPI    float64 `yaml:"pdfDPI"`
		MaxPixels int64   `yaml:"maxPixels"`
	} `yaml:"imaging"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	Auth struct {
		// client name -> key
		APIKeys map[string]string `yaml:"apiKeys"`
	} `yaml:"auth"`

	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rateLimit"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"cors"`

	Archive struct {
		Enabled bool   `yaml:"enabled"`
		Driver  string `yaml:"driver"` // mysql | postgres

		Database struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			Name     string `yaml:"name"`
			SSLMode  string `yaml:"sslMode"`
		} `yaml:"database"`

		Minio struct {
			Endpoint   string `yaml:"endpoint"`
			AccessKey  string `yaml:"accessKey"`
			SecretKey  string `yaml:"secretKey"`
			BucketName string `yaml:"bucketName"`
			Region     string `yaml:"region"`
			UseSSL     bool   `yaml:"useSSL"`
		} `yaml:"minio"`
	} `yaml:"archive"`
}

// Default isi nilai bawaan sebelum file dan env dibaca.
func Default() *Config {
	var c Config
	c.Server.Port = 5000
	c.Server.ReadTimeout = 30 * time.Second
	c.Server.WriteTimeout = 120 * time.Second
	c.Server.IdleTimeout = 60 * time.Second
	c.Server.MaxUploadBytes = 20 << 20
	c.OpenAI.Model = "gpt-4o"
	c.OpenAI.MaxTokens = 300
	c.Reference.Path = "reference.png"
	c.Drive.DownloadURL = "https://drive.google.com/uc?export=download&id=%s"
	c.Imaging.PDFDPI = 72
	c.Imaging.MaxPixels = 178956970
	c.Log.Level = "info"
	c.Log.Format = "text"
	c.CORS.AllowedOrigins = []string{"*"}
	c.Archive.Driver = "mysql"
	return &c
}

// Load baca .env (kalau ada), file config, lalu override dari env.
// File config yang tidak ada berarti pakai default.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns CONFIG_PATH or config.yaml.
func Path() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "config.yaml"
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.OpenAI.Model = v
	}
	if v := os.Getenv("REFERENCE_IMAGE_PATH"); v != "" {
		c.Reference.Path = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	return nil
}

func (c *Config) Validate() error {
	if c.OpenAI.APIKey == "" {
		return errors.New("openai api key is required (OPENAI_API_KEY)")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return errors.New("server.maxUploadBytes must be positive")
	}
	if c.Archive.Enabled {
		switch c.Archive.Driver {
		case "mysql", "postgres":
		default:
			return fmt.Errorf("unsupported archive driver %q", c.Archive.Driver)
		}
		if c.Archive.Minio.Endpoint == "" || c.Archive.Minio.BucketName == "" {
			return errors.New("archive.minio endpoint and bucketName are required")
		}
	}
	return nil
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	d := c.Archive.Database
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Name,
	)
}

// Helper untuk build DSN Postgres
func (c *Config) PostgresDSN() string {
	d := c.Archive.Database
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, sslMode)
}
