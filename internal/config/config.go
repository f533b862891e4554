package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Service is a catalog entry guests add to the cart.
type Service struct {
	ID          int    `yaml:"id"`
	Title       string `yaml:"title"`
	Price       int    `yaml:"price"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
}

type Config struct {
	Venue struct {
		Name          string `yaml:"name"`
		TelegramAdmin string `yaml:"telegram_admin"`
		Currency      string `yaml:"currency"`
	} `yaml:"venue"`

	Storage struct {
		Backend string `yaml:"backend"` // file, sqlite, redis, memory
		Dir     string `yaml:"dir"`
		Path    string `yaml:"path"` // sqlite file
	} `yaml:"storage"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Telegram struct {
		BotToken    string `yaml:"bot_token"`
		AdminChatID int64  `yaml:"admin_chat_id"`
	} `yaml:"telegram"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Booking struct {
		Dates []string `yaml:"dates"`
		Times []string `yaml:"times"`
	} `yaml:"booking"`

	Services []Service `yaml:"services"`

	HallConfigPath string `yaml:"hall_config_path"`
}

// Load reads the YAML config at path, expanding ${ENV_VAR} placeholders.
func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a config without touching the filesystem; tests and the
// CLI fall back to it when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Venue.Name == "" {
		c.Venue.Name = "Smoky Loft"
	}
	if c.Venue.Currency == "" {
		c.Venue.Currency = "₽"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "file"
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = "data"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "data/smokyloft.db"
	}
	if len(c.Booking.Dates) == 0 {
		c.Booking.Dates = []string{"Сегодня", "Завтра", "Послезавтра"}
	}
	if len(c.Booking.Times) == 0 {
		c.Booking.Times = []string{"14:00", "16:00", "18:00", "20:00", "22:00", "00:00"}
	}
	if c.HallConfigPath == "" {
		c.HallConfigPath = "configs/hall.yaml"
	}
}

// ValidDate reports whether the label is one of the offered date labels.
func (c *Config) ValidDate(date string) bool {
	for _, d := range c.Booking.Dates {
		if d == date {
			return true
		}
	}
	return false
}

// ValidTime reports whether the slot is one of the offered time slots.
func (c *Config) ValidTime(timeSlot string) bool {
	for _, t := range c.Booking.Times {
		if t == timeSlot {
			return true
		}
	}
	return false
}

// ServiceByID returns the catalog entry or nil.
func (c *Config) ServiceByID(id int) *Service {
	for i := range c.Services {
		if c.Services[i].ID == id {
			return &c.Services[i]
		}
	}
	return nil
}

// String returns a short summary for startup logs.
func (c *Config) String() string {
	return fmt.Sprintf("Config: venue=%q storage=%s services=%d", c.Venue.Name, c.Storage.Backend, len(c.Services))
}
