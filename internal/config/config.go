package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL     = "https://api.mcd.com/v3"
	DefaultGeocoderURL = "http://geoservices.tamu.edu/Services/Geocode/WebService/GeocoderWebServiceHttpNonParsed_V04_01.aspx"
)

// Config holds all configuration for the ordering client
type Config struct {
	API      APIConfig      `yaml:"api"`
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
}

// APIConfig holds the identifiers the upstream API expects on every call
type APIConfig struct {
	Key                string        `yaml:"key"`
	Market             string        `yaml:"market"`
	Application        string        `yaml:"application"`
	Language           string        `yaml:"language"`
	Platform           string        `yaml:"platform"`
	Version            string        `yaml:"version"`
	Nonce              string        `yaml:"nonce"`
	Hash               string        `yaml:"hash"`
	VerifyCertificates bool          `yaml:"verify_certificates"`
	BaseURL            string        `yaml:"base_url"`
	GeocoderURL        string        `yaml:"geocoder_url"`
	Timeout            time.Duration `yaml:"timeout_seconds"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// RabbitMQConfig holds RabbitMQ connection configuration
type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// DefaultAPIConfig returns the identifiers the official iPhone app sends.
func DefaultAPIConfig() APIConfig {
	return APIConfig{
		Market:             "US",
		Application:        "MOT",
		Language:           "en-US",
		Platform:           "iphone",
		Version:            "0.0.1.I",
		Nonce:              "happybaby",
		Hash:               "MCDONALDS",
		VerifyCertificates: true,
		BaseURL:            DefaultBaseURL,
		GeocoderURL:        DefaultGeocoderURL,
		Timeout:            30 * time.Second,
	}
}

// Default returns a configuration with API defaults and no database or broker.
func Default() *Config {
	return &Config{API: DefaultAPIConfig()}
}

// Load reads configuration from a YAML file
func Load(filename string) (*Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	config := Default()
	scanner := bufio.NewScanner(file)

	var currentSection string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasSuffix(line, ":") && !strings.Contains(line, " ") {
			currentSection = strings.TrimSuffix(line, ":")
			continue
		}

		if strings.Contains(line, ":") {
			parts := strings.SplitN(line, ":", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if err := config.setValue(currentSection, key, value); err != nil {
				return nil, fmt.Errorf("failed to set config value %s.%s: %w", currentSection, key, err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return config, nil
}

// setValue sets a configuration value based on section and key
func (c *Config) setValue(section, key, value string) error {
	switch section {
	case "api":
		return c.setAPIValue(key, value)
	case "database":
		return c.setDatabaseValue(key, value)
	case "rabbitmq":
		return c.setRabbitMQValue(key, value)
	default:
		return fmt.Errorf("unknown section: %s", section)
	}
}

func (c *Config) setAPIValue(key, value string) error {
	switch key {
	case "key":
		c.API.Key = value
	case "market":
		c.API.Market = value
	case "application":
		c.API.Application = value
	case "language":
		c.API.Language = value
	case "platform":
		c.API.Platform = value
	case "version":
		c.API.Version = value
	case "nonce":
		c.API.Nonce = value
	case "hash":
		c.API.Hash = value
	case "verify_certificates":
		verify, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid verify_certificates value: %w", err)
		}
		c.API.VerifyCertificates = verify
	case "base_url":
		c.API.BaseURL = value
	case "geocoder_url":
		c.API.GeocoderURL = value
	case "timeout_seconds":
		seconds, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid timeout_seconds value: %w", err)
		}
		c.API.Timeout = time.Duration(seconds) * time.Second
	default:
		return fmt.Errorf("unknown api key: %s", key)
	}
	return nil
}

// setDatabaseValue sets database configuration values
func (c *Config) setDatabaseValue(key, value string) error {
	switch key {
	case "host":
		c.Database.Host = value
	case "port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid port value: %w", err)
		}
		c.Database.Port = port
	case "user":
		c.Database.User = value
	case "password":
		c.Database.Password = value
	case "database":
		c.Database.Database = value
	default:
		return fmt.Errorf("unknown database key: %s", key)
	}
	return nil
}

// setRabbitMQValue sets RabbitMQ configuration values
func (c *Config) setRabbitMQValue(key, value string) error {
	switch key {
	case "host":
		c.RabbitMQ.Host = value
	case "port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid port value: %w", err)
		}
		c.RabbitMQ.Port = port
	case "user":
		c.RabbitMQ.User = value
	case "password":
		c.RabbitMQ.Password = value
	default:
		return fmt.Errorf("unknown rabbitmq key: %s", key)
	}
	return nil
}

// JournalEnabled reports whether completed pickups should be written to Postgres.
func (c *Config) JournalEnabled() bool {
	return c.Database.Host != ""
}

// EventsEnabled reports whether pickup events should be published to RabbitMQ.
func (c *Config) EventsEnabled() bool {
	return c.RabbitMQ.Host != ""
}

// DatabaseURL returns a PostgreSQL connection URL
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Database)
}

// RabbitMQURL returns an AMQP connection URL
func (c *Config) RabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/",
		c.RabbitMQ.User, c.RabbitMQ.Password, c.RabbitMQ.Host, c.RabbitMQ.Port)
}
