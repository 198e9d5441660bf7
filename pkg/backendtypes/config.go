package backendtypes

import (
	"fmt"
	"time"
)

// BackendConfig defines the configuration for the backend server
type BackendConfig struct {
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Auth    AuthConfig    `yaml:"auth" mapstructure:"auth"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	CORS    CORSConfig    `yaml:"cors" mapstructure:"cors"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" mapstructure:"host"`
	Port            int           `yaml:"port" mapstructure:"port"`
	Version         string        `yaml:"version" mapstructure:"version"`
	ReadTimeout     time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// Addr returns host:port, defaulting the port to 8080.
func (s ServerConfig) Addr() string {
	port := s.Port
	if port == 0 {
		port = DefaultPort
	}
	return fmt.Sprintf("%s:%d", s.Host, port)
}

type AuthConfig struct {
	Enabled     bool     `yaml:"enabled" mapstructure:"enabled"`
	APIPassword string   `yaml:"api_password" mapstructure:"api_password"`
	APIKeyEnv   string   `yaml:"api_key_env" mapstructure:"api_key_env"`
	PublicPaths []string `yaml:"public_paths" mapstructure:"public_paths"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // "json" or "text"
}

type CORSConfig struct {
	Enabled        bool     `yaml:"enabled" mapstructure:"enabled"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers" mapstructure:"allowed_headers"`
}

const (
	DefaultPort            = 8080
	DefaultShutdownTimeout = 30 * time.Second
)
