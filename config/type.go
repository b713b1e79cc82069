package config

import (
	"fmt"
	"time"
)

type Config struct {
	Server      ServerConfig `json:"server"  yaml:"server"`
	Hosts       []HostConfig `json:"hosts"  yaml:"hosts"`
	Credentials []Credential `json:"credentials"  yaml:"credentials"`
	Scans       []ScanConfig `json:"scans"  yaml:"scans"`
	Cache       CacheConfig  `json:"cache"  yaml:"cache"`
	Store       StoreConfig  `json:"store"  yaml:"store"`
	CLI         CLIConfig    `json:"cli"  yaml:"cli"`
	Logger      LoggerConfig `json:"logger"  yaml:"logger"`
}

// ServerConfig describes the inspection server under test.
type ServerConfig struct {
	Hostname  string `json:"hostname"  yaml:"hostname"`
	Port      uint   `json:"port"  yaml:"port"`
	Https     bool   `json:"https"  yaml:"https"`
	SslVerify bool   `json:"sslVerify"  yaml:"sslVerify"`
	Username  string `json:"username"  yaml:"username"`
	Password  string `json:"password"  yaml:"password"`
}

type HostConfig struct {
	Name       string `json:"name"  yaml:"name"`
	Address    string `json:"address"  yaml:"address"`
	Port       uint   `json:"port"  yaml:"port"`
	Provider   string `json:"provider"  yaml:"provider"`
	Credential string `json:"credential"  yaml:"credential"`
}

type Credential struct {
	Name       string `json:"name"  yaml:"name"`
	Type       string `json:"type"  yaml:"type"`
	Username   string `json:"username"  yaml:"username"`
	Password   string `json:"password"  yaml:"password"`
	SSHKeyFile string `json:"sshKeyFile"  yaml:"sshKeyFile"`
}

type ScanConfig struct {
	Name       string            `json:"name"  yaml:"name"`
	Type       string            `json:"type"  yaml:"type"`
	Hosts      []string          `json:"hosts"  yaml:"hosts"`
	Credential string            `json:"credential"  yaml:"credential"`
	Options    map[string]string `json:"options"  yaml:"options"`
}

type CacheConfig struct {
	PollIntervalSeconds    uint `json:"pollIntervalSec"  yaml:"pollIntervalSec"`
	MaxPollIntervalSeconds uint `json:"maxPollIntervalSec"  yaml:"maxPollIntervalSec"`
	TimeoutMinutes         uint `json:"timeoutMin"  yaml:"timeoutMin"`
}

type StoreConfig struct {
	Enabled bool     `json:"enabled"  yaml:"enabled"`
	DB      DBConfig `json:"db"  yaml:"db"`
}

type DBConfig struct {
	Host     string `json:"host"  yaml:"host"`
	Port     uint   `json:"port"  yaml:"port"`
	Username string `json:"username"  yaml:"username"`
	Password string `json:"password"  yaml:"password"`
	Database string `json:"database"  yaml:"database"`
}

type CLIConfig struct {
	Binary         string `json:"binary"  yaml:"binary"`
	TimeoutSeconds uint   `json:"timeoutSec"  yaml:"timeoutSec"`
}

type LoggerConfig struct {
	Level  string `json:"level"  yaml:"level"`
	Output string `json:"output"  yaml:"output"`
	Path   string `json:"path"  yaml:"path"`
}

// BaseURL builds the server URL: scheme follows the https flag and the port
// is omitted when unset so the scheme default applies.
func (s ServerConfig) BaseURL() string {
	scheme := "http"
	if s.Https {
		scheme = "https"
	}
	if s.Port == 0 {
		return fmt.Sprintf("%s://%s", scheme, s.Hostname)
	}
	return fmt.Sprintf("%s://%s:%d", scheme, s.Hostname, s.Port)
}

func (c CacheConfig) PollInterval() time.Duration {
	if c.PollIntervalSeconds == 0 {
		return 5 * time.Second
	}
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

func (c CacheConfig) MaxPollInterval() time.Duration {
	if c.MaxPollIntervalSeconds == 0 {
		return time.Minute
	}
	return time.Duration(c.MaxPollIntervalSeconds) * time.Second
}

func (c CacheConfig) Timeout() time.Duration {
	if c.TimeoutMinutes == 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.TimeoutMinutes) * time.Minute
}
