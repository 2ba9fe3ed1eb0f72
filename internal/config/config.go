package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-yaml/yaml"

	"github.com/seabird-social/seabird/internal/domain"
)

type Config struct {
	Instance   Instance   `yaml:"instance"`
	Server     Server     `yaml:"server"`
	Federation Federation `yaml:"federation"`
	WebAuthn   WebAuthn   `yaml:"webauthn"`
}

type Instance struct {
	FQDN         string `yaml:"fqdn"`
	Name         string `yaml:"name"`
	Registration string `yaml:"registration"` // open, close
}

type Server struct {
	Listen        string `yaml:"listen"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisDB       int    `yaml:"redisDB"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

type Federation struct {
	FetchTimeoutSeconds int `yaml:"fetchTimeoutSeconds"`
}

// FetchTimeout is the per-request deadline for remote profile fetches.
func (f Federation) FetchTimeout() time.Duration {
	return time.Duration(f.FetchTimeoutSeconds) * time.Second
}

type WebAuthn struct {
	RPDisplayName string   `yaml:"rpDisplayName"`
	RPID          string   `yaml:"rpID"`
	RPOrigins     []string `yaml:"rpOrigins"`
	Attestation   string   `yaml:"attestation"` // none, indirect, direct, enterprise
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.Instance.FQDN == "" {
		return Config{}, fmt.Errorf("instance.fqdn is required")
	}

	if config.Server.Listen == "" {
		config.Server.Listen = ":8000"
	}
	if config.Federation.FetchTimeoutSeconds <= 0 {
		config.Federation.FetchTimeoutSeconds = 10
	}
	if config.WebAuthn.RPID == "" {
		config.WebAuthn.RPID = config.Instance.FQDN
	}
	if config.WebAuthn.RPDisplayName == "" {
		config.WebAuthn.RPDisplayName = config.Instance.Name
	}
	if len(config.WebAuthn.RPOrigins) == 0 {
		config.WebAuthn.RPOrigins = []string{"https://" + config.Instance.FQDN}
	}

	return config, nil
}

// InstanceProfile converts the configured instance block to its domain shape.
func (c Config) InstanceProfile() domain.Instance {
	return domain.Instance{
		FQDN:              c.Instance.FQDN,
		BaseURL:           "https://" + c.Instance.FQDN,
		Name:              c.Instance.Name,
		OpenRegistrations: c.Instance.Registration == "open",
	}
}
