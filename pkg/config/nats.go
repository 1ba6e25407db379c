package config

import (
	"fmt"
	"time"
)

type NATSConfig struct {
	Enabled bool          `koanf:"enabled"`
	Url     string        `koanf:"url"`
	Subject string        `koanf:"subject"`
	Timeout time.Duration `koanf:"timeout"`
}

func (c *NATSConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Url == "" {
		return fmt.Errorf("nats is enabled but url is not configured")
	}
	if c.Subject == "" {
		return fmt.Errorf("nats is enabled but subject is not configured")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid nats timeout: %v", c.Timeout)
	}
	return nil
}
