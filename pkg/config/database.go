package config

import (
	"fmt"
	"strings"
	"time"
)

type DatabaseConfig struct {
	URL            string        `koanf:"url"`
	ConnectTimeout time.Duration `koanf:"connectTimeout"`
}

func (c *DatabaseConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("database URL is not configured")
	}
	if !strings.HasPrefix(c.URL, "postgres://") && !strings.HasPrefix(c.URL, "postgresql://") {
		return fmt.Errorf("database URL must start with 'postgres://': %s", c.URL)
	}
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("invalid database connect timeout: %v", c.ConnectTimeout)
	}
	return nil
}
