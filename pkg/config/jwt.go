package config

import (
	"fmt"
	"time"
)

type JWTConfig struct {
	Secret string        `koanf:"secret"`
	Issuer string        `koanf:"issuer"`
	TTL    time.Duration `koanf:"ttl"`
}

func (c *JWTConfig) Validate() error {
	if c.Secret == "" {
		return fmt.Errorf("jwt secret is not configured")
	}
	if len(c.Secret) < 32 {
		return fmt.Errorf("jwt secret must be at least 32 bytes")
	}
	if c.TTL <= 0 {
		return fmt.Errorf("invalid jwt ttl: %v", c.TTL)
	}
	return nil
}
