package config

import (
	"fmt"
	"time"
)

type RedisConfig struct {
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	PoolSize int           `koanf:"poolSize"`
	CartTTL  time.Duration `koanf:"cartTtl"`
}

func (c *RedisConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("redis address is not configured")
	}
	if c.CartTTL <= 0 {
		return fmt.Errorf("invalid cart TTL: %v", c.CartTTL)
	}
	return nil
}
