package kafka

import (
	"github.com/caarlos0/env/v10"
)

// LoadEnv загружает конфигурацию из переменных окружения (caarlos0/env/v10)
func LoadEnv(cfg *Config) error {
	return env.Parse(cfg)
}
