package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

type Config struct {
	LogLevel      string  `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort      string  `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort    string  `yaml:"socket-port" env:"SOCKET_PORT" env-default:"6970"`
	AllowedOrigin string  `yaml:"allowed-origin" env:"ALLOWED_ORIGIN" env-default:""`
	Storage       Storage `yaml:"storage"`
	Redis         Redis   `yaml:"redis"`
}

type Storage struct {
	Backend string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"memory"`
	// SessionTTLSeconds bounds live-state retention in the redis backend.
	// 0 keeps sessions for the process lifetime, like the memory backend.
	SessionTTLSeconds int `yaml:"session-ttl-seconds" env:"SESSION_TTL_SECONDS" env-default:"0"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
