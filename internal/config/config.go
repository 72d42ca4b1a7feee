package config

import (
	"fmt"
	"log"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const defaultConfigPath = "./config/local.yaml"

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"prod"`
	HTTPServer `yaml:"http_server"`
	DBDriver   string `yaml:"db_driver" env:"DB_DRIVER" env-default:"mysql"`
	DBUser     string `yaml:"db_user" env:"DB_USER" env-required:"true"`
	DBPassword string `yaml:"db_password" env:"DB_PASSWORD"`
	DBHost     string `yaml:"db_host" env:"DB_HOST" env-default:"localhost"`
	DBPort     int    `yaml:"db_port" env:"DB_PORT" env-default:"3306"`
	DBName     string `yaml:"db_name" env:"DB_NAME" env-required:"true"`
	DBSSLMode  string `yaml:"db_ssl_mode" env:"DB_SSL_MODE" env-default:"require"`
	DBMaxConns int32  `yaml:"db_max_conns" env:"DB_MAX_CONNS" env-default:"10"`
	Timezone   string `yaml:"timezone" env:"TIMEZONE" env-default:"UTC"`
	ErrorLog   string `yaml:"error_log" env:"ERROR_LOG" env-default:"errors.log"`

	AdminLogin     string   `yaml:"admin_login" env:"ADMIN_LOGIN"`
	AdminPass      string   `yaml:"admin_pass" env:"ADMIN_PASS"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" env-default:"http://localhost:5173"`
	FrontendDir    string   `yaml:"frontend_dir" env:"FRONTEND_DIR"`

	Export Export `yaml:"export"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:4001"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type Export struct {
	Timeout time.Duration `yaml:"timeout" env-default:"10s"`
	Title   string        `yaml:"title" env-default:"Gas storage monitoring"`
}

func MustConfig() *Config {
	// .env не обязателен — переменные могут прийти из окружения
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
	const op = "config.Load"

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	switch cfg.DBDriver {
	case "mysql", "postgres":
	default:
		return nil, fmt.Errorf("%s: unsupported db_driver %q", op, cfg.DBDriver)
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("%s: invalid timezone %q: %w", op, cfg.Timezone, err)
	}

	return &cfg, nil
}

// Location is always valid after Load.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
