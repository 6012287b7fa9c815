package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode           string        `mapstructure:"mode"`
	Port           int           `mapstructure:"port"`
	MongoURI       string        `mapstructure:"mongo_uri"`
	DBName         string        `mapstructure:"db_name"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	OtpTTL         time.Duration `mapstructure:"otp_ttl"`
	PingPeriod     time.Duration `mapstructure:"ping_period"`
	ReadLimit      int64         `mapstructure:"read_limit"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	// Empty mongo_uri selects the in-memory store.
	v.SetDefault("mongo_uri", "")
	v.SetDefault("db_name", "QuizMeSenpai")
	v.SetDefault("jwt_secret", "dev-secret")
	v.SetDefault("otp_ttl", "5m")
	v.SetDefault("ping_period", "54s")
	v.SetDefault("read_limit", 4096)
	v.SetDefault("allowed_origins", []string{"http://localhost:5173"})

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
