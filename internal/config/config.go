package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	API    APIConfig    `yaml:"api"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// APIConfig describes the remote catalog API account the client talks to.
type APIConfig struct {
	RootURL    string `yaml:"rootUrl"`
	MerchantID string `yaml:"merchantId"`
	AuthToken  string `yaml:"authToken"`
	// Homepage is prepended to the relative product links in the CSV.
	Homepage string `yaml:"homepage"`
	// Timeout comes from the environment only; yaml has no duration type.
	Timeout time.Duration `yaml:"-"`
}

// ServerConfig is only used by the local stub server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func Load() (*Config, error) {
	viper.AutomaticEnv()

	viper.SetDefault("API_ROOT_URL", "https://content.googleapis.com/content/v1")
	viper.SetDefault("API_MERCHANT_ID", "1234567")
	viper.SetDefault("API_AUTH_TOKEN", "")
	viper.SetDefault("API_HOMEPAGE", "http://my.supercool.com/homepage/")
	viper.SetDefault("API_TIMEOUT", "30s")
	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("LOG_LEVEL", "info")

	timeout, err := time.ParseDuration(viper.GetString("API_TIMEOUT"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		API: APIConfig{
			RootURL:    viper.GetString("API_ROOT_URL"),
			MerchantID: viper.GetString("API_MERCHANT_ID"),
			AuthToken:  viper.GetString("API_AUTH_TOKEN"),
			Homepage:   viper.GetString("API_HOMEPAGE"),
			Timeout:    timeout,
		},
		Server: ServerConfig{
			Port: viper.GetInt("SERVER_PORT"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}

	return cfg, nil
}
