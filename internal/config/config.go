// Package config loads config.json and applies environment variable
// overrides on top of it.
package config

import (
	"encoding/json"
	"errors"
	"io"
	"os"

	"dalchat-backend/internal/models"

	"github.com/caarlos0/env/v6"
)

const configPath = "config.json"

func defaults() models.ConfigFile {
	return models.ConfigFile{
		Address:       "0.0.0.0",
		Port:          "8080",
		LogLevel:      "debug",
		SelfContained: true,
		RedisAddress:  "localhost:6379",
	}
}

func Load() (*models.ConfigFile, error) {
	cfg := defaults()

	file, err := os.Open(configPath)
	if err == nil {
		defer file.Close()

		bytes, readErr := io.ReadAll(file)
		if readErr != nil {
			return nil, readErr
		}
		if err := json.Unmarshal(bytes, &cfg); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}

	if cfg.JwtSecret == "" {
		return nil, errors.New("JwtSecret must be set in config.json or JWT_SECRET")
	}

	return &cfg, nil
}
