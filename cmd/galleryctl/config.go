package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

const (
	configDirName  = "phototree"
	configFileName = "config.json"
	defaultURL     = "http://localhost:8080"
)

type cliConfig struct {
	ServerURL string `json:"server_url"`
	Token     string `json:"token"`
}

func configPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configDirName, configFileName), nil
}

// loadConfig reads the config from disk. Returns a zero-value config (not
// an error) if the file doesn't exist.
func loadConfig() (*cliConfig, error) {
	p, err := configPath()
	if err != nil {
		return &cliConfig{ServerURL: defaultURL}, nil
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cliConfig{ServerURL: defaultURL}, nil
		}
		return nil, err
	}
	var cfg cliConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = defaultURL
	}
	return &cfg, nil
}

func saveConfig(cfg *cliConfig) error {
	p, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0600)
}

func clearConfig() error {
	p, err := configPath()
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
