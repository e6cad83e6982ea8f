package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hadespm/hades/internal/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const configName = "hades.yml"

// defaultConfigPath returns the per-user config location
func defaultConfigPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "hades", configName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "hades", configName)
}

// loadConfig decodes the YAML file at path over the defaults. A missing file
// is only an error when the path was given explicitly.
func loadConfig(path string, explicit bool) (models.Config, error) {
	cfg := models.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err == nil {
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, &models.HadesError{
				Type: models.ErrInvalidConfig,
				Err:  fmt.Errorf("error decoding config %s: %w", path, err),
			}
		}
		logrus.Debugf("Loaded config from %s", path)
	} else if !errors.Is(err, os.ErrNotExist) || explicit {
		return cfg, &models.HadesError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("error opening config: %w", err),
		}
	} else {
		logrus.Debug("No config file found, using defaults")
	}

	return cfg, nil
}

func validateConfig(cfg *models.Config) error {
	if cfg.Mirror == "" {
		return &models.HadesError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("mirror is required"),
		}
	}

	if cfg.Arch == "" {
		return &models.HadesError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("arch is required"),
		}
	}

	if cfg.PkgType == "" {
		return &models.HadesError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("type is required"),
		}
	}

	if cfg.Timeout <= 0 {
		return &models.HadesError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("timeout must be positive, got %s", cfg.Timeout),
		}
	}

	// Fall back to the defaults for empty directories
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = os.TempDir()
	}
	if cfg.ExtractDir == "" {
		cfg.ExtractDir = "/"
	}

	return nil
}
