package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds settings loaded from microlearn.yaml, .env and MICROLEARN_* variables.
type Config struct {
	Env             string    `mapstructure:"env"`
	DataDir         string    `mapstructure:"data_dir"`
	DBPath          string    `mapstructure:"db_path"`
	CatalogPath     string    `mapstructure:"catalog_path"`
	Persist         bool      `mapstructure:"persist"`
	StrictModuleIDs bool      `mapstructure:"strict_module_ids"`
	Projector       Projector `mapstructure:"projector"`
}

type Projector struct {
	Driver          string        `mapstructure:"driver"`
	PostgresURL     string        `mapstructure:"postgres_url"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

func (c Config) SnapshotPath() string {
	return filepath.Join(c.DataDir, "progress.yaml")
}

func (c Config) StateDir() string {
	return filepath.Join(c.DataDir, ".microlearn")
}

// Load resolves configuration for dataDir. An empty dataDir falls back to
// data_dir from the environment or config file, then to the working directory.
func Load(dataDir string) (Config, error) {
	for _, candidate := range envFiles(dataDir) {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		if err := godotenv.Load(candidate); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", candidate, err)
		}
	}

	v := viper.New()
	v.SetConfigName("microlearn")
	v.SetConfigType("yaml")
	if dataDir != "" {
		v.AddConfigPath(dataDir)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("env", "local")
	v.SetDefault("data_dir", ".")
	v.SetDefault("db_path", "")
	v.SetDefault("catalog_path", "")
	v.SetDefault("persist", true)
	v.SetDefault("strict_module_ids", false)
	v.SetDefault("projector.driver", DriverSQLite)
	v.SetDefault("projector.postgres_url", "")
	v.SetDefault("projector.max_conns", 4)
	v.SetDefault("projector.max_conn_lifetime", "30m")

	v.SetEnvPrefix("MICROLEARN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("projector.postgres_url", "MICROLEARN_PROJECTOR_POSTGRES_URL", "DATABASE_URL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	if dataDir != "" {
		v.Set("data_dir", dataDir)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.DataDir == "" {
		return Config{}, fmt.Errorf("%w: data dir is required", ErrInvalidConfig)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.StateDir(), "microlearn.db")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Projector.Driver {
	case DriverSQLite, DriverNone:
	case DriverPostgres:
		if c.Projector.PostgresURL == "" {
			return fmt.Errorf("%w: projector.postgres_url is required for the postgres driver", ErrInvalidConfig)
		}
		if c.Projector.MaxConns <= 0 {
			return fmt.Errorf("%w: projector.max_conns must be positive", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown projector driver %q", ErrInvalidConfig, c.Projector.Driver)
	}
	return nil
}

func envFiles(dataDir string) []string {
	files := []string{".env"}
	if dataDir != "" && dataDir != "." {
		files = append(files, filepath.Join(dataDir, ".env"))
	}
	return files
}
