package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"gomt5/internal/logging"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the gomt5 toolchain.
type Config struct {
	Gateway  Gateway        `yaml:"gateway"`
	Terminal Terminal       `yaml:"terminal"`
	Accounts []Account      `yaml:"accounts"`
	Server   Server         `yaml:"server"`
	Journal  Journal        `yaml:"journal"`
	Export   Export         `yaml:"export"`
	Logging  logging.Config `yaml:"logging"`
}

// Gateway holds the endpoint of the HTTP bridge that fronts the terminal.
type Gateway struct {
	BaseURL           string        `yaml:"base_url"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
}

// Terminal holds parameters of the terminal session itself.
type Terminal struct {
	Path     string `yaml:"path"`
	Portable bool   `yaml:"portable"`
	Retries  int    `yaml:"retries"`
}

// Account are the credentials of one trade account.
type Account struct {
	Name     string `yaml:"name"`
	Login    int64  `yaml:"login"`
	Password string `yaml:"password"`
	Server   string `yaml:"server"`
	Magic    int64  `yaml:"magic"`
}

// Server holds network listener configuration for the HTTP facade.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Journal holds the path of the execution journal database.
type Journal struct {
	SQLitePath string `yaml:"sqlite_path"`
}

// Export holds paths for one-shot data exports.
type Export struct {
	DataDir string `yaml:"data_dir"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, and then applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// Default returns the configuration used when no file is given: a local
// gateway, info logging, and journal/export paths under the working
// directory.
func Default() *Config {
	cfg := &Config{
		Gateway: Gateway{
			BaseURL: "http://127.0.0.1:5000",
			Timeout: 30 * time.Second,
		},
		Server:  Server{Host: "127.0.0.1", Port: 8080},
		Journal: Journal{SQLitePath: "gomt5.db"},
		Export:  Export{DataDir: "data"},
		Logging: logging.Config{Level: "info", Format: "text"},
	}
	applyEnvOverrides(cfg)
	return cfg
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MT5_GATEWAY_URL"); v != "" {
		cfg.Gateway.BaseURL = v
	}

	if v := os.Getenv("MT5_TERMINAL_PATH"); v != "" {
		cfg.Terminal.Path = v
	}

	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Journal.SQLitePath = v
	}

	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Export.DataDir = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Credentials via environment target the first configured account, or
	// create one when the file declares none.
	login, _ := strconv.ParseInt(os.Getenv("MT5_LOGIN"), 10, 64)
	password := os.Getenv("MT5_PASSWORD")
	server := os.Getenv("MT5_SERVER")
	if login == 0 && password == "" && server == "" {
		return
	}
	if len(cfg.Accounts) == 0 {
		cfg.Accounts = append(cfg.Accounts, Account{Name: "default"})
	}
	acc := &cfg.Accounts[0]
	if login != 0 {
		acc.Login = login
	}
	if password != "" {
		acc.Password = password
	}
	if server != "" {
		acc.Server = server
	}
}
