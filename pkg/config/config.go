/*
Package config manages TOML config for codeflow.

A config file that fails to decode as a whole is read again section by section,
so one bad value only resets that value to its default.
*/
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/codeflow/internal/utils"
)

// FileName is the config file name inside the config directory.
const FileName = "codeflow.toml"

// Config holds the entire config structure
type Config struct {
	Engine EngineConfig `toml:"engine"`
	Server ServerConfig `toml:"server"`
	Runner RunnerConfig `toml:"runner"`
	CLI    CliConfig    `toml:"cli"`
}

// EngineConfig holds suggestion engine options.
type EngineConfig struct {
	MaxResults   int    `toml:"max_results"`
	CatalogPath  string `toml:"catalog_path"`
	KeywordsPath string `toml:"keywords_path"`
	Watch        bool   `toml:"watch"`
}

// ServerConfig has IPC server options.
type ServerConfig struct {
	MaxLimit  int     `toml:"max_limit"`
	MaxPrefix int     `toml:"max_prefix"`
	RateLimit float64 `toml:"rate_limit"`
	Burst     int     `toml:"burst"`
}

// RunnerConfig holds code runner options.
type RunnerConfig struct {
	Compiler       string `toml:"compiler"`
	Std            string `toml:"std"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	WorkDir        string `toml:"work_dir"`
}

// Timeout is TimeoutSeconds as a duration.
func (r RunnerConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit int  `toml:"default_limit"`
	ShowScores   bool `toml:"show_scores"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			MaxResults:   10,
			CatalogPath:  "data/stl_functions.json",
			KeywordsPath: "data/cpp_keywords.txt",
			Watch:        false,
		},
		Server: ServerConfig{
			MaxLimit:  64,
			MaxPrefix: 60,
			RateLimit: 0,
			Burst:     0,
		},
		Runner: RunnerConfig{
			Compiler:       "g++",
			Std:            "c++20",
			TimeoutSeconds: 5,
			WorkDir:        "",
		},
		CLI: CliConfig{
			DefaultLimit: 10,
			ShowScores:   true,
		},
	}
}

// GetConfigDir returns the config directory with fallback priority:
// 1. $XDG_CONFIG_HOME/codeflow or ~/.config/codeflow
// 2. ~/Library/Application Support/codeflow (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}

	primaryPath := filepath.Join(homeDir, ".config", "codeflow")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		primaryPath = filepath.Join(xdg, "codeflow")
	}
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "codeflow")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for codeflow.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, FileName), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from -config flag
// 2. Default path: [config dir]/codeflow.toml, created if missing
// 3. Builtin defaults
//
// The returned path is empty when builtin defaults are used.
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err == nil {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
			log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}
	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at %s: %v. Using built-in defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	if err := utils.EnsureDir(filepath.Dir(configPath)); err != nil {
		log.Warnf("Failed to create config directory for %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}
	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file. Keys missing from the file keep their
// defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	config.sanitize()
	return config, nil
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// RebuildConfigFile overwrites the config at configPath, or at the default
// path when configPath is empty, with defaults.
func RebuildConfigFile(configPath string) (string, error) {
	if configPath == "" {
		p, err := GetDefaultConfigPath()
		if err != nil {
			return "", err
		}
		configPath = p
	}
	if err := utils.EnsureDir(filepath.Dir(configPath)); err != nil {
		return "", err
	}
	return configPath, SaveConfig(DefaultConfig(), configPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		return "builtin defaults"
	}
	return utils.GetAbsolutePath(configPath)
}

// sanitize resets values that cannot work to their defaults.
func (c *Config) sanitize() {
	def := DefaultConfig()
	if c.Engine.MaxResults <= 0 {
		log.Warnf("engine.max_results must be positive, using %d", def.Engine.MaxResults)
		c.Engine.MaxResults = def.Engine.MaxResults
	}
	if c.Server.MaxLimit <= 0 {
		c.Server.MaxLimit = def.Server.MaxLimit
	}
	if c.Server.MaxPrefix <= 0 {
		c.Server.MaxPrefix = def.Server.MaxPrefix
	}
	if c.Server.RateLimit < 0 {
		c.Server.RateLimit = 0
	}
	if c.Runner.TimeoutSeconds <= 0 {
		c.Runner.TimeoutSeconds = def.Runner.TimeoutSeconds
	}
	if c.CLI.DefaultLimit <= 0 {
		c.CLI.DefaultLimit = def.CLI.DefaultLimit
	}
}

// tryPartialParse reads every section that decodes and keeps defaults for
// the rest.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "engine"); ok {
		extractEngineConfig(section, &config.Engine)
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "runner"); ok {
		extractRunnerConfig(section, &config.Runner)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	config.sanitize()
	return config, nil
}

func extractEngineConfig(data map[string]any, engine *EngineConfig) {
	if val, ok := utils.ExtractInt64(data, "max_results"); ok {
		engine.MaxResults = val
	}
	if val, ok := utils.ExtractString(data, "catalog_path"); ok {
		engine.CatalogPath = val
	}
	if val, ok := utils.ExtractString(data, "keywords_path"); ok {
		engine.KeywordsPath = val
	}
	if val, ok := utils.ExtractBool(data, "watch"); ok {
		engine.Watch = val
	}
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "max_prefix"); ok {
		server.MaxPrefix = val
	}
	if val, ok := utils.ExtractFloat(data, "rate_limit"); ok {
		server.RateLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "burst"); ok {
		server.Burst = val
	}
}

func extractRunnerConfig(data map[string]any, runner *RunnerConfig) {
	if val, ok := utils.ExtractString(data, "compiler"); ok {
		runner.Compiler = val
	}
	if val, ok := utils.ExtractString(data, "std"); ok {
		runner.Std = val
	}
	if val, ok := utils.ExtractInt64(data, "timeout_seconds"); ok {
		runner.TimeoutSeconds = val
	}
	if val, ok := utils.ExtractString(data, "work_dir"); ok {
		runner.WorkDir = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		cli.DefaultLimit = val
	}
	if val, ok := utils.ExtractBool(data, "show_scores"); ok {
		cli.ShowScores = val
	}
}
