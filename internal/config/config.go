// Package config provides configuration management for vcinstall using Viper.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/rvctools/vcinstall/internal/paths"
	"github.com/rvctools/vcinstall/pkg/fileutil"
)

// AppName is the application name used for config file naming.
const AppName = "vcinstall"

// Config represents the top-level configuration structure.
type Config struct {
	Version    int        `mapstructure:"version" yaml:"version"`
	InstallDir string     `mapstructure:"install_dir" yaml:"install_dir"`
	Repo       RepoConfig `mapstructure:"repo" yaml:"repo"`
	Server     Server     `mapstructure:"server" yaml:"server"`
	Brew       Brew       `mapstructure:"brew" yaml:"brew"`
	Python     Python     `mapstructure:"python" yaml:"python"`
	Models     []Model    `mapstructure:"models" yaml:"models"`

	// RulesFile optionally points to a TOML file overriding the built-in
	// requirements filter rules.
	RulesFile string `mapstructure:"rules_file" yaml:"rules_file"`
}

// RepoConfig identifies the source repository of the application.
type RepoConfig struct {
	URL    string `mapstructure:"url" yaml:"url"`
	Branch string `mapstructure:"branch" yaml:"branch"`
	Depth  int    `mapstructure:"depth" yaml:"depth"`
}

// Server holds the address the launched application binds to.
type Server struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// Brew lists the Homebrew formulas installed during the dependency step.
type Brew struct {
	Formulas []string `mapstructure:"formulas" yaml:"formulas"`
}

// Python pins the interpreter used for the virtual environment.
type Python struct {
	// Formula is the Homebrew formula providing the interpreter.
	Formula string `mapstructure:"formula" yaml:"formula"`

	// Binary is the interpreter binary name, e.g. "python3.10".
	Binary string `mapstructure:"binary" yaml:"binary"`

	// Pins are pip requirement specifiers installed in order before the
	// filtered manifest. The order is load-bearing: native-extension
	// builds depend on numpy and torch being present first.
	Pins []string `mapstructure:"pins" yaml:"pins"`
}

// Model describes a pretrained model file to download.
type Model struct {
	Name string `mapstructure:"name" yaml:"name"`
	URL  string `mapstructure:"url" yaml:"url"`
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
func Init() {
	// Config file settings
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".") // Current directory
	viper.AddConfigPath(filepath.Join(paths.ConfigHome(), AppName))

	// Environment variable support
	viper.SetEnvPrefix("VCINSTALL")
	viper.AutomaticEnv()

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("version", 1)
	v.SetDefault("install_dir", paths.DefaultInstallDir())
	v.SetDefault("repo.url", "https://github.com/IAHispano/Applio")
	v.SetDefault("repo.branch", "main")
	v.SetDefault("repo.depth", 1)
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 6969)
	v.SetDefault("brew.formulas", []string{"git", "wget", "ffmpeg"})
	v.SetDefault("python.formula", "python@3.10")
	v.SetDefault("python.binary", "python3.10")
	v.SetDefault("python.pins", []string{
		"numpy==1.23.5",
		"torch==2.2.2",
		"torchaudio==2.2.2",
		"faiss-cpu==1.7.3",
	})
	v.SetDefault("models", []map[string]any{
		{
			"name": "hubert_base.pt",
			"url":  "https://huggingface.co/lj1995/VoiceConversionWebUI/resolve/main/hubert_base.pt",
		},
		{
			"name": "rmvpe.pt",
			"url":  "https://huggingface.co/lj1995/VoiceConversionWebUI/resolve/main/rmvpe.pt",
		},
	})
}

// Defaults returns the built-in configuration without reading any file.
// It uses an isolated Viper instance, so global state is untouched.
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// The defaults above always unmarshal into Config.
		return &Config{}
	}
	return &cfg
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations.
// Returns the loaded configuration or default values if no file is found (when path is empty).
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		// If config file not found...
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// If user specified a path, this is an error
			if path != "" {
				return nil, fmt.Errorf("config file not found at %s: %w", path, err)
			}
			// Otherwise (implicit load), it's fine to use defaults
		} else {
			// Real read error (parsing, permissions, etc)
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// DefaultPath returns the standard location of the config file,
// <config home>/vcinstall/config.yaml.
func DefaultPath() string {
	return filepath.Join(paths.ConfigHome(), AppName, "config.yaml")
}

// Save writes cfg as YAML to path, creating parent directories as needed.
// The write is atomic so an interrupted save never corrupts an existing
// config file.
func Save(path string, cfg *Config) error {
	if err := paths.EnsureDir(filepath.Dir(path), paths.DefaultDirPerm); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := fileutil.AtomicWriteYAML(path, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
