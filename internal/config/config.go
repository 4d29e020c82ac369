package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/redlist-cli/internal/utils"
)

// Global configuration structure.
type Global struct {
	// ReferenceDir holds the consolidated reference files (fauna.csv, flora.csv)
	// and optional legend overrides.
	ReferenceDir string `mapstructure:"reference_dir" yaml:"reference_dir"`
	// VariantsFile optionally adds or overrides report variants.
	VariantsFile string `mapstructure:"variants_file" yaml:"variants_file"`
	// OutputDir is used when --out is a bare file name.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	LogFile  string `mapstructure:"log_file" yaml:"log_file"`
}

// Dir returns ~/.redlist.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".redlist"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.redlist/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := utils.EnsureDir(dir); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// DotEnvFile is read from the working directory before the environment is
// consulted. Variables already set in the process win.
const DotEnvFile = ".env"

// Load loads configuration from file, env, and defaults.
// Precedence: flags > env (.env included) > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", DotEnvFile, err)
	}
	v := viper.New()
	v.SetEnvPrefix("REDLIST")
	v.AutomaticEnv()

	v.SetDefault("reference_dir", "")
	v.SetDefault("variants_file", "")
	v.SetDefault("output_dir", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		// a missing ~/.redlist/config.yaml is fine
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// reference_dir default: ~/.redlist/reference
	if c.ReferenceDir == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		c.ReferenceDir = filepath.Join(dir, "reference")
	}
	var err error
	for _, p := range []*string{&c.ReferenceDir, &c.VariantsFile, &c.OutputDir, &c.LogFile} {
		if *p, err = utils.ExpandHome(*p); err != nil {
			return nil, err
		}
	}
	return &c, nil
}
