package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// BaseDir holds per-target run state and logs. Defaults to ~/.rsnap.
	BaseDir string `yaml:"base_dir"`

	// IgnoreFile is the user-maintained exclude list. Defaults to
	// .rsnapignore under BaseDir. A missing file means no excludes.
	IgnoreFile string `yaml:"ignore_file"`

	RsyncPath string   `yaml:"rsync_path"`
	RsyncArgs []string `yaml:"rsync_args,omitempty"`

	// DisableLock skips the advisory run lock. Only sensible when an
	// external scheduler already guarantees non-overlapping runs.
	DisableLock bool `yaml:"disable_lock,omitempty"`

	S3 S3Config `yaml:"s3,omitempty"`
}

// S3Config enables mirroring run manifests to a bucket for offsite audit.
// Snapshot data itself never goes to S3.
type S3Config struct {
	Enabled      bool               `yaml:"enabled"`
	Bucket       string             `yaml:"bucket"`
	Prefix       string             `yaml:"prefix"`
	Region       string             `yaml:"region"`
	Endpoint     string             `yaml:"endpoint"`
	StorageClass types.StorageClass `yaml:"storage_class"`
	Retry        struct {
		MaxAttempts int `yaml:"max_attempts"`
	} `yaml:"retry,omitempty"`
}

// Load reads the configuration file. A missing file yields the defaults:
// the tool must work with nothing but SOURCE and TARGET arguments.
func Load(filename string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(filename)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() error {
	if c.BaseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot resolve default base_dir: %w", err)
		}
		c.BaseDir = filepath.Join(home, ".rsnap")
	}
	if c.IgnoreFile == "" {
		c.IgnoreFile = filepath.Join(c.BaseDir, ".rsnapignore")
	}
	if c.RsyncPath == "" {
		c.RsyncPath = "rsync"
	}
	return nil
}

func (c *Config) Validate() error {
	if c.BaseDir == "" {
		return fmt.Errorf("base_dir is required")
	}
	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("s3.bucket is required when s3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("s3.region is required when s3 is enabled")
		}
	}
	return nil
}

func (c *Config) S3RetryAttempts() int {
	if c.S3.Retry.MaxAttempts > 0 {
		return c.S3.Retry.MaxAttempts
	}
	return 3
}

func (c *Config) S3StorageClass() types.StorageClass {
	if c.S3.StorageClass != "" {
		return c.S3.StorageClass
	}
	return types.StorageClassStandard
}
