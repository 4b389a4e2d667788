// Package config holds repository layout constants and the per-repo user
// configuration file.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Layout names every path inside a repository's metadata directory. It is
// constructed once when a repository handle is opened and threaded through
// explicitly rather than read from package-level globals.
type Layout struct {
	RepoDirName   string // metadata directory name inside the working dir
	ObjectsDir    string // object store subdirectory
	RefsDir       string // refs subdirectory
	HeadsDir      string // branch refs, under RefsDir
	TagsDir       string // tag refs, under RefsDir
	HeadFile      string // HEAD ref record
	MergeDir      string // merge-in-progress marker directory
	ConfigFile    string // user configuration file
	IndexFile     string // working-set index database
	DefaultBranch string
}

// DefaultLayout returns the standard repository layout.
func DefaultLayout() Layout {
	return Layout{
		RepoDirName:   ".strata",
		ObjectsDir:    "objects",
		RefsDir:       "refs",
		HeadsDir:      "heads",
		TagsDir:       "tags",
		HeadFile:      "HEAD",
		MergeDir:      "merge",
		ConfigFile:    "config.toml",
		IndexFile:     "index.db",
		DefaultBranch: "main",
	}
}

// User holds per-repository user settings.
type User struct {
	Name string `toml:"name"`
}

// Config is the persisted repository configuration.
type Config struct {
	User User `toml:"user"`
}

// Load reads a config file. A missing file yields the zero config.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config file.
func Save(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
