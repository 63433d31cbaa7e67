package graphnav

import (
	"os"
	"path/filepath"
)

// Backend kinds.
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// Default identifier namespace and its short prefix.
const (
	DefaultNamespace = "http://example.org/support#"
	DefaultPrefix    = "ex"
)

// Config holds all configuration for the navigator.
type Config struct {
	// Backend selects where the graph lives: "local" (SQLite, default)
	// or "remote" (a SPARQL endpoint).
	Backend string `json:"backend" yaml:"backend"`

	// DBPath is the full path to the SQLite database file.
	// If empty, defaults to ~/.graphnav/<DBName>.db
	DBPath string `json:"db_path" yaml:"db_path"`

	// DBName is the name for the database (used when DBPath is empty).
	// Defaults to "graphnav". The file will be <DBName>.db inside the
	// storage directory (~/.graphnav/ or working dir).
	DBName string `json:"db_name" yaml:"db_name"`

	// StorageDir controls where the database is created when DBPath
	// is not explicitly set. Options: "home" (default) uses ~/.graphnav/,
	// "local" uses the current working directory.
	StorageDir string `json:"storage_dir" yaml:"storage_dir"`

	// Endpoint is the remote dataset base URL, e.g.
	// "http://localhost:3030/ds". Required for the remote backend.
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// Namespace is the identifier namespace for ingested data.
	Namespace string `json:"namespace" yaml:"namespace"`

	// Prefix is the short prefix bound to Namespace.
	Prefix string `json:"prefix" yaml:"prefix"`
}

// DefaultConfig returns a Config with sensible defaults for local use.
// Database is stored in ~/.graphnav/graphnav.db by default.
func DefaultConfig() Config {
	return Config{
		Backend:    BackendLocal,
		DBName:     "graphnav",
		StorageDir: "home",
		Namespace:  DefaultNamespace,
		Prefix:     DefaultPrefix,
	}
}

// resolveDBPath computes the final database path from config fields.
func (c *Config) resolveDBPath() string {
	if c.DBPath != "" {
		return c.DBPath
	}

	name := c.DBName
	if name == "" {
		name = "graphnav"
	}

	switch c.StorageDir {
	case "local", "cwd":
		return name + ".db"
	default: // "home" or empty
		home, err := os.UserHomeDir()
		if err != nil {
			return name + ".db" // fallback to cwd
		}
		dir := filepath.Join(home, ".graphnav")
		return filepath.Join(dir, name+".db")
	}
}
