// Package project locates the .tasklog directory and loads its configuration.
package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/newhook/tasklog/internal/archive"
	"github.com/newhook/tasklog/internal/logging"
)

const (
	// ConfigDir is the directory name for project configuration.
	ConfigDir = logging.ConfigDir
	// ConfigFile is the name of the project config file.
	ConfigFile = "config.toml"
	// ArchiveDB is the default archive database file name.
	ArchiveDB = "archive.db"
)

// ErrNoProject is returned by Find when no .tasklog directory exists.
var ErrNoProject = errors.New("no project found")

// Project is a directory containing .tasklog/config.toml.
type Project struct {
	Root   string
	Config *Config

	archive *archive.DB
}

// Find locates the project from flagValue, or from the working directory
// when flagValue is empty, walking up towards the filesystem root.
func Find(flagValue string) (*Project, error) {
	start := flagValue
	if start == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		start = cwd
	}

	dir, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ConfigDir, ConfigFile)); err == nil {
			return load(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, fmt.Errorf("%w (no %s directory)", ErrNoProject, ConfigDir)
		}
		dir = parent
	}
}

// FindOrDefault is Find, but returns a project with default configuration
// and no root when none exists.
func FindOrDefault(flagValue string) (*Project, error) {
	proj, err := Find(flagValue)
	if errors.Is(err, ErrNoProject) {
		return &Project{Config: &Config{}}, nil
	}
	return proj, err
}

func load(root string) (*Project, error) {
	configPath := filepath.Join(root, ConfigDir, ConfigFile)
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	if err := logging.Init(root, slog.LevelDebug); err != nil {
		// Not fatal; logging stays disabled.
		logging.Warn("failed to initialize logging", "error", err)
	}

	return &Project{Root: root, Config: cfg}, nil
}

// Create initializes .tasklog/config.toml in dir.
func Create(dir string) (*Project, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	configDir := filepath.Join(root, ConfigDir)
	configPath := filepath.Join(configDir, ConfigFile)
	if _, err := os.Stat(configPath); err == nil {
		return nil, fmt.Errorf("project already exists at %s", root)
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create project directory: %w", err)
	}

	cfg := &Config{}
	if err := cfg.SaveDocumentedConfig(configPath); err != nil {
		return nil, fmt.Errorf("failed to write config: %w", err)
	}
	return load(root)
}

// HasRoot reports whether the project was found on disk.
func (p *Project) HasRoot() bool {
	return p.Root != ""
}

// Archive opens the archive database on first use.
func (p *Project) Archive(ctx context.Context) (*archive.DB, error) {
	if p.archive != nil {
		return p.archive, nil
	}
	if !p.HasRoot() {
		return nil, fmt.Errorf("archive requires a project: run 'tasklog init' first")
	}
	path := p.Config.Archive.GetPath()
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.Root, ConfigDir, path)
	}
	db, err := archive.OpenPath(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	p.archive = db
	return db, nil
}

// Close releases the archive and log file.
func (p *Project) Close() error {
	var err error
	if p.archive != nil {
		err = p.archive.Close()
		p.archive = nil
	}
	if p.HasRoot() {
		err = errors.Join(err, logging.Close())
	}
	return err
}
