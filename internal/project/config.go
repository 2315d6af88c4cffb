package project

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"text/template"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/newhook/tasklog/internal/render"
	"github.com/newhook/tasklog/internal/treeview"
)

//go:embed templates/config.tmpl
var configTemplateText string

// Config represents the project configuration stored in .tasklog/config.toml.
type Config struct {
	Output  OutputConfig  `toml:"output"`
	Cache   CacheConfig   `toml:"cache"`
	Archive ArchiveConfig `toml:"archive"`
	Watch   WatchConfig   `toml:"watch"`
	Tree    TreeConfig    `toml:"tree"`
}

// OutputConfig controls XML output.
type OutputConfig struct {
	// RootElement wraps all parameter elements. Defaults to "Task".
	RootElement string `toml:"root_element"`

	// Indent is the number of spaces per nesting level. Defaults to 2; 0 keeps output on one line.
	Indent *int `toml:"indent"`
}

// GetRootElement returns the configured root element or "Task".
func (o *OutputConfig) GetRootElement() string {
	if o.RootElement == "" {
		return render.DefaultRootElement
	}
	return o.RootElement
}

// GetIndent returns the configured indent or 2.
func (o *OutputConfig) GetIndent() int {
	if o.Indent == nil || *o.Indent < 0 {
		return 2
	}
	return *o.Indent
}

// CacheConfig controls memoization of parsed messages.
type CacheConfig struct {
	// Enabled defaults to true when not specified.
	Enabled *bool `toml:"enabled"`

	// TTLSeconds is how long a parsed message is kept. Defaults to 300.
	TTLSeconds *int `toml:"ttl_seconds"`
}

// IsEnabled returns true unless caching was explicitly disabled.
func (c *CacheConfig) IsEnabled() bool {
	if c.Enabled == nil {
		return true
	}
	return *c.Enabled
}

// GetTTL returns the cache entry lifetime.
func (c *CacheConfig) GetTTL() time.Duration {
	if c.TTLSeconds != nil && *c.TTLSeconds > 0 {
		return time.Duration(*c.TTLSeconds) * time.Second
	}
	return 5 * time.Minute
}

// ArchiveConfig controls the SQLite archive of parsed parameters.
type ArchiveConfig struct {
	// Enabled makes parse and watch store every parameter. Defaults to false.
	Enabled bool `toml:"enabled"`

	// Path is the database file, relative to .tasklog. Defaults to "archive.db".
	Path string `toml:"path"`
}

// GetPath returns the configured archive file name or "archive.db".
func (a *ArchiveConfig) GetPath() string {
	if a.Path == "" {
		return ArchiveDB
	}
	return a.Path
}

// WatchConfig controls the watch command.
type WatchConfig struct {
	// DebounceMillis coalesces bursts of writes. Defaults to 100.
	DebounceMillis *int `toml:"debounce_ms"`
}

// GetDebounce returns the debounce interval.
func (w *WatchConfig) GetDebounce() time.Duration {
	if w.DebounceMillis != nil && *w.DebounceMillis >= 0 {
		return time.Duration(*w.DebounceMillis) * time.Millisecond
	}
	return 100 * time.Millisecond
}

// TreeConfig controls the terminal tree format.
type TreeConfig struct {
	// MaxTextWidth truncates long values. Defaults to 100.
	MaxTextWidth int `toml:"max_text_width"`
}

// GetMaxTextWidth returns the configured width or the tree default.
func (t *TreeConfig) GetMaxTextWidth() int {
	if t.MaxTextWidth <= 0 {
		return treeview.DefaultMaxWidth
	}
	return t.MaxTextWidth
}

// LoadConfig reads and parses a config.toml file.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// SaveConfig writes the config to the specified path.
func (c *Config) SaveConfig(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

var configTemplate = template.Must(template.New("config").Parse(configTemplateText))

// GenerateDocumentedConfig renders config.toml with every option explained.
func (c *Config) GenerateDocumentedConfig() string {
	data := struct {
		RootElement    string
		Indent         int
		CacheEnabled   bool
		CacheTTL       int
		ArchiveEnabled bool
		ArchivePath    string
		DebounceMillis int
		MaxTextWidth   int
	}{
		RootElement:    c.Output.GetRootElement(),
		Indent:         c.Output.GetIndent(),
		CacheEnabled:   c.Cache.IsEnabled(),
		CacheTTL:       int(c.Cache.GetTTL() / time.Second),
		ArchiveEnabled: c.Archive.Enabled,
		ArchivePath:    c.Archive.GetPath(),
		DebounceMillis: int(c.Watch.GetDebounce() / time.Millisecond),
		MaxTextWidth:   c.Tree.GetMaxTextWidth(),
	}

	var buf bytes.Buffer
	if err := configTemplate.Execute(&buf, data); err != nil {
		return fmt.Sprintf("[output]\nroot_element = %q\n", data.RootElement)
	}
	return buf.String()
}

// SaveDocumentedConfig writes the documented config to path.
func (c *Config) SaveDocumentedConfig(path string) error {
	return os.WriteFile(path, []byte(c.GenerateDocumentedConfig()), 0644)
}
