// Package config provides loading and validation of kleegraph.yaml configuration files.
//
// Values are resolved in this order, highest priority first:
//  1. Command-line flags (applied by the caller after Load)
//  2. Environment variables (ApplyEnv)
//  3. kleegraph.yaml
//  4. Defaults (the Get* accessors)
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zero-day-ai/kleegraph/kgerr"
)

// Default values used by the accessors when a field is unset.
const (
	DefaultDatabase         = "neo4j"
	DefaultProbeTimeout     = 3 * time.Second
	DefaultWorkers          = 4
	DefaultVulnerableMarker = "vulnerable"
	DefaultEntrySymbol      = "main"
	DefaultReportPath       = "vulnerability_report.json"
	DefaultRedisKeyPrefix   = "kleegraph:report"
	DefaultRedisChannel     = "kleegraph:reports"
)

// Environment variables read by ApplyEnv.
const (
	EnvNeo4jURI      = "NEO4J_URI"
	EnvNeo4jUser     = "NEO4J_USER"
	EnvNeo4jPassword = "NEO4J_PASSWORD"
	EnvNeo4jDatabase = "NEO4J_DATABASE"
	EnvRedisURL      = "REDIS_URL"
	EnvWorkers       = "KLEEGRAPH_WORKERS"
)

// FileNames are the names searched for when Load is given a directory.
var FileNames = []string{"kleegraph.yaml", "kleegraph.yml"}

// Config represents a kleegraph.yaml configuration file.
type Config struct {
	Store  StoreConfig  `yaml:"store"`
	Parser ParserConfig `yaml:"parser"`
	Linker LinkerConfig `yaml:"linker"`
	Report ReportConfig `yaml:"report"`
}

// StoreConfig holds the coordinates of the external graph store.
// An empty URI selects the in-memory backend.
type StoreConfig struct {
	URI      string `yaml:"uri,omitempty"`
	User     string `yaml:"user,omitempty"`
	Password string `yaml:"password,omitempty"`
	Database string `yaml:"database,omitempty"`

	// ProbeTimeout bounds the connectivity probe.
	// Format: Go duration string (e.g., "3s")
	// Default: 3s
	ProbeTimeout string `yaml:"probe_timeout,omitempty"`
}

// ParserConfig tunes artifact parsing.
type ParserConfig struct {
	// Workers is the number of artifacts parsed concurrently.
	// Default: 4
	Workers int `yaml:"workers,omitempty"`
}

// LinkerConfig controls function role inference.
type LinkerConfig struct {
	// VulnerableMarker marks a function as vulnerable when its name contains
	// it, ignoring case. Default: "vulnerable"
	VulnerableMarker string `yaml:"vulnerable_marker,omitempty"`

	// EntrySymbol is the program entry function. Default: "main"
	EntrySymbol string `yaml:"entry_symbol,omitempty"`
}

// ReportConfig selects where the report is written.
type ReportConfig struct {
	// Path is the JSON report file. Default: vulnerability_report.json
	Path string `yaml:"path,omitempty"`

	// RedisURL enables publishing the report to Redis when set.
	RedisURL string `yaml:"redis_url,omitempty"`

	// RedisKeyPrefix prefixes report keys. Default: "kleegraph:report"
	RedisKeyPrefix string `yaml:"redis_key_prefix,omitempty"`

	// RedisChannel receives the id of each published report.
	// Default: "kleegraph:reports"
	RedisChannel string `yaml:"redis_channel,omitempty"`
}

// GetDatabase returns the configured database or the default value.
func (s StoreConfig) GetDatabase() string {
	if s.Database == "" {
		return DefaultDatabase
	}
	return s.Database
}

// GetProbeTimeout parses the probe timeout and returns a duration.
// Returns the default value if not set or invalid.
func (s StoreConfig) GetProbeTimeout() time.Duration {
	if s.ProbeTimeout == "" {
		return DefaultProbeTimeout
	}
	d, err := time.ParseDuration(s.ProbeTimeout)
	if err != nil || d <= 0 {
		return DefaultProbeTimeout
	}
	return d
}

// DefaultBoltPort is used when the store URI carries no port.
const DefaultBoltPort = 7687

// HostPort returns the host and port of the store URI for connectivity probes.
func (s StoreConfig) HostPort() (string, int, error) {
	u, err := url.Parse(s.URI)
	if err != nil {
		return "", 0, fmt.Errorf("invalid store uri: %w", err)
	}
	port := DefaultBoltPort
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return "", 0, fmt.Errorf("invalid store uri port %q: %w", p, err)
		}
	}
	return u.Hostname(), port, nil
}

// Enabled reports whether an external store is configured.
func (s StoreConfig) Enabled() bool {
	return s.URI != ""
}

// GetWorkers returns the configured worker count or the default value.
func (p ParserConfig) GetWorkers() int {
	if p.Workers <= 0 {
		return DefaultWorkers
	}
	return p.Workers
}

// GetVulnerableMarker returns the configured marker or the default value.
func (l LinkerConfig) GetVulnerableMarker() string {
	if l.VulnerableMarker == "" {
		return DefaultVulnerableMarker
	}
	return l.VulnerableMarker
}

// GetEntrySymbol returns the configured entry symbol or the default value.
func (l LinkerConfig) GetEntrySymbol() string {
	if l.EntrySymbol == "" {
		return DefaultEntrySymbol
	}
	return l.EntrySymbol
}

// GetPath returns the report path or the default value.
func (r ReportConfig) GetPath() string {
	if r.Path == "" {
		return DefaultReportPath
	}
	return r.Path
}

// GetRedisKeyPrefix returns the key prefix or the default value.
func (r ReportConfig) GetRedisKeyPrefix() string {
	if r.RedisKeyPrefix == "" {
		return DefaultRedisKeyPrefix
	}
	return r.RedisKeyPrefix
}

// GetRedisChannel returns the channel or the default value.
func (r ReportConfig) GetRedisChannel() string {
	if r.RedisChannel == "" {
		return DefaultRedisChannel
	}
	return r.RedisChannel
}

// Load reads and parses a kleegraph.yaml file from the given path.
// If the path is a directory, it looks for one of FileNames in that directory.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	configPath := path
	if info.IsDir() {
		configPath = ""
		for _, name := range FileNames {
			candidate := filepath.Join(path, name)
			if _, err := os.Stat(candidate); err == nil {
				configPath = candidate
				break
			}
		}
		if configPath == "" {
			return nil, fmt.Errorf("no kleegraph.yaml or kleegraph.yml found in %s", path)
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overrides fields from environment variables. lookup is usually
// os.LookupEnv; tests pass a map-backed function.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(EnvNeo4jURI); ok {
		c.Store.URI = v
	}
	if v, ok := lookup(EnvNeo4jUser); ok {
		c.Store.User = v
	}
	if v, ok := lookup(EnvNeo4jPassword); ok {
		c.Store.Password = v
	}
	if v, ok := lookup(EnvNeo4jDatabase); ok {
		c.Store.Database = v
	}
	if v, ok := lookup(EnvRedisURL); ok {
		c.Report.RedisURL = v
	}
	if v, ok := lookup(EnvWorkers); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return kgerr.New("config.ApplyEnv", kgerr.KindInvalidConfig,
				fmt.Errorf("%s must be an integer, got %q", EnvWorkers, v))
		}
		c.Parser.Workers = n
	}
	return nil
}

// supportedSchemes lists the URI schemes accepted by the Neo4j driver.
var supportedSchemes = map[string]bool{
	"neo4j": true, "neo4j+s": true, "neo4j+ssc": true,
	"bolt": true, "bolt+s": true, "bolt+ssc": true,
}

// Validate checks field values. The error is a *kgerr.Error of
// KindInvalidConfig.
func (c *Config) Validate() error {
	fail := func(format string, args ...any) error {
		return kgerr.New("config.Validate", kgerr.KindInvalidConfig, fmt.Errorf(format, args...))
	}

	if c.Store.URI != "" {
		u, err := url.Parse(c.Store.URI)
		if err != nil {
			return fail("invalid store uri: %v", err)
		}
		if !supportedSchemes[u.Scheme] {
			return fail("unsupported store uri scheme %q", u.Scheme)
		}
		if u.Hostname() == "" {
			return fail("store uri %q has no host", c.Store.URI)
		}
	}
	if c.Store.ProbeTimeout != "" {
		if d, err := time.ParseDuration(c.Store.ProbeTimeout); err != nil || d <= 0 {
			return fail("invalid probe_timeout %q", c.Store.ProbeTimeout)
		}
	}
	if c.Parser.Workers < 0 {
		return fail("workers must not be negative, got %d", c.Parser.Workers)
	}
	if c.Report.RedisURL != "" {
		if _, err := url.Parse(c.Report.RedisURL); err != nil {
			return fail("invalid redis_url: %v", err)
		}
	}
	return nil
}
