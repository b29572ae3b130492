package config

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/vango-dev/spa/internal/errors"
	"github.com/vango-dev/spa/pkg/reports"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "spa.json"

	// EnvFileName is the dotenv file read by LoadEnv when no files are given.
	EnvFileName = ".env"

	// DefaultPort is the default server port.
	DefaultPort = 3000

	// DefaultHost is the default bind host. Empty binds every interface.
	DefaultHost = ""

	// DefaultDist is the default distribution directory.
	DefaultDist = "dist"

	DefaultStaticPrefix = "/static"
	DefaultErrorPage    = "/error"
	DefaultLogEndpoint  = "/api/log-error"
	DefaultLivePath     = "/_spa/live"
)

// Report store kinds.
const (
	StoreMemory   = "memory"
	StoreDisk     = "disk"
	StoreS3       = "s3"
	StorePostgres = "postgres"
)

// Config represents spa.json.
type Config struct {
	// Name is the application name shown by the CLI.
	Name string `json:"name,omitempty"`

	// Port is the port the server listens on.
	Port int `json:"port,omitempty"`

	// Host is the interface to bind to.
	Host string `json:"host,omitempty"`

	// Dist is the distribution directory. The built frontend lives in
	// <dist>/frontend.
	Dist string `json:"dist,omitempty"`

	// ErrorPage is where the client is sent after a fatal error.
	ErrorPage string `json:"errorPage,omitempty"`

	// LogEndpoint receives fatal error reports.
	LogEndpoint string `json:"logEndpoint,omitempty"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `json:"logLevel,omitempty"`

	// AccessLog writes one line per request.
	AccessLog bool `json:"accessLog,omitempty"`

	Static  StaticConfig  `json:"static,omitempty"`
	Live    LiveConfig    `json:"live,omitempty"`
	Reports ReportsConfig `json:"reports,omitempty"`
	Posts   PostsConfig   `json:"posts,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// StaticConfig contains static file serving configuration.
type StaticConfig struct {
	// Prefix is the URL prefix for static files.
	Prefix string `json:"prefix,omitempty"`

	// Cache turns on long-lived Cache-Control headers.
	Cache bool `json:"cache,omitempty"`

	// MaxAge is the max-age in seconds of non-fingerprinted files when
	// Cache is set. Zero uses the server's default.
	MaxAge int `json:"maxAge,omitempty"`
}

// LiveConfig controls server-side rendering and the live endpoint.
type LiveConfig struct {
	// Disabled turns off pre-rendering and the live endpoint.
	Disabled bool `json:"disabled,omitempty"`

	// Path is the WebSocket endpoint.
	Path string `json:"path,omitempty"`
}

// ReportsConfig selects where received error reports are stored.
type ReportsConfig struct {
	// Store is one of memory, disk, s3 or postgres.
	Store string `json:"store,omitempty"`

	// Capacity bounds the memory store.
	Capacity int `json:"capacity,omitempty"`

	// Dir is the disk store's directory.
	Dir string `json:"dir,omitempty"`

	Bucket    string `json:"bucket,omitempty"`
	Prefix    string `json:"prefix,omitempty"`
	Region    string `json:"region,omitempty"`
	Endpoint  string `json:"endpoint,omitempty"`
	PathStyle bool   `json:"pathStyle,omitempty"`

	// DSN is the postgres connection string.
	DSN string `json:"dsn,omitempty"`
}

// PostsConfig configures the demo post source.
type PostsConfig struct {
	// Source is "random" (served by /api/rnd) or "memory".
	Source string `json:"source,omitempty"`

	// BaseURL is where the random source fetches from. Empty means the
	// server itself.
	BaseURL string `json:"baseURL,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads configuration from the specified directory.
// It looks for spa.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E100").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				Wrap(err)
		}
		return nil, errors.New("E101").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		se := errors.New("E101").WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error())
		if serr, ok := err.(*json.SyntaxError); ok {
			line, col := position(data, serr.Offset)
			se.WithLocation(path, line, col)
		}
		return nil, se
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// LoadOrDefault loads the spa.json found in dir or the nearest parent
// directory holding one. With no spa.json anywhere up the tree it yields
// the defaults.
func LoadOrDefault(dir string) (*Config, error) {
	root, err := FindProjectRoot(dir)
	if err != nil {
		if errors.HasCode(err, "E100") {
			return New(), nil
		}
		return nil, err
	}
	return Load(root)
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line, col := 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}

// LoadEnv loads dotenv files into the process environment. Variables that
// are already set are not overwritten. Missing files are skipped; with no
// arguments ".env" is tried.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{EnvFileName}
	}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return errors.New("E103").WithDetail("Failed to read " + f).Wrap(err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from environment variables. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.New("E103").WithDetailf("%s=%q is not a number", key, v).Wrap(err)
		}
		*dst = n
		return nil
	}
	flag := func(key string, dst *bool) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return errors.New("E103").WithDetailf("%s=%q is not a boolean", key, v).Wrap(err)
		}
		*dst = b
		return nil
	}

	str("DIST_PATH", &c.Dist)
	str("HOST", &c.Host)
	str("SPA_LOG_LEVEL", &c.LogLevel)
	str("SPA_REPORT_STORE", &c.Reports.Store)
	str("SPA_REPORT_DIR", &c.Reports.Dir)
	str("SPA_REPORT_DSN", &c.Reports.DSN)
	str("SPA_REPORT_BUCKET", &c.Reports.Bucket)
	str("SPA_REPORT_PREFIX", &c.Reports.Prefix)
	str("SPA_REPORT_REGION", &c.Reports.Region)
	str("SPA_REPORT_ENDPOINT", &c.Reports.Endpoint)
	str("SPA_POSTS_SOURCE", &c.Posts.Source)

	if err := num("PORT", &c.Port); err != nil {
		return err
	}
	if err := num("SPA_REPORT_CAPACITY", &c.Reports.Capacity); err != nil {
		return err
	}
	if err := flag("SPA_ACCESS_LOG", &c.AccessLog); err != nil {
		return err
	}
	if err := flag("SPA_LIVE_DISABLED", &c.Live.Disabled); err != nil {
		return err
	}
	return flag("SPA_REPORT_PATH_STYLE", &c.Reports.PathStyle)
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Dist == "" {
		c.Dist = DefaultDist
	}
	if c.ErrorPage == "" {
		c.ErrorPage = DefaultErrorPage
	}
	if c.LogEndpoint == "" {
		c.LogEndpoint = DefaultLogEndpoint
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Static.Prefix == "" {
		c.Static.Prefix = DefaultStaticPrefix
	}
	if c.Live.Path == "" {
		c.Live.Path = DefaultLivePath
	}
	if c.Reports.Store == "" {
		c.Reports.Store = StoreMemory
	}
	if c.Reports.Capacity == 0 {
		c.Reports.Capacity = reports.DefaultCapacity
	}
	if c.Reports.Dir == "" {
		c.Reports.Dir = "reports"
	}
	if c.Posts.Source == "" {
		c.Posts.Source = "random"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return errors.New("E102").
			WithDetailf("Port must be between 0 and 65535, got %d", c.Port)
	}
	switch c.Reports.Store {
	case StoreMemory, StoreDisk:
	case StoreS3:
		if c.Reports.Bucket == "" {
			return errors.New("E104").
				WithDetail("The s3 store needs reports.bucket").
				WithSuggestion("Set reports.bucket in " + ConfigFileName + " or SPA_REPORT_BUCKET")
		}
	case StorePostgres:
		if c.Reports.DSN == "" {
			return errors.New("E104").
				WithDetail("The postgres store needs reports.dsn").
				WithSuggestion("Set reports.dsn in " + ConfigFileName + " or SPA_REPORT_DSN")
		}
	default:
		return errors.New("E104").WithDetailf("Unknown store %q", c.Reports.Store)
	}
	switch c.Posts.Source {
	case "random", "memory":
	default:
		return errors.Newf(errors.CategoryConfig, "unknown posts source %q", c.Posts.Source).
			WithSuggestion("Use \"random\" or \"memory\"")
	}
	for _, p := range []string{c.ErrorPage, c.LogEndpoint, c.Static.Prefix, c.Live.Path} {
		if !strings.HasPrefix(p, "/") {
			return errors.Newf(errors.CategoryConfig, "path %q must start with /", p)
		}
	}
	return nil
}

// Address returns the listen address.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// URL returns the base URL clients use to reach the server.
func (c *Config) URL() string {
	host := c.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(c.Port))
}

// resolve makes path absolute relative to the config file's directory.
func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// DistPath returns the distribution directory.
func (c *Config) DistPath() string {
	return c.resolve(c.Dist)
}

// FrontendPath returns the built frontend directory.
func (c *Config) FrontendPath() string {
	return filepath.Join(c.DistPath(), "frontend")
}

// ReportOptions converts the reports section for reports.Open.
func (c *Config) ReportOptions() reports.Options {
	r := c.Reports
	return reports.Options{
		Kind:      r.Store,
		Capacity:  r.Capacity,
		Path:      filepath.Join(c.resolve(r.Dir), "errors.jsonl"),
		Bucket:    r.Bucket,
		Prefix:    r.Prefix,
		Region:    r.Region,
		Endpoint:  r.Endpoint,
		PathStyle: r.PathStyle,
		DSN:       r.DSN,
	}
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing spa.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E100").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}
