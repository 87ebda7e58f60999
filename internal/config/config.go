package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every configuration key in the environment.
const EnvPrefix = "SETTIMO_"

const (
	defaultEnvFile         = ".env"
	defaultPort            = "8080"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultDataDir         = "data"
	defaultCacheTTL        = 5 * time.Minute
	defaultFetchTimeout    = 8 * time.Second
	defaultLocalesDir      = "locales"
	defaultContentDir      = "content"
	defaultPublicDir       = "public"
	defaultTemplatesDir    = "templates"
	defaultLang            = "it"
	defaultBrand           = "Settimo Hub"
	defaultLogLevel        = "info"
	defaultSessionTTL      = 30 * time.Minute
	defaultEnvironment     = "dev"
	minSigningKeyLength    = 16
)

// Config captures the runtime configuration of the web server.
type Config struct {
	Env     string
	Server  ServerConfig
	Data    DataConfig
	Site    SiteConfig
	Session SessionConfig
	Links   LinksConfig
	Log     LogConfig
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DataConfig selects the catalog source. URL, when set, wins over Dir.
type DataConfig struct {
	Dir          string
	URL          string
	CacheTTL     time.Duration
	FetchTimeout time.Duration
}

// SiteConfig holds presentation settings and asset locations.
type SiteConfig struct {
	Brand        string
	BaseURL      string
	DefaultLang  string
	Languages    []string
	LocalesDir   string
	ContentDir   string
	PublicDir    string
	TemplatesDir string
}

// SessionConfig controls visitor sessions.
type SessionConfig struct {
	TTL        time.Duration
	SigningKey string
	Secure     bool
}

// LinksConfig overrides outbound link hosts.
type LinksConfig struct {
	MessagingBase string
	MapsSearch    string
}

// LogConfig controls logging.
type LogConfig struct {
	Level string
}

// Production reports whether the server runs in production.
func (c Config) Production() bool {
	return c.Env == "prod" || c.Env == "production"
}

// ValidationError is returned when configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	configFile   string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithConfigFile reads a YAML file of keys (with or without the SETTIMO_ prefix).
// It overrides SETTIMO_CONFIG.
func WithConfigFile(path string) Option {
	return func(o *loaderOptions) {
		o.configFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over every other source.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv ignores the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load resolves the configuration. Precedence, lowest first: defaults, .env file,
// YAML config file, process environment, WithEnvMap values.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	sysValues := systemEnv(options.useSystemEnv)

	// the config file may itself be named by any layer above it
	configFile := options.configFile
	if configFile == "" {
		configFile = firstValue(EnvPrefix+"CONFIG", options.envMap, sysValues, dotEnvValues)
	}
	fileValues, err := loadYAMLFile(configFile)
	if err != nil {
		return Config{}, err
	}

	l := &loader{lookup: func(key string) (string, bool) {
		for _, source := range []map[string]string{options.envMap, sysValues, fileValues, dotEnvValues} {
			if value, ok := source[key]; ok {
				return value, true
			}
		}
		return "", false
	}}

	port := l.string("PORT", "")
	if port == "" {
		// platforms such as Cloud Run inject a bare PORT
		if v, ok := l.lookup("PORT"); ok && v != "" {
			port = v
		} else {
			port = defaultPort
		}
	}

	cfg := Config{
		Env: strings.ToLower(l.string("ENV", defaultEnvironment)),
		Server: ServerConfig{
			Port:            port,
			ReadTimeout:     l.duration("READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:    l.duration("WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:     l.duration("IDLE_TIMEOUT", defaultIdleTimeout),
			ShutdownTimeout: l.duration("SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		},
		Data: DataConfig{
			Dir:          l.string("DATA_DIR", defaultDataDir),
			URL:          l.string("DATA_URL", ""),
			CacheTTL:     l.duration("CACHE_TTL", defaultCacheTTL),
			FetchTimeout: l.duration("FETCH_TIMEOUT", defaultFetchTimeout),
		},
		Site: SiteConfig{
			Brand:        l.string("BRAND", defaultBrand),
			BaseURL:      strings.TrimRight(l.string("BASE_URL", ""), "/"),
			DefaultLang:  strings.ToLower(l.string("DEFAULT_LANG", defaultLang)),
			Languages:    l.csv("LANGUAGES", []string{"it", "en"}),
			LocalesDir:   l.string("LOCALES_DIR", defaultLocalesDir),
			ContentDir:   l.string("CONTENT_DIR", defaultContentDir),
			PublicDir:    l.string("PUBLIC_DIR", defaultPublicDir),
			TemplatesDir: l.string("TEMPLATES_DIR", defaultTemplatesDir),
		},
		Session: SessionConfig{
			TTL:        l.duration("SESSION_TTL", defaultSessionTTL),
			SigningKey: l.string("SESSION_KEY", ""),
		},
		Links: LinksConfig{
			MessagingBase: l.string("MESSAGING_BASE", ""),
			MapsSearch:    l.string("MAPS_SEARCH", ""),
		},
		Log: LogConfig{
			Level: strings.ToLower(l.string("LOG_LEVEL", defaultLogLevel)),
		},
	}
	cfg.Session.Secure = l.bool("SECURE_COOKIES", cfg.Production())

	if err := validateConfig(cfg, l.invalid); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config, invalid []string) error {
	missing := append([]string(nil), invalid...)

	if n, err := strconv.Atoi(cfg.Server.Port); err != nil || n <= 0 || n > 65535 {
		missing = append(missing, "Server.Port")
	}
	if cfg.Data.Dir == "" && cfg.Data.URL == "" {
		missing = append(missing, "Data.Dir")
	}
	if cfg.Data.URL != "" {
		if u, err := url.Parse(cfg.Data.URL); err != nil || u.Scheme == "" || u.Host == "" {
			missing = append(missing, "Data.URL")
		}
	}
	if cfg.Data.CacheTTL < 0 {
		missing = append(missing, "Data.CacheTTL")
	}
	if cfg.Session.TTL <= 0 {
		missing = append(missing, "Session.TTL")
	}
	if cfg.Site.DefaultLang == "" {
		missing = append(missing, "Site.DefaultLang")
	}
	if cfg.Production() && len(cfg.Session.SigningKey) < minSigningKeyLength {
		missing = append(missing, "Session.SigningKey")
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		missing = append(missing, "Log.Level")
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return &ValidationError{fields: dedupe(missing)}
	}
	return nil
}

type loader struct {
	lookup  func(key string) (string, bool)
	invalid []string
}

func (l *loader) raw(key string) (string, bool) {
	value, ok := l.lookup(EnvPrefix + key)
	value = strings.TrimSpace(value)
	return value, ok && value != ""
}

func (l *loader) string(key, fallback string) string {
	if value, ok := l.raw(key); ok {
		return value
	}
	return fallback
}

func (l *loader) duration(key string, fallback time.Duration) time.Duration {
	value, ok := l.raw(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		l.invalid = append(l.invalid, EnvPrefix+key)
		return fallback
	}
	return d
}

func (l *loader) bool(key string, fallback bool) bool {
	value, ok := l.raw(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	l.invalid = append(l.invalid, EnvPrefix+key)
	return fallback
}

func (l *loader) csv(key string, fallback []string) []string {
	value, ok := l.raw(key)
	if !ok {
		return fallback
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.ToLower(strings.TrimSpace(part)); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	values, err := godotenv.Read(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	return values, nil
}

// loadYAMLFile reads a flat mapping of keys to scalars. Keys are upper-cased and
// given the SETTIMO_ prefix when it is missing.
func loadYAMLFile(path string) (map[string]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", path, err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", path, err)
	}
	values := make(map[string]string, len(doc))
	for key, value := range doc {
		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" || value == nil {
			continue
		}
		if !strings.HasPrefix(k, EnvPrefix) {
			k = EnvPrefix + k
		}
		switch v := value.(type) {
		case []any:
			parts := make([]string, 0, len(v))
			for _, p := range v {
				parts = append(parts, fmt.Sprint(p))
			}
			values[k] = strings.Join(parts, ",")
		default:
			values[k] = fmt.Sprint(v)
		}
	}
	return values, nil
}

func systemEnv(enabled bool) map[string]string {
	if !enabled {
		return nil
	}
	values := make(map[string]string)
	for _, entry := range os.Environ() {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || strings.TrimSpace(key) == "" {
			continue
		}
		values[key] = value
	}
	return values
}

func firstValue(key string, sources ...map[string]string) string {
	for _, source := range sources {
		if value, ok := source[key]; ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i > 0 && s == sorted[i-1] {
			continue
		}
		out = append(out, s)
	}
	return out
}
