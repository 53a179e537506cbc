package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"k8s.io/apimachinery/pkg/util/validation"
)

// Source modes
const (
	SourceAPIServer = "apiserver"
	SourceMock      = "mock"
)

// Renderers
const (
	RendererTea   = "tea"
	RendererPlain = "plain"
)

const defaultLogFile = "/tmp/kubmonitor.log"

// Config holds the application configuration
type Config struct {
	// Cluster configuration
	Kubeconfig string `mapstructure:"kubeconfig"`
	Context    string `mapstructure:"context"`
	Namespace  string `mapstructure:"namespace"`

	// Source configuration
	SourceMode string `mapstructure:"source_mode"`
	MockSeed   int64  `mapstructure:"mock_seed"`

	// Refresh configuration
	RefreshInterval    time.Duration `mapstructure:"refresh_interval"`
	LogRefreshInterval time.Duration `mapstructure:"log_refresh_interval"`
	Timeout            time.Duration `mapstructure:"timeout"`
	PollInterval       time.Duration `mapstructure:"poll_interval"`
	Async              bool          `mapstructure:"async"`

	// Cache configuration
	CacheTTL time.Duration `mapstructure:"cache_ttl"`

	// UI configuration
	Renderer     string `mapstructure:"renderer"`
	NoColor      bool   `mapstructure:"no_color"`
	Locale       string `mapstructure:"locale"`
	LogTailLines int    `mapstructure:"log_tail_lines"`

	// Logging configuration
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

// LoadConfig loads configuration from file and environment. Keys are
// nested (refresh.interval) and may be overridden by KUBMONITOR_ variables
// such as KUBMONITOR_REFRESH_INTERVAL.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("cluster.kubeconfig", "")
	v.SetDefault("cluster.context", "")
	v.SetDefault("cluster.namespace", "")

	v.SetDefault("source.mode", SourceAPIServer)
	v.SetDefault("source.mock_seed", 42)

	v.SetDefault("refresh.interval", "2s")
	v.SetDefault("refresh.log_interval", "2s")
	v.SetDefault("refresh.timeout", "5s")
	v.SetDefault("refresh.poll_interval", "100ms")
	v.SetDefault("refresh.async", false)

	v.SetDefault("cache.ttl", "60s")

	v.SetDefault("ui.renderer", RendererTea)
	v.SetDefault("ui.no_color", false)
	v.SetDefault("ui.locale", "auto")
	v.SetDefault("ui.log_tail_lines", 200)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", defaultLogFile)

	// Home kubeconfig default
	if home, err := os.UserHomeDir(); err == nil {
		v.SetDefault("cluster.kubeconfig", filepath.Join(home, ".kube", "config"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.kubmonitor")
		v.AddConfigPath("/etc/kubmonitor")
	}

	v.SetEnvPrefix("KUBMONITOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Kubeconfig:         v.GetString("cluster.kubeconfig"),
		Context:            v.GetString("cluster.context"),
		Namespace:          v.GetString("cluster.namespace"),
		SourceMode:         v.GetString("source.mode"),
		MockSeed:           v.GetInt64("source.mock_seed"),
		RefreshInterval:    v.GetDuration("refresh.interval"),
		LogRefreshInterval: v.GetDuration("refresh.log_interval"),
		Timeout:            v.GetDuration("refresh.timeout"),
		PollInterval:       v.GetDuration("refresh.poll_interval"),
		Async:              v.GetBool("refresh.async"),
		CacheTTL:           v.GetDuration("cache.ttl"),
		Renderer:           v.GetString("ui.renderer"),
		NoColor:            v.GetBool("ui.no_color"),
		Locale:             v.GetString("ui.locale"),
		LogTailLines:       v.GetInt("ui.log_tail_lines"),
		LogLevel:           v.GetString("logging.level"),
		LogFile:            v.GetString("logging.file"),
	}
	cfg.Normalize()
	return cfg, nil
}

// Normalize replaces zero or blank values with defaults
func (c *Config) Normalize() {
	c.SourceMode = strings.ToLower(strings.TrimSpace(c.SourceMode))
	if c.SourceMode == "" {
		c.SourceMode = SourceAPIServer
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = 2 * time.Second
	}
	if c.LogRefreshInterval <= 0 {
		c.LogRefreshInterval = c.RefreshInterval
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 100 * time.Millisecond
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 60 * time.Second
	}
	c.Renderer = strings.ToLower(strings.TrimSpace(c.Renderer))
	if c.Renderer == "" {
		c.Renderer = RendererTea
	}
	if c.Locale == "" {
		c.Locale = "auto"
	}
	if c.LogTailLines <= 0 {
		c.LogTailLines = 200
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFile == "" {
		c.LogFile = defaultLogFile
	}
}

// Validate checks the settings a session cannot start without
func (c *Config) Validate() error {
	if c.Namespace == "" {
		return errors.New("namespace is required")
	}
	if errs := validation.IsDNS1123Label(c.Namespace); len(errs) > 0 {
		return fmt.Errorf("invalid namespace %q: %s", c.Namespace, strings.Join(errs, "; "))
	}
	switch c.SourceMode {
	case SourceAPIServer, SourceMock:
	default:
		return fmt.Errorf("unknown source mode %q (want %s or %s)", c.SourceMode, SourceAPIServer, SourceMock)
	}
	switch c.Renderer {
	case RendererTea, RendererPlain:
	default:
		return fmt.Errorf("unknown renderer %q (want %s or %s)", c.Renderer, RendererTea, RendererPlain)
	}
	return nil
}
