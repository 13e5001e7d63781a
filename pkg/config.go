package pkg

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read when no config path is given
const DefaultConfigFile = "iamgen.yaml"

// Config holds all settings of a generation run
type Config struct {
	Source    SourceConfig  `yaml:"source"`
	Output    OutputConfig  `yaml:"output"`
	FixesFile string        `yaml:"fixes_file"` // YAML laid over the built-in fixes
	Logging   LoggingConfig `yaml:"logging"`
}

// SourceConfig configures where pages come from
type SourceConfig struct {
	BaseURL   string   `yaml:"base_url"`
	PagesDir  string   `yaml:"pages_dir"` // read saved pages instead of downloading
	SaveDir   string   `yaml:"save_dir"`  // keep downloaded pages here
	UserAgent string   `yaml:"user_agent"`
	Timeout   string   `yaml:"timeout"`
	Services  []string `yaml:"services"` // empty means every service of the index page
}

// OutputConfig configures the generated package
type OutputConfig struct {
	Dir          string `yaml:"dir"`
	Package      string `yaml:"package"`
	PolicyImport string `yaml:"policy_import"`
	Verify       bool   `yaml:"verify"`
}

// LoggingConfig configures the zap logger
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			BaseURL:   DefaultBaseURL,
			UserAgent: defaultUserAgent,
			Timeout:   "60s",
		},
		Output: OutputConfig{
			Dir:          DefaultPackageName,
			Package:      DefaultPackageName,
			PolicyImport: DefaultPolicyImport,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from a YAML file of the input filesystem.
// A missing file yields the defaults. Environment overrides apply in both cases.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := afero.ReadFile(inputFs, path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies IAMGEN_* environment variable overrides
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("IAMGEN_BASE_URL"); v != "" {
		c.Source.BaseURL = v
	}
	if v := os.Getenv("IAMGEN_PAGES_DIR"); v != "" {
		c.Source.PagesDir = v
	}
	if v := os.Getenv("IAMGEN_SAVE_DIR"); v != "" {
		c.Source.SaveDir = v
	}
	if v := os.Getenv("IAMGEN_USER_AGENT"); v != "" {
		c.Source.UserAgent = v
	}
	if v := os.Getenv("IAMGEN_TIMEOUT"); v != "" {
		c.Source.Timeout = v
	}
	if v := os.Getenv("IAMGEN_SERVICES"); v != "" {
		c.Source.Services = splitList(v)
	}
	if v := os.Getenv("IAMGEN_OUTPUT_DIR"); v != "" {
		c.Output.Dir = v
	}
	if v := os.Getenv("IAMGEN_PACKAGE"); v != "" {
		c.Output.Package = v
	}
	if v := os.Getenv("IAMGEN_FIXES"); v != "" {
		c.FixesFile = v
	}
	if v := os.Getenv("IAMGEN_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks settings that would only fail halfway through a run
func (c *Config) Validate() error {
	if c.Output.Dir == "" {
		return fmt.Errorf("output directory must not be empty")
	}
	if c.Output.Package == "" || PascalCase(c.Output.Package) == "X" {
		return fmt.Errorf("invalid package name %q", c.Output.Package)
	}
	if _, err := time.ParseDuration(c.Source.Timeout); c.Source.Timeout != "" && err != nil {
		return fmt.Errorf("invalid timeout %q: %w", c.Source.Timeout, err)
	}
	return nil
}

// GetTimeout returns the request timeout as a duration
func (c *Config) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Source.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// EmitOptions returns the options of the generated package
func (c *Config) EmitOptions() EmitOptions {
	return EmitOptions{
		PackageName:  c.Output.Package,
		PolicyImport: c.Output.PolicyImport,
	}
}

// NewFetcher returns the fetcher the source settings describe
func (c *Config) NewFetcher() Fetcher {
	var fetcher Fetcher
	if c.Source.PagesDir != "" {
		fetcher = NewDirFetcher(c.Source.PagesDir)
	} else {
		opts := []FetcherOption{WithTimeout(c.GetTimeout())}
		if c.Source.BaseURL != "" {
			opts = append(opts, WithBaseURL(c.Source.BaseURL))
		}
		if c.Source.UserAgent != "" {
			opts = append(opts, WithUserAgent(c.Source.UserAgent))
		}
		fetcher = NewHTTPFetcher(opts...)
	}
	if c.Source.SaveDir != "" {
		fetcher = &SavingFetcher{Fetcher: fetcher, Dir: c.Source.SaveDir}
	}
	return fetcher
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
