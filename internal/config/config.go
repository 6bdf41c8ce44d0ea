package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the fieldparity.yaml configuration.
type Config struct {
	Repo          string        `yaml:"repo"`
	SchemaA       SchemaAConfig `yaml:"schema_a"`
	SchemaB       SchemaBConfig `yaml:"schema_b"`
	Resources     []string      `yaml:"resources"`
	IgnoredFields []string      `yaml:"ignored_fields"`
	Watch         WatchConfig   `yaml:"watch"`
}

// SchemaAConfig locates the reference interface/type-alias definitions.
type SchemaAConfig struct {
	Root      string `yaml:"root"`
	Extension string `yaml:"extension"`
	// Parser selects the extraction strategy: "regex" or "treesitter".
	Parser    string              `yaml:"parser"`
	Overrides map[string][]string `yaml:"overrides"`
}

// SchemaBConfig locates the struct declarations being checked.
type SchemaBConfig struct {
	Root      string `yaml:"root"`
	Extension string `yaml:"extension"`
}

// WatchConfig controls --watch re-runs.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Parser names.
const (
	ParserRegex      = "regex"
	ParserTreeSitter = "treesitter"
)

// DefaultResources is the curated list checked when no resource is given.
var DefaultResources = []string{
	"audio",
	"batches",
	"chat",
	"chat_stream",
	"chatkit",
	"completions",
	"containers",
	"conversations",
	"embeddings",
	"evals",
	"files",
	"fine_tuning",
	"graders",
	"images",
	"messages",
	"models",
	"moderations",
	"responses",
	"run_steps",
	"runs",
	"threads",
	"uploads",
	"vector_stores",
	"videos",
	"webhooks",
	"assistants",
	"assistant_stream",
}

// DefaultOverrides maps resources whose reference files do not follow the
// naming convention to their paths under the Schema-A root.
var DefaultOverrides = map[string][]string{
	"assistants":       {"beta/assistants.ts"},
	"assistant_stream": {"beta/assistants.ts"},
	"threads":          {"beta/threads.ts", "beta/threads/threads.ts"},
	"runs":             {"beta/threads/runs.ts", "beta/threads/runs/runs.ts"},
	"run_steps":        {"beta/threads/runs/steps.ts"},
	"messages":         {"beta/threads/messages.ts"},
	"chatkit": {
		"beta/chatkit.ts",
		"beta/chatkit/chatkit.ts",
		"beta/chatkit/threads.ts",
		"beta/chatkit/sessions.ts",
	},
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	overrides := make(map[string][]string, len(DefaultOverrides))
	for k, v := range DefaultOverrides {
		overrides[k] = slices.Clone(v)
	}
	return &Config{
		Repo: ".",
		SchemaA: SchemaAConfig{
			Root:      "../openai-node/src/resources",
			Extension: ".ts",
			Parser:    ParserRegex,
			Overrides: overrides,
		},
		SchemaB: SchemaBConfig{
			Root:      "include/openai",
			Extension: ".hpp",
		},
		Resources:     slices.Clone(DefaultResources),
		IgnoredFields: []string{"static"},
		Watch: WatchConfig{
			Debounce: 250 * time.Millisecond,
		},
	}
}

// Load reads a configuration file from the given path.
// Missing fields are filled with defaults. An overrides table in the file
// replaces the default table as a whole.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	// yaml.v3 merges into a non-nil map, so a table from the file would be
	// added to the defaults instead of replacing them.
	cfg.SchemaA.Overrides = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	// Ensure required defaults
	def := Default()
	if cfg.Repo == "" {
		cfg.Repo = def.Repo
	}
	// A relative repo is relative to the directory holding the file.
	if !filepath.IsAbs(cfg.Repo) {
		cfg.Repo = filepath.Join(filepath.Dir(path), cfg.Repo)
	}
	if cfg.SchemaA.Overrides == nil {
		cfg.SchemaA.Overrides = def.SchemaA.Overrides
	}
	if cfg.SchemaA.Root == "" {
		cfg.SchemaA.Root = def.SchemaA.Root
	}
	if cfg.SchemaA.Extension == "" {
		cfg.SchemaA.Extension = def.SchemaA.Extension
	}
	if cfg.SchemaA.Parser == "" {
		cfg.SchemaA.Parser = def.SchemaA.Parser
	}
	if cfg.SchemaB.Root == "" {
		cfg.SchemaB.Root = def.SchemaB.Root
	}
	if cfg.SchemaB.Extension == "" {
		cfg.SchemaB.Extension = def.SchemaB.Extension
	}
	if len(cfg.Resources) == 0 {
		cfg.Resources = def.Resources
	}
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = def.Watch.Debounce
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports settings that cannot be acted on.
func (c *Config) Validate() error {
	switch c.SchemaA.Parser {
	case ParserRegex, ParserTreeSitter:
	default:
		return fmt.Errorf("unknown schema_a.parser %q (want %q or %q)", c.SchemaA.Parser, ParserRegex, ParserTreeSitter)
	}
	return nil
}

// SchemaARoot returns the Schema-A root resolved against Repo.
func (c *Config) SchemaARoot() string {
	return c.resolve(c.SchemaA.Root)
}

// SchemaBRoot returns the Schema-B root resolved against Repo.
func (c *Config) SchemaBRoot() string {
	return c.resolve(c.SchemaB.Root)
}

// IsIgnoredField returns true if the field name is excluded from both sides.
func (c *Config) IsIgnoredField(name string) bool {
	return slices.Contains(c.IgnoredFields, name)
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.Repo, p)
}
