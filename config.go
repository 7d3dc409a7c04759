package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

const (
	defaultPort          = "8080"
	defaultDictionary    = "dictionary.txt"
	defaultDictionaryURL = "https://raw.githubusercontent.com/dwyl/english-words/master/words_alpha.txt"
	defaultGridSize      = 4
	maxGridSize          = 26
)

// Config holds the service settings.
type Config struct {
	Port           string
	GCPProjectID   string
	GCPRegion      string
	GeminiAPIKey   string
	GeminiModel    string
	DictionaryPath string
	DictionaryURL  string
	GridSize       int
	MinWordLength  int
	Workers        int
	LogLevel       slog.Level
}

// fileConfig mirrors Config for HCL decoding; nil means "not set in the file".
type fileConfig struct {
	Port           *string `hcl:"port,optional"`
	GCPProjectID   *string `hcl:"gcp_project_id,optional"`
	GCPRegion      *string `hcl:"gcp_region,optional"`
	GeminiAPIKey   *string `hcl:"gemini_api_key,optional"`
	GeminiModel    *string `hcl:"gemini_model,optional"`
	DictionaryPath *string `hcl:"dictionary_path,optional"`
	DictionaryURL  *string `hcl:"dictionary_url,optional"`
	GridSize       *int    `hcl:"grid_size,optional"`
	MinWordLength  *int    `hcl:"min_word_length,optional"`
	Workers        *int    `hcl:"workers,optional"`
	LogLevel       *string `hcl:"log_level,optional"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Port:           defaultPort,
		GCPRegion:      defaultRegion,
		GeminiModel:    defaultModel,
		DictionaryPath: defaultDictionary,
		DictionaryURL:  defaultDictionaryURL,
		GridSize:       defaultGridSize,
		MinWordLength:  3,
		LogLevel:       slog.LevelInfo,
	}
}

// Env is a snapshot of environment variables.
type Env map[string]string

// EnvFromList parses "NAME=value" pairs as returned by os.Environ.
func EnvFromList(list []string) Env {
	env := make(Env, len(list))
	for _, kv := range list {
		if name, value, ok := strings.Cut(kv, "="); ok {
			env[name] = value
		}
	}
	return env
}

// LoadConfig applies, in order, the defaults, the HCL file at path (if any)
// and the environment, then validates the result.
func LoadConfig(path string, env Env) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := cfg.applyFile(path, env); err != nil {
			return Config{}, err
		}
	}

	if v := env["PORT"]; v != "" {
		cfg.Port = v
	}
	if v := env["GCP_PROJECT_ID"]; v != "" {
		cfg.GCPProjectID = v
	}
	if v := env["GCP_REGION"]; v != "" {
		cfg.GCPRegion = v
	}
	if v := env["GEMINI_API_KEY"]; v != "" {
		cfg.GeminiAPIKey = v
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string, env Env) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("parse config %s: %w", path, diags)
	}

	var fc fileConfig
	if diags := gohcl.DecodeBody(file.Body, env.evalContext(), &fc); diags.HasErrors() {
		return fmt.Errorf("decode config %s: %w", path, diags)
	}

	setString(&c.Port, fc.Port)
	setString(&c.GCPProjectID, fc.GCPProjectID)
	setString(&c.GCPRegion, fc.GCPRegion)
	setString(&c.GeminiAPIKey, fc.GeminiAPIKey)
	setString(&c.GeminiModel, fc.GeminiModel)
	setString(&c.DictionaryPath, fc.DictionaryPath)
	setString(&c.DictionaryURL, fc.DictionaryURL)
	if fc.GridSize != nil {
		c.GridSize = *fc.GridSize
	}
	if fc.MinWordLength != nil {
		c.MinWordLength = *fc.MinWordLength
	}
	if fc.Workers != nil {
		c.Workers = *fc.Workers
	}
	if fc.LogLevel != nil {
		if err := c.LogLevel.UnmarshalText([]byte(*fc.LogLevel)); err != nil {
			return fmt.Errorf("config %s: log_level: %w", path, err)
		}
	}
	return nil
}

// evalContext exposes the environment to config expressions as env.NAME.
func (e Env) evalContext() *hcl.EvalContext {
	vars := map[string]cty.Value{}
	for name, value := range e {
		if hclIdentifier(name) {
			vars[name] = cty.StringVal(value)
		}
	}
	env := cty.EmptyObjectVal
	if len(vars) > 0 {
		env = cty.ObjectVal(vars)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": env},
	}
}

func hclIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func (c *Config) validate() error {
	if c.Port == "" {
		return fmt.Errorf("config: port is empty")
	}
	if c.GridSize < 1 || c.GridSize > maxGridSize {
		return fmt.Errorf("config: grid_size %d out of range 1..%d", c.GridSize, maxGridSize)
	}
	if c.MinWordLength < 1 {
		return fmt.Errorf("config: min_word_length must be at least 1, got %d", c.MinWordLength)
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: workers must not be negative, got %d", c.Workers)
	}
	if c.DictionaryPath == "" && c.DictionaryURL == "" {
		return fmt.Errorf("config: dictionary_path or dictionary_url is required")
	}
	return nil
}
