package model

import "time"

// Config is the full application configuration. Values come from
// defaults, the config file, VERIDEX_* environment variables, and CLI
// flags, in increasing priority.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Search      SearchConfig      `yaml:"search" mapstructure:"search"`
	Neo4j       Neo4jConfig       `yaml:"neo4j" mapstructure:"neo4j"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// HTTPConfig controls page fetching.
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	// MaxContentChars caps the plain text handed to the pipeline after
	// HTML extraction.
	MaxContentChars int     `yaml:"max_content_chars" mapstructure:"max_content_chars"`
	RespectRobots   bool    `yaml:"respect_robots" mapstructure:"respect_robots"`
	RequestsPerSec  float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	HTTPProxy       string  `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy      string  `yaml:"https_proxy" mapstructure:"https_proxy"`
}

// CacheConfig controls the fetched-page cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// ConcurrencyConfig bounds the claim verification fan-out.
type ConcurrencyConfig struct {
	// MaxParallelClaims is the verification worker pool size.
	MaxParallelClaims int `yaml:"max_parallel_claims" mapstructure:"max_parallel_claims"`
	// MaxClaims caps how many statements are extracted and verified
	// per scan.
	MaxClaims int `yaml:"max_claims" mapstructure:"max_claims"`
	// AnalysisTimeout bounds one full analysis run end to end.
	AnalysisTimeout time.Duration `yaml:"analysis_timeout" mapstructure:"analysis_timeout"`
}

// LLMConfig selects and configures the reasoning provider.
type LLMConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"`
	Model    string `yaml:"model" mapstructure:"model"`
	APIKey   string `yaml:"-" mapstructure:"api_key"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	// Timeout is per reasoning call, in seconds.
	Timeout int `yaml:"timeout" mapstructure:"timeout"`
	// MaxPromptChars caps the content embedded in extraction prompts.
	MaxPromptChars int     `yaml:"max_prompt_chars" mapstructure:"max_prompt_chars"`
	MaxTokens      int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature    float32 `yaml:"temperature" mapstructure:"temperature"`
}

// SearchConfig configures the external evidence-search capability.
type SearchConfig struct {
	APIKey string `yaml:"-" mapstructure:"api_key"`
	// Timeout is per search call, in seconds.
	Timeout        int     `yaml:"timeout" mapstructure:"timeout"`
	MaxQueryChars  int     `yaml:"max_query_chars" mapstructure:"max_query_chars"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
}

// Neo4jConfig configures the graph persistence store.
type Neo4jConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	URI      string `yaml:"uri" mapstructure:"uri"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"-" mapstructure:"password"`
	Database string `yaml:"database" mapstructure:"database"`
}

// OutputConfig controls CLI output behavior.
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:         30 * time.Second,
			UserAgent:       "Veridex/0.1 (+https://github.com/ppiankov/veridex)",
			MaxBodyBytes:    2_000_000,
			MaxContentChars: 15000,
			RespectRobots:   true,
			RequestsPerSec:  2,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     15 * time.Minute,
		},
		Concurrency: ConcurrencyConfig{
			MaxParallelClaims: 3,
			MaxClaims:         5,
			AnalysisTimeout:   5 * time.Minute,
		},
		LLM: LLMConfig{
			Provider:       "",
			Timeout:        60,
			MaxPromptChars: 5000,
			MaxTokens:      1500,
			Temperature:    0,
		},
		Search: SearchConfig{
			Timeout:        30,
			MaxQueryChars:  150,
			RequestsPerSec: 1,
		},
		Neo4j: Neo4jConfig{
			Enabled:  false,
			URI:      "bolt://localhost:7687",
			Username: "neo4j",
			Database: "neo4j",
		},
	}
}
