// Package config provides the configuration schema and loader for the
// grammar correction service.
package config

import "time"

// Config is the root configuration structure for the service.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	RuleBackend  RuleBackendConfig  `yaml:"rule_backend"`
	ModelBackend ModelBackendConfig `yaml:"model_backend"`
	Processing   ProcessingConfig   `yaml:"processing"`
	Cache        CacheConfig        `yaml:"cache"`
	CORS         CORSConfig         `yaml:"cors"`
}

// ServerConfig holds network, auth, and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity. Valid values: "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level"`

	// APIKey, when non-empty, is required via the X-API-Key header on
	// every request to /v1/*.
	APIKey string `yaml:"api_key"`
}

// RuleBackendConfig configures the rule-based grammar engine client.
type RuleBackendConfig struct {
	// URL is the base address of the rule backend (e.g. a LanguageTool
	// server), without a trailing "/check" or "/languages".
	URL string `yaml:"url"`

	// Timeout bounds a single check request.
	Timeout time.Duration `yaml:"timeout"`
}

// ModelBackendConfig configures the generative model backend client.
type ModelBackendConfig struct {
	// Provider selects the llmprovider implementation: "openai" for a
	// direct OpenAI-compatible endpoint, or one of any-llm-go's backend
	// names (anthropic, gemini, ollama, deepseek, mistral, groq,
	// llamacpp, llamafile) to route through pkg/llmprovider/anyllm.
	Provider string `yaml:"provider"`

	// Model is the model name passed to the provider (e.g. "gpt-4").
	Model string `yaml:"model"`

	// APIKey authenticates against the provider, where applicable.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default endpoint. Empty uses the
	// provider's built-in default.
	BaseURL string `yaml:"base_url"`

	// Temperature is the sampling temperature sent with every request;
	// low values favor deterministic output.
	Temperature float64 `yaml:"temperature"`

	// MaxTokens caps the length of a completion.
	MaxTokens int `yaml:"max_tokens"`

	// Timeout bounds a single completion request. It is applied only when
	// Provider is "openai"; the any-llm-go providers are built without it.
	Timeout time.Duration `yaml:"timeout"`
}

// ProcessingConfig bounds the size and chunking of text the service will
// process in a single request.
type ProcessingConfig struct {
	// MaxTextLength rejects any request whose text exceeds this many
	// runes before it reaches the core pipeline.
	MaxTextLength int `yaml:"max_text_length"`

	// ChunkSize is the rune threshold above which the HTTP boundary
	// layer splits a document into chunks before calling the pipeline
	// once per chunk.
	ChunkSize int `yaml:"chunk_size"`
}

// CacheConfig configures the in-memory response cache sitting in front of
// the pipeline.
type CacheConfig struct {
	// TTL is how long a cached response remains valid.
	TTL time.Duration `yaml:"ttl"`

	// MaxEntries bounds the cache size; the oldest entries are evicted
	// first once it is reached.
	MaxEntries int `yaml:"max_entries"`
}

// CORSConfig configures the permissive cross-origin defaults the
// boundary layer applies.
type CORSConfig struct {
	AllowOrigins     []string `yaml:"allow_origins"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	AllowMethods     []string `yaml:"allow_methods"`
	AllowHeaders     []string `yaml:"allow_headers"`
}

// Language describes one supported language: its code, display names, and
// example sentences used by client UIs and the GET /v1/languages endpoint.
type Language struct {
	Code            string   `yaml:"code"`
	Name            string   `yaml:"name"`
	NativeName      string   `yaml:"native_name"`
	RuleBackendCode string   `yaml:"rule_backend_code"`
	Examples        []string `yaml:"examples"`
}

// SupportedLanguages is the fixed language table the service accepts.
// It mirrors the original service's SUPPORTED_LANGUAGES table and is not
// user-configurable via YAML.
var SupportedLanguages = map[string]Language{
	"nl": {
		Code: "nl", Name: "Dutch", NativeName: "Nederlands", RuleBackendCode: "nl",
		Examples: []string{
			"Ik heb de boek gelezen.",
			"Hij loop naar huis.",
			"Zij is naar school gegaan gisteren.",
		},
	},
	"en": {
		Code: "en", Name: "English", NativeName: "English", RuleBackendCode: "en-US",
		Examples: []string{
			"I has been working here.",
			"Their going to the store.",
			"The informations is incorrect.",
		},
	},
	"de": {
		Code: "de", Name: "German", NativeName: "Deutsch", RuleBackendCode: "de-DE",
		Examples: []string{
			"Ich habe das Buch gelest.",
			"Er gehen nach Hause.",
			"Das Auto ist rot gewesen.",
		},
	},
	"fr": {
		Code: "fr", Name: "French", NativeName: "Français", RuleBackendCode: "fr",
		Examples: []string{
			"Je suis allé au magasin hier.",
			"Il a mangé les pommes.",
			"Elle est très belle.",
		},
	},
	"es": {
		Code: "es", Name: "Spanish", NativeName: "Español", RuleBackendCode: "es",
		Examples: []string{
			"Yo tuve un problema ayer.",
			"El libro es muy interesante.",
			"Ella ha ido al mercado.",
		},
	},
}

// IsSupportedLanguage reports whether code is in [SupportedLanguages].
func IsSupportedLanguage(code string) bool {
	_, ok := SupportedLanguages[code]
	return ok
}

// Default returns a [Config] with the same defaults as the original
// service's environment-backed settings.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr: ":8080",
			LogLevel:   "info",
		},
		RuleBackend: RuleBackendConfig{
			URL:     "http://localhost:8081/v2",
			Timeout: 30 * time.Second,
		},
		ModelBackend: ModelBackendConfig{
			Provider:    "openai",
			Model:       "gpt-4",
			Temperature: 0.1,
			MaxTokens:   2048,
			Timeout:     60 * time.Second,
		},
		Processing: ProcessingConfig{
			MaxTextLength: 10000,
			ChunkSize:     1000,
		},
		Cache: CacheConfig{
			TTL:        5 * time.Minute,
			MaxEntries: 1000,
		},
		CORS: CORSConfig{
			AllowOrigins:     []string{"*"},
			AllowCredentials: true,
			AllowMethods:     []string{"*"},
			AllowHeaders:     []string{"*"},
		},
	}
}
