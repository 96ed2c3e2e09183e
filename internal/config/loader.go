package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// validLogLevels lists the recognised values for Server.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

// validModelProviders lists the recognised values for ModelBackend.Provider.
var validModelProviders = map[string]bool{
	"openai": true, "anthropic": true, "gemini": true, "ollama": true,
	"deepseek": true, "mistral": true, "groq": true, "llamacpp": true, "llamafile": true,
}

// Load reads the YAML configuration file at path, overlays it onto
// [Default], and returns a validated [Config].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r on top of [Default] and
// validates the result. Useful in tests where configs are constructed
// from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.ListenAddr == "" {
		errs = append(errs, errors.New("server.listen_addr is required"))
	}
	if cfg.Server.LogLevel != "" && !validLogLevels[cfg.Server.LogLevel] {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if cfg.RuleBackend.URL == "" {
		errs = append(errs, errors.New("rule_backend.url is required"))
	}
	if cfg.RuleBackend.Timeout <= 0 {
		errs = append(errs, errors.New("rule_backend.timeout must be positive"))
	}

	if cfg.ModelBackend.Provider != "" && !validModelProviders[cfg.ModelBackend.Provider] {
		errs = append(errs, fmt.Errorf("model_backend.provider %q is invalid; valid values: %s",
			cfg.ModelBackend.Provider, joinKeys(validModelProviders)))
	}
	if cfg.ModelBackend.Temperature < 0 || cfg.ModelBackend.Temperature > 2 {
		errs = append(errs, fmt.Errorf("model_backend.temperature %.2f is out of range [0, 2]", cfg.ModelBackend.Temperature))
	}
	if cfg.ModelBackend.MaxTokens <= 0 {
		errs = append(errs, errors.New("model_backend.max_tokens must be positive"))
	}
	if cfg.ModelBackend.Timeout <= 0 {
		errs = append(errs, errors.New("model_backend.timeout must be positive"))
	}

	if cfg.Processing.MaxTextLength <= 0 {
		errs = append(errs, errors.New("processing.max_text_length must be positive"))
	}
	if cfg.Processing.ChunkSize <= 0 {
		errs = append(errs, errors.New("processing.chunk_size must be positive"))
	}
	if cfg.Processing.ChunkSize > cfg.Processing.MaxTextLength {
		errs = append(errs, errors.New("processing.chunk_size must not exceed processing.max_text_length"))
	}

	if cfg.Cache.MaxEntries < 0 {
		errs = append(errs, errors.New("cache.max_entries must not be negative"))
	}

	return errors.Join(errs...)
}

func joinKeys(m map[string]bool) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return fmt.Sprint(keys)
}
