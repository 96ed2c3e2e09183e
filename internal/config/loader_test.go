package config_test

import (
	"strings"
	"testing"

	"github.com/1ordo/illiterate-go/internal/config"
)

const sampleYAML = `
server:
  listen_addr: ":8080"
  log_level: info
  api_key: test-key

rule_backend:
  url: "http://localhost:8081/v2"
  timeout: 30s

model_backend:
  provider: openai
  model: gpt-4o
  api_key: sk-test
  temperature: 0.2
  max_tokens: 1024
  timeout: 45s

processing:
  max_text_length: 5000
  chunk_size: 500

cache:
  ttl: 10m
  max_entries: 200
`

func TestLoadFromReaderValid(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("LoadFromReader returned error: %v", err)
	}
	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q", cfg.Server.ListenAddr)
	}
	if cfg.ModelBackend.Provider != "openai" {
		t.Errorf("Provider = %q", cfg.ModelBackend.Provider)
	}
	if cfg.Processing.MaxTextLength != 5000 {
		t.Errorf("MaxTextLength = %d", cfg.Processing.MaxTextLength)
	}
}

func TestLoadFromReaderRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader(sampleYAML + "\nbogus_field: 1\n"))
	if err == nil {
		t.Fatal("expected an error for an unknown field")
	}
}

func TestLoadFromReaderRejectsInvalidLogLevel(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader(`
server:
  listen_addr: ":8080"
  log_level: loud
rule_backend:
  url: "http://localhost:8081"
  timeout: 30s
model_backend:
  provider: openai
  max_tokens: 2048
  timeout: 60s
processing:
  max_text_length: 1000
  chunk_size: 500
`))
	if err == nil {
		t.Fatal("expected an error for an invalid log level")
	}
}

func TestLoadFromReaderRejectsUnknownModelProvider(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader(`
server:
  listen_addr: ":8080"
rule_backend:
  url: "http://localhost:8081"
  timeout: 30s
model_backend:
  provider: not-a-real-provider
  max_tokens: 2048
  timeout: 60s
processing:
  max_text_length: 1000
  chunk_size: 500
`))
	if err == nil {
		t.Fatal("expected an error for an unknown model provider")
	}
}

func TestLoadFromReaderRejectsChunkSizeLargerThanMaxTextLength(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader(`
server:
  listen_addr: ":8080"
rule_backend:
  url: "http://localhost:8081"
  timeout: 30s
model_backend:
  provider: openai
  max_tokens: 2048
  timeout: 60s
processing:
  max_text_length: 100
  chunk_size: 500
`))
	if err == nil {
		t.Fatal("expected an error when chunk_size exceeds max_text_length")
	}
}

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	if err := config.Validate(config.Default()); err != nil {
		t.Errorf("Default() config failed validation: %v", err)
	}
}
