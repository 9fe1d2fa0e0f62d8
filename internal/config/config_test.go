package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
widgets:
  - name: products
    schema: products.json
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.HTTP.Port)
	}
	if cfg.Host.IdleTimeoutSec != 1800 {
		t.Errorf("expected idle timeout 1800, got %d", cfg.Host.IdleTimeoutSec)
	}
	if cfg.Fetch.MaxBodyBytes != 8<<20 {
		t.Errorf("expected max body 8MB, got %d", cfg.Fetch.MaxBodyBytes)
	}
	if cfg.S3.Region != "us-east-1" {
		t.Errorf("expected default region, got %q", cfg.S3.Region)
	}
	if got := cfg.Widgets[0].Mode; got != "navigate" {
		t.Errorf("expected default mode navigate, got %q", got)
	}
	if got := cfg.Widgets[0].NavigateDelay(); got != 0 {
		t.Errorf("expected zero delay, got %v", got)
	}
}

func TestParseEnvExpansion(t *testing.T) {
	t.Setenv("FILTERS_PORT", "9090")
	t.Setenv("FILTERS_BUCKET", "")

	cfg, err := Parse([]byte(`
http:
  port: ${FILTERS_PORT}
widgets:
  - name: products
    schema: s3://${FILTERS_BUCKET:-schemas}/products.json
    apply: "true"
    navigate_delay_ms: 250
  - name: students
    schema: students.yaml
    apply: true
    mode: fetch
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if got := cfg.Widgets[0].Schema; got != "s3://schemas/products.json" {
		t.Errorf("expected default bucket, got %q", got)
	}
	if got, ok := cfg.Widgets[0].Apply.(string); !ok || got != "true" {
		t.Errorf("expected string apply, got %#v", cfg.Widgets[0].Apply)
	}
	if got, ok := cfg.Widgets[1].Apply.(bool); !ok || !got {
		t.Errorf("expected bool apply, got %#v", cfg.Widgets[1].Apply)
	}
	if got := cfg.Widgets[0].NavigateDelay(); got != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"no widgets", `http: {port: 80}`, "at least one widget"},
		{"bad port", "http: {port: 70000}\nwidgets: [{name: a, schema: a.json}]", "http.port"},
		{"no name", `widgets: [{schema: a.json}]`, "name is required"},
		{"duplicate", `widgets: [{name: a, schema: a.json}, {name: a, schema: b.json}]`, "duplicated"},
		{"no schema", `widgets: [{name: a}]`, "schema is required"},
		{"bad mode", `widgets: [{name: a, schema: a.json, mode: push}]`, "mode must be"},
		{"bad apply", `widgets: [{name: a, schema: a.json, apply: [1]}]`, "apply must be"},
		{"negative delay", `widgets: [{name: a, schema: a.json, navigate_delay_ms: -1}]`, "must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadFileResolvesSchemaPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "local.yaml")
	data := []byte(`
widgets:
  - name: local
    schema: schemas/products.json
  - name: remote
    schema: s3://bucket/products.json
  - name: absolute
    schema: /etc/filters/products.json
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	want := []string{
		filepath.Join(dir, "schemas/products.json"),
		"s3://bucket/products.json",
		"/etc/filters/products.json",
	}
	for i, w := range want {
		if got := cfg.Widgets[i].Schema; got != w {
			t.Errorf("widget %d: expected schema %q, got %q", i, w, got)
		}
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "failed to read config") {
		t.Errorf("expected read error, got %v", err)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("expected local, got %q", got)
	}
	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("expected prod, got %q", got)
	}
}
