package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadLayers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "portal.yaml")
	content := "api:\n  url: http://backend.test/api\nlog:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("PORTALTEST_LOG_LEVEL", "error")

	cfg, err := Load("PORTALTEST", []string{"--config", path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name string
		key  string
		want string
	}{
		{name: "defaultKept", key: "web.port", want: "8090"},
		{name: "fileOverridesDefault", key: "api.url", want: "http://backend.test/api"},
		{name: "envOverridesFile", key: "log.level", want: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := cfg.GetString(tt.key)
			if !ok || got != tt.want {
				t.Errorf("GetString(%q) = %q, %v, want %q", tt.key, got, ok, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("PORTALTEST", []string{"--config=/does/not/exist.yaml"}); err == nil {
		t.Error("Load() error = nil, want error")
	}
}

func TestTypedGetters(t *testing.T) {
	cfg := FromMap(map[string]any{
		"api.timeout":  "3s",
		"nats.enabled": "true",
		"redis.db":     "2",
		"bad.duration": "soon",
	})

	if got := cfg.GetDurationOrDef("api.timeout", time.Second); got != 3*time.Second {
		t.Errorf("GetDurationOrDef() = %v, want 3s", got)
	}
	if got := cfg.GetDurationOrDef("bad.duration", time.Second); got != time.Second {
		t.Errorf("GetDurationOrDef(bad) = %v, want 1s", got)
	}
	if !cfg.GetBool("nats.enabled") {
		t.Error("GetBool() = false, want true")
	}
	if got := cfg.GetIntOrDef("redis.db", 0); got != 2 {
		t.Errorf("GetIntOrDef() = %d, want 2", got)
	}
	if got := cfg.GetStringOrDef("missing.key", "fallback"); got != "fallback" {
		t.Errorf("GetStringOrDef() = %q, want fallback", got)
	}
}

func TestConfigPath(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "none", args: nil, want: ""},
		{name: "separate", args: []string{"--config", "a.yaml"}, want: "a.yaml"},
		{name: "equals", args: []string{"--config=b.yaml"}, want: "b.yaml"},
		{name: "dangling", args: []string{"--config"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := configPath(tt.args); got != tt.want {
				t.Errorf("configPath() = %q, want %q", got, tt.want)
			}
		})
	}
}
