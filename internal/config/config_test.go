//go:build !integration

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), false)
	if err != nil {
		t.Fatalf("missing config file should fall back to defaults: %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("port: got %d want 3000", cfg.Server.Port)
	}
	if cfg.AI.Timeout != 30*time.Second || cfg.AI.MaxTokens != 1000 || cfg.AI.DefaultModel != "gpt-4o-mini" {
		t.Errorf("unexpected ai defaults: %+v", cfg.AI)
	}
	if cfg.Chat.HistoryWindow != 10 || cfg.Chat.RetentionWindow != 20 || cfg.Chat.AutosaveEvery != 4 {
		t.Errorf("unexpected chat defaults: %+v", cfg.Chat)
	}
	if cfg.Storage.CSVName != "all_conversations.csv" {
		t.Errorf("csv name: got %q", cfg.Storage.CSVName)
	}
	if cfg.AI.APIKey() != "" {
		t.Errorf("expected no api key")
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := []byte(`
server:
  port: 8080
ai:
  provider: Gemini
  timeout: 5s
chat:
  autosave_every: 6
`)
	if err := os.WriteFile(path, yml, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "9090")
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg, err := LoadConfig(path, true)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("PORT env should override file, got %d", cfg.Server.Port)
	}
	if cfg.AI.Provider != "gemini" || cfg.AI.APIKey() != "g-key" {
		t.Errorf("unexpected provider/key: %q %q", cfg.AI.Provider, cfg.AI.APIKey())
	}
	if cfg.AI.DefaultModel != "gemini-2.0-flash" {
		t.Errorf("gemini default model not applied: %q", cfg.AI.DefaultModel)
	}
	if cfg.AI.Timeout != 5*time.Second {
		t.Errorf("timeout: got %s", cfg.AI.Timeout)
	}
	if cfg.Chat.AutosaveEvery != 6 {
		t.Errorf("autosave_every: got %d", cfg.Chat.AutosaveEvery)
	}
	if !cfg.Runtime.Dev {
		t.Errorf("dev flag not propagated")
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("PORT", "")
	cases := map[string]string{
		"bad provider": "ai:\n  provider: llama\n",
		"bad port":     "server:\n  port: 70000\n",
		"bad windows":  "chat:\n  history_window: 30\n",
		"bad yaml":     "server: [",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadConfig(path, false); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}

	t.Run("bad PORT env", func(t *testing.T) {
		t.Setenv("PORT", "abc")
		if _, err := LoadConfig("", false); err == nil {
			t.Fatalf("expected an error")
		}
	})
}
