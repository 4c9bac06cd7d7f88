package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	if cfg.Web.Port != DefaultAppConfig.Web.Port {
		t.Errorf("Web.Port = %d, want default %d", cfg.Web.Port, DefaultAppConfig.Web.Port)
	}
	if cfg.Backend.BaseURL != DefaultAppConfig.Backend.BaseURL {
		t.Errorf("Backend.BaseURL = %q, want default %q", cfg.Backend.BaseURL, DefaultAppConfig.Backend.BaseURL)
	}
}

func TestLoadConfig_YamlFile(t *testing.T) {
	cfile := filepath.Join(t.TempDir(), "webcatalog.yml")
	content := `
system:
  workdir: /tmp/wc
  location: UTC
web:
  host: 127.0.0.1
  port: 8088
  secret: filesecret
backend:
  baseurl: http://backend:5000
  timeout: 30
session:
  name: wcsess
  max_age: 7200
  expiry_warn: 10
`
	if err := os.WriteFile(cfile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := LoadConfig(cfile)
	if cfg.Web.Port != 8088 {
		t.Errorf("Web.Port = %d, want 8088", cfg.Web.Port)
	}
	if cfg.Backend.BaseURL != "http://backend:5000" {
		t.Errorf("Backend.BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Session.ExpiryWarn != 10 {
		t.Errorf("Session.ExpiryWarn = %d, want 10", cfg.Session.ExpiryWarn)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("WEBCATALOG_WEB_PORT", "9099")
	t.Setenv("WEBCATALOG_BACKEND_BASEURL", "http://override:5000")
	t.Setenv("WEBCATALOG_SESSION_SECURE", "true")
	t.Setenv("WEBCATALOG_LOGGER_FILE_ENABLE", "off")

	cfg := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	if cfg.Web.Port != 9099 {
		t.Errorf("Web.Port = %d, want 9099", cfg.Web.Port)
	}
	if cfg.Backend.BaseURL != "http://override:5000" {
		t.Errorf("Backend.BaseURL = %q", cfg.Backend.BaseURL)
	}
	if !cfg.Session.Secure {
		t.Error("Session.Secure should be overridden to true")
	}
	if cfg.Logger.FileEnable {
		t.Error("off should not parse as a true value")
	}
}

func TestLoadConfig_DefaultFloors(t *testing.T) {
	cfile := filepath.Join(t.TempDir(), "webcatalog.yml")
	if err := os.WriteFile(cfile, []byte("backend:\n  timeout: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := LoadConfig(cfile)
	if cfg.Backend.Timeout != 15 {
		t.Errorf("Backend.Timeout = %d, want floor 15", cfg.Backend.Timeout)
	}
	if cfg.Session.ExpiryWarn != 5 {
		t.Errorf("Session.ExpiryWarn = %d, want floor 5", cfg.Session.ExpiryWarn)
	}
}
