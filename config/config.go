package config

import (
	"os"
	"path"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"
)

// SysConfig holds process-level settings.
type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

// WebConfig holds the HTTP listener settings.
type WebConfig struct {
	Host   string `yaml:"host" json:"host"`
	Port   int    `yaml:"port" json:"port"`
	Secret string `yaml:"secret" json:"secret"`
}

// BackendConfig points at the external catalog REST API.
type BackendConfig struct {
	BaseURL string `yaml:"baseurl" json:"baseurl"`
	Timeout int    `yaml:"timeout" json:"timeout"` // seconds
}

// SessionConfig controls the browser session cookie.
type SessionConfig struct {
	Name       string `yaml:"name" json:"name"`
	MaxAge     int    `yaml:"max_age" json:"max_age"` // seconds
	Secure     bool   `yaml:"secure" json:"secure"`
	ExpiryWarn int    `yaml:"expiry_warn" json:"expiry_warn"` // minutes before token expiry to warn
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	Filename   string `yaml:"filename" json:"filename"`
	QueueSize  int    `yaml:"queue_size" json:"queue_size"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
}

type AppConfig struct {
	System  SysConfig     `yaml:"system" json:"system"`
	Web     WebConfig     `yaml:"web" json:"web"`
	Backend BackendConfig `yaml:"backend" json:"backend"`
	Session SessionConfig `yaml:"session" json:"session"`
	Logger  LogConfig     `yaml:"logger" json:"logger"`
}

func (c *AppConfig) InitDirs() {
	_ = os.MkdirAll(path.Join(c.System.Workdir, "logs"), 0755)
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "WebCatalog",
		Location: "Europe/Helsinki",
		Workdir:  "/var/webcatalog",
		Debug:    true,
	},
	Web: WebConfig{
		Host:   "0.0.0.0",
		Port:   1989,
		Secret: "9b6de5cc-webcatalog-0e8a45",
	},
	Backend: BackendConfig{
		BaseURL: "http://127.0.0.1:5000",
		Timeout: 15,
	},
	Session: SessionConfig{
		Name:       "webcatalog_session",
		MaxAge:     86400,
		Secure:     false,
		ExpiryWarn: 5,
	},
	Logger: LogConfig{
		Mode:       "development",
		Filename:   "/var/webcatalog/webcatalog.log",
		FileEnable: true,
	},
}

func setEnvValue(name string, f func(v string)) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		f(evalue)
	}
}

func setEnvBoolValue(name string, f func(v bool)) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		f(evalue == "true" || evalue == "1" || evalue == "on")
	}
}

func setEnvIntValue(name string, f func(v int)) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		f(cast.ToInt(evalue))
	}
}

// LoadConfig reads the yaml config file and applies environment overrides.
// A missing file falls back to DefaultAppConfig so the server can start with
// nothing but environment variables.
func LoadConfig(cfile string) *AppConfig {
	cfg := new(AppConfig)
	if FileExists(cfile) {
		data := Must(os.ReadFile(cfile))
		MustErr(yaml.Unmarshal(data, cfg))
	} else {
		defaults := *DefaultAppConfig
		cfg = &defaults
	}

	setEnvValue("WEBCATALOG_SYSTEM_WORKDIR", func(v string) { cfg.System.Workdir = v })
	setEnvValue("WEBCATALOG_SYSTEM_LOCATION", func(v string) { cfg.System.Location = v })
	setEnvBoolValue("WEBCATALOG_SYSTEM_DEBUG", func(v bool) { cfg.System.Debug = v })
	setEnvValue("WEBCATALOG_WEB_HOST", func(v string) { cfg.Web.Host = v })
	setEnvIntValue("WEBCATALOG_WEB_PORT", func(v int) { cfg.Web.Port = v })
	setEnvValue("WEBCATALOG_WEB_SECRET", func(v string) { cfg.Web.Secret = v })
	setEnvValue("WEBCATALOG_BACKEND_BASEURL", func(v string) { cfg.Backend.BaseURL = v })
	setEnvIntValue("WEBCATALOG_BACKEND_TIMEOUT", func(v int) { cfg.Backend.Timeout = v })
	setEnvValue("WEBCATALOG_SESSION_NAME", func(v string) { cfg.Session.Name = v })
	setEnvIntValue("WEBCATALOG_SESSION_MAXAGE", func(v int) { cfg.Session.MaxAge = v })
	setEnvBoolValue("WEBCATALOG_SESSION_SECURE", func(v bool) { cfg.Session.Secure = v })
	setEnvValue("WEBCATALOG_LOGGER_MODE", func(v string) { cfg.Logger.Mode = v })
	setEnvBoolValue("WEBCATALOG_LOGGER_FILE_ENABLE", func(v bool) { cfg.Logger.FileEnable = v })

	if cfg.Session.ExpiryWarn <= 0 {
		cfg.Session.ExpiryWarn = 5
	}
	if cfg.Backend.Timeout <= 0 {
		cfg.Backend.Timeout = 15
	}
	return cfg
}

func FileExists(fpath string) bool {
	_, err := os.Stat(fpath)
	return err == nil || os.IsExist(err)
}

func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func MustErr(err error) {
	if err != nil {
		panic(err)
	}
}
