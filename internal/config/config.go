package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | prod | test
		Env  string `yaml:"app_env"`
		Name string `yaml:"name"`
		// Namespace prefija las keys persistidas (equivale al namespace de initStores).
		Namespace          string `yaml:"namespace"`
		DefaultHomePath    string `yaml:"default_home_path"`
		LoginPath          string `yaml:"login_path"`
		DynamicTitle       bool   `yaml:"dynamic_title"`
		EnableRefreshToken bool   `yaml:"enable_refresh_token"`
		// ExclusiveLogin convierte el flag loginLoading en un guard real.
		ExclusiveLogin bool   `yaml:"exclusive_login"`
		Locale         string `yaml:"locale"`
		CompanyName    string `yaml:"company_name"`
		CompanySite    string `yaml:"company_site_link"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		MetricsAddr        string   `yaml:"metrics_addr"`
		StaticDir          string   `yaml:"static_dir"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
		ShutdownTimeout    string   `yaml:"shutdown_timeout"`
		// LoginRateLimit por IP sobre POST /api/auth/login. Max < 0 lo desactiva.
		LoginRateLimit struct {
			Max    int    `yaml:"max"`
			Window string `yaml:"window"`
		} `yaml:"login_rate_limit"`
	} `yaml:"server"`

	Backend struct {
		BaseURL  string `yaml:"base_url"`
		Timeout  string `yaml:"timeout"`
		TenantID string `yaml:"tenant_id"`
	} `yaml:"backend"`

	Session struct {
		CookieName string `yaml:"cookie_name"`
		TTL        string `yaml:"ttl"`
		Secure     bool   `yaml:"secure"`
		// SecretKey (base64/hex, 32 bytes) cifra los snapshots persistidos.
		// Vacío = se guardan en claro.
		SecretKey string `yaml:"secret_key"`
	} `yaml:"session"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	Dict struct {
		LabelField string         `yaml:"label_field"`
		ValueField string         `yaml:"value_field"`
		Params     map[string]any `yaml:"params"`
	} `yaml:"dict"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	// Backend de referencia (cmd/backend-mock)
	Mock struct {
		Addr       string `yaml:"addr"`
		Driver     string `yaml:"driver"` // memory | postgres
		DSN        string `yaml:"dsn"`
		Issuer     string `yaml:"issuer"`
		AccessTTL  string `yaml:"access_ttl"`
		RefreshTTL string `yaml:"refresh_ttl"`
		Seed       bool   `yaml:"seed"`
	} `yaml:"mock"`
}

// Load lee el YAML (si path != ""), aplica defaults, overrides por env y valida.
func Load(path string) (*Config, error) {
	var c Config
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: yaml: %w", err)
		}
	}

	c.applyDefaults()

	// Overrides por env
	c.applyEnvOverrides()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default devuelve la configuración por defecto sin leer archivo ni env.
// Útil para tests y para el CLI.
func Default() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.Name == "" {
		c.App.Name = "Admin Console"
	}
	if c.App.Namespace == "" {
		c.App.Namespace = "console"
	}
	if c.App.DefaultHomePath == "" {
		c.App.DefaultHomePath = "/analytics"
	}
	if c.App.LoginPath == "" {
		c.App.LoginPath = "/auth/login"
	}
	if c.App.Locale == "" {
		c.App.Locale = "zh-CN"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":5666"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}
	if c.Server.LoginRateLimit.Max == 0 {
		c.Server.LoginRateLimit.Max = 20
	}
	if c.Server.LoginRateLimit.Window == "" {
		c.Server.LoginRateLimit.Window = "1m"
	}
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = "http://localhost:48080"
	}
	if c.Backend.Timeout == "" {
		c.Backend.Timeout = "10s"
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "console_sid"
	}
	if c.Session.TTL == "" {
		c.Session.TTL = "12h"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "0s"
	}
	if c.Dict.LabelField == "" {
		c.Dict.LabelField = "label"
	}
	if c.Dict.ValueField == "" {
		c.Dict.ValueField = "value"
	}
	if c.Dict.Params == nil {
		c.Dict.Params = map[string]any{}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Mock.Addr == "" {
		c.Mock.Addr = ":48080"
	}
	if c.Mock.Driver == "" {
		c.Mock.Driver = "memory"
	}
	if c.Mock.Issuer == "" {
		c.Mock.Issuer = "http://localhost:48080"
	}
	if c.Mock.AccessTTL == "" {
		c.Mock.AccessTTL = "30m"
	}
	if c.Mock.RefreshTTL == "" {
		c.Mock.RefreshTTL = "720h" // 30d
	}
}

// Validate chequea duraciones y combinaciones inválidas.
func (c *Config) Validate() error {
	durations := map[string]string{
		"server.shutdown_timeout":        c.Server.ShutdownTimeout,
		"server.login_rate_limit.window": c.Server.LoginRateLimit.Window,
		"backend.timeout":                c.Backend.Timeout,
		"session.ttl":                    c.Session.TTL,
		"cache.memory.default_ttl":       c.Cache.Memory.DefaultTTL,
		"mock.access_ttl":                c.Mock.AccessTTL,
		"mock.refresh_ttl":               c.Mock.RefreshTTL,
	}
	for k, v := range durations {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("config: %s: %w", k, err)
		}
	}

	switch c.Cache.Kind {
	case "memory":
	case "redis":
		if strings.TrimSpace(c.Cache.Redis.Addr) == "" {
			return errors.New("config: cache.redis.addr es requerido con cache.kind=redis")
		}
	default:
		return fmt.Errorf("config: cache.kind inválido: %q", c.Cache.Kind)
	}

	switch c.Mock.Driver {
	case "memory":
	case "postgres", "pg":
		if strings.TrimSpace(c.Mock.DSN) == "" {
			return errors.New("config: mock.dsn es requerido con mock.driver=postgres")
		}
	default:
		return fmt.Errorf("config: mock.driver inválido: %q", c.Mock.Driver)
	}

	if !strings.HasPrefix(c.App.LoginPath, "/") || !strings.HasPrefix(c.App.DefaultHomePath, "/") {
		return errors.New("config: app.login_path y app.default_home_path deben ser absolutos")
	}
	return nil
}

// Duration parsea una duración ya validada; devuelve def si está vacía.
func Duration(v string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
		return d
	}
	return def
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		if strings.TrimSpace(s) == "" {
			return []string{}, true
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("VITE_APP_TITLE"); ok {
		c.App.Name = v
		c.App.CompanyName = v
	}
	if v, ok := getEnvStr("COMPANY_SITE_LINK"); ok {
		c.App.CompanySite = v
	}
	if v, ok := getEnvStr("APP_NAMESPACE"); ok {
		c.App.Namespace = v
	}
	if v, ok := getEnvStr("APP_DEFAULT_HOME_PATH"); ok {
		c.App.DefaultHomePath = v
	}
	if v, ok := getEnvStr("APP_LOCALE"); ok {
		c.App.Locale = v
	}
	if v, ok := getEnvBool("APP_ENABLE_REFRESH_TOKEN"); ok {
		c.App.EnableRefreshToken = v
	}
	if v, ok := getEnvBool("APP_EXCLUSIVE_LOGIN"); ok {
		c.App.ExclusiveLogin = v
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("METRICS_ADDR"); ok {
		c.Server.MetricsAddr = v
	}
	if v, ok := getEnvStr("STATIC_DIR"); ok {
		c.Server.StaticDir = v
	}
	if v, ok := getEnvCSV("SERVER_CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}
	if v, ok := getEnvInt("SERVER_LOGIN_RATE_MAX"); ok {
		c.Server.LoginRateLimit.Max = v
	}
	if v, ok := getEnvStr("SERVER_LOGIN_RATE_WINDOW"); ok {
		c.Server.LoginRateLimit.Window = v
	}

	// BACKEND
	if v, ok := getEnvStr("BACKEND_BASE_URL"); ok {
		c.Backend.BaseURL = v
	}
	if v, ok := getEnvStr("BACKEND_TIMEOUT"); ok {
		c.Backend.Timeout = v
	}
	if v, ok := getEnvStr("BACKEND_TENANT_ID"); ok {
		c.Backend.TenantID = v
	}

	// SESSION
	if v, ok := getEnvStr("SESSION_SECRET_KEY"); ok {
		c.Session.SecretKey = v
	}
	if v, ok := getEnvStr("SESSION_COOKIE_NAME"); ok {
		c.Session.CookieName = v
	}
	if v, ok := getEnvStr("SESSION_TTL"); ok {
		c.Session.TTL = v
	}
	if v, ok := getEnvBool("SESSION_SECURE"); ok {
		c.Session.Secure = v
	}

	// CACHE
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Cache.Redis.Prefix = v
	}

	// LOG
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}

	// MOCK BACKEND
	if v, ok := getEnvStr("MOCK_ADDR"); ok {
		c.Mock.Addr = v
	}
	if v, ok := getEnvStr("MOCK_DRIVER"); ok {
		c.Mock.Driver = v
	}
	if v, ok := getEnvStr("MOCK_DSN"); ok {
		c.Mock.DSN = v
	}
	if v, ok := getEnvStr("MOCK_ACCESS_TTL"); ok {
		c.Mock.AccessTTL = v
	}
	if v, ok := getEnvBool("MOCK_SEED"); ok {
		c.Mock.Seed = v
	}
}
