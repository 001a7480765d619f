package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		Env      string `koanf:"env"` // dev | staging | prod
		HTTPAddr string `koanf:"http_addr"`
		LogLevel string `koanf:"log_level"`
		LogFile  string `koanf:"log_file"`
	} `koanf:"app"`

	HTTP struct {
		ReadTimeout  time.Duration `koanf:"read_timeout"`
		WriteTimeout time.Duration `koanf:"write_timeout"`
		IdleTimeout  time.Duration `koanf:"idle_timeout"`
	} `koanf:"http"`

	Store struct {
		// "memory" keeps everything in-process (dev fallback, lost on
		// restart); "mysql" uses the DSN below.
		Driver          string        `koanf:"driver"`
		DSN             string        `koanf:"dsn"`
		MaxOpenConns    int           `koanf:"max_open_conns"`
		MaxIdleConns    int           `koanf:"max_idle_conns"`
		ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	} `koanf:"store"`

	Redis struct {
		Enabled  bool   `koanf:"enabled"`
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
	} `koanf:"redis"`

	Idempotency struct {
		TTL time.Duration `koanf:"ttl"`
	} `koanf:"idempotency"`

	StatusCache struct {
		TTL time.Duration `koanf:"ttl"`
	} `koanf:"status_cache"`

	Gateway struct {
		BaseURL         string        `koanf:"base_url"`
		Timeout         time.Duration `koanf:"timeout"`
		MultibancoKey   string        `koanf:"multibanco_key"`
		MBWayKey        string        `koanf:"mbway_key"`
		PayByLinkKey    string        `koanf:"paybylink_key"`
		AntiPhishingKey string        `koanf:"anti_phishing_key"`
	} `koanf:"gateway"`

	Security struct {
		AdminToken    string        `koanf:"admin_token"`
		AdminPassword string        `koanf:"admin_password"`
		JWTSecret     string        `koanf:"jwt_secret"`
		Issuer        string        `koanf:"issuer"`
		Audience      string        `koanf:"audience"`
		TTL           time.Duration `koanf:"ttl"`
	} `koanf:"security"`
}

func Load(pathDir, envName string) (Config, error) {
	k := koanf.New(".")
	// 1) base
	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", pathDir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	// 2) env override (dev/staging/prod). Optional: allow missing for local runs.
	_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", pathDir, envName)), yaml.Parser())

	// 3) environment variables override (prefix DOMREALCE_, nested with __)
	// e.g. DOMREALCE_STORE__DSN, DOMREALCE_GATEWAY__MBWAY_KEY
	if err := k.Load(env.Provider("DOMREALCE_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "DOMREALCE_")
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if cfg.App.Env == "" {
		cfg.App.Env = envName
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	switch c.Store.Driver {
	case "memory":
	case "mysql":
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn required when store.driver is mysql")
		}
	default:
		return fmt.Errorf("store.driver must be memory or mysql")
	}
	if c.App.Env != "dev" && c.Security.AdminToken == "" && c.Security.AdminPassword == "" {
		return fmt.Errorf("security.admin_token or security.admin_password required outside dev")
	}
	return nil
}

// IsDev reports whether the process runs in local-development mode, which
// relaxes the admin gate for loopback requests.
func (c Config) IsDev() bool {
	return c.App.Env == "dev"
}
