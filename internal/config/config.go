package config

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode      Mode   `yaml:"mode"`
	HTTPAddr  string `yaml:"http_addr"`
	PublicURL string `yaml:"public_url"`

	StoreDriver string `yaml:"store_driver"` // file|sqlite|postgres
	DataDir     string `yaml:"data_dir"`     // for the file store
	DBDSN       string `yaml:"db_dsn"`       // for sqlite/postgres

	AuthHMACSecret string `yaml:"auth_hmac_secret"`

	AdminEmail    string `yaml:"admin_email"`
	AdminName     string `yaml:"admin_name"`
	AdminPassHash string `yaml:"admin_pass_hash"` // bcrypt

	SessionDuration time.Duration `yaml:"session_duration"`

	CORSOriginsOnline  []string `yaml:"cors_origins_online"`
	CORSOriginsOffline []string `yaml:"cors_origins_offline"`
}

// FromEnv builds the config from the environment, overlaid by an optional
// YAML file named in CONFIG_FILE.
func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	cfg := Config{
		Mode:               mode,
		HTTPAddr:           envOr("HTTP_ADDR", ":8080"),
		PublicURL:          envOr("PUBLIC_URL", "http://localhost:3000"),
		StoreDriver:        envOr("STORE_DRIVER", "file"),
		DataDir:            envOr("DATA_DIR", "./data"),
		DBDSN:              envOr("DB_DSN", ""),
		AuthHMACSecret:     envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		AdminEmail:         envOr("ADMIN_EMAIL", "admin@cryptocross.local"),
		AdminName:          envOr("ADMIN_NAME", "Admin"),
		AdminPassHash:      envOr("ADMIN_PASS_HASH", ""),
		SessionDuration:    envDuration("SESSION_DURATION", 30*time.Minute),
		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", "https://cryptocross.example.com"),
		CORSOriginsOffline: csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:3000,http://localhost:3010"),
	}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		cfg = overlayFile(cfg, path)
	}
	return cfg
}

// overlayFile applies non-zero fields from a YAML file over the env config.
func overlayFile(cfg Config, path string) Config {
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	var file Config
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return cfg
	}
	if file.Mode != "" {
		cfg.Mode = file.Mode
	}
	if file.HTTPAddr != "" {
		cfg.HTTPAddr = file.HTTPAddr
	}
	if file.PublicURL != "" {
		cfg.PublicURL = file.PublicURL
	}
	if file.StoreDriver != "" {
		cfg.StoreDriver = file.StoreDriver
	}
	if file.DataDir != "" {
		cfg.DataDir = file.DataDir
	}
	if file.DBDSN != "" {
		cfg.DBDSN = file.DBDSN
	}
	if file.AuthHMACSecret != "" {
		cfg.AuthHMACSecret = file.AuthHMACSecret
	}
	if file.AdminEmail != "" {
		cfg.AdminEmail = file.AdminEmail
	}
	if file.AdminName != "" {
		cfg.AdminName = file.AdminName
	}
	if file.AdminPassHash != "" {
		cfg.AdminPassHash = file.AdminPassHash
	}
	if file.SessionDuration != 0 {
		cfg.SessionDuration = file.SessionDuration
	}
	if len(file.CORSOriginsOnline) > 0 {
		cfg.CORSOriginsOnline = file.CORSOriginsOnline
	}
	if len(file.CORSOriginsOffline) > 0 {
		cfg.CORSOriginsOffline = file.CORSOriginsOffline
	}
	return cfg
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
