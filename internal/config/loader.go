package config

import (
	"github.com/spf13/viper"
	log "github.com/sirupsen/logrus"

	"github.com/propleads/intake/internal/db"
)

// Config gathers every runtime setting for the service.
type Config struct {
	Database db.Config
	// ListenAddr is the HTTP bind address, e.g. ":8080".
	ListenAddr string
	// MigrationsPath points at the SQL migrations applied on startup.
	MigrationsPath string
	// ImportMaxRows caps the number of data rows a bulk import accepts.
	ImportMaxRows int
	// AllowedOrigins lists CORS origins for the admin UI.
	AllowedOrigins []string
}

// Load reads config.yaml from configPath with environment overrides
// (APP_DATABASE_HOST and friends).
func Load(configPath string) (Config, error) {
	cfg := Config{
		Database:       db.DefaultConfig(),
		ListenAddr:     ":8080",
		MigrationsPath: "./migrations",
		ImportMaxRows:  200,
		AllowedOrigins: []string{"http://localhost:3000"},
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("APP")

	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")
	v.BindEnv("server.listen_addr")

	if err := v.ReadInConfig(); err != nil {
		// Config file not found? Use defaults + env.
		log.Info("no config.yaml found, using defaults and env vars")
	} else {
		log.Info("loaded config.yaml")
	}

	if v.IsSet("database.host") {
		cfg.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Database.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Database.SSLMode = v.GetString("database.sslmode")
	}
	if v.IsSet("server.listen_addr") {
		cfg.ListenAddr = v.GetString("server.listen_addr")
	}
	if v.IsSet("server.migrations_path") {
		cfg.MigrationsPath = v.GetString("server.migrations_path")
	}
	if v.IsSet("server.allowed_origins") {
		cfg.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}
	if v.IsSet("import.max_rows") {
		cfg.ImportMaxRows = v.GetInt("import.max_rows")
	}

	return cfg, nil
}
