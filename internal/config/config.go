package config

import (
	"github.com/spf13/viper"
)

// Config holds all configuration for the application (server and CLI).
type Config struct {
	// Server specific configuration
	ServerPort string `mapstructure:"SERVER_PORT"`

	// Database configuration
	DbType     string `mapstructure:"DB_TYPE"`     // "postgres" or "sqlite"
	DbDsn      string `mapstructure:"DB_DSN"`      // Data Source Name for Postgres
	SqlitePath string `mapstructure:"SQLITE_PATH"` // Path for SQLite database file

	// Catalog snapshot storage configuration
	StorageType      string `mapstructure:"STORAGE_TYPE"`       // "minio" or "local"
	LocalStoragePath string `mapstructure:"LOCAL_STORAGE_PATH"` // Path for local file storage

	// MinIO specific configuration (only used if StorageType is "minio")
	MinioEndpoint  string `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	MinioBucket    string `mapstructure:"MINIO_BUCKET"`
	MinioUseSSL    bool   `mapstructure:"MINIO_USE_SSL"`

	// Authentication
	AuthToken string `mapstructure:"AUTH_TOKEN"` // Static bearer token for admin operations

	// CLI specific configuration
	RegistryURL string `mapstructure:"REGISTRY_URL"` // URL for the CLI to connect to
}

// LoadConfig loads configuration from environment variables and sets defaults.
func LoadConfig() (config Config, err error) {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("DB_TYPE", "postgres")
	viper.SetDefault("DB_DSN", "host=localhost user=postgres password=postgres dbname=codingreg port=5432 sslmode=disable")
	viper.SetDefault("SQLITE_PATH", "codingreg.db")
	viper.SetDefault("STORAGE_TYPE", "local")
	viper.SetDefault("LOCAL_STORAGE_PATH", "./codingreg-storage")
	viper.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	viper.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
	viper.SetDefault("MINIO_SECRET_KEY", "minioadmin")
	viper.SetDefault("MINIO_BUCKET", "codingreg-catalogs")
	viper.SetDefault("MINIO_USE_SSL", false)
	viper.SetDefault("AUTH_TOKEN", "supersecrettoken") // CHANGE THIS IN PRODUCTION
	viper.SetDefault("REGISTRY_URL", "http://localhost:8080")

	// Environment variables use a prefix, e.g. CODINGREG_SERVER_PORT.
	viper.SetEnvPrefix("CODINGREG")
	viper.AutomaticEnv()

	err = viper.Unmarshal(&config)
	return
}
