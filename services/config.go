package services

import (
	"log/slog"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Storage   StorageConfig
	JWT       JWTConfig
	WebSocket WebSocketConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	URL string
	// UseDocumentStore switches every collection to the document backend.
	// Read once at startup; there is no per-request override.
	UseDocumentStore bool
	DocumentPath     string
	MaxIdleConns     int
	MaxOpenConns     int
}

type StorageConfig struct {
	// Backend is "local" or "s3".
	Backend       string
	LocalDir      string
	PublicBaseURL string
	S3Endpoint    string
	S3Bucket      string
	S3AccessKey   string
	S3SecretKey   string
	S3UseSSL      bool
}

type JWTConfig struct {
	Secret string
}

type WebSocketConfig struct {
	AllowedOrigins string
}

// LoadConfig loads configuration from environment variables and config files
func LoadConfig() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("database.url", "")
	viper.SetDefault("database.use_document_store", "false")
	viper.SetDefault("database.document_path", "careercraft.db")
	viper.SetDefault("database.max_idle_conns", "10")
	viper.SetDefault("database.max_open_conns", "100")
	viper.SetDefault("storage.backend", "local")
	viper.SetDefault("storage.local_dir", "uploads")
	viper.SetDefault("storage.public_base_url", "/uploads")
	viper.SetDefault("storage.s3_endpoint", "")
	viper.SetDefault("storage.s3_bucket", "")
	viper.SetDefault("storage.s3_access_key", "")
	viper.SetDefault("storage.s3_secret_key", "")
	viper.SetDefault("storage.s3_use_ssl", "true")
	viper.SetDefault("jwt.secret", "")
	viper.SetDefault("websocket.allowed_origins", "")

	// Map environment variables to config keys
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("database.url", "DATABASE_URL")
	viper.BindEnv("database.use_document_store", "USE_DOCUMENT_STORE")
	viper.BindEnv("database.document_path", "DOCUMENT_STORE_PATH")
	viper.BindEnv("database.max_idle_conns", "DATABASE_MAX_IDLE_CONNS")
	viper.BindEnv("database.max_open_conns", "DATABASE_MAX_OPEN_CONNS")
	viper.BindEnv("storage.backend", "STORAGE_BACKEND")
	viper.BindEnv("storage.local_dir", "STORAGE_LOCAL_DIR")
	viper.BindEnv("storage.public_base_url", "STORAGE_PUBLIC_BASE_URL")
	viper.BindEnv("storage.s3_endpoint", "S3_ENDPOINT")
	viper.BindEnv("storage.s3_bucket", "S3_BUCKET")
	viper.BindEnv("storage.s3_access_key", "S3_ACCESS_KEY")
	viper.BindEnv("storage.s3_secret_key", "S3_SECRET_KEY")
	viper.BindEnv("storage.s3_use_ssl", "S3_USE_SSL")
	viper.BindEnv("jwt.secret", "JWT_SECRET")
	viper.BindEnv("websocket.allowed_origins", "WEBSOCKET_ALLOWED_ORIGINS")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Warn("Config file not found, using defaults and environment variables")
		} else {
			slog.Error("Error reading config file", "error", err)
		}
	}

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("server.port"),
		},
		Database: DatabaseConfig{
			URL:              viper.GetString("database.url"),
			UseDocumentStore: viper.GetBool("database.use_document_store"),
			DocumentPath:     viper.GetString("database.document_path"),
			MaxIdleConns:     viper.GetInt("database.max_idle_conns"),
			MaxOpenConns:     viper.GetInt("database.max_open_conns"),
		},
		Storage: StorageConfig{
			Backend:       viper.GetString("storage.backend"),
			LocalDir:      viper.GetString("storage.local_dir"),
			PublicBaseURL: viper.GetString("storage.public_base_url"),
			S3Endpoint:    viper.GetString("storage.s3_endpoint"),
			S3Bucket:      viper.GetString("storage.s3_bucket"),
			S3AccessKey:   viper.GetString("storage.s3_access_key"),
			S3SecretKey:   viper.GetString("storage.s3_secret_key"),
			S3UseSSL:      viper.GetBool("storage.s3_use_ssl"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("jwt.secret"),
		},
		WebSocket: WebSocketConfig{
			AllowedOrigins: viper.GetString("websocket.allowed_origins"),
		},
	}
}
