package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Storage backend selectors. The blob capability is the same either way; the
// backend only decides where bytes live and how streaming is served.
const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// Catalog driver selectors.
const (
	CatalogMySQL  = "mysql"
	CatalogMemory = "memory"
)

// Config stores the application configuration.
type Config struct {
	ListenAddr string
	WebAppDir  string // Path to the web application's UI files

	MaxUploadBytes int64

	// Storage backend selection: "local" keeps blobs on disk under MediaDir,
	// "minio" keeps them in an object store bucket.
	StorageBackend string
	MediaDir       string
	IngestDir      string // Optional drop directory watched for new audio files

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioRegion    string
	MinioUseSSL    bool

	CatalogDriver string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisEnabled  bool

	LogLevel string
	LogFile  string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on existing environment variables and defaults.")
	}

	return &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		WebAppDir:  getEnv("WEB_DIR", "web"),

		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_MB", 30)) << 20,

		StorageBackend: getEnv("STORAGE_BACKEND", StorageLocal),
		MediaDir:       getEnv("MEDIA_DIR", "media"),
		IngestDir:      getEnv("INGEST_DIR", ""),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getEnv("MINIO_BUCKET", "auxfm"),
		MinioRegion:    getEnv("MINIO_REGION", "us-east-1"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		CatalogDriver: getEnv("CATALOG_DRIVER", CatalogMemory),
		DBHost:        getEnv("DB_HOST", "127.0.0.1"),
		DBPort:        getEnv("DB_PORT", "3306"),
		DBUser:        getEnv("DB_USER", "root"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        getEnv("DB_NAME", "auxfm"),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisEnabled:  getEnvBool("REDIS_ENABLED", false),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),
	}
}
