package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type DB struct {
	DbHOST     string
	DbPORT     string
	DbUSER     string
	DbPASSWORD string
	DbNAME     string
	DbSSLMODE  string
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type MinIO struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
	UseSSL     bool
	Region     string
	URLExpiry  time.Duration
}

type NATS struct {
	URL string
}

const (
	KVBackendPostgres = "postgres"
	KVBackendRedis    = "redis"
)

type Config struct {
	ServerPort      int
	APIPrefix       string
	LogLevel        string
	KVBackend       string
	DB              DB
	Redis           Redis
	MinIO           MinIO
	NATS            NATS
	MaxBodySize     int64
	ShutdownTimeout time.Duration

	// EnvFileLoaded reports whether a .env file was found at startup.
	EnvFileLoaded bool
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func LoadDB() DB {
	return DB{
		DbHOST:     getEnv("DB_HOST", "localhost"),
		DbPORT:     getEnv("DB_PORT", "5432"),
		DbUSER:     getEnv("DB_USER", "postgres"),
		DbPASSWORD: getEnv("DB_PASSWORD", "password"),
		DbNAME:     getEnv("DB_NAME", "blog"),
		DbSSLMODE:  getEnv("DB_SSLMODE", "disable"),
	}
}

func LoadRedis() Redis {
	return Redis{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvAsInt("REDIS_DB", 0),
	}
}

// LoadMinIO reads the object store settings. Signed URLs are valid for 7 days
// unless MINIO_URL_EXPIRY says otherwise.
func LoadMinIO() MinIO {
	return MinIO{
		Endpoint:   getEnv("MINIO_ENDPOINT", "localhost:9000"),
		AccessKey:  getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey:  getEnv("MINIO_SECRET_KEY", "minioadmin"),
		BucketName: getEnv("MINIO_BUCKET_NAME", "blog-media"),
		UseSSL:     getEnvBool("MINIO_USE_SSL", false),
		Region:     getEnv("MINIO_REGION", "us-east-1"),
		URLExpiry:  getEnvAsDuration("MINIO_URL_EXPIRY", 7*24*time.Hour),
	}
}

func LoadConfig() *Config {
	loaded := godotenv.Load() == nil

	return &Config{
		ServerPort:      getEnvAsInt("SERVER_PORT", 8080),
		APIPrefix:       getEnv("API_PREFIX", "/api"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		KVBackend:       getEnv("KV_BACKEND", KVBackendPostgres),
		DB:              LoadDB(),
		Redis:           LoadRedis(),
		MinIO:           LoadMinIO(),
		NATS:            NATS{URL: getEnv("NATS_URL", "")},
		MaxBodySize:     getEnvAsInt64("MAX_BODY_SIZE", 50<<20),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		EnvFileLoaded:   loaded,
	}
}
