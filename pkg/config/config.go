package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	Env       string
	PublicURL string

	PostgresConnStr string
	MongoURI        string
	MongoDB         string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	MinioBucket    string

	// Optional integrations are disabled when empty.
	RedisAddr               string
	KafkaBrokers            string
	KafkaTopic              string
	FirebaseCredentialsPath string
	OTLPEndpoint            string

	JWTSecret      string
	SessionTTL     time.Duration
	CacheStaleTime time.Duration
	CacheGCTime    time.Duration
}

// Load reads the configuration from the environment, after loading a .env
// file when one exists.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	port := getEnv("PORT", "8080")
	return &Config{
		Port:      port,
		Env:       getEnv("ENV", "development"),
		PublicURL: getEnv("PUBLIC_URL", "http://localhost:"+port),

		PostgresConnStr: getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:        getEnv("MONGO_URI", ""),
		MongoDB:         getEnv("MONGO_DB", "snapgram"),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioUseSSL:    getBool("MINIO_USE_SSL", false),
		MinioBucket:    getEnv("MINIO_BUCKET", "snapgram-media"),

		RedisAddr:               getEnv("REDIS_ADDR", ""),
		KafkaBrokers:            getEnv("KAFKA_BROKERS", ""),
		KafkaTopic:              getEnv("KAFKA_TOPIC", "snapgram.mutations"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		OTLPEndpoint:            getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		JWTSecret:      getEnv("JWT_SECRET", "supersecretjwtkey"),
		SessionTTL:     getDuration("SESSION_TTL", 72*time.Hour),
		CacheStaleTime: getDuration("CACHE_STALE_TIME", 30*time.Second),
		CacheGCTime:    getDuration("CACHE_GC_TIME", 5*time.Minute),
	}
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool { return c.Env == "production" }

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Invalid %s=%q, using %t", key, value, defaultValue)
		return defaultValue
	}
	return b
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
