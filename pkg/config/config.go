package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort  string
	Environment string

	FirebaseProject            string
	FirebaseApiKey             string
	FirebaseServiceAccountJSON string
	FirebaseServiceAccountPath string
	StorageBucket              string

	MaxMediaBytes    int64
	AssignmentPolicy string

	RedisURL     string
	RoleCacheTTL time.Duration

	NatsURL           string
	NatsSellerSubject string

	LLMBaseURL string
	LLMApiKey  string
	LLMModel   string

	RelayRatePerMinute int
	SendRatePerMinute  int
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		FirebaseProject:            getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseApiKey:             getEnv("FIREBASE_API_KEY", ""),
		FirebaseServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		FirebaseServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", "./firebase-adminsdk.json"),
		StorageBucket:              getEnv("STORAGE_BUCKET", ""),

		MaxMediaBytes:    getEnvAsInt64("MAX_MEDIA_BYTES", 100*1024*1024), // 100 MiB
		AssignmentPolicy: getEnv("ASSIGNMENT_POLICY", "sticky"),

		RedisURL:     getEnv("REDIS_URL", ""),
		RoleCacheTTL: time.Duration(getEnvAsInt64("ROLE_CACHE_TTL_SECONDS", 300)) * time.Second,

		NatsURL:           getEnv("NATS_URL", ""),
		NatsSellerSubject: getEnv("NATS_SUBJECT_SELLER", "vdm.seller.visitor_message"),

		LLMBaseURL: getEnv("LLM_BASE_URL", "http://localhost:11434/v1/"),
		LLMApiKey:  getEnv("LLM_API_KEY", "unused"),
		LLMModel:   getEnv("LLM_MODEL", "llama3.1:8b"),

		RelayRatePerMinute: int(getEnvAsInt64("RELAY_RATE_PER_MINUTE", 5)),
		SendRatePerMinute:  int(getEnvAsInt64("SEND_RATE_PER_MINUTE", 30)),
	}

	return config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
