package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/subosito/gotenv"
)

// LoadEnv loads config/envs/.env.<env> into the process environment. Values
// already present in the environment win.
func LoadEnv(env string) {
	envFile := "config/envs/.env." + env
	if err := gotenv.Load(envFile); err != nil {
		slog.Warn("[Config] No .env file found, using OS environment",
			slog.String("file", envFile))
	}
}

// AppEnv returns APP_ENV, defaulting to dev.
func AppEnv() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	return env
}

type Config struct {
	Env      string
	LogLevel string

	HTTPAddr    string
	DatasetPath string
	// DatasetSources are the extra sources the dashboard may load besides
	// DatasetPath.
	DatasetSources []string
	PreviewRows    int

	Backend          string
	SentimentModel   string
	EmotionModel     string
	ModelDir         string
	RemoteEndpoint   string
	OpenAIAPIKey     string
	OpenAIModel      string
	VaderThreshold   float64
	BatchSize        int
	StripMarkdown    bool
	UsePrecomputed   bool
	CacheTTL         time.Duration
	ValkeyAddress    string
	ValkeyPassword   string
	ValkeyTLS        bool
	OAuthClientID    string
	OAuthSecret      string
	OAuthTokenURL    string
	S3Region         string
	S3Endpoint       string
	DynamoDBEndpoint string
	DynamoDBTable    string
	DatabaseURL      string
	KafkaBroker      string
	KafkaTopic       string
}

// Load reads every setting from the environment, applying defaults.
func Load() Config {
	return Config{
		Env:      AppEnv(),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		DatasetPath:    getEnv("DATASET_PATH", "data/sentiment_clean.csv"),
		DatasetSources: getListEnv("DATASET_SOURCES"),
		PreviewRows:    getIntEnv("PREVIEW_ROWS", 50),

		Backend:          strings.ToLower(getEnv("PREDICTOR_BACKEND", "vader")),
		SentimentModel:   getEnv("SENTIMENT_MODEL", "distilbert/distilbert-base-uncased-finetuned-sst-2-english"),
		EmotionModel:     getEnv("EMOTION_MODEL", "j-hartmann/emotion-english-distilroberta-base"),
		ModelDir:         getEnv("MODEL_DIR", "./models"),
		RemoteEndpoint:   getEnv("REMOTE_ENDPOINT", "https://spacesedan-sentiment-analyzer.hf.space/analyze_batch"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		VaderThreshold:   getFloatEnv("VADER_THRESHOLD", 0.20),
		BatchSize:        getIntEnv("BATCH_SIZE", 32),
		StripMarkdown:    getBoolEnv("STRIP_MARKDOWN", false),
		UsePrecomputed:   getBoolEnv("USE_PRECOMPUTED_LABELS", false),
		CacheTTL:         getDurationEnv("CACHE_TTL", 24*time.Hour),
		ValkeyAddress:    os.Getenv("VALKEY_INIT_ADDRESS"),
		ValkeyPassword:   os.Getenv("VALKEY_PASSWORD"),
		ValkeyTLS:        getBoolEnv("VALKEY_TLS", false),
		OAuthClientID:    os.Getenv("DATASET_OAUTH_CLIENT_ID"),
		OAuthSecret:      os.Getenv("DATASET_OAUTH_CLIENT_SECRET"),
		OAuthTokenURL:    os.Getenv("DATASET_OAUTH_TOKEN_URL"),
		S3Region:         getEnv("S3_REGION", "us-west-2"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		DynamoDBEndpoint: os.Getenv("DYNAMODB_ENDPOINT"),
		DynamoDBTable:    getEnv("DYNAMODB_TABLE", "SentimentResults"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		KafkaBroker:      getEnv("KAFKA_BROKER", "localhost:29092"),
		KafkaTopic:       getEnv("KAFKA_TOPIC", "sentiment-results"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getListEnv(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getIntEnv(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

func getFloatEnv(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getBoolEnv(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}
