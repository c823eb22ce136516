package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string

	ModelPath        string
	ModelSearchPaths []string // кандидаты, если MODEL_PATH не задан
	Backend          string   // onnxruntime или opencv
	Device           string   // auto, cpu, cuda
	ONNXRuntimeLib   string
	InputSize        int
	IOUThreshold     float64
	InferenceThreads int
	NetPoolSize      int // сетей в пуле для бэкенда opencv

	ConfidenceThreshold float64
	ReturnAnnotated     bool

	LogLevel     string
	LogFile      string
	MetricsAddr  string // пустой адрес отключает /metrics
	HistoryLimit int
	Workers      int // одновременно обрабатываемых фото
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),

		ModelPath:        getEnv("MODEL_PATH", ""),
		ModelSearchPaths: getEnvAsList("MODEL_SEARCH_PATHS"),
		Backend:          getEnv("INFERENCE_BACKEND", "onnxruntime"),
		Device:           getEnv("DEVICE", "auto"),
		ONNXRuntimeLib:   getEnv("ONNXRUNTIME_LIB", ""),
		InputSize:        getEnvAsInt("INPUT_SIZE", 640),
		IOUThreshold:     getEnvAsFloat("IOU_THRESHOLD", 0.7),
		InferenceThreads: getEnvAsInt("INFERENCE_THREADS", 0),
		NetPoolSize:      getEnvAsInt("NET_POOL_SIZE", 2),

		ConfidenceThreshold: getEnvAsFloat("CONFIDENCE_THRESHOLD", 0.25),
		ReturnAnnotated:     getEnvAsBool("RETURN_ANNOTATED", true),

		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFile:      getEnv("LOG_FILE", ""),
		MetricsAddr:  getEnv("METRICS_ADDR", ":9090"),
		HistoryLimit: getEnvAsInt("HISTORY_LIMIT", 20),
		Workers:      getEnvAsInt("WORKERS", 4),
	}

	if cfg.ConfidenceThreshold < 0 || cfg.ConfidenceThreshold > 1 {
		return nil, fmt.Errorf("CONFIDENCE_THRESHOLD must be within [0, 1], got %v", cfg.ConfidenceThreshold)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsList список через запятую, пустые элементы отбрасываются
func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
