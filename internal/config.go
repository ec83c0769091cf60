package internal

import (
	"os"

	"github.com/joho/godotenv"
)

// Config 運行時配置
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string
}

// LoadConfig 從環境變數讀取配置
//
// 開發環境下先載入 .env（不存在則忽略）；命令行參數以此為預設值。
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:      getEnv("PORT", "8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
