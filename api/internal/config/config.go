package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// 기본 엔진 이름: "midm" | "gemini"
	DefaultEngine string

	GeminiAPIKey string
	GeminiModel  string

	MidmBaseURL string
	MidmModel   string

	TelegramBotToken string
	WebhookURL       string
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load는 .env(있으면)와 환경변수에서 설정을 읽는다.
// API 키 부재는 여기서가 아니라 해당 엔진 호출 시점에 검출된다.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port: getEnv("PORT", "8000"),

		DefaultEngine: getEnv("DEFAULT_ENGINE", "midm"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		MidmBaseURL: getEnv("MIDM_BASE_URL", "http://127.0.0.1:8001/v1"),
		MidmModel:   getEnv("MIDM_MODEL", "K-intelligence/Midm-2.0-Base-Instruct"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		WebhookURL:       os.Getenv("WEBHOOK_URL"),
	}
}
