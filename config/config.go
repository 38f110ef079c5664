package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config collects every knob the four binaries read from the
// environment. Each program only uses its own slice of this struct.
type Config struct {
	// Listen addresses.
	LLMAddr       string
	AnalyticsAddr string
	STTAddr       string

	// Peer URLs.
	LLMServerURL string
	AnalyticsURL string
	STTServerURL string

	// LLM backend (OpenAI-compatible; Ollama by default).
	OllamaBaseURL string
	OllamaModel   string
	OllamaAPIKey  string

	// Transcription backend (Whisper-compatible HTTP API).
	WhisperURL   string
	WhisperModel string
	Language     string

	// Analytics data.
	CSVPath   string
	ChartsDir string

	// Audio capture.
	SampleRate int
}

// Load reads .env if present and resolves every setting with its
// default. Missing .env is not an error; plain environment variables
// still apply.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to environment variables")
	}

	return &Config{
		LLMAddr:       getenv("LLM_ADDR", ":5000"),
		AnalyticsAddr: getenv("ANALYTICS_ADDR", ":5001"),
		STTAddr:       getenv("STT_ADDR", ":5002"),

		LLMServerURL: getenv("LLM_SERVER_URL", "http://localhost:5000"),
		AnalyticsURL: getenv("ANALYTICS_URL", "http://localhost:5001"),
		STTServerURL: getenv("STT_SERVER_URL", "http://localhost:5002"),

		OllamaBaseURL: getenv("OLLAMA_BASE_URL", "http://localhost:11434/v1"),
		OllamaModel:   getenv("OLLAMA_MODEL", "gpt-oss:20b"),
		OllamaAPIKey:  getenv("OLLAMA_API_KEY", "ollama"),

		WhisperURL:   getenv("WHISPER_URL", "http://localhost:8090/v1"),
		WhisperModel: getenv("WHISPER_MODEL", "whisper-1"),
		Language:     getenv("LANGUAGE", "en"),

		CSVPath:   getenv("CSV_PATH", "Generated_Trip_Data.csv"),
		ChartsDir: getenv("CHARTS_DIR", "charts"),

		SampleRate: getenvInt("SAMPLE_RATE", 16000),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid integer for %s: %q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
