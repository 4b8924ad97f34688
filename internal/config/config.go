package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	PublicBaseURL      string
	LogLevel           string
	CORSAllowedOrigins []string

	// Text generation
	GeminiAPIKey       string
	GeminiModelID      string
	LLMTimeout         time.Duration
	LLMMaxOutputTokens int

	// Optional Bedrock fallback provider
	AWSRegion      string
	BedrockModelID string

	// CRM webhook
	CRMWebhookURL string
	CRMBestEffort bool
	CRMTimeout    time.Duration

	// Proposal store
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	ProposalTTL   time.Duration

	// Qualification dialogue
	DialogueMaxTurns int

	// Operator notifications
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	NotifyEmail       string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		PublicBaseURL:      getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),

		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:      getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		LLMTimeout:         getEnvAsDuration("LLM_TIMEOUT", 30*time.Second),
		LLMMaxOutputTokens: getEnvAsInt("LLM_MAX_OUTPUT_TOKENS", 2048),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		BedrockModelID: getEnv("BEDROCK_MODEL_ID", ""),

		CRMWebhookURL: getEnv("CRM_WEBHOOK_URL", ""),
		CRMBestEffort: getEnvAsBool("CRM_BEST_EFFORT", false),
		CRMTimeout:    getEnvAsDuration("CRM_TIMEOUT", 10*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		ProposalTTL:   getEnvAsDuration("PROPOSAL_TTL", 30*time.Minute),

		DialogueMaxTurns: getEnvAsInt("DIALOGUE_MAX_TURNS", 3),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Leadflow"),
		NotifyEmail:       getEnv("NOTIFY_EMAIL", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsSlice splits a comma-separated environment variable, dropping empty entries.
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
