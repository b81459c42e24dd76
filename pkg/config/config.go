package config

import "os"

// Config holds server configuration.
type Config struct {
	Port          string
	LogLevel      string
	DatabasePath  string
	PostgresURL   string
	RedisAddr     string
	TokenSecret   string
	PoliciesDir   string
	PolicyCode    string
	OTLPEndpoint  string
	TracesEnabled bool
}

// Load loads configuration from environment variables.
func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "INFO"
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "nudged.db"
	}

	policiesDir := os.Getenv("POLICIES_DIR")
	if policiesDir == "" {
		policiesDir = "policies"
	}

	policyCode := os.Getenv("POLICY_CODE")
	if policyCode == "" {
		policyCode = "default"
	}

	return &Config{
		Port:          port,
		LogLevel:      logLevel,
		DatabasePath:  dbPath,
		PostgresURL:   os.Getenv("POSTGRES_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		TokenSecret:   os.Getenv("TOKEN_SECRET"),
		PoliciesDir:   policiesDir,
		PolicyCode:    policyCode,
		OTLPEndpoint:  os.Getenv("OTLP_ENDPOINT"),
		TracesEnabled: os.Getenv("TRACES_ENABLED") == "true",
	}
}
