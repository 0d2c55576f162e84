// Package env holds the environment variable names shared by the
// subcommands
package env

const (
	// Prefix is the common prefix of all service env vars
	Prefix = "PARALELO_"

	// DBURLSuffix holds the Postgres connection string
	DBURLSuffix = "DB_URL"

	// GeminiKeySuffix holds the Gemini API key, if any
	GeminiKeySuffix = "GEMINI_API_KEY"

	// HuggingFaceKeySuffix holds the Hugging Face API key, if any
	HuggingFaceKeySuffix = "HF_API_KEY"
)
