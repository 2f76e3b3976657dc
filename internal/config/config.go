package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the namespace prefix for all Clover environment variables.
const EnvPrefix = "CLOVER_"

// Config holds all application configuration. Secrets (API keys, Slack
// tokens) are loaded exclusively from environment variables and never
// appear in the config file.
type Config struct {
	ListenAddr     string `yaml:"listen_addr"`
	DBPath         string `yaml:"db_path"`
	MediaDir       string `yaml:"media_dir"`
	OracleModel    string `yaml:"oracle_model"`
	DigestModel    string `yaml:"digest_model"`
	WhisperModel   string `yaml:"whisper_model"`
	OracleTimeout  string `yaml:"oracle_timeout"`
	MeetingEndTime string `yaml:"meeting_end_time"`
	UploadLink     string `yaml:"upload_link"`
	GDriveFolderID string `yaml:"gdrive_folder_id"`

	GoogleCredentialsFile string `yaml:"google_credentials_file"`

	// Secrets — env vars only, never serialized to YAML.
	GroqAPIKey      string `yaml:"-"`
	OpenAIAPIKey    string `yaml:"-"`
	AnthropicAPIKey string `yaml:"-"`
	GeminiAPIKey    string `yaml:"-"`
	SlackBotToken   string `yaml:"-"`
	SlackChannelID  string `yaml:"-"`
}

func defaults() Config {
	return Config{
		ListenAddr:            ":8080",
		DBPath:                "data/clover.db",
		MediaDir:              "data/media",
		OracleModel:           "groq/llama3-70b-8192",
		DigestModel:           "groq/llama3-8b-8192",
		WhisperModel:          "whisper-large-v3",
		OracleTimeout:         "30s",
		MeetingEndTime:        "09:00",
		GoogleCredentialsFile: "./service-account.json",
	}
}

// Load reads configuration from a YAML file (if it exists), applies
// environment variable overrides, loads secrets, and validates the result.
// It returns the config, any validation warnings, and an error if the file
// exists but cannot be read or parsed.
func Load(path string) (Config, []string, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, nil, fmt.Errorf("read config file: %w", err)
			}
		} else {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	applyEnvOverrides(&cfg)
	loadSecrets(&cfg)

	warnings := validate(&cfg)
	return cfg, warnings, nil
}

// ParsedOracleTimeout returns OracleTimeout as a time.Duration, falling
// back to 30s if the value is invalid.
func (c *Config) ParsedOracleTimeout() time.Duration {
	d, err := time.ParseDuration(c.OracleTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvPrefix + "LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv(EnvPrefix + "DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(EnvPrefix + "MEDIA_DIR"); v != "" {
		cfg.MediaDir = v
	}
	if v := os.Getenv(EnvPrefix + "ORACLE_MODEL"); v != "" {
		cfg.OracleModel = v
	}
	if v := os.Getenv(EnvPrefix + "DIGEST_MODEL"); v != "" {
		cfg.DigestModel = v
	}
	if v := os.Getenv(EnvPrefix + "WHISPER_MODEL"); v != "" {
		cfg.WhisperModel = v
	}
	if v := os.Getenv(EnvPrefix + "ORACLE_TIMEOUT"); v != "" {
		cfg.OracleTimeout = v
	}
	if v := os.Getenv(EnvPrefix + "MEETING_END_TIME"); v != "" {
		cfg.MeetingEndTime = v
	}
	if v := os.Getenv(EnvPrefix + "UPLOAD_LINK"); v != "" {
		cfg.UploadLink = v
	}
	if v := os.Getenv(EnvPrefix + "GDRIVE_FOLDER_ID"); v != "" {
		cfg.GDriveFolderID = v
	}
	if v := os.Getenv(EnvPrefix + "GOOGLE_CREDENTIALS_FILE"); v != "" {
		cfg.GoogleCredentialsFile = v
	}
}

func loadSecrets(cfg *Config) {
	cfg.GroqAPIKey = os.Getenv(EnvPrefix + "GROQ_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv(EnvPrefix + "OPENAI_API_KEY")
	cfg.AnthropicAPIKey = os.Getenv(EnvPrefix + "ANTHROPIC_API_KEY")
	cfg.GeminiAPIKey = os.Getenv(EnvPrefix + "GEMINI_API_KEY")
	cfg.SlackBotToken = os.Getenv(EnvPrefix + "SLACK_BOT_TOKEN")
	cfg.SlackChannelID = os.Getenv(EnvPrefix + "SLACK_CHANNEL_ID")
}

func validate(cfg *Config) []string {
	var warnings []string

	if cfg.GroqAPIKey == "" {
		warnings = append(warnings, "Groq API key not configured — transcription and speaker attribution are disabled. Set "+EnvPrefix+"GROQ_API_KEY.")
	}
	if cfg.SlackBotToken == "" || cfg.SlackChannelID == "" {
		warnings = append(warnings, "Slack credentials not configured — report delivery and reminders are disabled. Set "+EnvPrefix+"SLACK_BOT_TOKEN and "+EnvPrefix+"SLACK_CHANNEL_ID.")
	}
	if _, err := time.ParseDuration(cfg.OracleTimeout); err != nil {
		warnings = append(warnings, fmt.Sprintf("Invalid oracle_timeout %q — using default 30s.", cfg.OracleTimeout))
	}
	if _, err := time.Parse("15:04", cfg.MeetingEndTime); err != nil {
		warnings = append(warnings, fmt.Sprintf("Invalid meeting_end_time %q — daily reminder is disabled.", cfg.MeetingEndTime))
	}

	return warnings
}
