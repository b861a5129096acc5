package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/novy-stil/service-atelier/pkg/config"
)

// StorageConfig selects where uploaded images live.
type StorageConfig struct {
	Driver       string // local | cloudinary
	UploadDir    string
	PublicPrefix string
	CloudName    string
	CloudAPIKey  string
	CloudSecret  string
	CloudFolder  string
}

// GeminiConfig holds LLM settings. An empty APIKey disables the LLM.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// SuperuserConfig bootstraps an administrator at startup when Email is set.
type SuperuserConfig struct {
	Email         string
	Password      string
	ForcePassword bool
}

// ChatConfig limits the public chat endpoint.
type ChatConfig struct {
	RequestsPerMinute int
	Burst             int
	KnowledgeBasePath string
	AnswerTTL         time.Duration
	CacheEnabled      bool
}

// ServiceConfig holds all configuration for the atelier service.
type ServiceConfig struct {
	Port           string
	AppEnv         string
	MigrationsDir  string
	MetricsEnabled bool
	DBConfig       config.DatabaseConfig
	JWTConfig      config.JWTConfig
	KafkaConfig    config.KafkaConfig
	RedisConfig    config.RedisConfig
	Gemini         GeminiConfig
	Storage        StorageConfig
	Superuser      SuperuserConfig
	Chat           ChatConfig
}

// Load reads configuration from environment variables prefixed with ATELIER_.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("ATELIER")
	if err != nil {
		return nil, err
	}
	setDefaults(v)

	return &ServiceConfig{
		Port:           config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:         config.GetAppEnv(v),
		MigrationsDir:  v.GetString("MIGRATIONS_DIR"),
		MetricsEnabled: v.GetBool("METRICS_ENABLED"),
		DBConfig:       config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:      config.LoadJWTConfig(v),
		KafkaConfig:    config.LoadKafkaConfig(v),
		RedisConfig:    config.LoadRedisConfig(v),
		Gemini: GeminiConfig{
			APIKey: v.GetString("GEMINI_API_KEY"),
			Model:  v.GetString("GEMINI_MODEL"),
		},
		Storage: StorageConfig{
			Driver:       v.GetString("STORAGE_DRIVER"),
			UploadDir:    v.GetString("UPLOAD_DIR"),
			PublicPrefix: v.GetString("UPLOAD_PUBLIC_PREFIX"),
			CloudName:    v.GetString("CLOUDINARY_CLOUD_NAME"),
			CloudAPIKey:  v.GetString("CLOUDINARY_API_KEY"),
			CloudSecret:  v.GetString("CLOUDINARY_API_SECRET"),
			CloudFolder:  v.GetString("CLOUDINARY_FOLDER"),
		},
		Superuser: SuperuserConfig{
			Email:         v.GetString("SUPERUSER_EMAIL"),
			Password:      v.GetString("SUPERUSER_PASSWORD"),
			ForcePassword: v.GetBool("SUPERUSER_FORCE_PASSWORD"),
		},
		Chat: ChatConfig{
			RequestsPerMinute: v.GetInt("CHAT_RATE_PER_MINUTE"),
			Burst:             v.GetInt("CHAT_RATE_BURST"),
			KnowledgeBasePath: v.GetString("CHAT_KNOWLEDGE_BASE"),
			AnswerTTL:         v.GetDuration("CHAT_ANSWER_TTL"),
			CacheEnabled:      v.GetBool("CHAT_CACHE_ENABLED"),
		},
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DB_NAME", "atelier")
	v.SetDefault("MIGRATIONS_DIR", "migrations")
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	v.SetDefault("STORAGE_DRIVER", "local")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("UPLOAD_PUBLIC_PREFIX", "/uploads")
	v.SetDefault("CLOUDINARY_FOLDER", "atelier")
	v.SetDefault("CHAT_RATE_PER_MINUTE", 20)
	v.SetDefault("CHAT_RATE_BURST", 5)
	v.SetDefault("CHAT_ANSWER_TTL", "24h")
	v.SetDefault("CHAT_CACHE_ENABLED", false)
}
