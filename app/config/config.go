package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log      Log      `yaml:"log"`
	Server   Server   `yaml:"server"`
	DB       DB       `yaml:"db"`
	Redis    Redis    `yaml:"redis"`
	Neo4j    Neo4j    `yaml:"neo4j"`
	Pinecone Pinecone `yaml:"pinecone"`
	AI       AI       `yaml:"ai"`
	JWT      JWT      `yaml:"jwt"`
	SMTP     SMTP     `yaml:"smtp"`
}

type Server struct {
	// Port to listen on
	Port int `yaml:"port" example:"8000"`
	// Allowed CORS origins, comma-separated
	CORSOrigins string `yaml:"cors_origins" example:"http://localhost:3000"`
}

type AI struct {
	// Gemini API keys, rotated on failure
	GeminiKeys []string `yaml:"gemini_keys" validate:"required,min=1"`
	// Gemini model
	GeminiModel string `yaml:"gemini_model" example:"gemini-2.0-flash"`
	// Cohere API token, provider is skipped when empty
	CohereToken string `yaml:"cohere_token"`
	// Cohere model
	CohereModel string `yaml:"cohere_model" example:"command-r-08-2024"`
	// Optional OpenAI-compatible fallback provider
	OpenAI ModelConfig `yaml:"openai"`
	// Classify messages with a model instead of the rule cascade
	GenerativeNLU bool `yaml:"generative_nlu"`
	// How long a failed provider is skipped
	Cooldown time.Duration `yaml:"cooldown" example:"30s"`
}

type ModelConfig struct {
	// OpenAI base url
	BaseURL string `yaml:"base_url" example:"https://openrouter.ai/api/v1"`
	// OpenAI token
	Token string `yaml:"token" example:"sk-proj-abc123456789DEF789ghi012JKL345mno678PQR901stu234VWX"`
	// OpenAI model
	Model string `yaml:"model" example:"deepseek/deepseek-chat-v3-0324:free"`
}

type JWT struct {
	// HMAC secret used to verify tokens
	Secret string `yaml:"secret" validate:"required"`
}

type SMTP struct {
	// SMTP server host
	Host string `yaml:"host" example:"smtp.gmail.com"`
	// SMTP server port
	Port int `yaml:"port" example:"587"`
	// Sender account
	User string `yaml:"user" example:"assistant@gmail.com"`
	// Sender password or app password
	Pass string `yaml:"pass"`
}

type Redis struct {
	// Redis address
	Addr string `yaml:"addr" example:"localhost:6379"`
	// Redis password
	Pass string `yaml:"pass"`
	// Redis database number
	DB int `yaml:"db" example:"1"`
}

type Neo4j struct {
	// Bolt URI
	URI string `yaml:"uri" example:"bolt://localhost:7687" validate:"required"`
	// Neo4j username
	User string `yaml:"user" example:"neo4j" validate:"required"`
	// Neo4j password
	Pass string `yaml:"pass" validate:"required"`
}

type Pinecone struct {
	// Pinecone API key
	APIKey string `yaml:"api_key" validate:"required"`
	// Pinecone index name
	Index string `yaml:"index" example:"aria-memory" validate:"required"`
	// Embedding model used to vectorize messages
	EmbeddingModel string `yaml:"embedding_model" example:"text-embedding-ada-002"`
	// API key for the embeddings endpoint
	EmbeddingToken string `yaml:"embedding_token"`
}

type Log struct {
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

type DB struct {
	// Postgres username
	User string `yaml:"user" example:"postgres" validate:"required"`
	// Postgres password
	Pass string `yaml:"pass" validate:"required"`
	// Postgres host
	Host string `yaml:"host"  example:"localhost:5432" validate:"required"`
	// Postgres database name
	Database string `yaml:"database" example:"aria" validate:"required"`
}

func (db DB) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s", db.User, db.Pass, db.Host, db.Database)
}

func Load() (*Config, error) {
	var result Config

	data, err := os.ReadFile("config.yaml")
	if err != nil {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.Errorf("failed to parse YAML config: %w", err)
	}

	if result.Server.Port == 0 {
		result.Server.Port = 8000
	}
	if result.DB.User == "" {
		result.DB.User = "postgres"
	}
	if result.DB.Pass == "" {
		result.DB.Pass = "postgres"
	}
	if result.DB.Host == "" {
		result.DB.Host = "localhost:5432"
	}
	if result.DB.Database == "" {
		result.DB.Database = "aria"
	}
	if result.Redis.Addr == "" {
		result.Redis.Addr = "localhost:6379"
	}
	if result.AI.GeminiModel == "" {
		result.AI.GeminiModel = "gemini-2.0-flash"
	}
	if result.AI.CohereModel == "" {
		result.AI.CohereModel = "command-r-08-2024"
	}
	if result.AI.Cooldown == 0 {
		result.AI.Cooldown = 30 * time.Second
	}
	if result.Pinecone.EmbeddingModel == "" {
		result.Pinecone.EmbeddingModel = "text-embedding-ada-002"
	}
	if result.SMTP.Host == "" {
		result.SMTP.Host = "smtp.gmail.com"
	}
	if result.SMTP.Port == 0 {
		result.SMTP.Port = 587
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}
