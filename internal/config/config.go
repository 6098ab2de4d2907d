package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

// Config はサービス全体の設定をまとめる。
type Config struct {
	Server  ServerConfig
	Line    LineConfig
	AI      AIConfig
	Session SessionConfig
}

// Load は環境変数から設定を読み込む。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	line, err := loadLineConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	session, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Line: line, AI: ai, Session: session}, nil
}

// ServerConfig はHTTPサーバーの設定。
type ServerConfig struct {
	Addr string
}

// loadServerConfig は待ち受けアドレスを解析する。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// ":8080" や "127.0.0.1:8080" の直接指定を許可する。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// LineConfig は Messaging API の認証情報。
type LineConfig struct {
	ChannelToken  string
	ChannelSecret string
}

func loadLineConfig() (LineConfig, error) {
	token := strings.TrimSpace(os.Getenv("LINE_CHANNEL_ACCESS_TOKEN"))
	secret := strings.TrimSpace(os.Getenv("LINE_CHANNEL_SECRET"))
	if token == "" || secret == "" {
		return LineConfig{}, fmt.Errorf("LINE のトークン/シークレットが設定されていません (LINE_CHANNEL_ACCESS_TOKEN, LINE_CHANNEL_SECRET)")
	}

	return LineConfig{ChannelToken: token, ChannelSecret: secret}, nil
}

// AIConfig は生成モデル関連の設定。
type AIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature *float64
	MaxTokens   *int
	// Timeout は1回の生成呼び出しの上限秒数。
	Timeout int
}

// NewChatModel は設定からモデルインスタンスを作成する。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY が設定されていません")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	cfg := &openai.ChatModelConfig{
		APIKey:      c.APIKey,
		Model:       c.Model,
		BaseURL:     c.BaseURL,
		Timeout:     time.Duration(c.Timeout) * time.Second,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	return openai.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return AIConfig{}, fmt.Errorf("OPENAI_API_KEY が設定されていません")
	}

	temperature, err := parseOptionalFloatEnv("OPENAI_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("OPENAI_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	timeout := 30
	if timeoutOverride, err := parseOptionalIntEnv("OPENAI_TIMEOUT"); err != nil {
		return AIConfig{}, err
	} else if timeoutOverride != nil {
		if *timeoutOverride < 1 {
			return AIConfig{}, fmt.Errorf("invalid OPENAI_TIMEOUT value %d: must be positive", *timeoutOverride)
		}
		timeout = *timeoutOverride
	}

	return AIConfig{
		APIKey:      apiKey,
		Model:       getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		BaseURL:     strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Timeout:     timeout,
	}, nil
}

// SessionConfig はセッションストアの設定。REDIS_ADDR が空ならインメモリ。
type SessionConfig struct {
	RedisAddr string
	TTL       time.Duration
}

// RedisEnabled は Redis ストアを使うかどうかを返す。
func (c SessionConfig) RedisEnabled() bool {
	return c.RedisAddr != ""
}

func loadSessionConfig() (SessionConfig, error) {
	ttlSeconds := 86400
	if ttlOverride, err := parseOptionalIntEnv("SESSION_TTL"); err != nil {
		return SessionConfig{}, err
	} else if ttlOverride != nil {
		if *ttlOverride < 1 {
			return SessionConfig{}, fmt.Errorf("invalid SESSION_TTL value %d: must be positive", *ttlOverride)
		}
		ttlSeconds = *ttlOverride
	}

	return SessionConfig{
		RedisAddr: strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		TTL:       time.Duration(ttlSeconds) * time.Second,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
