package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"gopkg.in/yaml.v3"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Session SessionConfig `yaml:"session"`
	Copilot CopilotConfig `yaml:"copilot"`
	AI      AIConfig      `yaml:"ai"`
}

// Load 读取可选的 YAML 文件（SAGARA_CONFIG），再用环境变量覆盖。
func Load() (*Config, error) {
	cfg := Defaults()

	if path := strings.TrimSpace(os.Getenv("SAGARA_CONFIG")); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
		},
		Session: SessionConfig{
			IdleTTL:       30 * time.Minute,
			SweepInterval: time.Minute,
		},
		Copilot: CopilotConfig{
			StreamResponse: true,
		},
		AI: AIConfig{
			BaseURL: "https://ark.cn-beijing.volces.com/api/v3",
			Region:  "cn-beijing",
		},
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		addr, err := parseAddr(port)
		if err != nil {
			return err
		}
		c.Server.Addr = addr
	}
	if origins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); origins != "" {
		c.Server.AllowedOrigins = splitList(origins)
	}

	if err := c.Session.applyEnv(); err != nil {
		return err
	}
	if err := c.Copilot.applyEnv(); err != nil {
		return err
	}
	return c.AI.applyEnv()
}

// Validate 检查配置之间的约束。
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server address is required")
	}
	if c.Session.IdleTTL < 0 {
		return fmt.Errorf("session idle ttl must not be negative")
	}
	if c.Session.IdleTTL > 0 && c.Session.SweepInterval <= 0 {
		return fmt.Errorf("session sweep interval must be positive when idle ttl is set")
	}
	if c.Copilot.LLMEnabled && !c.AI.Enabled() {
		return fmt.Errorf("COPILOT_LLM_ENABLED requires Ark credentials and Model")
	}
	return nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// parseAddr 解析服务器监听地址。
func parseAddr(port string) (string, error) {
	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return port, nil
	}

	if strings.Contains(port, " ") {
		return "", fmt.Errorf("invalid PORT value: %q", port)
	}

	return ":" + port, nil
}

// SessionConfig 控制会话生命周期。IdleTTL 为 0 时不回收空闲会话。
type SessionConfig struct {
	IdleTTL       time.Duration `yaml:"idle_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

func (c *SessionConfig) applyEnv() error {
	ttl, err := parseOptionalDurationEnv("SESSION_IDLE_TTL")
	if err != nil {
		return err
	}
	if ttl != nil {
		c.IdleTTL = *ttl
	}

	interval, err := parseOptionalDurationEnv("SESSION_SWEEP_INTERVAL")
	if err != nil {
		return err
	}
	if interval != nil {
		c.SweepInterval = *interval
	}
	return nil
}

// CopilotConfig 描述 Oceanic Copilot 的回复行为。
type CopilotConfig struct {
	// Seed 非空时所有随机选择可复现。
	Seed           *uint64 `yaml:"seed"`
	StreamResponse bool    `yaml:"stream"`
	LLMEnabled     bool    `yaml:"llm_enabled"`
}

func (c *CopilotConfig) applyEnv() error {
	seed, err := parseOptionalUintEnv("COPILOT_SEED")
	if err != nil {
		return err
	}
	if seed != nil {
		c.Seed = seed
	}

	stream, err := parseBoolEnv("COPILOT_STREAM", c.StreamResponse)
	if err != nil {
		return err
	}
	c.StreamResponse = stream

	llm, err := parseBoolEnv("COPILOT_LLM_ENABLED", c.LLMEnabled)
	if err != nil {
		return err
	}
	c.LLMEnabled = llm
	return nil
}

// AIConfig 描述大模型相关配置，仅在 LLM 模式下使用。
type AIConfig struct {
	APIKey      string   `yaml:"api_key"`
	AccessKey   string   `yaml:"access_key"`
	SecretKey   string   `yaml:"secret_key"`
	Model       string   `yaml:"model"`
	BaseURL     string   `yaml:"base_url"`
	Region      string   `yaml:"region"`
	Temperature *float64 `yaml:"temperature"`
	TopP        *float64 `yaml:"top_p"`
	MaxTokens   *int     `yaml:"max_tokens"`
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + Model 或 AK/SK 组合")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func (c *AIConfig) applyEnv() error {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return err
	}
	if temperature != nil {
		c.Temperature = temperature
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return err
	}
	if topP != nil {
		c.TopP = topP
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return err
	}
	if maxTokens != nil {
		c.MaxTokens = maxTokens
	}

	c.APIKey = getEnvOrDefault("ARK_API_KEY", c.APIKey)
	c.AccessKey = getEnvOrDefault("ARK_ACCESS_KEY", c.AccessKey)
	c.SecretKey = getEnvOrDefault("ARK_SECRET_KEY", c.SecretKey)
	c.Model = getEnvOrDefault("Model", c.Model)
	c.BaseURL = getEnvOrDefault("ARK_BASE_URL", c.BaseURL)
	c.Region = getEnvOrDefault("ARK_REGION", c.Region)
	return nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func lookupTrimmed(key string) (string, bool) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value := strings.TrimSpace(raw)
	return value, value != ""
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	value, ok := lookupTrimmed(key)
	if !ok {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	value, ok := lookupTrimmed(key)
	if !ok {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalUintEnv(key string) (*uint64, error) {
	value, ok := lookupTrimmed(key)
	if !ok {
		return nil, nil
	}

	val, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalDurationEnv(key string) (*time.Duration, error) {
	value, ok := lookupTrimmed(key)
	if !ok {
		return nil, nil
	}

	val, err := time.ParseDuration(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
