package client

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const (
	DefaultServerURL        = "ws://localhost:8080/ws"
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultSendQueue        = 64
)

// Config 客户端配置：环境变量（可由 .env 提供）给默认值，命令行参数再覆盖
type Config struct {
	ServerURL        string
	PlayerID         string
	HandshakeTimeout time.Duration // 0 表示不限时
	SendQueue        int
	LogFile          string
	LogLevel         string
	DebugAddr        string // 调试 HTTP 监听地址，空则不启动
}

// DefaultConfig 不读环境的缺省配置，PlayerID 为新生成的 UUID
func DefaultConfig() Config {
	return Config{
		ServerURL:        DefaultServerURL,
		PlayerID:         uuid.NewString(),
		HandshakeTimeout: DefaultHandshakeTimeout,
		SendQueue:        DefaultSendQueue,
		LogLevel:         "debug",
	}
}

// LoadConfig 读取 .env（不存在时忽略）与 SNAKE_* 环境变量
func LoadConfig(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && len(envFiles) > 0 {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	cfg := DefaultConfig()
	if v := os.Getenv("SNAKE_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("SNAKE_PLAYER_ID"); v != "" {
		cfg.PlayerID = v
	}
	if v := os.Getenv("SNAKE_HANDSHAKE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("SNAKE_HANDSHAKE_TIMEOUT: %w", err)
		}
		cfg.HandshakeTimeout = d
	}
	if v := os.Getenv("SNAKE_SEND_QUEUE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("SNAKE_SEND_QUEUE: invalid value %q", v)
		}
		cfg.SendQueue = n
	}
	if v := os.Getenv("SNAKE_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("SNAKE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("SNAKE_DEBUG_ADDR"); v != "" {
		cfg.DebugAddr = v
	}
	return cfg, nil
}
