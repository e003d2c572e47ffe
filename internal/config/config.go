package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8000）

	DatabaseURL      string // あれば最優先
	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）
	PostgresSSLMode  string

	JWTSecret  string        // JWT署名シークレット
	TokenTTL   time.Duration // トークンの有効期限（24h）
	BcryptCost int

	RedisAddr       string        // 空ならログイン制限なし
	RedisPassword   string        // Redisパスワード
	LoginRateLimit  int           // ウィンドウ内の最大試行回数
	LoginRateWindow time.Duration // ウィンドウ幅
	RabbitMQURL     string        // 空ならイベント送信なし
	UserEventsQueue string        // ユーザーイベントのキュー名

	ShutdownTimeout time.Duration
	LogLevel        string
	LogDev          bool
	FEURL           string // フロントURL（CORS）
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := atoiDefault("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	cost, err := atoiDefault("BCRYPT_COST", 12)
	if err != nil {
		return Config{}, err
	}
	limit, err := atoiDefault("LOGIN_RATE_LIMIT", 10)
	if err != nil {
		return Config{}, err
	}
	ttl, err := durationDefault("TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return Config{}, err
	}
	window, err := durationDefault("LOGIN_RATE_WINDOW", time.Minute)
	if err != nil {
		return Config{}, err
	}
	shutdown, err := durationDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: getenv("PORT", "8000"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "inventory"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		JWTSecret:  os.Getenv("JWT_SECRET"),
		TokenTTL:   ttl,
		BcryptCost: cost,

		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		LoginRateLimit:  limit,
		LoginRateWindow: window,
		RabbitMQURL:     os.Getenv("RABBITMQ_URL"),
		UserEventsQueue: getenv("USER_EVENTS_QUEUE", "users.events"),
		ShutdownTimeout: shutdown,
		LogLevel:        os.Getenv("LOG_LEVEL"),
		LogDev:          os.Getenv("LOG_DEV") == "1",
		FEURL:           getenv("FE_URL", "http://localhost:3000"),
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("TOKEN_TTL must be positive")
	}
	if cfg.LoginRateLimit <= 0 {
		return Config{}, fmt.Errorf("LOGIN_RATE_LIMIT must be positive")
	}

	return cfg, nil
}

// DSNはgorm用の接続文字列
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func durationDefault(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}

// ClientConfigはCLIクライアントの設定
type ClientConfig struct {
	APIURL    string // サーバーURL（http://localhost:8000）
	SessionDB string // セッションを保存するSQLiteファイル
	LogLevel  string
}

func LoadClient() ClientConfig {
	return ClientConfig{
		APIURL:    getenv("API_URL", "http://localhost:8000"),
		SessionDB: getenv("SESSION_DB", "session.db"),
		LogLevel:  getenv("LOG_LEVEL", "warn"),
	}
}
