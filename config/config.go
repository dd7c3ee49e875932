package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config 应用程序配置
type Config struct {
	APIPort  int
	LogLevel string
	LogFile  LogFileConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Redis    RedisConfig
	Remote   RemoteConfig
	Board    BoardConfig
	Admin    AdminConfig
}

// LogFileConfig 日志文件配置
type LogFileConfig struct {
	Enabled    bool
	Path       string
	MaxSize    int // 单个文件最大大小，单位MB
	MaxBackups int
	MaxAge     int // 最大保留天数
	Compress   bool
}

// DatabaseConfig 本地公告数据库配置
type DatabaseConfig struct {
	Driver   string // mysql 或 sqlite
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	Path     string // sqlite 数据文件
}

// CacheConfig 远程响应缓存配置
type CacheConfig struct {
	Driver string // redis 或 memory
	Key    string
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RemoteConfig Nextcloud 公告中心配置
type RemoteConfig struct {
	BaseURL       string
	Username      string
	Password      string
	Format        string
	SyncFrequency time.Duration
	Timeout       time.Duration
	// Groups 来自 NEXTCLOUD_GROUPS（逗号分隔）；留空表示不按群组过滤
	Groups        []string
}

// BoardConfig 公告板展示配置
type BoardConfig struct {
	DefaultLimit  int
	ExcerptLength int
	PermalinkBase string
}

// AdminConfig 管理接口配置
type AdminConfig struct {
	TokenHash string // bcrypt 哈希
}

const (
	defaultCacheKey      = "noticeboard:nextcloud:announcements"
	defaultSyncFrequency = 24 * time.Hour
)

// ErrEnvFileMissing .env 文件不存在，调用方可记录后继续使用进程环境变量
var ErrEnvFileMissing = errors.New(".env file not found")

// Load 从环境变量加载配置
func Load() (*Config, error) {
	var envErr error
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
		envErr = ErrEnvFileMissing
	}

	syncSeconds := intEnv("NEXTCLOUD_SYNC_FREQUENCY", 0)
	syncFrequency := defaultSyncFrequency
	if syncSeconds > 0 {
		syncFrequency = time.Duration(syncSeconds) * time.Second
	}

	cfg := &Config{
		APIPort:  intEnv("API_PORT", 8080),
		LogLevel: stringEnv("LOG_LEVEL", "info"),
		LogFile: LogFileConfig{
			Enabled:    boolEnv("LOG_FILE_ENABLED", false),
			Path:       stringEnv("LOG_FILE_PATH", "logs/app.log"),
			MaxSize:    intEnv("LOG_FILE_MAX_SIZE", 100),
			MaxBackups: intEnv("LOG_FILE_MAX_BACKUPS", 7),
			MaxAge:     intEnv("LOG_FILE_MAX_AGE", 30),
			Compress:   boolEnv("LOG_FILE_COMPRESS", false),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(stringEnv("DB_DRIVER", "mysql")),
			Host:     os.Getenv("DB_HOST"),
			Port:     intEnv("DB_PORT", 3306),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   os.Getenv("DB_NAME"),
			Path:     stringEnv("DB_PATH", "noticeboard.db"),
		},
		Cache: CacheConfig{
			Driver: strings.ToLower(stringEnv("CACHE_DRIVER", "redis")),
			Key:    stringEnv("NEXTCLOUD_CACHE_KEY", defaultCacheKey),
		},
		Redis: RedisConfig{
			Host:     stringEnv("REDIS_HOST", "127.0.0.1"),
			Port:     intEnv("REDIS_PORT", 6379),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       intEnv("REDIS_DB", 0),
		},
		Remote: RemoteConfig{
			BaseURL:       strings.TrimSpace(os.Getenv("NEXTCLOUD_URL")),
			Username:      os.Getenv("NEXTCLOUD_USER"),
			Password:      os.Getenv("NEXTCLOUD_PASSWORD"),
			Format:        strings.ToLower(stringEnv("NEXTCLOUD_FORMAT", "json")),
			SyncFrequency: syncFrequency,
			Timeout:       durationEnv("NEXTCLOUD_TIMEOUT", 10*time.Second),
			Groups:        listEnv("NEXTCLOUD_GROUPS"),
		},
		Board: BoardConfig{
			DefaultLimit:  intEnv("BOARD_DEFAULT_LIMIT", 4),
			ExcerptLength: intEnv("BOARD_EXCERPT_LENGTH", 165),
			PermalinkBase: strings.TrimRight(os.Getenv("BOARD_PERMALINK_BASE"), "/"),
		},
		Admin: AdminConfig{
			TokenHash: os.Getenv("ADMIN_TOKEN_HASH"),
		},
	}

	return cfg, envErr
}

func stringEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}

func boolEnv(key string, def bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}

func durationEnv(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func listEnv(key string) []string {
	raw := os.Getenv(key)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
