package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	LLM          LLMConfig          `yaml:"llm"`
	Speech       SpeechConfig       `yaml:"speech"`
	Cache        CacheConfig        `yaml:"cache"`
	AudioArchive AudioArchiveConfig `yaml:"audio_archive"`
	Web          WebConfig          `yaml:"web"`
}

type ServerConfig struct {
	Port        string   `yaml:"port"`
	Mode        string   `yaml:"mode"` // debug, release
	CORSOrigins []string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Type            string        `yaml:"type"` // sqlite, mysql, postgres
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	MigrateLegacy   bool          `yaml:"migrate_legacy"`
	SeedSample      bool          `yaml:"seed_sample"`
}

type LLMConfig struct {
	APIURL     string        `yaml:"api_url"`
	APIKey     string        `yaml:"api_key"`
	Model      string        `yaml:"model"`
	MaxTokens  int           `yaml:"max_tokens"`
	Timeout    time.Duration `yaml:"timeout"`     // 单次调用超时
	MaxRetries int           `yaml:"max_retries"` // 仅对可重试错误生效
	Backoff    time.Duration `yaml:"backoff"`
	MaxBackoff time.Duration `yaml:"max_backoff"`
}

type SpeechConfig struct {
	Model  string `yaml:"model"`
	Voice  string `yaml:"voice"`
	Format string `yaml:"format"`
}

type CacheConfig struct {
	Enabled  bool          `yaml:"enabled"`
	RedisURL string        `yaml:"redis_url"`
	TTL      time.Duration `yaml:"ttl"`
}

type AudioArchiveConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type WebConfig struct {
	StaticDir string `yaml:"static_dir"`
}

var (
	cfg  *Config
	once sync.Once
)

func GetConfig() *Config {
	once.Do(func() {
		cfg = loadConfig()
	})
	return cfg
}

// Default 返回内置默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "3001",
			Mode:        "debug",
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:3001"},
		},
		Database: DatabaseConfig{
			Type:            "sqlite",
			DSN:             "./data/reading.db",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		LLM: LLMConfig{
			APIURL:     "https://api.openai.com/v1",
			Model:      "gpt-4o-mini",
			MaxTokens:  4096,
			Timeout:    2 * time.Minute,
			MaxRetries: 2,
			Backoff:    500 * time.Millisecond,
			MaxBackoff: 5 * time.Second,
		},
		Speech: SpeechConfig{
			Model:  "tts-1",
			Voice:  "alloy",
			Format: "mp3",
		},
		Cache: CacheConfig{
			RedisURL: "redis://localhost:6379/0",
			TTL:      24 * time.Hour,
		},
		AudioArchive: AudioArchiveConfig{
			Bucket: "discussion-audio",
		},
	}
}

func loadConfig() *Config {
	config := Default()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err == nil {
		yaml.Unmarshal(data, config)
	}

	applyEnv(config)
	return config
}

// applyEnv 环境变量优先级高于配置文件
func applyEnv(config *Config) {
	if port := os.Getenv("PORT"); port != "" {
		config.Server.Port = port
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		config.Server.Mode = mode
	}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		config.Server.CORSOrigins = splitList(origins)
	}

	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.LLM.APIKey = apiKey
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.LLM.APIURL = baseURL
	}
	if model := os.Getenv("OPENAI_MODEL_NAME"); model != "" {
		config.LLM.Model = model
	}
	if model := os.Getenv("MODEL_NAME"); model != "" {
		config.LLM.Model = model
	}
	if retries := os.Getenv("LLM_MAX_RETRIES"); retries != "" {
		if n, err := strconv.Atoi(retries); err == nil {
			config.LLM.MaxRetries = n
		}
	}
	if model := os.Getenv("TTS_MODEL"); model != "" {
		config.Speech.Model = model
	}
	if voice := os.Getenv("TTS_VOICE"); voice != "" {
		config.Speech.Voice = voice
	}

	// 数据库环境变量
	if dbType := os.Getenv("DB_TYPE"); dbType != "" {
		config.Database.Type = dbType
	}
	if dbDSN := os.Getenv("DB_DSN"); dbDSN != "" {
		config.Database.DSN = dbDSN
	} else if user := unquote(os.Getenv("SQL_USER")); user != "" {
		config.Database.Type = "mysql"
		config.Database.DSN = MySQLDSN(
			unquote(os.Getenv("SQL_HOST")),
			user,
			unquote(os.Getenv("SQL_PASSWORD")),
			unquote(os.Getenv("SQL_DATABASE_NEWBIZ")),
		)
	}

	if seed := os.Getenv("SEED_SAMPLE_DATA"); seed != "" {
		config.Database.SeedSample, _ = strconv.ParseBool(seed)
	}
	if migrate := os.Getenv("MIGRATE_LEGACY"); migrate != "" {
		config.Database.MigrateLegacy, _ = strconv.ParseBool(migrate)
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		config.Cache.RedisURL = redisURL
		config.Cache.Enabled = true
	}

	if endpoint := os.Getenv("MINIO_ENDPOINT"); endpoint != "" {
		config.AudioArchive.Endpoint = endpoint
		config.AudioArchive.Enabled = true
	}
	if accessKey := os.Getenv("MINIO_ACCESS_KEY"); accessKey != "" {
		config.AudioArchive.AccessKey = accessKey
	}
	if secretKey := os.Getenv("MINIO_SECRET_KEY"); secretKey != "" {
		config.AudioArchive.SecretKey = secretKey
	}
	if bucket := os.Getenv("MINIO_BUCKET"); bucket != "" {
		config.AudioArchive.Bucket = bucket
	}

	if staticDir := os.Getenv("STATIC_DIR"); staticDir != "" {
		config.Web.StaticDir = staticDir
	}
}

// MySQLDSN 根据分离的连接参数拼装 MySQL DSN
func MySQLDSN(host, user, password, database string) string {
	if host == "" {
		host = "127.0.0.1"
	}
	if !strings.Contains(host, ":") && !strings.HasPrefix(host, "/") {
		host += ":3306"
	}
	addr := fmt.Sprintf("tcp(%s)", host)
	if strings.HasPrefix(host, "/") {
		addr = fmt.Sprintf("unix(%s)", host)
	}
	return fmt.Sprintf("%s:%s@%s/%s?charset=utf8mb4&parseTime=True&loc=Local", user, password, addr, database)
}

// unquote 去掉 .env 中值两侧的单引号
func unquote(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "'", "")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
