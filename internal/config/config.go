package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// StorageDriverLocal 将上传文件写入本地目录。
	StorageDriverLocal = "local"
	// StorageDriverR2 将上传文件写入 Cloudflare R2。
	StorageDriverR2 = "r2"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr        string
	Port              string
	DatabasePath      string
	SessionSecret     string
	GinMode           string
	LogLevel          string
	UploadDir         string
	UploadURLPath     string
	MaxUploadBytes    int64
	SuperRootUserName string
	SuperRootPassword string
	SiteBaseURL       string
	CacheTTL          time.Duration
	Storage           StorageConfig
}

// StorageConfig 描述媒体文件的存储后端。
type StorageConfig struct {
	Driver          string `yaml:"driver"`
	R2AccountID     string `yaml:"r2_account_id"`
	R2AccessKeyID   string `yaml:"r2_access_key_id"`
	R2SecretKey     string `yaml:"r2_secret_access_key"`
	R2Bucket        string `yaml:"r2_bucket"`
	R2PublicBaseURL string `yaml:"r2_public_url"`
}

// fileConfig mirrors the optional YAML config file. Empty values keep defaults.
type fileConfig struct {
	ListenAddr    string        `yaml:"listen_addr"`
	Port          string        `yaml:"port"`
	DatabasePath  string        `yaml:"database_path"`
	SessionSecret string        `yaml:"session_secret"`
	GinMode       string        `yaml:"gin_mode"`
	LogLevel      string        `yaml:"log_level"`
	UploadDir     string        `yaml:"upload_dir"`
	UploadURLPath string        `yaml:"upload_url_path"`
	MaxUploadMB   int           `yaml:"max_upload_mb"`
	SiteBaseURL   string        `yaml:"site_base_url"`
	CacheTTL      string        `yaml:"cache_ttl"`
	Storage       StorageConfig `yaml:"storage"`
}

// DefaultCacheTTL 是页面与全局导航缓存的固定有效期。
const DefaultCacheTTL = 60 * time.Second

// Load 读取可选的 YAML 配置文件，再用环境变量覆盖，并为缺失项提供安全的默认值。
func Load() (AppConfig, error) {
	var file fileConfig
	if path := FindConfigPath(); path != "" {
		loaded, err := readFile(path)
		if err != nil {
			return AppConfig{}, err
		}
		file = loaded
	}
	return fromSources(file, os.Getenv)
}

// FindConfigPath 返回首个存在的配置文件路径，未找到时返回空串。
func FindConfigPath() string {
	if explicit := strings.TrimSpace(os.Getenv("BLOCKPRESS_CONFIG")); explicit != "" {
		return explicit
	}
	for _, candidate := range []string{"blockpress.yaml", "blockpress.yml"} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

func readFile(path string) (fileConfig, error) {
	var cfg fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func fromSources(file fileConfig, getenv func(string) string) (AppConfig, error) {
	pick := func(key, fromFile, fallback string) string {
		if value := strings.TrimSpace(getenv(key)); value != "" {
			return value
		}
		if value := strings.TrimSpace(fromFile); value != "" {
			return value
		}
		return fallback
	}

	port := pick("PORT", file.Port, "8080")
	listenAddr := pick("LISTEN_ADDR", file.ListenAddr, fmt.Sprintf(":%s", port))

	maxUploadMB := file.MaxUploadMB
	if raw := strings.TrimSpace(getenv("MAX_UPLOAD_MB")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return AppConfig{}, fmt.Errorf("invalid MAX_UPLOAD_MB %q", raw)
		}
		maxUploadMB = parsed
	}
	if maxUploadMB <= 0 {
		maxUploadMB = 20
	}

	cacheTTL := DefaultCacheTTL
	if raw := pick("CACHE_TTL", file.CacheTTL, ""); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			return AppConfig{}, fmt.Errorf("invalid CACHE_TTL %q", raw)
		}
		cacheTTL = parsed
	}

	storage := StorageConfig{
		Driver:          strings.ToLower(pick("STORAGE_DRIVER", file.Storage.Driver, StorageDriverLocal)),
		R2AccountID:     pick("R2_ACCOUNT_ID", file.Storage.R2AccountID, ""),
		R2AccessKeyID:   pick("R2_ACCESS_KEY_ID", file.Storage.R2AccessKeyID, ""),
		R2SecretKey:     pick("R2_SECRET_ACCESS_KEY", file.Storage.R2SecretKey, ""),
		R2Bucket:        pick("R2_BUCKET", file.Storage.R2Bucket, ""),
		R2PublicBaseURL: strings.TrimRight(pick("R2_PUBLIC_URL", file.Storage.R2PublicBaseURL, ""), "/"),
	}
	switch storage.Driver {
	case StorageDriverLocal:
	case StorageDriverR2:
		if storage.R2AccountID == "" || storage.R2AccessKeyID == "" || storage.R2SecretKey == "" || storage.R2Bucket == "" {
			return AppConfig{}, fmt.Errorf("r2 storage requires R2_ACCOUNT_ID, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY and R2_BUCKET")
		}
	default:
		return AppConfig{}, fmt.Errorf("unknown storage driver %q", storage.Driver)
	}

	return AppConfig{
		ListenAddr:        listenAddr,
		Port:              port,
		DatabasePath:      pick("DATABASE_PATH", file.DatabasePath, "blockpress.db"),
		SessionSecret:     pick("SESSION_SECRET", file.SessionSecret, "blockpress-dev-secret"),
		GinMode:           pick("GIN_MODE", file.GinMode, "release"),
		LogLevel:          strings.ToLower(pick("LOG_LEVEL", file.LogLevel, "info")),
		UploadDir:         pick("UPLOAD_DIR", file.UploadDir, "web/static/uploads"),
		UploadURLPath:     strings.TrimRight(pick("UPLOAD_URL_PATH", file.UploadURLPath, "/static/uploads"), "/"),
		MaxUploadBytes:    int64(maxUploadMB) << 20,
		SuperRootUserName: strings.TrimSpace(getenv("SUPER_ROOT_USER_NAME")),
		SuperRootPassword: strings.TrimSpace(getenv("SUPER_ROOT_PASSWORD")),
		SiteBaseURL:       strings.TrimRight(pick("SITE_BASE_URL", file.SiteBaseURL, "http://localhost:8080"), "/"),
		CacheTTL:          cacheTTL,
		Storage:           storage,
	}, nil
}
