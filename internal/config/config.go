package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/user/movielog/internal/model"
)

// Config 应用配置
type Config struct {
	Env       string
	Port      string
	AppSecret string
	TokenTTL  time.Duration
	LogLevel  string
	LogFormat string

	DBDriver    string // sqlite | postgres
	DatabaseURL string // sqlite 为文件路径，postgres 为连接串

	TMDB      TMDBConfig
	KOBIS     KOBISConfig
	Journal   JournalConfig
	Recommend RecommendConfig
}

// TMDBConfig 电影目录服务配置
type TMDBConfig struct {
	APIKey        string
	Language      string
	BaseURL       string
	WebURL        string
	ImageURL      string
	Timeout       time.Duration
	RatePerSecond float64
	CacheTTL      time.Duration
}

// KOBISConfig 票房服务配置
type KOBISConfig struct {
	APIKey        string
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64
	RankingSize   int
}

// JournalConfig 观影记录配置
type JournalConfig struct {
	RatingScale    model.RatingScale
	LikedThreshold float64
	StatsTopN      int
}

// RecommendConfig 推荐配置
type RecommendConfig struct {
	MinVoteCount int
	Limit        int
}

// Load 加载配置
func Load() *Config {
	env := getEnv("APP_ENV", "development")

	driver := getEnv("DB_DRIVER", "sqlite")
	dbURL := getEnv("DB_PATH", filepath.Join("data", "movies.db"))
	if driver == "postgres" {
		dbURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			getEnv("DB_USER", "postgres"),
			getEnv("DB_PASSWORD", "postgres"),
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_PORT", "5432"),
			getEnv("DB_NAME", "movielog"),
			getEnv("DB_SSLMODE", "disable"))
	}

	timeout := time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 10)) * time.Second
	rate := getEnvFloat("PROVIDER_RATE_PER_SECOND", 20)

	scale := model.RatingScale{
		Min:  getEnvFloat("RATING_MIN", model.DefaultRatingScale().Min),
		Max:  getEnvFloat("RATING_MAX", model.DefaultRatingScale().Max),
		Step: getEnvFloat("RATING_STEP", model.DefaultRatingScale().Step),
	}

	logFormat := "json"
	if env != "production" {
		logFormat = "console"
	}

	return &Config{
		Env:         env,
		Port:        getEnv("PORT", "5005"),
		AppSecret:   getEnv("APP_SECRET", ""),
		TokenTTL:    time.Duration(getEnvInt("TOKEN_TTL_HOURS", 24*30)) * time.Hour,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", logFormat),
		DBDriver:    driver,
		DatabaseURL: dbURL,
		TMDB: TMDBConfig{
			APIKey:        getEnv("TMDB_API_KEY", ""),
			Language:      getEnv("TMDB_LANGUAGE", "ko-KR"),
			BaseURL:       getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
			WebURL:        getEnv("TMDB_WEB_URL", "https://www.themoviedb.org/movie/"),
			ImageURL:      getEnv("TMDB_IMAGE_URL", "https://image.tmdb.org/t/p/w300"),
			Timeout:       timeout,
			RatePerSecond: rate,
			CacheTTL:      time.Duration(getEnvInt("TMDB_CACHE_MINUTES", 30)) * time.Minute,
		},
		KOBIS: KOBISConfig{
			APIKey:        getEnv("KOBIS_API_KEY", ""),
			BaseURL:       getEnv("KOBIS_BASE_URL", "http://kobis.or.kr/kobisopenapi/webservice/rest/boxoffice"),
			Timeout:       timeout,
			RatePerSecond: rate,
			RankingSize:   10,
		},
		Journal: JournalConfig{
			RatingScale:    scale,
			LikedThreshold: getEnvFloat("LIKED_THRESHOLD", scale.LikedThreshold()),
			StatsTopN:      getEnvInt("STATS_TOP_N", 10),
		},
		Recommend: RecommendConfig{
			MinVoteCount: getEnvInt("RECOMMEND_MIN_VOTES", 500),
			Limit:        getEnvInt("RECOMMEND_LIMIT", 10),
		},
	}
}

// Validate 校验配置。评分刻度非法直接报错；缺少外部服务密钥只返回警告，对应功能会降级为空结果
func (c *Config) Validate() (warnings []string, err error) {
	if err := c.Journal.RatingScale.Check(); err != nil {
		return nil, fmt.Errorf("invalid rating scale: %w", err)
	}
	scale := c.Journal.RatingScale
	if c.Journal.LikedThreshold < scale.Min || c.Journal.LikedThreshold > scale.Max {
		return nil, fmt.Errorf("liked threshold %v is outside rating scale %v..%v",
			c.Journal.LikedThreshold, scale.Min, scale.Max)
	}
	if c.DBDriver != "sqlite" && c.DBDriver != "postgres" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	if c.TMDB.APIKey == "" {
		warnings = append(warnings, "TMDB_API_KEY 未设置，电影搜索与推荐将返回空结果")
	}
	if c.KOBIS.APIKey == "" {
		warnings = append(warnings, "KOBIS_API_KEY 未设置，票房榜将返回空结果")
	}
	if c.Env == "production" && c.AppSecret == "" {
		warnings = append(warnings, "生产环境未设置 APP_SECRET，API 不做鉴权")
	}
	return warnings, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultValue
}
