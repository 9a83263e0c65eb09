package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // 确保在精简镜像中也能识别时区

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/user/movielog/internal/config"
	"github.com/user/movielog/internal/handler"
	"github.com/user/movielog/internal/logging"
	"github.com/user/movielog/internal/repository"
	"github.com/user/movielog/internal/router"
	"github.com/user/movielog/internal/service"
)

func main() {
	// 加载环境变量
	envErr := godotenv.Load()

	// 加载配置
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if envErr != nil {
		logging.Info().Msg("未找到 .env 文件，使用系统环境变量")
	}

	warnings, err := cfg.Validate()
	if err != nil {
		logging.Fatal().Err(err).Msg("配置错误")
	}
	for _, w := range warnings {
		logging.Warn().Msg(w)
	}

	// 初始化数据库
	db, err := repository.InitDB(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		logging.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("数据库连接失败")
	}

	// 初始化仓库
	repos := repository.NewRepositories(db)
	defer repos.Close()

	// 外部服务
	tmdb := service.NewTMDBClient(cfg.TMDB)
	kobis := service.NewKOBISClient(cfg.KOBIS, tmdb)

	// 业务服务
	journal := service.NewJournal(repos, tmdb, service.JournalOptions{
		RatingScale: cfg.Journal.RatingScale,
		WebURL:      cfg.TMDB.WebURL,
	})
	reports := service.NewReportService(journal, cfg.Journal.StatsTopN)
	recommender := service.NewRecommendationService(journal, repos.Movie, tmdb, service.RecommendOptions{
		LikedThreshold: cfg.Journal.LikedThreshold,
		MinVoteCount:   cfg.Recommend.MinVoteCount,
		Limit:          cfg.Recommend.Limit,
	})

	// 启动时清理已看过的想看条目
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	service.NewMaintenanceService(repos).Run(startupCtx)
	cancelStartup()

	// 初始化 Gin
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	h := handler.NewHandler(tmdb, kobis, journal, reports, recommender)
	r := router.NewRouter(h, cfg.AppSecret)

	// 配置 HTTP 服务器
	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// 在 goroutine 中启动服务器，这样我们就可以监听信号
	go func() {
		logging.Info().Str("port", cfg.Port).Str("driver", cfg.DBDriver).Msg("服务器启动")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("服务器启动失败")
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("服务器强制关闭")
	}

	logging.Info().Msg("服务器已退出")
}
