// token 为本机 API 生成访问令牌：
//
//	go run ./cmd/token -owner me -ttl 720h
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/user/movielog/internal/config"
	"github.com/user/movielog/internal/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	owner := flag.String("owner", "owner", "令牌持有人")
	ttl := flag.Duration("ttl", cfg.TokenTTL, "有效期")
	flag.Parse()

	if cfg.AppSecret == "" {
		fmt.Fprintln(os.Stderr, "APP_SECRET 未设置，API 不做鉴权，无需令牌")
		os.Exit(1)
	}

	token, err := middleware.GenerateToken(*owner, cfg.AppSecret, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "生成令牌失败:", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
