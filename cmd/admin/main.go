package main

import (
	"log"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/example/carmarket/internal/config"
	"github.com/example/carmarket/internal/infra/redis"
	"github.com/example/carmarket/internal/logger"
	"github.com/example/carmarket/internal/repository/mysql"
	"github.com/example/carmarket/internal/server"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	l, err := logger.Init(&cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer l.Sync()

	db := mysql.Init(&cfg.MySQL)
	redisClient := redis.Init(&cfg.Redis)

	// 后台不下单，不需要 MQ
	deps := server.NewDeps(db, redisClient, nil, cfg)

	app := iris.New()
	server.RegisterAdminRoutes(app, cfg, deps)

	addr := cfg.AdminServer.Addr()
	zap.L().Info("admin server listening", zap.String("addr", addr))
	if err := app.Run(iris.Addr(addr)); err != nil {
		zap.L().Fatal("failed to run admin server", zap.Error(err))
	}
}
