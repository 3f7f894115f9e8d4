package main

import (
	"log"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/example/carmarket/internal/config"
	"github.com/example/carmarket/internal/infra/mq"
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
	mqConn := mq.Init(&cfg.RabbitMQ)
	defer mqConn.Close()

	events := mq.NewPublisher(mqConn, cfg.RabbitMQ.OrderQueue)
	deps := server.NewDeps(db, redisClient, events, cfg)

	app := iris.New()
	server.RegisterRoutes(app, cfg, deps)

	addr := cfg.Server.Addr()
	zap.L().Info("web server listening", zap.String("addr", addr))
	if err := app.Run(iris.Addr(addr)); err != nil {
		zap.L().Fatal("failed to run web server", zap.Error(err))
	}
}
