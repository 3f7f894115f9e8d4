package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/example/carmarket/internal/config"
	"github.com/example/carmarket/internal/infra/mq"
	"github.com/example/carmarket/internal/logger"
	"github.com/example/carmarket/internal/repository/mysql"
	"github.com/example/carmarket/internal/service"
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
	mqConn := mq.Init(&cfg.RabbitMQ)
	defer mqConn.Close()

	notifySvc := service.NewNotificationService(mysql.NewNotificationRepository(db))

	ch, err := mqConn.Channel()
	if err != nil {
		zap.L().Fatal("failed to open channel", zap.Error(err))
	}
	defer ch.Close()

	queue := cfg.RabbitMQ.OrderQueue
	if _, err = mq.DeclareQueue(ch, queue); err != nil {
		zap.L().Fatal("failed to declare queue", zap.String("queue", queue), zap.Error(err))
	}
	// 同一时刻只处理一条未确认消息
	if err = ch.Qos(1, 0, false); err != nil {
		zap.L().Fatal("failed to set qos", zap.Error(err))
	}

	// 手动确认模式（auto-ack=false）
	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		zap.L().Fatal("failed to consume", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zap.L().Info("order worker started, waiting for messages...", zap.String("queue", queue))
	for {
		select {
		case <-ctx.Done():
			zap.L().Info("order worker stopping")
			return
		case d, ok := <-msgs:
			if !ok {
				zap.L().Warn("delivery channel closed")
				return
			}
			handleDelivery(ctx, notifySvc, d)
		}
	}
}

type orderEventHandler interface {
	HandleOrderCreated(ctx context.Context, body []byte) error
}

// handleDelivery 处理一条订单事件：成功 ack；消息本身不合法时丢弃；其他错误重新入队
func handleDelivery(ctx context.Context, h orderEventHandler, d amqp.Delivery) {
	mon := service.GetMonitor()

	err := h.HandleOrderCreated(ctx, d.Body)
	switch {
	case err == nil:
		mon.RecordWorkerProcessed()
		if err := d.Ack(false); err != nil {
			zap.L().Error("failed to ack message", zap.Error(err))
		}
	case errors.Is(err, service.ErrValidation):
		zap.L().Warn("invalid order event, dropped", zap.ByteString("body", d.Body), zap.Error(err))
		mon.RecordWorkerFailed()
		_ = d.Nack(false, false)
	default:
		zap.L().Error("handle order event failed", zap.Error(err))
		mon.RecordDBError()
		mon.RecordWorkerFailed()
		_ = d.Nack(false, true)
	}
}
