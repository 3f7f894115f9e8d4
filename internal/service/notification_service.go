package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/example/carmarket/internal/datamodels/notification"
)

// NotificationService 消费订单事件，为涉及的每个经销商写一条通知
type NotificationService struct {
	repo notification.Repository
}

func NewNotificationService(repo notification.Repository) *NotificationService {
	return &NotificationService{repo: repo}
}

// HandleOrderCreated 处理一条 order.created 消息。
// 消息无法解析时返回 ErrValidation，调用方不应重新入队。
func (s *NotificationService) HandleOrderCreated(ctx context.Context, body []byte) error {
	var ev OrderCreatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: decode order event: %v", ErrValidation, err)
	}
	if ev.OrderID <= 0 {
		return fmt.Errorf("%w: order event without order id", ErrValidation)
	}

	byDealer := make(map[int64][]string)
	for _, it := range ev.Items {
		if it.DealerID <= 0 {
			continue
		}
		byDealer[it.DealerID] = append(byDealer[it.DealerID], fmt.Sprintf("%s x%d", it.Name, it.Quantity))
	}
	dealers := make([]int64, 0, len(byDealer))
	for id := range byDealer {
		dealers = append(dealers, id)
	}
	sort.Slice(dealers, func(i, j int) bool { return dealers[i] < dealers[j] })

	for _, dealerID := range dealers {
		n := &notification.Notification{
			DealerID: dealerID,
			OrderID:  ev.OrderID,
			Message: fmt.Sprintf("Order #%d from %s: %s",
				ev.OrderID, ev.BuyerNumber, strings.Join(byDealer[dealerID], ", ")),
		}
		if err := s.repo.Create(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

func (s *NotificationService) ListForDealer(ctx context.Context, dealerID int64, limit int) ([]*notification.Notification, error) {
	return s.repo.ListByDealer(ctx, dealerID, limit)
}
