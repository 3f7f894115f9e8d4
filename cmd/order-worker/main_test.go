package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/carmarket/internal/datamodels/catalog"
	"github.com/example/carmarket/internal/repository/mysql"
	"github.com/example/carmarket/internal/service"
	"github.com/example/carmarket/internal/testutil"
)

type fakeAcker struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *fakeAcker) Ack(uint64, bool) error {
	a.acked = true
	return nil
}

func (a *fakeAcker) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked, a.requeue = true, requeue
	return nil
}

func (a *fakeAcker) Reject(_ uint64, requeue bool) error {
	a.nacked, a.requeue = true, requeue
	return nil
}

type failingHandler struct{ err error }

func (h failingHandler) HandleOrderCreated(context.Context, []byte) error { return h.err }

func delivery(body []byte) (amqp.Delivery, *fakeAcker) {
	ack := &fakeAcker{}
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: body}, ack
}

func TestHandleDelivery_AckWritesNotifications(t *testing.T) {
	db := testutil.NewDB(t)
	repo := mysql.NewNotificationRepository(db)
	svc := service.NewNotificationService(repo)
	service.GetMonitor().Reset()

	body, err := json.Marshal(service.OrderCreatedEvent{
		OrderID:     7,
		BuyerNumber: "+1555",
		Items: []service.OrderEventItem{
			{Type: catalog.TypeCar, ProductID: 5, DealerID: 2, Name: "Toyota Camry 2020", Quantity: 1},
		},
	})
	require.NoError(t, err)

	d, ack := delivery(body)
	handleDelivery(context.Background(), svc, d)

	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
	list, err := repo.ListByDealer(context.Background(), 2, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.EqualValues(t, 7, list[0].OrderID)
	assert.EqualValues(t, 1, service.GetMonitor().WorkerProcessed)
}

func TestHandleDelivery_MalformedIsDropped(t *testing.T) {
	service.GetMonitor().Reset()
	svc := service.NewNotificationService(mysql.NewNotificationRepository(testutil.NewDB(t)))

	d, ack := delivery([]byte("{not json"))
	handleDelivery(context.Background(), svc, d)

	assert.False(t, ack.acked)
	assert.True(t, ack.nacked)
	assert.False(t, ack.requeue)
	assert.EqualValues(t, 1, service.GetMonitor().WorkerFailed)
}

func TestHandleDelivery_TransientErrorRequeues(t *testing.T) {
	service.GetMonitor().Reset()

	d, ack := delivery([]byte(`{"order_id":1}`))
	handleDelivery(context.Background(), failingHandler{err: errors.New("db down")}, d)

	assert.True(t, ack.nacked)
	assert.True(t, ack.requeue)
	assert.EqualValues(t, 1, service.GetMonitor().DBErrors)
}
