package service

import (
	"sync"
	"time"
)

// Monitor 进程内运行统计，后台 /api/stats 输出
type Monitor struct {
	mu sync.RWMutex

	// 错误统计
	RedisErrors  int64
	MQErrors     int64
	DBErrors     int64
	WorkerErrors int64

	// 业务统计
	CartAdds          int64
	CheckoutRequests  int64
	CheckoutSuccess   int64
	CheckoutDuplicate int64
	CheckoutRejected  int64
	DroppedItems      int64
	WorkerProcessed   int64
	WorkerFailed      int64

	LastRedisError time.Time
	LastMQError    time.Time
	LastDBError    time.Time
	LastCheckout   time.Time
	LastWorkerTime time.Time
}

var globalMonitor = &Monitor{}

// GetMonitor 获取全局监控实例
func GetMonitor() *Monitor {
	return globalMonitor
}

func (m *Monitor) RecordRedisError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RedisErrors++
	m.LastRedisError = time.Now()
}

func (m *Monitor) RecordMQError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MQErrors++
	m.LastMQError = time.Now()
}

func (m *Monitor) RecordDBError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DBErrors++
	m.LastDBError = time.Now()
}

func (m *Monitor) RecordCartAdd() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CartAdds++
}

// RecordCheckoutRequest 记录一次结算请求
func (m *Monitor) RecordCheckoutRequest() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckoutRequests++
	m.LastCheckout = time.Now()
}

// RecordCheckoutSuccess 记录结算成功，duplicate 表示命中已有订单
func (m *Monitor) RecordCheckoutSuccess(duplicate bool, dropped int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckoutSuccess++
	if duplicate {
		m.CheckoutDuplicate++
	}
	m.DroppedItems += int64(dropped)
}

func (m *Monitor) RecordCheckoutRejected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckoutRejected++
}

func (m *Monitor) RecordWorkerProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WorkerProcessed++
	m.LastWorkerTime = time.Now()
}

func (m *Monitor) RecordWorkerFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WorkerFailed++
	m.WorkerErrors++
}

// GetStats 获取统计信息
func (m *Monitor) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	successRate := float64(0)
	if m.CheckoutRequests > 0 {
		successRate = float64(m.CheckoutSuccess) / float64(m.CheckoutRequests) * 100
	}

	workerSuccessRate := float64(0)
	totalWorker := m.WorkerProcessed + m.WorkerFailed
	if totalWorker > 0 {
		workerSuccessRate = float64(m.WorkerProcessed) / float64(totalWorker) * 100
	}

	return map[string]interface{}{
		"errors": map[string]interface{}{
			"redis":  m.RedisErrors,
			"mq":     m.MQErrors,
			"db":     m.DBErrors,
			"worker": m.WorkerErrors,
		},
		"performance": map[string]interface{}{
			"cart_adds":             m.CartAdds,
			"checkout_requests":     m.CheckoutRequests,
			"checkout_success":      m.CheckoutSuccess,
			"checkout_duplicate":    m.CheckoutDuplicate,
			"checkout_rejected":     m.CheckoutRejected,
			"checkout_success_rate": successRate,
			"dropped_items":         m.DroppedItems,
			"worker_processed":      m.WorkerProcessed,
			"worker_failed":         m.WorkerFailed,
			"worker_success_rate":   workerSuccessRate,
		},
		"last_events": map[string]interface{}{
			"redis_error":   m.LastRedisError,
			"mq_error":      m.LastMQError,
			"db_error":      m.LastDBError,
			"last_checkout": m.LastCheckout,
			"last_worker":   m.LastWorkerTime,
		},
	}
}

// Reset 重置统计（用于测试或定期清理）
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RedisErrors = 0
	m.MQErrors = 0
	m.DBErrors = 0
	m.WorkerErrors = 0
	m.CartAdds = 0
	m.CheckoutRequests = 0
	m.CheckoutSuccess = 0
	m.CheckoutDuplicate = 0
	m.CheckoutRejected = 0
	m.DroppedItems = 0
	m.WorkerProcessed = 0
	m.WorkerFailed = 0
}
