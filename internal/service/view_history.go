package service

import "context"

const (
	sessionViewedKey = "viewed"
	viewHistoryCap   = 20
)

// ViewHistory 会话内最近浏览的汽车，最新在前
type ViewHistory struct {
	store SessionStore
}

func NewViewHistory(store SessionStore) *ViewHistory {
	return &ViewHistory{store: store}
}

// Record 记录一次浏览：去重后放到最前，超过上限截断
func (h *ViewHistory) Record(ctx context.Context, sid string, carID int64) error {
	ids, err := h.IDs(ctx, sid)
	if err != nil {
		return err
	}
	next := make([]int64, 0, len(ids)+1)
	next = append(next, carID)
	for _, id := range ids {
		if id != carID {
			next = append(next, id)
		}
	}
	if len(next) > viewHistoryCap {
		next = next[:viewHistoryCap]
	}
	return h.store.Set(ctx, sid, sessionViewedKey, next)
}

func (h *ViewHistory) IDs(ctx context.Context, sid string) ([]int64, error) {
	var ids []int64
	if _, err := h.store.Get(ctx, sid, sessionViewedKey, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}
