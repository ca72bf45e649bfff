package notification

import (
	"context"
	"fmt"
	"iter"
	"sync"
	"testing"
	"time"

	"github.com/DigitalPlayLoad/monitor-notificacoes/internal/store"
)

// fakeStore はストアをラップし、操作ごとにエラーを注入できるテスト用のStore。
type fakeStore struct {
	store.Store

	mu       sync.Mutex
	puts     int
	queries  int
	putErr   error
	getErr   error
	queryErr error
	batchErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{Store: store.NewMemoryStore()}
}

func (f *fakeStore) Put(ctx context.Context, n store.Notification) error {
	f.mu.Lock()
	f.puts++
	err := f.putErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Store.Put(ctx, n)
}

func (f *fakeStore) Get(ctx context.Context, id string) (store.Notification, bool, error) {
	if f.getErr != nil {
		return store.Notification{}, false, f.getErr
	}
	return f.Store.Get(ctx, id)
}

func (f *fakeStore) Query(ctx context.Context, q store.Query) iter.Seq2[store.Notification, error] {
	f.mu.Lock()
	f.queries++
	err := f.queryErr
	f.mu.Unlock()
	if err != nil {
		return func(yield func(store.Notification, error) bool) {
			yield(store.Notification{}, err)
		}
	}
	return f.Store.Query(ctx, q)
}

func (f *fakeStore) BatchDelete(ctx context.Context, ids []string) (int, error) {
	if f.batchErr != nil {
		return 0, f.batchErr
	}
	return f.Store.BatchDelete(ctx, ids)
}

// putCount はPutが呼ばれた回数を返す。
func (f *fakeStore) putCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.puts
}

// queryCount はQueryが呼ばれた回数を返す。
func (f *fakeStore) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries
}

// recordingPublisher は受け取ったイベントを記録するPublisher。
type recordingPublisher struct {
	mu       sync.Mutex
	received []store.Notification
	deleted  []store.Notification
	cleared  []int
}

func (p *recordingPublisher) Received(_ context.Context, n store.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.received = append(p.received, n)
}

func (p *recordingPublisher) Deleted(_ context.Context, n store.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, n)
}

func (p *recordingPublisher) Cleared(_ context.Context, deletedCount int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cleared = append(p.cleared, deletedCount)
}

// stepClock は呼ばれるたびに1秒ずつ進む時計を返す。
func stepClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

// seed はストアに通知を直接保存する。
func seed(t *testing.T, s store.Store, count int, app string) {
	t.Helper()
	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	for i := range count {
		n := store.Notification{
			ID:        fmt.Sprintf("%s-%03d", app, i),
			App:       app,
			Content:   fmt.Sprintf("content-%d", i),
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}
		if err := s.Put(t.Context(), n); err != nil {
			t.Fatalf("テスト用通知の保存に失敗: %v", err)
		}
	}
}
