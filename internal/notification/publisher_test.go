package notification

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/DigitalPlayLoad/monitor-notificacoes/internal/store"
	"github.com/DigitalPlayLoad/monitor-notificacoes/pkg/event"
	"github.com/DigitalPlayLoad/monitor-notificacoes/pkg/httpclient"
)

// newMockEventStore はEvent Storeのモックサーバーを起動し、受け取ったイベントを記録する。
func newMockEventStore(t *testing.T, status int) (*httptest.Server, func() []event.Event) {
	t.Helper()

	var mu sync.Mutex
	var events []event.Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/events" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var ev event.Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err == nil {
			mu.Lock()
			events = append(events, ev)
			mu.Unlock()
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"id":"mock-event-id"}`))
	}))
	t.Cleanup(srv.Close)

	return srv, func() []event.Event {
		mu.Lock()
		defer mu.Unlock()
		return append([]event.Event(nil), events...)
	}
}

// TestEventStorePublisher はイベントストアへの送信のテスト。
func TestEventStorePublisher(t *testing.T) {
	t.Parallel()

	kw := "inbox"
	n := store.Notification{
		ID:        "n-1",
		App:       "Mail",
		Content:   "Hi",
		Keyword:   &kw,
		Timestamp: time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
	}

	t.Run("受信イベントに通知の内容が含まれること", func(t *testing.T) {
		t.Parallel()
		srv, received := newMockEventStore(t, http.StatusCreated)
		pub := NewEventStorePublisher(httpclient.New(srv.URL))

		pub.Received(t.Context(), n)

		events := received()
		if len(events) != 1 {
			t.Fatalf("イベント数: got %d, want 1", len(events))
		}
		ev := events[0]
		if ev.EventType != event.TypeNotificationReceived {
			t.Errorf("event_type: got %s, want %s", ev.EventType, event.TypeNotificationReceived)
		}
		if ev.AggregateID != "n-1" {
			t.Errorf("aggregate_id: got %s, want n-1", ev.AggregateID)
		}
		data, err := event.DecodeData[event.NotificationReceivedData](&ev)
		if err != nil {
			t.Fatalf("データのデコードに失敗: %v", err)
		}
		if data.App != "Mail" || data.Content != "Hi" {
			t.Errorf("data: got %+v", data)
		}
		if data.Keyword == nil || *data.Keyword != "inbox" {
			t.Errorf("keyword: got %v, want inbox", data.Keyword)
		}
	})

	t.Run("削除と一括削除のイベントを送信すること", func(t *testing.T) {
		t.Parallel()
		srv, received := newMockEventStore(t, http.StatusCreated)
		pub := NewEventStorePublisher(httpclient.New(srv.URL))

		pub.Deleted(t.Context(), n)
		pub.Cleared(t.Context(), 42)

		events := received()
		if len(events) != 2 {
			t.Fatalf("イベント数: got %d, want 2", len(events))
		}
		if events[0].EventType != event.TypeNotificationDeleted {
			t.Errorf("1件目: got %s, want %s", events[0].EventType, event.TypeNotificationDeleted)
		}
		cleared, err := event.DecodeData[event.NotificationsClearedData](&events[1])
		if err != nil {
			t.Fatalf("データのデコードに失敗: %v", err)
		}
		if cleared.DeletedCount != 42 {
			t.Errorf("deleted_count: got %d, want 42", cleared.DeletedCount)
		}
	})

	t.Run("送信に失敗しても取り込みは成功すること", func(t *testing.T) {
		t.Parallel()
		srv, _ := newMockEventStore(t, http.StatusInternalServerError)
		s := store.NewMemoryStore()
		p := NewPipeline(s, NewChecker(s), WithPublisher(NewEventStorePublisher(httpclient.New(srv.URL))))

		res, err := p.Ingest(t.Context(), RawNotification{AppName: "Mail", Title: "Hi"})
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if res.Status != StatusAccepted {
			t.Errorf("status: got %q, want %q", res.Status, StatusAccepted)
		}
	})
}
