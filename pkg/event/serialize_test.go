package event

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

// TestNew はNew関数でイベントが正しく生成されることを検証する。
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("NotificationReceivedDataでイベントを正常に生成できること", func(t *testing.T) {
		t.Parallel()

		data := NotificationReceivedData{
			App:       "Mail",
			Content:   "Hi",
			Timestamp: time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
		}

		before := time.Now().UTC()
		ev, err := New("notif-1", AggregateTypeNotification, TypeNotificationReceived, data)
		after := time.Now().UTC()

		if err != nil {
			t.Fatalf("New()でエラーが発生: %v", err)
		}
		if ev.ID == "" {
			t.Error("IDが空文字列")
		}
		if ev.AggregateID != "notif-1" {
			t.Errorf("AggregateID = %q, want %q", ev.AggregateID, "notif-1")
		}
		if ev.EventType != TypeNotificationReceived {
			t.Errorf("EventType = %q, want %q", ev.EventType, TypeNotificationReceived)
		}
		if ev.CreatedAt.Before(before) || ev.CreatedAt.After(after) {
			t.Errorf("CreatedAt = %v, 期待する範囲: [%v, %v]", ev.CreatedAt, before, after)
		}
	})

	t.Run("連続して生成したイベントのIDが異なること", func(t *testing.T) {
		t.Parallel()

		data := NotificationsClearedData{DeletedCount: 3}

		ev1, err := New("clear", AggregateTypeNotification, TypeNotificationsCleared, data)
		if err != nil {
			t.Fatalf("1回目のNew()でエラーが発生: %v", err)
		}
		ev2, err := New("clear", AggregateTypeNotification, TypeNotificationsCleared, data)
		if err != nil {
			t.Fatalf("2回目のNew()でエラーが発生: %v", err)
		}

		if ev1.ID == ev2.ID {
			t.Errorf("異なるイベントが同じIDを持っている: %q", ev1.ID)
		}
	})

	t.Run("aggregate_idが空の場合はエラーが返ること", func(t *testing.T) {
		t.Parallel()

		if _, err := New("", AggregateTypeNotification, TypeNotificationDeleted, NotificationDeletedData{App: "Mail"}); err == nil {
			t.Fatal("New()がエラーを返すべきだが、nilが返った")
		}
	})

	t.Run("未定義の種別の場合はErrUnknownTypeが返ること", func(t *testing.T) {
		t.Parallel()

		_, err := New("notif-3", AggregateTypeNotification, Type("AlbumCreated"), struct{}{})
		if !errors.Is(err, ErrUnknownType) {
			t.Fatalf("err = %v, want ErrUnknownType", err)
		}
	})

	t.Run("シリアライズ不可能なデータでエラーが返ること", func(t *testing.T) {
		t.Parallel()

		ev, err := New("notif-2", AggregateTypeNotification, TypeNotificationReceived, make(chan int))
		if err == nil {
			t.Fatal("New()がエラーを返すべきだが、nilが返った")
		}
		if ev != nil {
			t.Error("エラー時にnilでないEventが返った")
		}
	})
}

// TestDecodeData はDecodeData関数でイベントデータを正しくデシリアライズできることを検証する。
func TestDecodeData(t *testing.T) {
	t.Parallel()

	t.Run("NotificationReceivedDataを正しくデコードできること", func(t *testing.T) {
		t.Parallel()

		kw := "inbox"
		original := NotificationReceivedData{App: "Mail", Content: "Hi | body", Keyword: &kw}

		ev, err := New("notif-10", AggregateTypeNotification, TypeNotificationReceived, original)
		if err != nil {
			t.Fatalf("New()でエラーが発生: %v", err)
		}

		decoded, err := DecodeData[NotificationReceivedData](ev)
		if err != nil {
			t.Fatalf("DecodeData()でエラーが発生: %v", err)
		}
		if decoded.Content != original.Content {
			t.Errorf("Content = %q, want %q", decoded.Content, original.Content)
		}
		if decoded.Keyword == nil || *decoded.Keyword != kw {
			t.Errorf("Keyword = %v, want %q", decoded.Keyword, kw)
		}
	})

	t.Run("不正なJSONデータでエラーが返ること", func(t *testing.T) {
		t.Parallel()

		ev := &Event{Data: json.RawMessage(`{invalid json`)}

		decoded, err := DecodeData[NotificationDeletedData](ev)
		if err == nil {
			t.Fatal("DecodeData()がエラーを返すべきだが、nilが返った")
		}
		if decoded != nil {
			t.Error("エラー時にnilでないデータが返った")
		}
	})
}
