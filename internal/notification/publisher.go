package notification

import (
	"context"
	"log"

	"github.com/DigitalPlayLoad/monitor-notificacoes/internal/store"
	"github.com/DigitalPlayLoad/monitor-notificacoes/pkg/event"
	"github.com/DigitalPlayLoad/monitor-notificacoes/pkg/httpclient"
)

// Publisher は通知の変更を外部に知らせる。
// 送信に失敗しても呼び出し元の処理は成功として扱うため、エラーは返さない。
type Publisher interface {
	// Received は通知が保存されたことを知らせる。
	Received(ctx context.Context, n store.Notification)
	// Deleted は通知がID指定で削除されたことを知らせる。
	Deleted(ctx context.Context, n store.Notification)
	// Cleared は通知が一括削除されたことを知らせる。
	Cleared(ctx context.Context, deletedCount int)
}

// nopPublisher は何もしないPublisher。イベントストアが未設定の場合に使う。
type nopPublisher struct{}

func (nopPublisher) Received(context.Context, store.Notification) {}
func (nopPublisher) Deleted(context.Context, store.Notification)  {}
func (nopPublisher) Cleared(context.Context, int)                 {}

// EventStorePublisher は外部のイベントストアAPIへイベントを送信するPublisher。
type EventStorePublisher struct {
	// client はEvent Storeサービスへの通信クライアント。
	client *httpclient.Client
}

// NewEventStorePublisher は新しいEventStorePublisherを生成する。
func NewEventStorePublisher(client *httpclient.Client) *EventStorePublisher {
	return &EventStorePublisher{client: client}
}

// Received はNotificationReceivedイベントを送信する。
func (p *EventStorePublisher) Received(ctx context.Context, n store.Notification) {
	p.publish(ctx, n.ID, event.TypeNotificationReceived, event.NotificationReceivedData{
		App:       n.App,
		Content:   n.Content,
		Keyword:   n.Keyword,
		Timestamp: n.Timestamp,
	})
}

// Deleted はNotificationDeletedイベントを送信する。
func (p *EventStorePublisher) Deleted(ctx context.Context, n store.Notification) {
	p.publish(ctx, n.ID, event.TypeNotificationDeleted, event.NotificationDeletedData{App: n.App})
}

// Cleared はNotificationsClearedイベントを送信する。
func (p *EventStorePublisher) Cleared(ctx context.Context, deletedCount int) {
	p.publish(ctx, "notifications", event.TypeNotificationsCleared, event.NotificationsClearedData{
		DeletedCount: deletedCount,
	})
}

func (p *EventStorePublisher) publish(ctx context.Context, aggregateID string, eventType event.Type, data any) {
	ev, err := event.New(aggregateID, event.AggregateTypeNotification, eventType, data)
	if err != nil {
		log.Printf("%sイベントの生成に失敗: %v", eventType, err)
		return
	}
	if err := p.client.PostJSON(ctx, "/api/v1/events", ev, nil); err != nil {
		// イベント送信に失敗してもログに記録し、元の処理は成功として扱う
		log.Printf("%sイベントの送信に失敗: %v", eventType, err)
	}
}
