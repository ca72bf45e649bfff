package event

import (
	"encoding/json"
	"time"
)

// AggregateType はイベントの対象となるエンティティの種類を表す。
type AggregateType string

const (
	// AggregateTypeNotification は通知エンティティを表す。
	AggregateTypeNotification AggregateType = "Notification"
)

// Type はイベントの種類を表す。
type Type string

const (
	// TypeNotificationReceived は通知が取り込まれ保存されたことを表す。
	TypeNotificationReceived Type = "NotificationReceived"
	// TypeNotificationDeleted は通知がID指定で削除されたことを表す。
	TypeNotificationDeleted Type = "NotificationDeleted"
	// TypeNotificationsCleared は通知が一括削除されたことを表す。
	TypeNotificationsCleared Type = "NotificationsCleared"
)

// Event は外部のイベントストアへ送る不変のイベントレコードを表す。
type Event struct {
	// ID はイベントの一意識別子（UUID）。
	ID string `json:"id"`
	// AggregateID は対象エンティティの識別子。
	AggregateID string `json:"aggregate_id"`
	// AggregateType は対象エンティティの種類。
	AggregateType AggregateType `json:"aggregate_type"`
	// EventType はイベントの種類。
	EventType Type `json:"event_type"`
	// Data はイベント固有のデータ（JSON形式）。
	Data json.RawMessage `json:"data"`
	// CreatedAt はイベントが作成された日時。
	CreatedAt time.Time `json:"created_at"`
}

// NotificationReceivedData はNotificationReceivedイベントのデータ。
type NotificationReceivedData struct {
	// App は通知元アプリケーション名。
	App string `json:"app"`
	// Content は正規化済みの内容。
	Content string `json:"content"`
	// Keyword は任意のキーワード。
	Keyword *string `json:"keyword"`
	// Timestamp は取り込み時刻。
	Timestamp time.Time `json:"timestamp"`
}

// NotificationDeletedData はNotificationDeletedイベントのデータ。
type NotificationDeletedData struct {
	// App は削除された通知のアプリケーション名。
	App string `json:"app"`
}

// NotificationsClearedData はNotificationsClearedイベントのデータ。
type NotificationsClearedData struct {
	// DeletedCount はこの呼び出しで削除した件数。
	DeletedCount int `json:"deleted_count"`
}
