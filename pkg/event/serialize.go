package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrUnknownType は未定義のイベント種別が指定されたことを表す。
var ErrUnknownType = errors.New("unknown event type")

// Known はイベント種別が定義済みかを返す。
func (t Type) Known() bool {
	switch t {
	case TypeNotificationReceived, TypeNotificationDeleted, TypeNotificationsCleared:
		return true
	default:
		return false
	}
}

// New はイベントを生成する。dataはJSONにシリアライズしてDataに格納する。
// aggregateIDが空の場合や未定義の種別の場合はエラーを返す。
func New(aggregateID string, aggregateType AggregateType, eventType Type, data any) (*Event, error) {
	if aggregateID == "" {
		return nil, errors.New("aggregate_idが空です")
	}
	if !eventType.Known() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, eventType)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("%sのデータのシリアライズに失敗: %w", eventType, err)
	}

	return &Event{
		ID:            uuid.NewString(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          raw,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// DecodeData はイベントのDataを型Tとして読み出す。
func DecodeData[T any](e *Event) (*T, error) {
	var data T
	if err := json.Unmarshal(e.Data, &data); err != nil {
		return nil, fmt.Errorf("%sのデータのデシリアライズに失敗: %w", e.EventType, err)
	}
	return &data, nil
}
