package store

import (
	"context"
	"errors"
	"iter"
	"time"
)

var (
	// ErrStoreUnavailable はストアへ到達できないことを表す。
	// 接続断、クローズ済みのハンドル、I/Oタイムアウトなどが該当する。
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrStoreOperationFailed はストアには到達したが操作が失敗したことを表す。
	ErrStoreOperationFailed = errors.New("store operation failed")
)

// Notification はストアに保存される通知レコード。
// 保存後は不変で、レコード単位の追加と削除のみが行われる。
type Notification struct {
	// ID は通知の一意識別子（UUID）。
	ID string `json:"id"`
	// App は通知元アプリケーション名。
	App string `json:"app"`
	// Content はタイトルと本文から導出した内容。
	Content string `json:"content"`
	// Keyword は任意のタグ。未指定の場合はnull。
	Keyword *string `json:"keyword"`
	// Timestamp は取り込み時刻（UTC）。並び替えと重複判定に使用する。
	Timestamp time.Time `json:"timestamp"`
}

// Field は検索条件や並び替えに使用できるフィールド。
type Field string

const (
	// FieldID は通知IDフィールド。
	FieldID Field = "id"
	// FieldApp はアプリケーション名フィールド。
	FieldApp Field = "app"
	// FieldContent は内容フィールド。
	FieldContent Field = "content"
	// FieldKeyword はキーワードフィールド。
	FieldKeyword Field = "keyword"
	// FieldTimestamp は取り込み時刻フィールド。
	FieldTimestamp Field = "timestamp"
)

// Valid はフィールドが既知のものかを返す。
func (f Field) Valid() bool {
	switch f {
	case FieldID, FieldApp, FieldContent, FieldKeyword, FieldTimestamp:
		return true
	default:
		return false
	}
}

// Direction は並び替えの方向。
type Direction int

const (
	// Descending は降順。
	Descending Direction = iota
	// Ascending は昇順。
	Ascending
)

// Filter は等価条件。
type Filter struct {
	// Field は比較対象のフィールド。
	Field Field
	// Value は一致させる値。
	Value string
}

// Query はストアに対する検索条件。
// 等価フィルタの組み合わせ、単一の並び替えキー、件数上限のみをサポートする。
type Query struct {
	// Filters はAND結合される等価条件。
	Filters []Filter
	// OrderBy は並び替えキー。空の場合は順序を保証しない。
	OrderBy Field
	// Direction は並び替えの方向。
	Direction Direction
	// Limit は最大件数。0以下の場合は上限なし。
	Limit int
}

// Where は等価条件を追加したQueryを返す。
func (q Query) Where(field Field, value string) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Value: value})
	return q
}

// validate は未知のフィールドを拒否する。
func (q Query) validate() error {
	for _, f := range q.Filters {
		if !f.Field.Valid() {
			return errorf(ErrStoreOperationFailed, "unknown filter field %q", f.Field)
		}
	}
	if q.OrderBy != "" && !q.OrderBy.Valid() {
		return errorf(ErrStoreOperationFailed, "unknown order field %q", q.OrderBy)
	}
	return nil
}

// Store は通知レコードの永続化サービスへの契約。
// 実装は複数のリクエストハンドラから同時に使用できなければならない。
type Store interface {
	// Put はIDをキーにレコードをupsertする。既存IDでもエラーにしない。
	Put(ctx context.Context, n Notification) error
	// Get はIDでレコードを取得する。存在しない場合はfound=falseを返す。
	Get(ctx context.Context, id string) (n Notification, found bool, err error)
	// Delete はIDでレコードを削除する。存在しない場合は何もしない。
	Delete(ctx context.Context, id string) error
	// Query は条件に一致するレコードを遅延評価のシーケンスとして返す。
	// シーケンスは一度だけ走査でき、エラーは要素と一緒に返される。
	Query(ctx context.Context, q Query) iter.Seq2[Notification, error]
	// BatchDelete は複数のIDをまとめて削除し、実際に削除した件数を返す。
	BatchDelete(ctx context.Context, ids []string) (int, error)
	// Close はストアへの接続を閉じる。
	Close() error
}

// Collect はシーケンスを走査してスライスに詰める。最初のエラーで中断する。
func Collect(seq iter.Seq2[Notification, error]) ([]Notification, error) {
	out := make([]Notification, 0)
	for n, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
