package store

import (
	"context"
	"iter"
	"slices"
	"strconv"
	"sync"
)

// MemoryStore はプロセス内のマップに通知を保持するStore実装。
// 開発用途とテスト用途を想定しており、プロセス終了で内容は失われる。
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Notification
	closed  bool
}

// NewMemoryStore は空のMemoryStoreを生成する。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Notification)}
}

// Put はレコードをupsertする。
func (m *MemoryStore) Put(ctx context.Context, n Notification) error {
	if err := ctx.Err(); err != nil {
		return classify("通知の保存", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return classify("通知の保存", errClosed)
	}
	m.records[n.ID] = clone(n)
	return nil
}

// Get はIDでレコードを取得する。
func (m *MemoryStore) Get(ctx context.Context, id string) (Notification, bool, error) {
	if err := ctx.Err(); err != nil {
		return Notification{}, false, classify("通知の取得", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return Notification{}, false, classify("通知の取得", errClosed)
	}
	n, ok := m.records[id]
	if !ok {
		return Notification{}, false, nil
	}
	return clone(n), true, nil
}

// Delete はIDでレコードを削除する。
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return classify("通知の削除", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return classify("通知の削除", errClosed)
	}
	delete(m.records, id)
	return nil
}

// Query は呼び出し時点のスナップショットから条件に合うレコードを返す。
func (m *MemoryStore) Query(ctx context.Context, q Query) iter.Seq2[Notification, error] {
	return func(yield func(Notification, error) bool) {
		if err := q.validate(); err != nil {
			yield(Notification{}, err)
			return
		}
		if err := ctx.Err(); err != nil {
			yield(Notification{}, classify("通知の検索", err))
			return
		}

		m.mu.RLock()
		if m.closed {
			m.mu.RUnlock()
			yield(Notification{}, classify("通知の検索", errClosed))
			return
		}
		matched := make([]Notification, 0, len(m.records))
		for _, n := range m.records {
			if matches(n, q.Filters) {
				matched = append(matched, clone(n))
			}
		}
		m.mu.RUnlock()

		if q.OrderBy != "" {
			slices.SortStableFunc(matched, func(a, b Notification) int {
				c := compareField(a, b, q.OrderBy)
				if q.Direction == Descending {
					return -c
				}
				return c
			})
		}
		if q.Limit > 0 && len(matched) > q.Limit {
			matched = matched[:q.Limit]
		}

		for _, n := range matched {
			if !yield(n, nil) {
				return
			}
		}
	}
}

// BatchDelete は存在するIDのみを削除して件数を返す。
func (m *MemoryStore) BatchDelete(ctx context.Context, ids []string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, classify("バッチ削除", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, classify("バッチ削除", errClosed)
	}
	deleted := 0
	for _, id := range ids {
		if _, ok := m.records[id]; ok {
			delete(m.records, id)
			deleted++
		}
	}
	return deleted, nil
}

// Len は保持しているレコード数を返す。
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Close は以降の操作をすべて ErrStoreUnavailable にする。
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func clone(n Notification) Notification {
	if n.Keyword != nil {
		kw := *n.Keyword
		n.Keyword = &kw
	}
	return n
}

func fieldValue(n Notification, f Field) (string, bool) {
	switch f {
	case FieldID:
		return n.ID, true
	case FieldApp:
		return n.App, true
	case FieldContent:
		return n.Content, true
	case FieldKeyword:
		if n.Keyword == nil {
			return "", false
		}
		return *n.Keyword, true
	default:
		return "", false
	}
}

func matches(n Notification, filters []Filter) bool {
	for _, f := range filters {
		if f.Field == FieldTimestamp {
			// 時刻の等価比較はSQL側と揃えてUNIXナノ秒で行う
			if formatNanos(n) != f.Value {
				return false
			}
			continue
		}
		v, ok := fieldValue(n, f.Field)
		if !ok || v != f.Value {
			return false
		}
	}
	return true
}

func compareField(a, b Notification, f Field) int {
	if f == FieldTimestamp {
		return a.Timestamp.Compare(b.Timestamp)
	}
	av, _ := fieldValue(a, f)
	bv, _ := fieldValue(b, f)
	switch {
	case av < bv:
		return -1
	case av > bv:
		return 1
	default:
		return 0
	}
}

func formatNanos(n Notification) string {
	return strconv.FormatInt(n.Timestamp.UTC().UnixNano(), 10)
}
