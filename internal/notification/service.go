package notification

import (
	"context"
	"fmt"

	"github.com/DigitalPlayLoad/monitor-notificacoes/internal/store"
)

const (
	// DefaultListLimit は一覧取得の既定件数。
	DefaultListLimit = 100
	// DefaultClearPageSize は一括削除1回あたりの最大件数。
	DefaultClearPageSize = 500
)

// Service は保存済み通知の一覧取得と削除を提供する。
type Service struct {
	// store は通知の保存先。
	store store.Store
	// publisher は削除を外部に知らせる。
	publisher Publisher
	// listLimit は一覧取得の既定件数。
	listLimit int
	// maxListLimit は一覧取得で指定できる最大件数。
	maxListLimit int
	// pageSize は一括削除1回あたりの最大件数。
	pageSize int
}

// ServiceConfig はServiceの設定。0以下の値は既定値になる。
type ServiceConfig struct {
	// ListLimit は一覧取得の既定件数。
	ListLimit int
	// MaxListLimit は一覧取得で指定できる最大件数。
	MaxListLimit int
	// ClearPageSize は一括削除1回あたりの最大件数。
	ClearPageSize int
	// Publisher は削除を外部に知らせる。nilなら何もしない。
	Publisher Publisher
}

// NewService は新しいServiceを生成する。
func NewService(s store.Store, cfg ServiceConfig) *Service {
	svc := &Service{
		store:        s,
		publisher:    nopPublisher{},
		listLimit:    DefaultListLimit,
		maxListLimit: DefaultListLimit,
		pageSize:     DefaultClearPageSize,
	}
	if cfg.ListLimit > 0 {
		svc.listLimit = cfg.ListLimit
		svc.maxListLimit = cfg.ListLimit
	}
	if cfg.MaxListLimit > 0 {
		svc.maxListLimit = max(cfg.MaxListLimit, svc.listLimit)
	}
	if cfg.ClearPageSize > 0 {
		svc.pageSize = cfg.ClearPageSize
	}
	if cfg.Publisher != nil {
		svc.publisher = cfg.Publisher
	}
	return svc
}

// PageSize は一括削除1回あたりの最大件数を返す。
func (s *Service) PageSize() int {
	return s.pageSize
}

// List は保存済み通知を新しい順に最大limit件返す。
// limitが0以下の場合は既定件数、最大件数を超える場合は最大件数になる。
func (s *Service) List(ctx context.Context, limit int) ([]store.Notification, error) {
	if limit <= 0 {
		limit = s.listLimit
	}
	limit = min(limit, s.maxListLimit)

	notifications, err := store.Collect(s.store.Query(ctx, store.Query{
		OrderBy:   store.FieldTimestamp,
		Direction: store.Descending,
		Limit:     limit,
	}))
	if err != nil {
		return nil, fmt.Errorf("通知一覧の取得に失敗: %w", err)
	}
	return notifications, nil
}

// DeleteByID は指定されたIDの通知を削除する。存在しない場合は ErrNotFound を返す。
func (s *Service) DeleteByID(ctx context.Context, id string) error {
	n, found, err := s.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("通知の取得に失敗: %w", err)
	}
	if !found {
		return ErrNotFound
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("通知の削除に失敗: %w", err)
	}

	s.publisher.Deleted(ctx, n)
	return nil
}

// ClearPage は最大PageSize件の通知を削除し、実際に削除した件数を返す。
//
// 1回の呼び出しで消えるのは1ページ分だけである。全件を消すには
// 戻り値が0になるまで呼び出し側で繰り返すこと。
func (s *Service) ClearPage(ctx context.Context) (int, error) {
	ids := make([]string, 0, s.pageSize)
	for n, err := range s.store.Query(ctx, store.Query{Limit: s.pageSize}) {
		if err != nil {
			return 0, fmt.Errorf("削除対象の取得に失敗: %w", err)
		}
		ids = append(ids, n.ID)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	deleted, err := s.store.BatchDelete(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("通知の一括削除に失敗: %w", err)
	}

	if deleted > 0 {
		s.publisher.Cleared(ctx, deleted)
	}
	return deleted, nil
}
